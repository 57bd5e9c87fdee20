package indexer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jass-ir/jass/codec"
	"github.com/jass-ir/jass/doclist"
	"github.com/jass-ir/jass/indexer"
	"github.com/jass-ir/jass/indexer/parsers"
	"github.com/jass-ir/jass/postings"
	"github.com/jass-ir/jass/query"
	"github.com/jass-ir/jass/vocab"
	"github.com/stretchr/testify/require"
)

const tenDocFixture = `
<DOC><DOCNO>d1</DOCNO><TEXT>one fish two fish</TEXT></DOC>
<DOC><DOCNO>d2</DOCNO><TEXT>one red fish</TEXT></DOC>
<DOC><DOCNO>d3</DOCNO><TEXT>blue fish</TEXT></DOC>
<DOC><DOCNO>d4</DOCNO><TEXT>one two three</TEXT></DOC>
<DOC><DOCNO>d5</DOCNO><TEXT>cat and hat</TEXT></DOC>
<DOC><DOCNO>d6</DOCNO><TEXT>green eggs and ham</TEXT></DOC>
<DOC><DOCNO>d7</DOCNO><TEXT>one fish</TEXT></DOC>
<DOC><DOCNO>d8</DOCNO><TEXT>sam i am</TEXT></DOC>
<DOC><DOCNO>d9</DOCNO><TEXT>do you like them</TEXT></DOC>
<DOC><DOCNO>d10</DOCNO><TEXT>one two one two</TEXT></DOC>
`

func buildTenDocIndex(t *testing.T) (*indexer.Output, indexer.Config) {
	t.Helper()
	docs, err := parsers.ParseTREC(strings.NewReader(tenDocFixture), parsers.TRECOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 10)

	b := indexer.NewBuilder()
	for _, d := range docs {
		b.AddDocument(d)
	}
	cfg := indexer.DefaultConfig()
	out, err := b.Build(cfg, vocab.V2, nil)
	require.NoError(t, err)
	return out, cfg
}

func TestBuildThenQuerySingleTerm(t *testing.T) {
	out, cfg := buildTenDocIndex(t)

	c, err := codec.ByTag(cfg.CodecTag[0])
	require.NoError(t, err)

	v, err := vocab.Load(out.VocabTerms, out.VocabPointers, vocab.V2)
	require.NoError(t, err)
	pf, err := postings.Open(out.Postings)
	require.NoError(t, err)
	require.Equal(t, c.Tag(), pf.Codec.Tag())
	dl, err := doclist.Open(bytes.NewReader(out.Doclist))
	require.NoError(t, err)

	idx := &query.Index{Vocab: v, Postings: pf, Doclist: dl}
	ctx := query.NewContext(idx, query.Options{TopK: 10, Mode: query.ModeExhaustive}, 10)

	results, err := ctx.Run([]string{"fish"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		require.Greater(t, r.Score, uint16(0))
	}
}

func TestBuildMissingTermProducesEmptyResult(t *testing.T) {
	out, _ := buildTenDocIndex(t)
	v, err := vocab.Load(out.VocabTerms, out.VocabPointers, vocab.V2)
	require.NoError(t, err)
	pf, err := postings.Open(out.Postings)
	require.NoError(t, err)
	dl, err := doclist.Open(bytes.NewReader(out.Doclist))
	require.NoError(t, err)

	idx := &query.Index{Vocab: v, Postings: pf, Doclist: dl}
	ctx := query.NewContext(idx, query.Options{TopK: 10, Mode: query.ModeExhaustive}, 10)

	results, err := ctx.Run([]string{"aardvark", "unicornicopia"})
	require.NoError(t, err)
	require.Empty(t, results)
}
