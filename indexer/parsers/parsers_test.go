package parsers_test

import (
	"strings"
	"testing"

	"github.com/jass-ir/jass/indexer/parsers"
	"github.com/stretchr/testify/require"
)

const trecFixture = `
<DOC>
<DOCNO>LA010189-0001</DOCNO>
<TEXT>One two three, four. One!</TEXT>
</DOC>
<DOC>
<DOCNO>LA010189-0002</DOCNO>
<TEXT>Another document here.</TEXT>
</DOC>
`

func TestParseTRECExtractsDocnoAndTokens(t *testing.T) {
	docs, err := parsers.ParseTREC(strings.NewReader(trecFixture), parsers.TRECOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "LA010189-0001", docs[0].PrimaryKey)
	require.Contains(t, docs[0].Tokens, "one")
	require.Contains(t, docs[0].Tokens, "three")
	require.Equal(t, "LA010189-0002", docs[1].PrimaryKey)
}

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	toks := parsers.Tokenize("Hello, World! 123")
	require.Equal(t, []string{"hello", "world", "123"}, toks)
}

const fastaFixture = ">seq1 description one\nACGTACGT\n>seq2\nTTTT\n"

func TestParseFASTAGeneratesKmers(t *testing.T) {
	docs, err := parsers.ParseFASTA(strings.NewReader(fastaFixture), 3)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "seq1", docs[0].PrimaryKey)
	require.Equal(t, []string{"ACG", "CGT", "GTA", "TAC", "ACG", "CGT"}, docs[0].Tokens)
	require.Equal(t, "seq2", docs[1].PrimaryKey)
	require.Equal(t, []string{"TTT", "TTT"}, docs[1].Tokens)
}

const unicoilFixture = `{"id": "d1", "vector": {"foo": 1.5, "bar": 2.0}}
{"id": "d2", "vector": {"baz": 0.5}}
`

func TestParseUniCOILJSON(t *testing.T) {
	docs, err := parsers.ParseUniCOILJSON(strings.NewReader(unicoilFixture))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "d1", docs[0].PrimaryKey)
	require.InDelta(t, 1.5, docs[0].Weights["foo"], 1e-9)
	require.Equal(t, "d2", docs[1].PrimaryKey)
}
