package query_test

import (
	"testing"

	"github.com/jass-ir/jass/codec"
	"github.com/jass-ir/jass/doclist"
	"github.com/jass-ir/jass/postings"
	"github.com/jass-ir/jass/query"
	"github.com/jass-ir/jass/vocab"
	"github.com/stretchr/testify/require"
)

// buildFixture constructs the two-term fixture from spec.md §8 scenario 2:
// term A in docs {1,3,5} impact 8, term B in docs {3,5,7} impact 4.
func buildFixture(t *testing.T) *query.Index {
	t.Helper()
	c, err := codec.ByTag('c')
	require.NoError(t, err)

	b, err := postings.NewBuilder(c, 8, 8)
	require.NoError(t, err)

	offA, ktA, err := b.WriteTerm([]postings.Quantum{{Impact: 8, DocIDs: []uint32{1, 3, 5}}})
	require.NoError(t, err)
	offB, ktB, err := b.WriteTerm([]postings.Quantum{{Impact: 4, DocIDs: []uint32{3, 5, 7}}})
	require.NoError(t, err)

	pf, err := postings.Open(b.Finish())
	require.NoError(t, err)

	v, err := vocab.Build([]string{"a", "b"}, []vocab.Entry{
		{PostingsOffset: offA, NumQuanta: uint32(ktA)},
		{PostingsOffset: offB, NumQuanta: uint32(ktB)},
	})
	require.NoError(t, err)

	dl := doclist.Build([]string{"DOC1", "DOC2", "DOC3", "DOC4", "DOC5", "DOC6", "DOC7"})

	return &query.Index{Vocab: v, Postings: pf, Doclist: dl}
}

func TestTwoTermQueryAccumulatorsAndTopK(t *testing.T) {
	idx := buildFixture(t)
	ctx := query.NewContext(idx, query.Options{TopK: 3, Mode: query.ModeExhaustive}, 8)

	results, err := ctx.Run([]string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// top-3 = [(3,12) or (5,12) by docID tie-break, the other, then 1 with score 8]
	require.Equal(t, uint32(3), results[0].DocID)
	require.EqualValues(t, 12, results[0].Score)
	require.Equal(t, uint32(5), results[1].DocID)
	require.EqualValues(t, 12, results[1].Score)
	require.Equal(t, uint32(1), results[2].DocID)
	require.EqualValues(t, 8, results[2].Score)
	require.Equal(t, "DOC3", results[0].PrimaryKey)
}

func TestMissingTermsProduceEmptyResult(t *testing.T) {
	idx := buildFixture(t)
	ctx := query.NewContext(idx, query.Options{TopK: 10, Mode: query.ModeExhaustive}, 8)

	results, err := ctx.Run([]string{"aardvark", "unicornicopia"})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestAnytimeBudgetStopsAfterFirstQuantum(t *testing.T) {
	idx := buildFixture(t)
	// Budget of 3 == the size of the first scheduled quantum (term a, impact 8).
	ctx := query.NewContext(idx, query.Options{TopK: 10, Mode: query.ModeAnytime, PostingsBudget: 3}, 8)

	results, err := ctx.Run([]string{"a", "b"})
	require.NoError(t, err)
	for _, r := range results {
		require.EqualValues(t, 8, r.Score)
	}
}

func TestAnytimeInfiniteBudgetEqualsExhaustive(t *testing.T) {
	idx := buildFixture(t)
	exhaustive := query.NewContext(idx, query.Options{TopK: 10, Mode: query.ModeExhaustive}, 8)
	anytime := query.NewContext(idx, query.Options{TopK: 10, Mode: query.ModeAnytime, PostingsBudget: ^uint64(0)}, 8)

	a, err := exhaustive.Run([]string{"a", "b"})
	require.NoError(t, err)
	b, err := anytime.Run([]string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestEarlyExitMatchesExhaustive(t *testing.T) {
	idx := buildFixture(t)
	exhaustive := query.NewContext(idx, query.Options{TopK: 3, Mode: query.ModeExhaustive}, 8)
	earlyExit := query.NewContext(idx, query.Options{TopK: 3, Mode: query.ModeEarlyExit}, 8)

	a, err := exhaustive.Run([]string{"a", "b"})
	require.NoError(t, err)
	b, err := earlyExit.Run([]string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, a, b)
}
