package vocab_test

import (
	"testing"

	"github.com/jass-ir/jass/vocab"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	terms := []string{"zebra", "apple", "mango", "fig", "banana"}
	entries := []vocab.Entry{
		{PostingsOffset: 1, NumQuanta: 1},
		{PostingsOffset: 2, NumQuanta: 2},
		{PostingsOffset: 3, NumQuanta: 3},
		{PostingsOffset: 4, NumQuanta: 4},
		{PostingsOffset: 5, NumQuanta: 5},
	}
	v, err := vocab.Build(terms, entries)
	require.NoError(t, err)
	return v
}

func TestSortedness(t *testing.T) {
	v := buildFixture(t)
	for i := 1; i < v.Len(); i++ {
		require.Less(t, v.Term(i-1), v.Term(i))
	}
}

func TestRoundTripBothFormats(t *testing.T) {
	v := buildFixture(t)
	for _, format := range []vocab.Format{vocab.V1, vocab.V2} {
		ptrs := v.MarshalPointers(format)
		loaded, err := vocab.Load(v.TermStringsBytes(), ptrs, format)
		require.NoError(t, err)
		require.Equal(t, v.Entries(), loaded.Entries())
	}
}

func TestLookupAgreesWithEytzinger(t *testing.T) {
	v := buildFixture(t)
	for _, term := range []string{"apple", "mango", "zebra", "missing"} {
		want, wantOK := v.Lookup([]byte(term))
		got, gotOK := v.LookupEytzinger([]byte(term))
		require.Equal(t, wantOK, gotOK, term)
		if wantOK {
			require.Equal(t, want, got, term)
		}
	}
}
