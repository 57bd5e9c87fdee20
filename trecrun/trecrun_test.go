package trecrun_test

import (
	"bytes"
	"testing"

	"github.com/jass-ir/jass/query"
	"github.com/jass-ir/jass/trecrun"
	"github.com/stretchr/testify/require"
)

func TestWriteQueryFormatsOneLinePerResult(t *testing.T) {
	var buf bytes.Buffer
	w := trecrun.NewWriter(&buf)

	err := w.WriteQuery("Q1", []query.Result{
		{DocID: 3, Score: 12, PrimaryKey: "DOC3"},
		{DocID: 5, Score: 12, PrimaryKey: "DOC5"},
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	require.Equal(t, "Q1 Q0 DOC3 1 12 jass\nQ1 Q0 DOC5 2 12 jass\n", buf.String())
}

func TestWriteQueryEmptyResultsWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := trecrun.NewWriter(&buf)
	require.NoError(t, w.WriteQuery("Q2", nil))
	require.NoError(t, w.Flush())
	require.Empty(t, buf.String())
}
