// Package trecrun writes query results in the standard TREC run format:
// one line per (query, result) pair, `QID Q0 PRIMARYKEY RANK SCORE TAG`.
// This is a fixed, widely-used text format with no natural library
// analogue in the example corpus, so it is written directly against
// bufio/fmt rather than through a third-party dependency.
package trecrun

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jass-ir/jass/query"
)

// RunTag is the system identifier written in the last column of every
// line, per TREC convention.
const RunTag = "jass"

// Writer appends TREC-run-format lines for one or more queries' results.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps dst for buffered TREC-run output. Callers must call
// Flush when done.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(dst)}
}

// WriteQuery emits one line per result in results, in the order given
// (rank 1 is results[0]); an empty results slice writes nothing, matching
// spec.md §7's "empty ranking produces no output for that QID".
func (w *Writer) WriteQuery(qid string, results []query.Result) error {
	for i, r := range results {
		rank := i + 1
		if _, err := fmt.Fprintf(w.w, "%s %s %s %d %d %s\n", qid, "Q0", r.PrimaryKey, rank, r.Score, RunTag); err != nil {
			return fmt.Errorf("trecrun: write result %d for query %s: %w", rank, qid, err)
		}
	}
	return nil
}

// Flush flushes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
