// Package query implements the query processor (C5): looking up terms in
// the vocabulary, scheduling their quanta into one descending-impact run,
// decoding postings and folding them into the accumulator table, and
// extracting a top-K ranking under either termination mode.
//
// Per spec.md §5, all query-local mutable state lives in a Context owned by
// the calling goroutine; nothing here is safe to share across concurrent
// queries except the read-only index itself.
package query

import (
	"sort"

	"github.com/jass-ir/jass/accum"
	"github.com/jass-ir/jass/doclist"
	"github.com/jass-ir/jass/postings"
	"github.com/jass-ir/jass/topk"
	"github.com/jass-ir/jass/vocab"
)

// Index bundles the three read-only index files a Context queries against.
type Index struct {
	Vocab    *vocab.Vocabulary
	Postings *postings.File
	Doclist  *doclist.DocList
}

// Mode selects the traversal termination predicate.
type Mode int

const (
	// ModeExhaustive processes every scheduled quantum.
	ModeExhaustive Mode = iota
	// ModeAnytime stops once PostingsBudget integers have been processed.
	ModeAnytime
	// ModeEarlyExit is exhaustive mode plus the remaining-impact early-exit
	// bound (spec.md §4.5 step 4d).
	ModeEarlyExit
)

// Options configures one query's traversal.
type Options struct {
	TopK            int
	Mode            Mode
	PostingsBudget  uint64 // only consulted when Mode == ModeAnytime
	NewAccumulators func(n int) accum.Table
}

// Context holds the reusable per-worker scratch state: accumulators, the
// top-K heap, and the merged quantum schedule buffer. Allocate one per
// goroutine that processes queries and reuse it across queries, per
// spec.md §5's "no per-query heap allocation" requirement.
type Context struct {
	idx    *Index
	opts   Options
	accs   accum.Table
	heap   *topk.Heap
	sched  []scheduledQuantum
	docBuf []uint32 // decode scratch, grown on demand and reused across quanta and queries

	lastProcessed uint64
}

// LastProcessed returns the number of postings (docIDs) decoded during the
// most recent call to Run, for reporting per-query stats per spec.md §7.
func (c *Context) LastProcessed() uint64 { return c.lastProcessed }

type scheduledQuantum struct {
	header postings.QuantumHeader
}

// NewContext creates a Context for idx. collectionSize is N, the
// accumulator table's span (DocIDs are 1..N inclusive; the table is sized
// N+1 so DocID can index it directly).
func NewContext(idx *Index, opts Options, collectionSize int) *Context {
	newTable := opts.NewAccumulators
	if newTable == nil {
		newTable = func(n int) accum.Table { return accum.NewRowTable(n) }
	}
	return &Context{
		idx:    idx,
		opts:   opts,
		accs:   newTable(collectionSize + 1),
		heap:   topk.New(opts.TopK + 1),
		docBuf: make([]uint32, 0, 256),
	}
}

// Result is one ranked (docID, score) pair plus its external primary key.
type Result struct {
	DocID      uint32
	Score      uint16
	PrimaryKey string
}

// Run executes one query: vocabulary lookup, quantum scheduling, traversal,
// and top-K extraction. terms need not be deduplicated; duplicate terms
// simply contribute their quantum headers twice, which is harmless (their
// impacts add, matching repeated-term query semantics).
func (c *Context) Run(terms []string) ([]Result, error) {
	c.accs.Reset()
	c.heap.Reset()
	c.sched = c.sched[:0]

	for _, term := range terms {
		entry, ok := c.idx.Vocab.Lookup([]byte(term))
		if !ok {
			continue // NotFound: silently skipped, per spec.md §7
		}
		headers, err := c.idx.Postings.ReadTerm(entry.PostingsOffset, int(entry.NumQuanta))
		if err != nil {
			return nil, err // Corrupt: fatal, per spec.md §7
		}
		for _, h := range headers {
			c.sched = append(c.sched, scheduledQuantum{header: h})
		}
	}

	sort.SliceStable(c.sched, func(i, j int) bool {
		a, b := c.sched[i].header, c.sched[j].header
		if a.Impact != b.Impact {
			return a.Impact > b.Impact
		}
		return a.IntegerCount < b.IntegerCount
	})

	var remainingImpact uint64
	if c.opts.Mode == ModeEarlyExit {
		for _, sq := range c.sched {
			remainingImpact += uint64(sq.header.Impact)
		}
	}

	var processed uint64
	for _, sq := range c.sched {
		h := sq.header
		if c.opts.Mode == ModeEarlyExit {
			remainingImpact -= uint64(h.Impact)
		}

		if cap(c.docBuf) < int(h.IntegerCount) {
			c.docBuf = make([]uint32, h.IntegerCount)
		}
		q, err := c.idx.Postings.DecodeQuantum(h, c.docBuf[:h.IntegerCount])
		if err != nil {
			return nil, err
		}

		for _, d := range q.DocIDs {
			score := c.accs.Add(d, h.Impact)
			c.heap.Offer(topk.Entry{Doc: d, Score: score})
		}
		processed += uint64(len(q.DocIDs))

		if c.opts.Mode == ModeAnytime && processed >= c.opts.PostingsBudget {
			break
		}
		if c.opts.Mode == ModeEarlyExit && c.heap.Full() && noReorderingPossible(c.heap.Gaps(), remainingImpact) {
			break
		}
	}
	c.lastProcessed = processed

	top := c.heap.TopK(c.opts.TopK)
	results := make([]Result, len(top))
	for i, e := range top {
		pk, err := c.idx.Doclist.PrimaryKey(e.Doc - 1) // doclist row 0 is DocID 1
		if err != nil {
			return nil, err
		}
		results[i] = Result{DocID: e.Doc, Score: e.Score, PrimaryKey: pk}
	}
	return results, nil
}

// noReorderingPossible implements spec.md §4.5 step 4d: if every adjacent
// gap between the K+1 heap scores is at least the remaining upper bound M,
// no document still outside the top-K can catch up, so traversal may stop.
func noReorderingPossible(gaps []uint16, m uint64) bool {
	if len(gaps) == 0 {
		return false
	}
	for _, g := range gaps {
		if uint64(g) < m {
			return false
		}
	}
	return true
}
