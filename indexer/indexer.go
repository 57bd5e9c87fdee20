// Package indexer builds a JASS index from parsed documents: it tallies
// per-term postings, scores each (term, document) pair with BM25 (or takes
// a pre-computed uniCOIL weight directly), quantizes scores into 16-bit
// impacts, groups same-impact documents into quanta, and drives the
// vocabulary/postings/doclist serializers.
//
// Grounded in the reference corpus's quantize.h two-pass design (a first
// pass establishes score bounds, a second pass rescales and emits), with
// ranking_function_atire_bm25.h supplying the scoring formula for
// token-frequency documents.
package indexer

import (
	"fmt"
	"sort"

	"github.com/jass-ir/jass/codec"
	"github.com/jass-ir/jass/doclist"
	"github.com/jass-ir/jass/indexer/parsers"
	"github.com/jass-ir/jass/internal/quantize"
	"github.com/jass-ir/jass/postings"
	"github.com/jass-ir/jass/vocab"
	"github.com/tidwall/hashmap"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// posting is one (document, raw-score-input) pair accumulated for a term
// during the collection scan. Exactly one of tf (token-frequency
// documents) or weight (pre-weighted uniCOIL documents) applies per
// Builder, selected by which Add* method populated it.
type posting struct {
	docID    uint32
	tf       uint32
	weight   float64
	weighted bool
}

// Builder accumulates documents and their postings in memory, then emits
// a complete index via Build. Terms live in a tidwall/hashmap.Map rather
// than a plain Go map so flush-time iteration order can be made
// deterministic by sorting its Keys() once, without paying a sorted-map
// insertion cost throughout the scan.
type Builder struct {
	terms       *hashmap.Map[string, []posting]
	docLengths  []uint32 // index 0 unused; docID 0 is reserved
	primaryKeys []string // index 0 unused
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	b := &Builder{terms: hashmap.New[string, []posting](4096)}
	b.docLengths = append(b.docLengths, 0)
	b.primaryKeys = append(b.primaryKeys, "")
	return b
}

// AddDocument tallies doc's token frequencies against a fresh docID and
// returns that docID.
func (b *Builder) AddDocument(doc parsers.Document) uint32 {
	docID := uint32(len(b.primaryKeys))
	b.primaryKeys = append(b.primaryKeys, doc.PrimaryKey)

	tf := make(map[string]uint32, len(doc.Tokens))
	for _, tok := range doc.Tokens {
		tf[tok]++
	}
	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		entries, _ := b.terms.Get(term)
		entries = append(entries, posting{docID: docID, tf: tf[term]})
		b.terms.Set(term, entries)
	}
	b.docLengths = append(b.docLengths, uint32(len(doc.Tokens)))
	return docID
}

// AddWeightedDocument records doc's pre-computed uniCOIL term weights
// against a fresh docID, bypassing BM25 entirely; only quantization is
// applied to these weights at Build time.
func (b *Builder) AddWeightedDocument(doc parsers.WeightedDocument) uint32 {
	docID := uint32(len(b.primaryKeys))
	b.primaryKeys = append(b.primaryKeys, doc.PrimaryKey)

	terms := make([]string, 0, len(doc.Weights))
	for term := range doc.Weights {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		entries, _ := b.terms.Get(term)
		entries = append(entries, posting{docID: docID, weight: doc.Weights[term], weighted: true})
		b.terms.Set(term, entries)
	}
	b.docLengths = append(b.docLengths, 0)
	return docID
}

// Output is the serialized form of a built index, ready to be written to
// the four on-disk files named in spec.md §6.
type Output struct {
	VocabTerms    []byte
	VocabPointers []byte
	Postings      []byte
	Doclist       []byte
}

// reportFunc receives (terms processed so far, total terms) during Build;
// the CLI wires this to a progress bar and its --report-every log line.
type reportFunc func(termsDone, termsTotal int)

// Build scores, quantizes, and serializes the accumulated collection.
// onProgress may be nil.
func (b *Builder) Build(cfg Config, format vocab.Format, onProgress reportFunc) (*Output, error) {
	c, err := codec.ByTag(cfg.CodecTag[0])
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}

	n := len(b.primaryKeys) - 1
	if n == 0 {
		return nil, fmt.Errorf("indexer: cannot build an index with zero documents")
	}
	ranker := newATIREBM25(cfg.K1, cfg.B, b.docLengths)

	terms := b.terms.Keys()
	sort.Strings(terms)

	var bounds quantize.Bounds
	rawScores := make([][]float64, len(terms))
	for i, term := range terms {
		entries, _ := b.terms.Get(term)
		scores := make([]float64, len(entries))
		for j, e := range entries {
			var s float64
			if e.weighted {
				s = e.weight
			} else {
				s = ranker.score(len(entries), n, e.docID, e.tf)
			}
			scores[j] = s
			bounds.Observe(s)
		}
		rawScores[i] = scores
	}
	q := quantize.New(bounds, cfg.Ceiling)

	pb, err := postings.NewBuilder(c, uint64(n), cfg.Ceiling)
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}

	var errs error
	vocabEntries := make([]vocab.Entry, 0, len(terms))
	kept := make([]string, 0, len(terms))
	for i, term := range terms {
		entries, _ := b.terms.Get(term)
		quanta := groupIntoQuanta(entries, rawScores[i], q)
		if len(quanta) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("indexer: term %q produced no quanta, skipping", term))
			continue
		}
		off, kt, err := pb.WriteTerm(quanta)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("indexer: term %q: %w", term, err))
			continue
		}
		vocabEntries = append(vocabEntries, vocab.Entry{PostingsOffset: off, NumQuanta: uint32(kt)})
		kept = append(kept, term)
		if onProgress != nil {
			onProgress(i+1, len(terms))
		}
	}
	if errs != nil {
		klog.Warningf("indexer: build completed with errors: %v", errs)
	}

	v, err := vocab.Build(kept, vocabEntries)
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}
	dl := doclist.Build(b.primaryKeys[1:])

	return &Output{
		VocabTerms:    v.TermStringsBytes(),
		VocabPointers: v.MarshalPointers(format),
		Postings:      pb.Finish(),
		Doclist:       dl.MarshalBinary(),
	}, nil
}

// groupIntoQuanta quantizes every posting's raw score and groups postings
// sharing the same quantized impact into one quantum, returning quanta
// sorted by descending impact (spec.md §4.2 step 2) with each quantum's
// docIDs sorted ascending (spec.md invariant i).
func groupIntoQuanta(entries []posting, rawScores []float64, q *quantize.Quantizer) []postings.Quantum {
	byImpact := make(map[uint16][]uint32, len(entries))
	for i, e := range entries {
		impact := q.Quantize(rawScores[i])
		byImpact[impact] = append(byImpact[impact], e.docID)
	}

	impacts := make([]uint16, 0, len(byImpact))
	for impact := range byImpact {
		impacts = append(impacts, impact)
	}
	sort.Slice(impacts, func(i, j int) bool { return impacts[i] > impacts[j] })

	quanta := make([]postings.Quantum, 0, len(impacts))
	for _, impact := range impacts {
		docIDs := byImpact[impact]
		sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })
		quanta = append(quanta, postings.Quantum{Impact: impact, DocIDs: docIDs})
	}
	return quanta
}
