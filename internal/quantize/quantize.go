// Package quantize linearly maps floating-point BM25 scores into the
// [1, ceiling] range of 16-bit impacts the core index format stores,
// following the two-pass min/max-then-scale scheme in the reference
// corpus's quantize.h: a first pass over every term/document score tracks
// the smallest and largest RSV seen across the whole collection, then a
// second pass rescales each score into the quantized range.
package quantize

import (
	"math"

	"k8s.io/klog/v2"
)

// Bounds accumulates the smallest and largest raw RSV seen across a
// collection's postings, mirroring quantize::get_bounds.
type Bounds struct {
	seen    bool
	Smallest float64
	Largest  float64
}

// Observe folds one more raw score into the running bounds.
func (b *Bounds) Observe(score float64) {
	if !b.seen {
		b.Smallest, b.Largest = score, score
		b.seen = true
		return
	}
	if score < b.Smallest {
		b.Smallest = score
	}
	if score > b.Largest {
		b.Largest = score
	}
}

// Quantizer rescales raw RSV scores into [1, Ceiling] once Bounds has
// observed the whole collection. Ceiling must be <= 2^16-1 per spec.md §3.
type Quantizer struct {
	bounds  Bounds
	Ceiling uint16
}

// New builds a Quantizer from the final bounds of one collection and the
// quantization ceiling Q.
func New(bounds Bounds, ceiling uint16) *Quantizer {
	return &Quantizer{bounds: bounds, Ceiling: ceiling}
}

// Quantize maps a raw RSV score into an integer impact in [1, Ceiling].
// A score that would round past Ceiling is clamped to Ceiling and logged
// at verbosity 2, rather than treated as corruption: DESIGN.md resolves the
// open question that way, on the grounds that the indexer's own
// quantizer — not a downstream reader — is the thing expected to prevent
// overflow, and a log line gives an operator something actionable without
// aborting an otherwise-valid build.
func (q *Quantizer) Quantize(score float64) uint16 {
	span := q.bounds.Largest - q.bounds.Smallest
	var frac float64
	if span > 0 {
		frac = (score - q.bounds.Smallest) / span
	}
	scaled := frac*float64(q.Ceiling-1) + 1
	rounded := int64(math.Round(scaled))
	if rounded < 1 {
		return 1
	}
	if rounded > int64(q.Ceiling) {
		klog.V(2).Infof("quantize: score %f saturated past ceiling %d, clamping", score, q.Ceiling)
		return q.Ceiling
	}
	return uint16(rounded)
}
