package indexer

import "math"

// atireBM25 is the ATIRE variant of BM25: non-negative, with IDF log(N/df)
// and a per-document length correction (computed once per document),
// following ranking_function_atire_bm25.h. The IDF component is
// recomputed from df and N on every score call.
type atireBM25 struct {
	k1, b            float64
	meanLength       float64
	lengthCorrection []float64 // indexed by docID; index 0 is unused
}

// newATIREBM25 precomputes the length-correction term for every document.
// docLengths must be indexed by docID (index 0 unused, per spec.md's DocID
// numbering starting at 1).
func newATIREBM25(k1, b float64, docLengths []uint32) *atireBM25 {
	var sum uint64
	for _, l := range docLengths {
		sum += uint64(l)
	}
	n := len(docLengths) - 1 // -1: docID 0 is not a real document
	mean := 0.0
	if n > 0 {
		mean = float64(sum) / float64(n)
	}

	r := &atireBM25{k1: k1, b: b, meanLength: mean, lengthCorrection: make([]float64, len(docLengths))}
	oneMinusB := 1.0 - b
	for doc, length := range docLengths {
		if mean == 0 {
			r.lengthCorrection[doc] = k1 * oneMinusB
			continue
		}
		r.lengthCorrection[doc] = k1 * (oneMinusB + b*float64(length)/mean)
	}
	return r
}

// score computes the BM25 RSV for one (term, document) pair. df is the
// term's document frequency and n is the collection size.
func (r *atireBM25) score(df, n int, docID uint32, tf uint32) float64 {
	idf := math.Log(float64(n) / float64(df))
	topRow := float64(tf) * (r.k1 + 1)
	return idf * (topRow / (float64(tf) + r.lengthCorrection[docID]))
}
