// Package vocab implements the sorted vocabulary (JASS component C2/C3's
// term dictionary): the strings file (CIvocab_terms.bin) and the pointer
// file (CIvocab.bin) described in spec.md §6, in both the fixed-width
// JASS-v1 and variable-byte JASS-v2 wire formats.
//
// The in-memory lookup structure is grounded in the reference corpus's
// compactindexsized package: entries are held in their natural sorted order
// (for iteration and the §8 sortedness test) plus an Eytzinger-ordered
// permutation of their indices for cache-friendly binary search —
// the same layout idea compactindexsized/build.go uses for its hash
// buckets, adapted here to a lexicographically sorted term table instead of
// a hash-bucketed one, since spec.md invariant (iv) requires sorted binary
// search, not hashing.
package vocab

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Entry is one vocabulary entry: (term-string offset, postings offset,
// quantum count).
type Entry struct {
	TermOffset     uint64
	PostingsOffset uint64
	NumQuanta      uint32
}

// Format selects the on-disk vocabulary pointer encoding.
type Format int

const (
	V1 Format = iota // fixed 64-bit little-endian triples, 24 bytes/entry
	V2               // variable-byte triples, EOF-terminated
)

// Vocabulary is the loaded, read-only in-memory vocabulary.
type Vocabulary struct {
	terms   []byte  // NUL-terminated term strings, concatenated
	entries []Entry // sorted lexicographically by term string
	terms_  [][]byte
	eytz    []int // eytzinger-reordered indices into entries/terms_
}

// Build sorts terms and their entries together and returns a Vocabulary
// ready for serialization or lookup. termStrings[i] is the term string of
// entries[i]; the two slices must be the same length and need not already
// be sorted.
func Build(termStrings []string, entries []Entry) (*Vocabulary, error) {
	if len(termStrings) != len(entries) {
		return nil, fmt.Errorf("vocab: %d terms but %d entries", len(termStrings), len(entries))
	}
	type pair = struct {
		term  string
		entry Entry
	}
	pairs := make([]pair, len(termStrings))
	for i := range termStrings {
		pairs[i] = pair{termStrings[i], entries[i]}
	}
	sortPairs(pairs)

	var termsBlob bytes.Buffer
	out := &Vocabulary{}
	for _, p := range pairs {
		p.entry.TermOffset = uint64(termsBlob.Len())
		termsBlob.WriteString(p.term)
		termsBlob.WriteByte(0)
		out.entries = append(out.entries, p.entry)
		out.terms_ = append(out.terms_, []byte(p.term))
	}
	out.terms = termsBlob.Bytes()
	out.eytz = eytzinger(len(out.entries))
	return out, nil
}

func sortPairs(pairs []struct {
	term  string
	entry Entry
}) {
	// insertion sort is fine: vocabularies built in tests and small
	// fixtures are tiny; the indexer's own build path sorts the term map
	// directly (see indexer package) before ever constructing a Vocabulary.
	for i := 1; i < len(pairs); i++ {
		v := pairs[i]
		j := i - 1
		for j >= 0 && pairs[j].term > v.term {
			pairs[j+1] = pairs[j]
			j--
		}
		pairs[j+1] = v
	}
}

// TermStringsBytes returns the CIvocab_terms.bin contents.
func (v *Vocabulary) TermStringsBytes() []byte { return v.terms }

// Entries returns the vocabulary entries in sorted term order.
func (v *Vocabulary) Entries() []Entry { return v.entries }

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Term returns the term string at sorted position i.
func (v *Vocabulary) Term(i int) string { return string(v.terms_[i]) }

// MarshalPointers encodes the vocabulary pointer file (CIvocab.bin) in the
// given format.
func (v *Vocabulary) MarshalPointers(format Format) []byte {
	var buf bytes.Buffer
	for _, e := range v.entries {
		switch format {
		case V1:
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], e.TermOffset)
			buf.Write(tmp[:])
			binary.LittleEndian.PutUint64(tmp[:], e.PostingsOffset)
			buf.Write(tmp[:])
			binary.LittleEndian.PutUint64(tmp[:], uint64(e.NumQuanta))
			buf.Write(tmp[:])
		case V2:
			writeVarint(&buf, e.TermOffset)
			writeVarint(&buf, e.PostingsOffset)
			writeVarint(&buf, uint64(e.NumQuanta))
		}
	}
	return buf.Bytes()
}

func writeVarint(buf *bytes.Buffer, v uint64) {
	var tmp [10]byte
	n := 0
	for {
		tmp[n] = byte(v & 0x7f)
		v >>= 7
		n++
		if v == 0 {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		b := tmp[i]
		if i == 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

// eytzinger computes, for a sorted array of length n, the permutation that
// places it in Eytzinger (BFS binary-search-tree) order, following the
// recursive construction in compactindexsized/build.go's eytzinger().
func eytzinger(n int) []int {
	out := make([]int, n)
	pos := 0
	var walk func(i int)
	walk = func(i int) {
		if i >= n {
			return
		}
		walk(2*i + 1)
		out[i] = pos
		pos++
		walk(2*i + 2)
	}
	walk(0)
	// out[pos] holds the sorted-order rank of the element placed at
	// Eytzinger position pos — exactly the lookup table LookupEytzinger
	// needs to walk the implicit binary-search tree breadth-first.
	return out
}
