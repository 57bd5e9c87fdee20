// Package accum implements the sparse accumulator table (JASS component
// C4): per-query partial-score storage over N documents that resets in
// O(sqrt(N)) rather than O(N).
//
// Two variants are provided behind the Table interface. RowTable is the
// mandatory "row of dirty flags" design. CounterTable is the recommended
// epoch/counter variant for large N, ported from the original JASS C++
// accumulator_counter template.
package accum

import "math/bits"

// Table is a per-query accumulator array over document IDs [0, N).
type Table interface {
	// Reset prepares the table for a new query. It never touches every
	// accumulator; both implementations do this in O(sqrt(N)) or better.
	Reset()

	// Add saturates doc's accumulator by delta and returns the new value.
	Add(doc uint32, delta uint16) uint16

	// Get returns doc's current accumulator value, or 0 if it was never
	// touched this query.
	Get(doc uint32) uint16

	// Touched returns every document ID touched since the last Reset, in
	// ascending order.
	Touched() []uint32

	// Len is the number of documents the table covers (N).
	Len() int
}

func saturatingAdd(old, delta uint16) uint16 {
	sum := uint32(old) + uint32(delta)
	if sum > 0xffff {
		return 0xffff
	}
	return uint16(sum)
}

// rowWidth picks W = 2^s with s ~= floor(log2(sqrt(n))), per spec.md §4.4.
func rowWidth(n int) int {
	if n <= 1 {
		return 1
	}
	s := bits.Len(uint(n))/2 - 1
	if s < 0 {
		s = 0
	}
	return 1 << uint(s)
}
