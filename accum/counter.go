package accum

import "sort"

// CounterTable implements the epoch/counter accumulator variant recommended
// by spec.md §4.4 for large N, ported from the original JASS C++
// accumulator_counter<ELEMENT, N, 8> template: each accumulator has a
// companion 8-bit "clean id"; a cell is clean iff its id equals the table's
// current cleanID. Reset is O(1) — it just increments cleanID — except on
// the rare overflow of the 8-bit id space, where the whole clean array is
// rewound to 0 before the new query's id starts counting from 1 again.
type CounterTable struct {
	n         int
	a         []uint16
	cleanID   []uint8
	current   uint8
	touched   []uint32
}

const maxCleanID = 0xff

func NewCounterTable(n int) *CounterTable {
	return &CounterTable{
		n:       n,
		a:       make([]uint16, n),
		cleanID: make([]uint8, n),
		current: 0,
	}
}

func (t *CounterTable) Len() int { return t.n }

// Reset starts a new query. If the counter would overflow its 8-bit width,
// every clean id is explicitly rewound to 0 first (the behaviour of the
// original's rewind()), and the new query starts at id 1.
func (t *CounterTable) Reset() {
	if t.current == maxCleanID {
		for i := range t.cleanID {
			t.cleanID[i] = 0
		}
		t.current = 0
	}
	t.current++
	t.touched = t.touched[:0]
}

func (t *CounterTable) Add(doc uint32, delta uint16) uint16 {
	var old uint16
	if t.cleanID[doc] == t.current {
		old = t.a[doc]
	} else {
		t.cleanID[doc] = t.current
		old = 0
	}
	if old == 0 {
		t.touched = append(t.touched, doc)
	}
	t.a[doc] = saturatingAdd(old, delta)
	return t.a[doc]
}

func (t *CounterTable) Get(doc uint32) uint16 {
	if t.cleanID[doc] != t.current {
		return 0
	}
	return t.a[doc]
}

func (t *CounterTable) Touched() []uint32 {
	sort.Slice(t.touched, func(i, j int) bool { return t.touched[i] < t.touched[j] })
	return t.touched
}
