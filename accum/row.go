package accum

import "sort"

// RowTable implements the mandatory byte-dirty-flag design: accumulators
// live in one contiguous array split into H rows of W = 2^s cells; a
// companion byte array flags whether each row has been zeroed this query.
// Reset only touches the H-byte dirty array, giving O(sqrt(N)) reset.
type RowTable struct {
	n       int
	w       int
	shift   uint
	a       []uint16
	dirty   []bool
	touched []uint32
}

// NewRowTable allocates a row table covering document IDs [0, n).
func NewRowTable(n int) *RowTable {
	w := rowWidth(n)
	shift := uint(0)
	for (1 << shift) < w {
		shift++
	}
	h := (n + w - 1) / w
	if h == 0 {
		h = 1
	}
	return &RowTable{
		n:     n,
		w:     w,
		shift: shift,
		a:     make([]uint16, h*w),
		dirty: make([]bool, h),
	}
}

func (t *RowTable) Len() int { return t.n }

func (t *RowTable) Reset() {
	for i := range t.dirty {
		t.dirty[i] = false
	}
	t.touched = t.touched[:0]
}

func (t *RowTable) ensureRow(doc uint32) {
	r := int(doc) >> t.shift
	if !t.dirty[r] {
		base := r * t.w
		for i := base; i < base+t.w; i++ {
			t.a[i] = 0
		}
		t.dirty[r] = true
	}
}

func (t *RowTable) Add(doc uint32, delta uint16) uint16 {
	t.ensureRow(doc)
	old := t.a[doc]
	if old == 0 {
		t.touched = append(t.touched, doc)
	}
	t.a[doc] = saturatingAdd(old, delta)
	return t.a[doc]
}

func (t *RowTable) Get(doc uint32) uint16 {
	r := int(doc) >> t.shift
	if !t.dirty[r] {
		return 0
	}
	return t.a[doc]
}

func (t *RowTable) Touched() []uint32 {
	sort.Slice(t.touched, func(i, j int) bool { return t.touched[i] < t.touched[j] })
	return t.touched
}
