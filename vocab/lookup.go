package vocab

import (
	"bytes"
	"sort"
)

// Lookup performs a binary search over the sorted term order (spec.md
// invariant iv / §4.3) and returns the matching entry, or false if term is
// not present.
func (v *Vocabulary) Lookup(term []byte) (Entry, bool) {
	n := len(v.terms_)
	i := sort.Search(n, func(i int) bool {
		return bytes.Compare(v.terms_[i], term) >= 0
	})
	if i < n && bytes.Equal(v.terms_[i], term) {
		return v.entries[i], true
	}
	return Entry{}, false
}

// LookupEytzinger is functionally identical to Lookup but walks the
// Eytzinger-reordered index instead of calling sort.Search, exercising the
// cache-friendly layout built in Build/Load. Kept alongside the plain
// binary search so callers (and tests) can choose, and so the property
// "both searches agree" is directly testable.
func (v *Vocabulary) LookupEytzinger(term []byte) (Entry, bool) {
	n := len(v.terms_)
	if n == 0 {
		return Entry{}, false
	}
	pos := 0
	for pos < n {
		idx := v.eytz[pos]
		c := bytes.Compare(v.terms_[idx], term)
		if c == 0 {
			return v.entries[idx], true
		}
		if c < 0 {
			pos = 2*pos + 2
		} else {
			pos = 2*pos + 1
		}
	}
	return Entry{}, false
}

func (v *Vocabulary) assertSorted() bool {
	for i := 1; i < len(v.terms_); i++ {
		if bytes.Compare(v.terms_[i-1], v.terms_[i]) >= 0 {
			return false
		}
	}
	return true
}
