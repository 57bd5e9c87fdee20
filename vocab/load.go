package vocab

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Load parses a strings blob and a pointer file (in the given format) back
// into a Vocabulary. The pointer file has no entry count; parsing proceeds
// until the bytes are exhausted (spec.md §6: "No count header — EOF
// terminates").
func Load(termStrings, pointers []byte, format Format) (*Vocabulary, error) {
	var entries []Entry
	switch format {
	case V1:
		const entrySize = 24
		if len(pointers)%entrySize != 0 {
			return nil, fmt.Errorf("vocab: v1 pointer file length %d not a multiple of %d", len(pointers), entrySize)
		}
		for off := 0; off < len(pointers); off += entrySize {
			entries = append(entries, Entry{
				TermOffset:     binary.LittleEndian.Uint64(pointers[off:]),
				PostingsOffset: binary.LittleEndian.Uint64(pointers[off+8:]),
				NumQuanta:      uint32(binary.LittleEndian.Uint64(pointers[off+16:])),
			})
		}
	case V2:
		pos := 0
		for pos < len(pointers) {
			termOff, n, err := readVarint(pointers[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			postOff, n, err := readVarint(pointers[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			numQ, n, err := readVarint(pointers[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			entries = append(entries, Entry{TermOffset: termOff, PostingsOffset: postOff, NumQuanta: uint32(numQ)})
		}
	default:
		return nil, fmt.Errorf("vocab: unknown format %d", format)
	}

	v := &Vocabulary{terms: termStrings, entries: entries}
	for _, e := range entries {
		end := bytes.IndexByte(termStrings[e.TermOffset:], 0)
		if end < 0 {
			return nil, fmt.Errorf("vocab: unterminated term string at offset %d", e.TermOffset)
		}
		v.terms_ = append(v.terms_, termStrings[e.TermOffset:e.TermOffset+uint64(end)])
	}
	if !v.assertSorted() {
		return nil, fmt.Errorf("vocab: terms are not strictly increasing (corrupt vocabulary)")
	}
	v.eytz = eytzinger(len(v.entries))
	return v, nil
}

func readVarint(src []byte) (uint64, int, error) {
	var v uint64
	for i, b := range src {
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 != 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("vocab: truncated variable-byte integer")
}
