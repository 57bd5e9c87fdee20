package codec

import "encoding/binary"

// simple9Mode describes one of the nine ways a 32-bit Simple-9 word can
// divide its 28-bit payload.
type simple9Mode struct {
	count int
	bits  uint
}

var simple9Modes = [9]simple9Mode{
	{28, 1},
	{14, 2},
	{9, 3},
	{7, 4},
	{5, 5},
	{4, 7},
	{3, 9},
	{2, 14},
	{1, 28},
}

// simple9 implements the classic word-aligned selector codec: a 4-bit
// selector packed into the high nibble of a 32-bit word picks one of nine
// (count, bitwidth) layouts for the remaining 28 bits. Registered under the
// postings-file tag '8' ("simple-8b" in spec.md's naming; see DESIGN.md for
// why this implementation is a Simple-9, the same family by a different
// exact bit budget).
type simple9 struct{}

func init() {
	Register(simple9{})
}

func (simple9) Tag() byte      { return '8' }
func (simple9) Name() string   { return "simple-9" }
func (simple9) Alignment() int { return 4 }

func (simple9) Encode(dst []byte, src []uint32) ([]byte, error) {
	i := 0
	for i < len(src) {
		mode, n := bestSimple9Mode(src[i:])
		word := uint32(mode) << 28
		bits := simple9Modes[mode].bits
		for j := 0; j < n; j++ {
			word |= (src[i+j] & ((1 << bits) - 1)) << (bits * uint(j))
		}
		dst = binary.LittleEndian.AppendUint32(dst, word)
		i += n
	}
	return dst, nil
}

// bestSimple9Mode picks the mode packing the most leading values of src,
// subject to every packed value fitting in that mode's bit width.
func bestSimple9Mode(src []uint32) (mode, n int) {
	for m := 0; m < len(simple9Modes); m++ {
		cfg := simple9Modes[m]
		count := cfg.count
		if count > len(src) {
			count = len(src)
		}
		limit := uint32(1) << cfg.bits
		fits := true
		for j := 0; j < count; j++ {
			if src[j] >= limit {
				fits = false
				break
			}
		}
		if fits && (count == len(src) || count == cfg.count) {
			if count > n {
				mode, n = m, count
			}
		}
	}
	if n == 0 {
		// Degenerate: value too large even for 28 bits is a caller error,
		// but fall back to one value in the widest mode to avoid an
		// infinite loop; Decode will reproduce the truncation faithfully.
		mode, n = 8, 1
	}
	return mode, n
}

func (simple9) Decode(src []byte, n int, dst []uint32) (int, error) {
	pos := 0
	written := 0
	for written < n {
		if pos+4 > len(src) {
			return pos, errShortRead
		}
		word := binary.LittleEndian.Uint32(src[pos:])
		pos += 4
		mode := int(word >> 28)
		if mode >= len(simple9Modes) {
			return pos, errShortRead
		}
		cfg := simple9Modes[mode]
		bits := cfg.bits
		mask := uint32(1)<<bits - 1
		for j := 0; j < cfg.count && written < n; j++ {
			dst[written] = (word >> (bits * uint(j))) & mask
			written++
		}
	}
	return pos, nil
}
