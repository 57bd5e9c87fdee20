package codec

import "encoding/binary"

// qmxSelector describes one of the 16 ways a 128-bit (16-byte) QMX block can
// divide its payload among same-width integers.
type qmxSelector struct {
	bits  uint
	count int
}

// qmxSelectors mirrors the classic QMX table: pick the widest packing that
// still fits count*bits within 128 bits, trading a few wasted bits for a
// power-of-two-friendly count.
var qmxSelectors = [16]qmxSelector{
	{1, 128}, {2, 64}, {3, 42}, {4, 32},
	{5, 25}, {6, 21}, {7, 18}, {8, 16},
	{9, 14}, {10, 12}, {12, 10}, {16, 8},
	{21, 6}, {32, 4}, {64, 2}, {128, 1},
}

// qmxPack packs src into 128-bit blocks, choosing the narrowest selector
// whose bit width holds every value in that block, greedily from the front
// of src. The wire format is: a 16-byte header (uint32 integer count,
// uint32 block count, 8 zero bytes), then a selector byte per block (all
// selector bytes first, zero-padded to a 16-byte boundary), then the
// 16-byte data blocks, so the data portion stays 128-bit aligned relative
// to the start of the payload.
func qmxPack(src []uint32) []byte {
	var selectors []byte
	var blocks []byte
	i := 0
	for i < len(src) {
		sel, n := bestQMXSelector(src[i:])
		blocks = append(blocks, qmxEncodeBlock(sel, src[i:i+n])...)
		selectors = append(selectors, byte(sel))
		i += n
	}
	for len(selectors)%16 != 0 {
		selectors = append(selectors, 0)
	}
	out := make([]byte, 0, qmxHeaderSize+len(selectors)+len(blocks))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(src)))
	nblocks := len(blocks) / 16
	out = binary.LittleEndian.AppendUint32(out, uint32(nblocks))
	out = append(out, make([]byte, qmxHeaderSize-8)...)
	out = append(out, selectors...)
	out = append(out, blocks...)
	return out
}

func bestQMXSelector(src []uint32) (sel, n int) {
	for s := 0; s < len(qmxSelectors); s++ {
		cfg := qmxSelectors[s]
		count := cfg.count
		if count > len(src) {
			count = len(src)
		}
		limit := uint64(1) << cfg.bits
		if cfg.bits == 32 {
			limit = 1 << 32
		}
		fits := true
		for j := 0; j < count; j++ {
			if uint64(src[j]) >= limit {
				fits = false
				break
			}
		}
		if fits && count > n {
			sel, n = s, count
		}
	}
	if n == 0 {
		sel, n = len(qmxSelectors)-1, 1
	}
	return sel, n
}

// qmxEncodeBlock packs up to qmxSelectors[sel].count values of width
// qmxSelectors[sel].bits into a 16-byte block, zero-padding unused slots.
func qmxEncodeBlock(sel int, vals []uint32) []byte {
	cfg := qmxSelectors[sel]
	block := make([]byte, 16)
	bitPos := uint(0)
	for _, v := range vals {
		writeBitsLE(block, bitPos, cfg.bits, uint64(v))
		bitPos += cfg.bits
	}
	return block
}

func qmxDecodeBlock(sel int, block []byte, n int, dst []uint32) {
	cfg := qmxSelectors[sel]
	bitPos := uint(0)
	for j := 0; j < n; j++ {
		dst[j] = uint32(readBitsLE(block, bitPos, cfg.bits))
		bitPos += cfg.bits
	}
}

// writeBitsLE/readBitsLE pack bits into a little-endian bit stream within a
// byte slice, least significant bit of the stream first — the natural
// layout for fixed-width SIMD lanes.
func writeBitsLE(dst []byte, bitPos, nbits uint, v uint64) {
	for i := uint(0); i < nbits; i++ {
		if v&(1<<i) != 0 {
			pos := bitPos + i
			dst[pos/8] |= 1 << (pos % 8)
		}
	}
}

func readBitsLE(src []byte, bitPos, nbits uint) uint64 {
	var v uint64
	for i := uint(0); i < nbits; i++ {
		pos := bitPos + i
		if int(pos/8) < len(src) && src[pos/8]&(1<<(pos%8)) != 0 {
			v |= 1 << i
		}
	}
	return v
}

const qmxHeaderSize = 16

func qmxUnpack(src []byte, n int, dst []uint32) (int, error) {
	if len(src) < qmxHeaderSize {
		return 0, errShortRead
	}
	total := int(binary.LittleEndian.Uint32(src))
	nblocks := int(binary.LittleEndian.Uint32(src[4:]))
	if total < n {
		return 0, errShortRead
	}
	selLen := nblocks
	for selLen%16 != 0 {
		selLen++
	}
	pos := qmxHeaderSize
	if pos+selLen+nblocks*16 > len(src) {
		return 0, errShortRead
	}
	selectors := src[pos : pos+selLen]
	pos += selLen
	blocks := src[pos : pos+nblocks*16]

	written := 0
	remaining := total
	for b := 0; b < nblocks && written < n; b++ {
		sel := int(selectors[b])
		if sel >= len(qmxSelectors) {
			return 0, errShortRead
		}
		cfg := qmxSelectors[sel]
		count := cfg.count
		if count > remaining {
			count = remaining
		}
		take := count
		if written+take > n {
			take = n - written
		}
		tmp := make([]uint32, count)
		qmxDecodeBlock(sel, blocks[b*16:b*16+16], count, tmp)
		copy(dst[written:written+take], tmp[:take])
		written += take
		remaining -= count
	}
	return qmxHeaderSize + selLen + nblocks*16, nil
}

// qmx is the default QMX variant: caller supplies D1 gap deltas, the codec
// does no further delta transform of its own.
type qmx struct{}

func init() { Register(qmx{}) }

func (qmx) Tag() byte      { return 'q' }
func (qmx) Name() string   { return "qmx" }
func (qmx) Alignment() int { return 16 }

func (qmx) Encode(dst []byte, src []uint32) ([]byte, error) {
	return append(dst, qmxPack(src)...), nil
}

func (qmx) Decode(src []byte, n int, dst []uint32) (int, error) {
	return qmxUnpack(src, n, dst)
}

// qmxD0 is bit-identical to qmx but tagged separately because its quanta
// carry absolute docIDs rather than D1 gaps — the query processor skips the
// prefix-sum step for this tag (spec.md §4.1/§4.5).
type qmxD0 struct{}

func init() { Register(qmxD0{}) }

func (qmxD0) Tag() byte      { return 'R' }
func (qmxD0) Name() string   { return "qmx-d0" }
func (qmxD0) Alignment() int { return 16 }

func (qmxD0) Encode(dst []byte, src []uint32) ([]byte, error) {
	return append(dst, qmxPack(src)...), nil
}

func (qmxD0) Decode(src []byte, n int, dst []uint32) (int, error) {
	return qmxUnpack(src, n, dst)
}

// qmxD4 applies a SIMD-friendly four-lane delta transform internally: values
// are split into four interleaved lanes (index % 4), each lane delta-coded
// against the element four positions back, then QMX-packed. Decode reverses
// both steps so the caller still observes ordinary D1 gaps, exactly as
// spec.md §4.1 describes ("some codecs additionally apply D4 deltas
// internally").
type qmxD4 struct{}

func init() { Register(qmxD4{}) }

func (qmxD4) Tag() byte      { return 'Q' }
func (qmxD4) Name() string   { return "qmx-d4" }
func (qmxD4) Alignment() int { return 16 }

func (qmxD4) Encode(dst []byte, src []uint32) ([]byte, error) {
	transformed := make([]uint32, len(src))
	copy(transformed, src)
	for i := len(src) - 1; i >= 4; i-- {
		transformed[i] = src[i] - src[i-4]
	}
	return append(dst, qmxPack(transformed)...), nil
}

func (qmxD4) Decode(src []byte, n int, dst []uint32) (int, error) {
	consumed, err := qmxUnpack(src, n, dst)
	if err != nil {
		return consumed, err
	}
	for i := 4; i < n; i++ {
		dst[i] += dst[i-4]
	}
	return consumed, nil
}
