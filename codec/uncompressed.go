package codec

import "encoding/binary"

// uncompressed stores each integer as a raw little-endian uint32. Useful as
// a baseline for benchmarking and for fixtures where codec overhead would
// obscure what's being tested.
type uncompressed struct{}

func init() {
	Register(uncompressed{})
}

func (uncompressed) Tag() byte      { return 's' }
func (uncompressed) Name() string   { return "uncompressed" }
func (uncompressed) Alignment() int { return 1 }

func (uncompressed) Encode(dst []byte, src []uint32) ([]byte, error) {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst, nil
}

func (uncompressed) Decode(src []byte, n int, dst []uint32) (int, error) {
	need := n * 4
	if len(src) < need {
		return 0, errShortRead
	}
	for i := 0; i < n; i++ {
		dst[i] = binary.LittleEndian.Uint32(src[i*4:])
	}
	return need, nil
}
