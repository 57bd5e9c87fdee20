package codec

import (
	"math/bits"

	"github.com/jass-ir/jass/internal/bitio"
)

// eliasDelta is the bit-level Elias-delta codec (tag 'D'): like Elias-gamma
// but the unary length prefix is itself gamma-coded, trading a slightly
// more expensive small-value encoding for much better behaviour on large
// values (the length of the length prefix grows logarithmically instead of
// linearly).
type eliasDelta struct{}

func init() { Register(eliasDelta{}) }

func (eliasDelta) Tag() byte      { return 'D' }
func (eliasDelta) Name() string   { return "elias-delta" }
func (eliasDelta) Alignment() int { return 1 }

func eliasDeltaEncode(w *bitio.Writer, v uint32) {
	n := uint64(v) + 1
	l := bits.Len64(n)
	eliasGammaEncode(w, uint32(l-1))
	if l > 1 {
		// n's leading bit is always 1 and is implied by l; emit the rest.
		w.WriteBits(n, uint(l-1))
	}
}

func eliasDeltaDecode(r *bitio.Reader) uint32 {
	l := eliasGammaDecode(r) + 1
	if l == 1 {
		return 0
	}
	rest := r.ReadBits(uint(l - 1))
	n := (uint64(1) << (l - 1)) | rest
	return uint32(n - 1)
}

func (eliasDelta) Encode(dst []byte, src []uint32) ([]byte, error) {
	w := bitio.NewWriter()
	for _, v := range src {
		eliasDeltaEncode(w, v)
	}
	return append(dst, w.Bytes()...), nil
}

func (eliasDelta) Decode(src []byte, n int, dst []uint32) (int, error) {
	r := bitio.NewReader(src)
	for i := 0; i < n; i++ {
		dst[i] = eliasDeltaDecode(r)
	}
	return (r.BitsConsumed() + 7) / 8, nil
}
