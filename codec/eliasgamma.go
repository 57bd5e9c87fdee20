package codec

import (
	"math/bits"

	"github.com/jass-ir/jass/internal/bitio"
)

// eliasGammaEncode appends the Elias-gamma code for v+1 (the +1 lets the
// codec represent zero, which plain gamma coding cannot) to w.
func eliasGammaEncode(w *bitio.Writer, v uint32) {
	n := uint64(v) + 1
	l := bits.Len64(n)
	w.WriteUnary(uint64(l - 1))
	// The unary prefix's terminating one bit doubles as n's leading bit;
	// emit the remaining l-1 bits.
	w.WriteBits(n, uint(l-1))
}

func eliasGammaDecode(r *bitio.Reader) uint32 {
	zeros := r.ReadUnary()
	n := (uint64(1) << zeros) | r.ReadBits(uint(zeros))
	return uint32(n - 1)
}

// eliasGamma is the plain bit-level Elias-gamma codec (tag 'G').
type eliasGamma struct{}

func init() { Register(eliasGamma{}) }

func (eliasGamma) Tag() byte      { return 'G' }
func (eliasGamma) Name() string   { return "elias-gamma" }
func (eliasGamma) Alignment() int { return 1 }

func (eliasGamma) Encode(dst []byte, src []uint32) ([]byte, error) {
	w := bitio.NewWriter()
	for _, v := range src {
		eliasGammaEncode(w, v)
	}
	return append(dst, w.Bytes()...), nil
}

func (eliasGamma) Decode(src []byte, n int, dst []uint32) (int, error) {
	r := bitio.NewReader(src)
	for i := 0; i < n; i++ {
		dst[i] = eliasGammaDecode(r)
	}
	return (r.BitsConsumed() + 7) / 8, nil
}

// eliasGammaVB is the gamma+variable-byte hybrid (tag 'g'): runs of four or
// fewer values — too short to amortize gamma's bit-level overhead — are
// instead packed with plain variable-byte, flagged by a one-byte mode
// prefix so the decoder knows which path was taken.
type eliasGammaVB struct{}

func init() { Register(eliasGammaVB{}) }

func (eliasGammaVB) Tag() byte      { return 'g' }
func (eliasGammaVB) Name() string   { return "elias-gamma-vb" }
func (eliasGammaVB) Alignment() int { return 1 }

const shortResidualThreshold = 4

func (eliasGammaVB) Encode(dst []byte, src []uint32) ([]byte, error) {
	if len(src) <= shortResidualThreshold {
		dst = append(dst, 0)
		vb, _ := variableByte{}.Encode(nil, src)
		return append(dst, vb...), nil
	}
	dst = append(dst, 1)
	w := bitio.NewWriter()
	for _, v := range src {
		eliasGammaEncode(w, v)
	}
	return append(dst, w.Bytes()...), nil
}

func (eliasGammaVB) Decode(src []byte, n int, dst []uint32) (int, error) {
	if len(src) == 0 {
		return 0, errShortRead
	}
	mode := src[0]
	body := src[1:]
	if mode == 0 {
		consumed, err := variableByte{}.Decode(body, n, dst)
		return consumed + 1, err
	}
	r := bitio.NewReader(body)
	for i := 0; i < n; i++ {
		dst[i] = eliasGammaDecode(r)
	}
	return (r.BitsConsumed()+7)/8 + 1, nil
}
