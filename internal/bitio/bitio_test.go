package bitio_test

import (
	"testing"

	"github.com/jass-ir/jass/internal/bitio"
	"github.com/stretchr/testify/require"
)

func TestBitsRoundTrip(t *testing.T) {
	w := bitio.NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBits(0b1, 1)
	w.WriteBits(0b11110000, 8)
	buf := w.Bytes()

	r := bitio.NewReader(buf)
	require.EqualValues(t, 0b101, r.ReadBits(3))
	require.EqualValues(t, 0b1, r.ReadBits(1))
	require.EqualValues(t, 0b11110000, r.ReadBits(8))
}

func TestUnaryRoundTrip(t *testing.T) {
	w := bitio.NewWriter()
	for _, v := range []uint64{0, 1, 5, 17, 0} {
		w.WriteUnary(v)
	}
	buf := w.Bytes()

	r := bitio.NewReader(buf)
	for _, want := range []uint64{0, 1, 5, 17, 0} {
		require.Equal(t, want, r.ReadUnary())
	}
}
