package quantize_test

import (
	"testing"

	"github.com/jass-ir/jass/internal/quantize"
	"github.com/stretchr/testify/require"
)

func TestQuantizeSpansFullRange(t *testing.T) {
	var b quantize.Bounds
	for _, s := range []float64{1.0, 5.0, 10.0} {
		b.Observe(s)
	}
	q := quantize.New(b, 100)

	require.EqualValues(t, 1, q.Quantize(1.0))
	require.EqualValues(t, 100, q.Quantize(10.0))
	mid := q.Quantize(5.5)
	require.Greater(t, mid, uint16(1))
	require.Less(t, mid, uint16(100))
}

func TestQuantizeDegenerateSpanClampsToFloor(t *testing.T) {
	var b quantize.Bounds
	b.Observe(3.0)
	b.Observe(3.0)
	q := quantize.New(b, 50)
	require.EqualValues(t, 1, q.Quantize(3.0))
}

func TestQuantizeSaturatesAboveCeiling(t *testing.T) {
	var b quantize.Bounds
	b.Observe(0)
	b.Observe(10)
	q := quantize.New(b, 10)
	require.EqualValues(t, 10, q.Quantize(20))
}
