package accum_test

import (
	"testing"

	"github.com/jass-ir/jass/accum"
	"github.com/stretchr/testify/require"
)

func tablesUnderTest(n int) map[string]accum.Table {
	return map[string]accum.Table{
		"row":     accum.NewRowTable(n),
		"counter": accum.NewCounterTable(n),
	}
}

func TestVariantsAgree(t *testing.T) {
	const n = 1000
	updates := []struct {
		doc   uint32
		delta uint16
	}{
		{3, 8}, {5, 8}, {999, 1}, {3, 4}, {0, 1}, {5, 4},
	}

	for name, tbl := range tablesUnderTest(n) {
		t.Run(name, func(t *testing.T) {
			tbl.Reset()
			for _, u := range updates {
				tbl.Add(u.doc, u.delta)
			}
			require.Equal(t, uint16(12), tbl.Get(3))
			require.Equal(t, uint16(12), tbl.Get(5))
			require.Equal(t, uint16(1), tbl.Get(999))
			require.Equal(t, uint16(1), tbl.Get(0))
			require.Equal(t, uint16(0), tbl.Get(1))

			// Touched is documented to return ascending DocID order,
			// independent of update order (3 and 5 were each touched
			// before 999 and 0 above).
			require.Equal(t, []uint32{0, 3, 5, 999}, tbl.Touched())
		})
	}
}

func TestResetClearsPreviousQuery(t *testing.T) {
	for name, tbl := range tablesUnderTest(100) {
		t.Run(name, func(t *testing.T) {
			tbl.Reset()
			tbl.Add(10, 5)
			tbl.Reset()
			require.Equal(t, uint16(0), tbl.Get(10))
			require.Empty(t, tbl.Touched())
		})
	}
}

func TestSaturation(t *testing.T) {
	for name, tbl := range tablesUnderTest(10) {
		t.Run(name, func(t *testing.T) {
			tbl.Reset()
			tbl.Add(1, 0xffff)
			got := tbl.Add(1, 100)
			require.Equal(t, uint16(0xffff), got)
		})
	}
}

func TestCounterTableRewindsOnOverflow(t *testing.T) {
	tbl := accum.NewCounterTable(10)
	for i := 0; i < 300; i++ {
		tbl.Reset()
		tbl.Add(4, 1)
		require.Equal(t, uint16(1), tbl.Get(4))
	}
}
