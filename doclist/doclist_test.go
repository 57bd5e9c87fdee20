package doclist_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/jass-ir/jass/doclist"
	"github.com/stretchr/testify/require"
)

func TestBuildMarshalLoadRoundTrip(t *testing.T) {
	keys := []string{"doc-0", "doc-1", "a-longer-primary-key-2", "d3"}
	d := doclist.Build(keys)
	raw := d.MarshalBinary()

	loaded, err := doclist.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, len(keys), loaded.Len())
	for i, k := range keys {
		got, err := loaded.PrimaryKey(uint32(i))
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
}

func TestPrimaryKeyOutOfRange(t *testing.T) {
	d := doclist.Build([]string{"only-one"})
	raw := d.MarshalBinary()
	loaded, err := doclist.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	_, err = loaded.PrimaryKey(5)
	require.Error(t, err)
}

// TestMarshalBinaryLayoutMatchesSpec pins the on-disk byte order to
// spec.md §6: the key blob first, then the offset array, then a trailing
// document count - not the reverse.
func TestMarshalBinaryLayoutMatchesSpec(t *testing.T) {
	d := doclist.Build([]string{"ab", "c"})
	raw := d.MarshalBinary()

	wantKeys := []byte("ab\x00c\x00")
	require.Equal(t, wantKeys, raw[:len(wantKeys)])

	offsetsStart := len(wantKeys)
	require.EqualValues(t, 0, binary.LittleEndian.Uint64(raw[offsetsStart:]))
	require.EqualValues(t, 3, binary.LittleEndian.Uint64(raw[offsetsStart+8:]))

	countStart := len(raw) - 8
	require.EqualValues(t, 2, binary.LittleEndian.Uint64(raw[countStart:]))
}

func TestEmptyDocList(t *testing.T) {
	d := doclist.Build(nil)
	raw := d.MarshalBinary()
	loaded, err := doclist.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Len())
}
