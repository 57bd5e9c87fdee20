package codec_test

import (
	"sort"
	"testing"

	"github.com/jass-ir/jass/codec"
	"github.com/stretchr/testify/require"
)

var fixtures = [][]uint32{
	{1, 1, 1, 793, 1, 1, 1, 1, 2, 1, 5, 3, 2, 1, 5, 63},
	{0},
	{0, 0, 0, 0},
	{17},
	{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	{1 << 27, 1, 2, 1 << 20, 3},
}

func TestRoundTripAllCodecs(t *testing.T) {
	tags := codec.Tags()
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	for _, tag := range tags {
		c, err := codec.ByTag(tag)
		require.NoError(t, err)
		t.Run(c.Name(), func(t *testing.T) {
			for _, fixture := range fixtures {
				encoded, err := c.Encode(nil, fixture)
				require.NoError(t, err)

				got := make([]uint32, len(fixture))
				n, err := c.Decode(encoded, len(fixture), got)
				require.NoError(t, err)
				require.LessOrEqual(t, n, len(encoded))
				require.Equal(t, fixture, got)
			}
		})
	}
}

func TestUnknownTag(t *testing.T) {
	_, err := codec.ByTag('?')
	require.Error(t, err)
}
