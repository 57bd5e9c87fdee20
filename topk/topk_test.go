package topk_test

import (
	"testing"

	"github.com/jass-ir/jass/topk"
	"github.com/stretchr/testify/require"
)

func TestOfferGrowsThenReplacesMin(t *testing.T) {
	h := topk.New(3) // K+1 with K=2
	h.Offer(topk.Entry{Doc: 1, Score: 8})
	h.Offer(topk.Entry{Doc: 3, Score: 12})
	h.Offer(topk.Entry{Doc: 7, Score: 4})
	require.True(t, h.Full())

	min, ok := h.Min()
	require.True(t, ok)
	require.Equal(t, uint16(4), min.Score)

	h.Offer(topk.Entry{Doc: 5, Score: 12})
	min, ok = h.Min()
	require.True(t, ok)
	require.Equal(t, uint16(8), min.Score)
}

func TestTopKTieBreakAscendingDocID(t *testing.T) {
	h := topk.New(4)
	h.Offer(topk.Entry{Doc: 1, Score: 8})
	h.Offer(topk.Entry{Doc: 3, Score: 12})
	h.Offer(topk.Entry{Doc: 5, Score: 12})
	h.Offer(topk.Entry{Doc: 7, Score: 4})

	top := h.TopK(3)
	require.Equal(t, []topk.Entry{
		{Doc: 3, Score: 12},
		{Doc: 5, Score: 12},
		{Doc: 1, Score: 8},
	}, top)
}

func TestUpdateExistingEntry(t *testing.T) {
	h := topk.New(2)
	h.Offer(topk.Entry{Doc: 1, Score: 2})
	h.Offer(topk.Entry{Doc: 2, Score: 5})
	h.Offer(topk.Entry{Doc: 1, Score: 50})

	top := h.TopK(2)
	require.Equal(t, uint16(50), top[0].Score)
	require.Equal(t, uint32(1), top[0].Doc)
}
