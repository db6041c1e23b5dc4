package dispatch

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCounts(t *testing.T) {
	tests := []struct {
		w, h, x, y int
	}{
		{16, 16, 1, 1},
		{17, 16, 2, 1},
		{1920, 1080, 120, 68},
		{1, 1, 1, 1},
		{0, 10, 0, 0},
	}
	for _, tt := range tests {
		x, y := GroupCounts(tt.w, tt.h)
		assert.Equal(t, tt.x, x, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.y, y, "%dx%d", tt.w, tt.h)
	}
}

func TestDispatchVisitsEveryGroupOnce(t *testing.T) {
	d := NewDispatcher(4)
	const gx, gy = 7, 5
	var visits [gx * gy]atomic.Int32

	require.NoError(t, d.Dispatch(context.Background(), gx, gy, func(x, y int) {
		visits[y*gx+x].Add(1)
	}))
	for i := range visits {
		assert.Equal(t, int32(1), visits[i].Load(), "group %d", i)
	}

	// the pool is reusable across dispatches
	var n atomic.Int32
	require.NoError(t, d.Dispatch(context.Background(), 1000, 1, func(int, int) { n.Add(1) }))
	assert.Equal(t, int32(1000), n.Load())
}

func TestDispatchCancelled(t *testing.T) {
	d := NewDispatcher(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var n atomic.Int32
	err := d.Dispatch(ctx, 100, 100, func(int, int) { n.Add(1) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n.Load())
}
