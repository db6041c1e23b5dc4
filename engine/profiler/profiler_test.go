package profiler

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestProfiler(clock *fakeClock, options ...ProfilerOption) *Profiler {
	p := NewProfiler(options...)
	p.now = clock.now
	p.lastTime = clock.t
	return p
}

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var out bytes.Buffer
	p := newTestProfiler(clock,
		WithLogger(zerolog.New(&out)),
		WithInterval(time.Second),
		WithLuminanceSource(func() (float32, error) { return 0.42, nil }),
	)

	for range 49 {
		clock.t = clock.t.Add(20 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.t = clock.t.Add(20 * time.Millisecond)
	require.True(t, p.Tick())

	s := p.Last()
	assert.InDelta(t, 50, s.FPS, 1e-9)
	assert.Equal(t, 20*time.Millisecond, s.FrameTime)
	assert.Equal(t, float32(0.42), s.Adapted)
	assert.Contains(t, out.String(), `"adapted_luminance":0.42`)
	assert.Contains(t, out.String(), `"message":"frame stats"`)

	clock.t = clock.t.Add(20 * time.Millisecond)
	assert.False(t, p.Tick(), "a new interval starts after each report")
}

func TestLuminanceErrorIsLogged(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var out bytes.Buffer
	p := newTestProfiler(clock,
		WithLogger(zerolog.New(&out)),
		WithInterval(time.Millisecond),
		WithLuminanceSource(func() (float32, error) { return 0, errors.New("device lost") }),
	)
	clock.t = clock.t.Add(time.Second)
	require.True(t, p.Tick())
	assert.Zero(t, p.Last().Adapted)
	assert.Contains(t, out.String(), "device lost")
}

func TestIntervalDefault(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.interval)
}
