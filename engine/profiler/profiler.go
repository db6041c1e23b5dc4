// Package profiler reports frame pacing, heap usage and eye adaptation at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Stats is one reporting interval.
type Stats struct {
	FPS       float64
	FrameTime time.Duration // mean frame time over the interval
	Adapted   float32       // adapted luminance at the end of the interval, 0 without a source
	HeapMB    float64
	GCCount   uint32
	MaxPause  time.Duration // longest GC pause since the previous report
}

// Profiler counts frames and logs Stats once per interval.
type Profiler struct {
	logger   zerolog.Logger
	interval time.Duration
	adapted  func() (float32, error)
	now      func() time.Time

	frameCount  int
	lastTime    time.Time
	memStats    runtime.MemStats
	lastGCCount uint32
	last        Stats
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithLogger sets the destination of the periodic report.
func WithLogger(logger zerolog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithInterval sets how often stats are reported. Non-positive values keep the 1 second default.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLuminanceSource sets the function queried for the adapted luminance on every report.
func WithLuminanceSource(source func() (float32, error)) ProfilerOption {
	return func(p *Profiler) {
		p.adapted = source
	}
}

// NewProfiler creates a Profiler reporting once per second to a disabled logger.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the profiler, its interval starting now
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:   zerolog.Nop(),
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per presented frame. When the interval has elapsed
// it gathers Stats, logs them at info level and starts a new interval.
//
// Returns:
//   - bool: true if stats were reported this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.interval {
		return false
	}

	s := Stats{
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		FrameTime: elapsed / time.Duration(p.frameCount),
	}
	if p.adapted != nil {
		if v, err := p.adapted(); err == nil {
			s.Adapted = v
		} else {
			p.logger.Warn().Err(err).Msg("adapted luminance unavailable")
		}
	}

	runtime.ReadMemStats(&p.memStats)
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.GCCount = p.memStats.NumGC
	// PauseNs is a ring of the last 256 pauses
	start := p.lastGCCount
	if s.GCCount-start > 256 {
		start = s.GCCount - 256
	}
	for i := start; i < s.GCCount; i++ {
		s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
	}

	p.logger.Info().
		Float64("fps", s.FPS).
		Dur("frame_time", s.FrameTime).
		Float32("adapted_luminance", s.Adapted).
		Float64("heap_mb", s.HeapMB).
		Uint32("gc", s.GCCount).
		Dur("gc_max_pause", s.MaxPause).
		Msg("frame stats")

	p.frameCount = 0
	p.lastTime = current
	p.lastGCCount = s.GCCount
	p.last = s
	return true
}

// Last returns the most recently reported Stats.
func (p *Profiler) Last() Stats {
	return p.last
}
