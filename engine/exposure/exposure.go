// Package exposure measures scene luminance with a log-luminance histogram and
// adapts a persistent average towards it over time.
package exposure

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// HistogramBins is the number of luminance bins, one per work-group invocation.
	HistogramBins = 256

	// BlackLuminance is the luminance below which a pixel lands in bin 0.
	BlackLuminance = 0.005

	// DefaultAdaptedLuminance seeds the adapted value before the first frame.
	DefaultAdaptedLuminance = 1.0
)

// ColorToBin maps an HDR color to its histogram bin. Luminance below
// BlackLuminance selects bin 0; everything else is spread linearly in log2
// space over bins 1 to 255.
//
// Parameters:
//   - rgb: linear HDR color
//   - minLogLuminance: log2 luminance mapped to bin 1
//   - invLogLuminanceRange: 1 / (maxLog - minLog)
//
// Returns:
//   - uint32: the bin in [0, 255]
func ColorToBin(rgb mgl32.Vec3, minLogLuminance, invLogLuminanceRange float32) uint32 {
	lum := common.Luminance(rgb)
	if !(lum >= BlackLuminance) {
		return 0
	}
	logLum := common.Saturate((math32.Log2(lum) - minLogLuminance) * invLogLuminanceRange)
	return uint32(logLum*254 + 1)
}

// Histogram is the global 256-bin luminance histogram shared by the build and
// reduce passes. Bins are updated atomically.
type Histogram struct {
	bins [HistogramBins]atomic.Uint32
}

// NewHistogram returns a zeroed histogram.
func NewHistogram() *Histogram {
	return &Histogram{}
}

// Add atomically adds n to bin i.
func (h *Histogram) Add(i int, n uint32) {
	h.bins[i].Add(n)
}

// Bin returns the count of bin i.
func (h *Histogram) Bin(i int) uint32 {
	return h.bins[i].Load()
}

// Reset zeroes every bin.
func (h *Histogram) Reset() {
	for i := range h.bins {
		h.bins[i].Store(0)
	}
}

// Snapshot copies the current counts.
func (h *Histogram) Snapshot() [HistogramBins]uint32 {
	var out [HistogramBins]uint32
	for i := range h.bins {
		out[i] = h.bins[i].Load()
	}
	return out
}

// Total returns the number of pixels binned since the last reset.
func (h *Histogram) Total() uint64 {
	var n uint64
	for i := range h.bins {
		n += uint64(h.bins[i].Load())
	}
	return n
}

// AdaptedLuminance is the one value carried from frame to frame: the eye's
// current notion of the scene's average luminance.
type AdaptedLuminance struct {
	mu    sync.Mutex
	value float32
}

// NewAdaptedLuminance creates the persistent value.
//
// Parameters:
//   - initial: starting luminance, DefaultAdaptedLuminance when not positive
//
// Returns:
//   - *AdaptedLuminance: the state
func NewAdaptedLuminance(initial float32) *AdaptedLuminance {
	if !(initial > 0) {
		initial = DefaultAdaptedLuminance
	}
	return &AdaptedLuminance{value: initial}
}

// Load returns the current adapted luminance.
func (a *AdaptedLuminance) Load() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Store replaces the adapted luminance.
func (a *AdaptedLuminance) Store(v float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = v
}

// update applies the exponential step under one lock so the read of the previous
// value and the write of the new one cannot interleave with another writer.
func (a *AdaptedLuminance) update(measured, timeCoefficient float32) (prev, next float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev = a.value
	a.value = prev + (measured-prev)*timeCoefficient
	return prev, a.value
}

// TimeCoefficient converts a frame time into the adaptation step, the fraction
// of the gap between adapted and measured luminance closed this frame.
//
// Parameters:
//   - dt: frame time in seconds
//   - speed: auto_exposure_speed_factor, larger adapts faster
//
// Returns:
//   - float32: coefficient in [0, 1]
func TimeCoefficient(dt, speed float32) float32 {
	return common.Saturate(1 - math32.Exp(-dt*speed))
}
