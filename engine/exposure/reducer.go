package exposure

import (
	"github.com/chewxy/math32"
	"github.com/rs/zerolog"
)

// Result reports one reduction.
type Result struct {
	// WeightedLogAverage is the mean bin index minus one, in [-1, 254].
	WeightedLogAverage float32

	// Measured is this frame's average luminance.
	Measured float32

	// Previous is the adapted luminance before this frame.
	Previous float32

	// Adapted is the adapted luminance after this frame.
	Adapted float32
}

// Reducer collapses a histogram into an average luminance and steps the adapted
// luminance towards it.
type Reducer interface {
	// Reduce consumes hist, zeroing it for the next frame, and updates adapted.
	//
	// Parameters:
	//   - hist: the histogram filled by the builder
	//   - params: log-luminance window, time coefficient and pixel count
	//   - adapted: the persistent adapted luminance
	//
	// Returns:
	//   - Result: the measured and adapted values
	Reduce(hist *Histogram, params AverageParams, adapted *AdaptedLuminance) Result
}

type reducer struct {
	logger zerolog.Logger
}

var _ Reducer = &reducer{}

// NewReducer creates a histogram reducer.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Reducer: the reducer
func NewReducer(options ...ReducerBuilderOption) Reducer {
	r := &reducer{logger: zerolog.Nop()}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Reduce runs a single work-group of HistogramBins invocations. Each loop below
// is one phase; the end of a loop is the barrier.
func (r *reducer) Reduce(hist *Histogram, params AverageParams, adapted *AdaptedLuminance) Result {
	// 64-bit partial sums; the GPU shader keeps u32, which holds bin*count for
	// frames of up to 16.8 million pixels.
	var shared [HistogramBins]uint64
	for i := range HistogramBins {
		shared[i] = uint64(i) * uint64(hist.bins[i].Swap(0))
	}

	for cutoff := HistogramBins / 2; cutoff > 0; cutoff >>= 1 {
		for i := range cutoff {
			shared[i] += shared[i+cutoff]
		}
	}

	// Invocation 0 only.
	wla := float32(float64(shared[0])/float64(max(params.PixelCount, 1))) - 1
	measured := math32.Exp2((wla/254)*params.LogLuminanceRange + params.MinLogLuminance)
	prev, next := adapted.update(measured, params.TimeCoefficient)

	res := Result{
		WeightedLogAverage: wla,
		Measured:           measured,
		Previous:           prev,
		Adapted:            next,
	}
	r.logger.Debug().
		Float32("measured", measured).
		Float32("adapted", next).
		Msg("luminance reduced")
	return res
}
