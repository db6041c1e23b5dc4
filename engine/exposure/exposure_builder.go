package exposure

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

type HistogramBuilderOption func(*histogramBuilder)

// WithDispatcher runs the histogram build on a shared dispatcher.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - HistogramBuilderOption: a function that applies the dispatcher option
func WithDispatcher(d dispatch.Dispatcher) HistogramBuilderOption {
	return func(b *histogramBuilder) {
		b.dispatcher = d
	}
}

// WithBuilderLogger sets the histogram builder's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - HistogramBuilderOption: a function that applies the logger option
func WithBuilderLogger(logger zerolog.Logger) HistogramBuilderOption {
	return func(b *histogramBuilder) {
		b.logger = logger
	}
}

type ReducerBuilderOption func(*reducer)

// WithReducerLogger sets the reducer's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ReducerBuilderOption: a function that applies the logger option
func WithReducerLogger(logger zerolog.Logger) ReducerBuilderOption {
	return func(r *reducer) {
		r.logger = logger
	}
}
