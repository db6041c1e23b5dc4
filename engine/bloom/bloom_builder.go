package bloom

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

type PassBuilderOption func(*pass)

// WithFactors sets the scene and bloom weights of the composite.
//
// Parameters:
//   - sceneFactor: weight of the scene
//   - bloomFactor: weight of the bloom
//
// Returns:
//   - PassBuilderOption: a function that applies the factors option
func WithFactors(sceneFactor, bloomFactor float32) PassBuilderOption {
	return func(p *pass) {
		p.sceneFactor = sceneFactor
		p.bloomFactor = bloomFactor
	}
}

// WithBlurPasses sets the number of ping-pong blur iterations.
//
// Parameters:
//   - passes: iterations, 0 disables the blur
//
// Returns:
//   - PassBuilderOption: a function that applies the blur passes option
func WithBlurPasses(passes int) PassBuilderOption {
	return func(p *pass) {
		p.passes = max(passes, 0)
	}
}

// WithDispatcher runs the pass on a shared dispatcher.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - PassBuilderOption: a function that applies the dispatcher option
func WithDispatcher(d dispatch.Dispatcher) PassBuilderOption {
	return func(p *pass) {
		p.dispatcher = d
	}
}

// WithLogger sets the logger used for per-frame debug output.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - PassBuilderOption: a function that applies the logger option
func WithLogger(logger zerolog.Logger) PassBuilderOption {
	return func(p *pass) {
		p.logger = logger
	}
}
