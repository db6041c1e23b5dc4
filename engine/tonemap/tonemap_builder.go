package tonemap

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

type PassBuilderOption func(*pass)

// WithWhitePoint sets L_white, the scene value that maps to full brightness.
//
// Parameters:
//   - whitePoint: L_white
//
// Returns:
//   - PassBuilderOption: a function that applies the white point option
func WithWhitePoint(whitePoint float32) PassBuilderOption {
	return func(p *pass) {
		p.curve = NewLottes(whitePoint)
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
