package lighting

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

type PassBuilderOption func(*pass)

// WithThreshold sets the luminance edges of the bright-pass smoothstep.
//
// Parameters:
//   - minLum: luminance where bloom starts
//   - maxLum: luminance where bloom is at full strength
//
// Returns:
//   - PassBuilderOption: a function that applies the threshold option
func WithThreshold(minLum, maxLum float32) PassBuilderOption {
	return func(p *pass) {
		p.threshold = mgl32.Vec2{minLum, maxLum}
	}
}

// WithSpotPolicy selects the spot cone test.
//
// Parameters:
//   - policy: the spot policy
//
// Returns:
//   - PassBuilderOption: a function that applies the spot policy option
func WithSpotPolicy(policy light.SpotPolicy) PassBuilderOption {
	return func(p *pass) {
		p.policy = policy
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
