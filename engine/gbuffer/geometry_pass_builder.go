package gbuffer

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

type GeometryPassBuilderOption func(*geometryPass)

// WithDispatcher runs the pass on a shared dispatcher instead of a private one.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - GeometryPassBuilderOption: a function that applies the dispatcher option
func WithDispatcher(d dispatch.Dispatcher) GeometryPassBuilderOption {
	return func(p *geometryPass) {
		p.dispatcher = d
	}
}

// WithBackFaceCulling toggles culling of clockwise triangles.
//
// Parameters:
//   - enabled: false rasterizes both faces
//
// Returns:
//   - GeometryPassBuilderOption: a function that applies the culling option
func WithBackFaceCulling(enabled bool) GeometryPassBuilderOption {
	return func(p *geometryPass) {
		p.cullBackFaces = enabled
	}
}

// WithLogger sets the logger used for per-frame debug output.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - GeometryPassBuilderOption: a function that applies the logger option
func WithLogger(logger zerolog.Logger) GeometryPassBuilderOption {
	return func(p *geometryPass) {
		p.logger = logger
	}
}
