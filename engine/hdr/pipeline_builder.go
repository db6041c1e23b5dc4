package hdr

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

type PipelineBuilderOption func(*pipeline)

// WithSize sets the frame size in pixels.
//
// Parameters:
//   - width: frame width
//   - height: frame height
//
// Returns:
//   - PipelineBuilderOption: a function that applies the size option
func WithSize(width, height int) PipelineBuilderOption {
	return func(p *pipeline) {
		if width > 0 && height > 0 {
			p.width, p.height = width, height
		}
	}
}

// WithConfig takes the graphics tunables, worker count and window size from cfg.
//
// Parameters:
//   - cfg: a validated configuration
//
// Returns:
//   - PipelineBuilderOption: a function that applies the config option
func WithConfig(cfg *config.Config) PipelineBuilderOption {
	return func(p *pipeline) {
		p.graphics = cfg.Graphics
		p.workers = cfg.Performance.Workers
		p.width, p.height = cfg.Window.Width, cfg.Window.Height
	}
}

// WithDispatcher shares a dispatcher with other users instead of creating one.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - PipelineBuilderOption: a function that applies the dispatcher option
func WithDispatcher(d dispatch.Dispatcher) PipelineBuilderOption {
	return func(p *pipeline) {
		p.dispatcher = d
	}
}

// WithLogger sets the logger handed to every pass.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - PipelineBuilderOption: a function that applies the logger option
func WithLogger(logger zerolog.Logger) PipelineBuilderOption {
	return func(p *pipeline) {
		p.logger = logger
	}
}
