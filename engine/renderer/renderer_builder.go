package renderer

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/rs/zerolog"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer requests the fallback adapter instead of a hardware GPU.
// A software Vulkan driver such as lavapipe or SwiftShader must be installed.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithSize sets the frame size. A windowed renderer takes the window's framebuffer size instead.
//
// Parameters:
//   - width: frame width in pixels
//   - height: frame height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = width, height
	}
}

// WithGraphics sets the exposure, tone curve and bloom tunables.
//
// Parameters:
//   - g: the graphics configuration
//
// Returns:
//   - RendererBuilderOption: a function that applies the graphics option to a renderer
func WithGraphics(g config.GraphicsConfig) RendererBuilderOption {
	return func(r *renderer) {
		r.graphics = g
	}
}

// WithLogger sets the renderer's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger zerolog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}
