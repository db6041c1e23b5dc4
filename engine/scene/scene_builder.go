package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/rs/zerolog"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithObjects adds initial objects to the scene in order.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj != nil {
				s.addLocked(obj)
			}
		}
	}
}

// WithLights adds initial lights to the scene in order.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if l != nil {
				s.lights = append(s.lights, l)
			}
		}
	}
}

// WithMaxLights limits how many lights are packed per frame.
//
// Parameters:
//   - n: slot budget, clamped to [1, light.MaxLights]
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaxLights(n int) SceneBuilderOption {
	return func(s *scene) {
		s.maxLights = max(1, min(n, light.MaxLights))
	}
}

// WithMaxBatchSize caps the instance count of a single draw batch.
//
// Parameters:
//   - n: maximum instances per batch, minimum 1
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaxBatchSize(n int) SceneBuilderOption {
	return func(s *scene) {
		s.maxBatchSize = max(1, n)
	}
}

// WithCullingDisabled turns off frustum culling in Batches.
//
// Parameters:
//   - disabled: true to draw every enabled object
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}

// WithLogger sets the logger used for scene warnings.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) SceneBuilderOption {
	return func(s *scene) {
		s.logger = logger
	}
}
