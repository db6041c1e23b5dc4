package game_object

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a function that configures a gameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithEnabled sets whether the object is initially drawn.
//
// Parameters:
//   - enabled: true to draw the object
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled option
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithModel sets the mesh drawn for the object.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the model option
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mdl = m
	}
}

// WithMaterial sets the surface description for the object.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the material option
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mat = m
	}
}

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the scale option
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation about each axis
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation option
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = mgl32.Vec3{rx, ry, rz}
	}
}

// WithSpin sets a constant angular velocity applied by Update, in radians per second.
//
// Parameters:
//   - rx, ry, rz: angular velocity about each axis
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the spin option
func WithSpin(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.spin = mgl32.Vec3{rx, ry, rz}
	}
}
