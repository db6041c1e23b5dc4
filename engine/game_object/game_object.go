package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	mu sync.RWMutex

	id       uint64
	enabled  atomic.Bool
	mdl      model.Model
	mat      material.Material
	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
	spin     mgl32.Vec3
}

// GameObject is one placed instance of a model drawn with a material.
// Objects sharing the same model and material are batched into one instanced draw.
type GameObject interface {
	// ID returns the object's unique identifier, assigned by the scene.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the mesh drawn for this object.
	//
	// Returns:
	//   - model.Model: the model or nil
	Model() model.Model

	// Material returns the surface description for this object.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Position returns the world-space translation.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the Euler rotation in radians (pitch, yaw, roll).
	//
	// Returns:
	//   - mgl32.Vec3: the rotation
	Rotation() mgl32.Vec3

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// ModelMatrix returns the model-to-world transform.
	//
	// Returns:
	//   - mgl32.Mat4: translation * rotation * scale
	ModelMatrix() mgl32.Mat4

	// WorldBounds returns the world-space bounding sphere of the object.
	//
	// Returns:
	//   - mgl32.Vec3: sphere center
	//   - float32: sphere radius
	WorldBounds() (mgl32.Vec3, float32)

	// Update advances the rotation by the spin rate.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	SetID(id uint64)
	SetEnabled(enabled bool)
	SetPosition(position mgl32.Vec3)
	SetRotation(rotation mgl32.Vec3)
	SetScale(scale mgl32.Vec3)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject with the given options.
// Defaults: enabled, unit scale, no rotation.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{scale: mgl32.Vec3{1, 1, 1}}
	g.enabled.Store(true)
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Material() material.Material {
	return g.mat
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return common.BuildModelMatrix(g.position, g.rotation, g.scale)
}

func (g *gameObject) WorldBounds() (mgl32.Vec3, float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.mdl == nil {
		return g.position, 0
	}
	s := max(abs(g.scale[0]), abs(g.scale[1]), abs(g.scale[2]))
	return g.position, g.mdl.BoundingRadius() * s
}

func (g *gameObject) Update(dt float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = g.rotation.Add(g.spin.Mul(dt))
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(position mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = position
}

func (g *gameObject) SetRotation(rotation mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = rotation
}

func (g *gameObject) SetScale(scale mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = scale
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
