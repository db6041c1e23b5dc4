package light

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source. The numeric values are part of
// the GPU light record and must not be reordered.
type LightType uint32

const (
	// LightTypeAmbient contributes a constant ambient color to every lit pixel.
	// It has no position, direction, specular term or attenuation.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. No distance attenuation.
	LightTypeDirectional

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with 1 / (constant + linear*d + quadratic*d^2).
	LightTypePoint

	// LightTypeSpot represents a point light restricted to a cone around its direction.
	// The cone is described by the cosine of its half-angle and a falloff exponent.
	LightTypeSpot
)

// String returns the lower-case name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu        sync.RWMutex
	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	ambient   mgl32.Vec3
	color     mgl32.Vec3
	constant  float32
	linear    float32
	quadratic float32
	cutoff    float32 // cosine of the spot half-angle
	exponent  float32
	enabled   bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities packed into a fixed-capacity Block each frame.
// All light types share this interface; properties that do not apply to a light's
// type are stored and uploaded but ignored by the evaluation for that type.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position. Used by point and spot lights.
	//
	// Returns:
	//   - mgl32.Vec3: position as (x, y, z)
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels in.
	// Used by directional and spot lights.
	//
	// Returns:
	//   - mgl32.Vec3: normalized direction
	Direction() mgl32.Vec3

	// Ambient returns the ambient color added to scattered light.
	//
	// Returns:
	//   - mgl32.Vec3: ambient color as (r, g, b)
	Ambient() mgl32.Vec3

	// Color returns the RGB radiance of the light before the 1/pi upload scale.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Attenuation returns the constant, linear and quadratic distance coefficients.
	//
	// Returns:
	//   - float32: constant term
	//   - float32: linear term
	//   - float32: quadratic term
	Attenuation() (float32, float32, float32)

	// SpotCone returns the cutoff cosine and falloff exponent of a spot light.
	//
	// Returns:
	//   - float32: cosine of the cone half-angle
	//   - float32: falloff exponent
	SpotCone() (float32, float32)

	// Enabled returns whether the light takes a slot in the light block.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// ShaderLight converts the light into its GPU record.
	// The color is divided by pi so that a Lambertian surface lit head-on
	// reflects exactly the configured color.
	//
	// Returns:
	//   - ShaderLight: the 64-byte record
	ShaderLight() ShaderLight

	// SetPosition moves the light.
	//
	// Parameters:
	//   - position: world-space position
	SetPosition(position mgl32.Vec3)

	// SetDirection re-aims the light. The direction is normalized.
	//
	// Parameters:
	//   - direction: the new direction
	SetDirection(direction mgl32.Vec3)

	// SetColor changes the light color.
	//
	// Parameters:
	//   - color: RGB radiance
	SetColor(color mgl32.Vec3)

	// SetEnabled toggles the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the given type with the provided options.
// Defaults: white color, no ambient, direction straight down, attenuation (1, 0, 0),
// spot half-angle 30 degrees with exponent 1, enabled.
//
// Parameters:
//   - lightType: the kind of light source
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the newly created light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		constant:  1,
		cutoff:    cosDeg(30),
		exponent:  1,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.direction
}

func (l *lightImpl) Ambient() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ambient
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) Attenuation() (float32, float32, float32) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.constant, l.linear, l.quadratic
}

func (l *lightImpl) SpotCone() (float32, float32) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cutoff, l.exponent
}

func (l *lightImpl) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

func (l *lightImpl) ShaderLight() ShaderLight {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return ShaderLight{
		Position:  l.position,
		Type:      l.lightType,
		Direction: l.direction,
		Constant:  l.constant,
		Ambient:   l.ambient,
		Linear:    l.linear,
		Color:     l.color.Mul(1 / math32.Pi),
		Quadratic: l.quadratic,
		Cutoff:    l.cutoff,
		Exponent:  l.exponent,
	}
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = position
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = normalize(direction)
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// AttenuationForRange derives attenuation coefficients that fall to 1/cutoff at
// the given range, split evenly between the linear and quadratic terms.
//
// Parameters:
//   - lightRange: distance at which the light is considered spent
//   - cutoff: the inverse attenuation reached at lightRange (config attenuation_cutoff)
//
// Returns:
//   - float32: constant term (always 1)
//   - float32: linear term
//   - float32: quadratic term
func AttenuationForRange(lightRange, cutoff float32) (float32, float32, float32) {
	if lightRange <= 0 || cutoff <= 1 {
		return 1, 0, 0
	}
	k := (cutoff - 1) / 2
	return 1, k / lightRange, k / (lightRange * lightRange)
}

// normalize returns v scaled to unit length, or v unchanged if it has no length.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

// cosDeg returns the cosine of an angle given in degrees.
func cosDeg(deg float32) float32 {
	return math32.Cos(mgl32.DegToRad(deg))
}
