package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection is an option builder that sets the direction the light travels in.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize(mgl32.Vec3{x, y, z})
	}
}

// WithColor is an option builder that sets the RGB radiance of the light.
//
// Parameters:
//   - r: red component
//   - g: green component
//   - b: blue component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithAmbient is an option builder that sets the ambient color the light adds to scattered light.
//
// Parameters:
//   - r: red component
//   - g: green component
//   - b: blue component
//
// Returns:
//   - LightBuilderOption: a function that applies the ambient option to a lightImpl
func WithAmbient(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = mgl32.Vec3{r, g, b}
	}
}

// WithAttenuation is an option builder that sets the distance attenuation coefficients.
//
// Parameters:
//   - constant: constant term
//   - linear: linear term
//   - quadratic: quadratic term
//
// Returns:
//   - LightBuilderOption: a function that applies the attenuation option to a lightImpl
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.constant, l.linear, l.quadratic = constant, linear, quadratic
	}
}

// WithRange is an option builder that derives attenuation from a range, see AttenuationForRange.
//
// Parameters:
//   - lightRange: distance at which the light is considered spent
//   - cutoff: inverse attenuation reached at the range
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange, cutoff float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.constant, l.linear, l.quadratic = AttenuationForRange(lightRange, cutoff)
	}
}

// WithSpotCone is an option builder that sets the spot cone half-angle and falloff exponent.
//
// Parameters:
//   - halfAngleDeg: cone half-angle in degrees
//   - exponent: falloff exponent applied to the spot-axis cosine
//
// Returns:
//   - LightBuilderOption: a function that applies the spot cone option to a lightImpl
func WithSpotCone(halfAngleDeg, exponent float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.cutoff = cosDeg(halfAngleDeg)
		l.exponent = exponent
	}
}

// WithEnabled is an option builder that sets whether the light is initially enabled.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
