package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SpotPolicy selects how a spot light decides whether a pixel is inside its cone.
type SpotPolicy int

const (
	// SpotPolicyCosine compares the spot-axis cosine against the cutoff cosine.
	// Pixels outside the cone receive nothing; pixels inside are scaled by
	// cosAxis^exponent.
	SpotPolicyCosine SpotPolicy = iota

	// SpotPolicyLegacy zeroes the specular term whenever exponent < cutoff,
	// regardless of where the pixel lies. Kept to compare against older content.
	SpotPolicyLegacy
)

// ParseSpotPolicy maps a config value to a SpotPolicy. Unknown names select the cosine test.
func ParseSpotPolicy(name string) SpotPolicy {
	if name == "legacy" {
		return SpotPolicyLegacy
	}
	return SpotPolicyCosine
}

// minAttenuationDenominator keeps 1/(c + l*d + q*d^2) finite for zeroed coefficients.
const minAttenuationDenominator = 1e-4

// Contribution is the per-light result consumed by the lighting accumulation.
type Contribution struct {
	// Specular is the Blinn half-vector cosine, before the shininess power.
	Specular float32

	// Diffuse is the Lambert cosine max(0, n.l).
	Diffuse float32

	// Attenuation is the distance (and cone) falloff, 1 for directional lights.
	Attenuation float32
}

// Evaluate computes the (specular, diffuse, attenuation) triple of one light at a
// surface point. Fields that do not apply to the light's type are ignored.
//
// Parameters:
//   - l: the light record
//   - position: world-space surface position
//   - normal: unit world-space surface normal
//   - view: unit vector from the surface towards the camera
//   - policy: spot cone test
//
// Returns:
//   - Contribution: the triple; all zero for ambient lights
func Evaluate(l *ShaderLight, position, normal, view mgl32.Vec3, policy SpotPolicy) Contribution {
	switch l.Type {
	case LightTypeDirectional:
		toLight := l.Direction.Mul(-1)
		if toLight.Len() == 0 {
			return Contribution{}
		}
		toLight = toLight.Normalize()
		return Contribution{
			Specular:    blinn(normal, toLight, view),
			Diffuse:     math32.Max(0, normal.Dot(toLight)),
			Attenuation: 1,
		}

	case LightTypePoint, LightTypeSpot:
		delta := l.Position.Sub(position)
		d := delta.Len()
		if d == 0 {
			return Contribution{}
		}
		toLight := delta.Mul(1 / d)
		c := Contribution{
			Specular:    blinn(normal, toLight, view),
			Diffuse:     math32.Max(0, normal.Dot(toLight)),
			Attenuation: 1 / math32.Max(l.Constant+l.Linear*d+l.Quadratic*d*d, minAttenuationDenominator),
		}
		if l.Type == LightTypeSpot {
			applySpot(&c, l, toLight, policy)
		}
		return c

	default:
		return Contribution{}
	}
}

// applySpot restricts a point-light contribution to the spot cone.
func applySpot(c *Contribution, l *ShaderLight, toLight mgl32.Vec3, policy SpotPolicy) {
	axis := l.Direction
	if axis.Len() == 0 {
		*c = Contribution{}
		return
	}
	cosAxis := toLight.Mul(-1).Dot(axis.Normalize())

	switch policy {
	case SpotPolicyLegacy:
		if l.Exponent < l.Cutoff {
			c.Specular = 0
			return
		}
		c.Specular *= math32.Pow(math32.Max(cosAxis, 0), l.Exponent)
	default:
		if cosAxis < l.Cutoff {
			*c = Contribution{}
			return
		}
		c.Attenuation *= math32.Pow(cosAxis, l.Exponent)
	}
}

// blinn returns max(0, n.h) for the half vector between the light and view directions.
func blinn(normal, toLight, view mgl32.Vec3) float32 {
	h := toLight.Add(view)
	if h.Len() == 0 {
		return 0
	}
	return math32.Max(0, normal.Dot(h.Normalize()))
}

// NormalizationTerm is the energy-conserving Blinn-Phong factor (s+8)/8.
func NormalizationTerm(shininess float32) float32 {
	return (shininess + 8) / 8
}
