package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Rec.709 luminance weights shared by every pass that measures brightness.
const (
	LumaR float32 = 0.2126
	LumaG float32 = 0.7152
	LumaB float32 = 0.0722
)

// Luminance returns the Rec.709 relative luminance of a linear RGB color.
func Luminance(c mgl32.Vec3) float32 {
	return c[0]*LumaR + c[1]*LumaG + c[2]*LumaB
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// Saturate clamps v to [0, 1].
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Smoothstep is the Hermite interpolation used by shading languages.
// Returns 0 for x <= edge0, 1 for x >= edge1, and a smooth ramp in between.
// An empty interval degrades to a hard step at edge0.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// MulVec3 multiplies two vectors component-wise.
func MulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
