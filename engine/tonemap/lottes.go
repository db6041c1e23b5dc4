// Package tonemap compresses HDR radiance into display range with the Lottes
// filmic curve and encodes it with a 1/2.22 gamma.
package tonemap

import (
	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Contrast is the toe power a of the curve.
	Contrast = 1.6

	// Shoulder is the shoulder power d of the curve.
	Shoulder = 0.977

	// MidIn is the scene value that maps to MidOut.
	MidIn = 0.18

	// MidOut is the display value of middle gray.
	MidOut = 0.267

	// Crosstalk controls how fast bright colors desaturate towards white.
	Crosstalk = 4.0

	// Saturation scales the color ratio before crosstalk.
	Saturation = 1.0

	// CrossSaturation is the power the ratio is re-expanded with after crosstalk.
	CrossSaturation = 2.0

	// DefaultWhitePoint is the default L_white, the scene value that maps to 1.
	DefaultWhitePoint = 4.9

	// MiddleGray maps adapted luminance to the value normalized to 1 before the
	// curve. It is the EV100 saturation-based maximum luminance, 1.2 * 2^ev100
	// with ev100 = log2(avg * 100 / 12.5), in relative units.
	MiddleGray = 9.6

	// Gamma is the display encoding exponent.
	Gamma = 2.22

	peakEpsilon = 1e-4
)

// Lottes is the filmic curve x^a / (x^(a*d) * b + c) with b and c solved so
// that MidIn maps to MidOut and HDRMax maps to 1.
type Lottes struct {
	A      float32
	D      float32
	HDRMax float32
	B      float32
	C      float32
}

// NewLottes solves the curve for a white point.
//
// Parameters:
//   - whitePoint: L_white, DefaultWhitePoint when not above MidIn
//
// Returns:
//   - Lottes: the solved curve
func NewLottes(whitePoint float32) Lottes {
	if !(whitePoint > MidIn) {
		whitePoint = DefaultWhitePoint
	}
	a, d := float32(Contrast), float32(Shoulder)
	ad := a * d
	maxA, maxAD := math32.Pow(whitePoint, a), math32.Pow(whitePoint, ad)
	midA, midAD := math32.Pow(MidIn, a), math32.Pow(MidIn, ad)
	denom := (maxAD - midAD) * MidOut

	return Lottes{
		A:      a,
		D:      d,
		HDRMax: whitePoint,
		B:      (-midA + maxA*MidOut) / denom,
		C:      (maxAD*midA - maxA*midAD*MidOut) / denom,
	}
}

// Curve evaluates the tone curve for a non-negative scene value.
func (l Lottes) Curve(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	return math32.Pow(x, l.A) / (math32.Pow(x, l.A*l.D)*l.B + l.C)
}

// Map tone-maps one HDR color to gamma-encoded display values.
//
// Parameters:
//   - hdr: linear scene radiance
//   - adapted: adapted average luminance
//
// Returns:
//   - mgl32.Vec3: display color in [0, 1]
func (l Lottes) Map(hdr mgl32.Vec3, adapted float32) mgl32.Vec3 {
	exposed := hdr.Mul(1 / (MiddleGray * math32.Max(adapted, peakEpsilon)))
	for i := range exposed {
		if !(exposed[i] > 0) {
			exposed[i] = 0
		}
	}

	peak := math32.Max(exposed[0], math32.Max(exposed[1], exposed[2]))
	ratio := exposed.Mul(1 / math32.Max(peak, peakEpsilon))
	mapped := l.Curve(peak)

	white := common.Saturate(math32.Pow(mapped, Crosstalk))
	var out mgl32.Vec3
	for i := range out {
		r := math32.Pow(ratio[i], Saturation/CrossSaturation)
		r += (1 - r) * white
		r = math32.Pow(r, CrossSaturation)
		out[i] = math32.Pow(common.Saturate(r*mapped), 1/Gamma)
	}
	return out
}
