package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	up     = mgl32.Vec3{0, 1, 0}
	origin = mgl32.Vec3{}
)

func TestDirectionalHeadOn(t *testing.T) {
	l := ShaderLight{Type: LightTypeDirectional, Direction: mgl32.Vec3{0, -1, 0}}
	c := Evaluate(&l, origin, up, up, SpotPolicyCosine)

	assert.InDelta(t, 1, c.Diffuse, 1e-6)
	assert.InDelta(t, 1, c.Specular, 1e-6)
	assert.Equal(t, float32(1), c.Attenuation)
}

func TestDirectionalFromBehindIsDark(t *testing.T) {
	l := ShaderLight{Type: LightTypeDirectional, Direction: mgl32.Vec3{0, 1, 0}}
	c := Evaluate(&l, origin, up, up, SpotPolicyCosine)
	assert.Zero(t, c.Diffuse)
}

func TestPointAttenuation(t *testing.T) {
	l := ShaderLight{
		Type:      LightTypePoint,
		Position:  mgl32.Vec3{0, 2, 0},
		Constant:  1,
		Linear:    0.5,
		Quadratic: 0.25,
	}
	c := Evaluate(&l, origin, up, up, SpotPolicyCosine)

	// 1 / (1 + 0.5*2 + 0.25*4)
	assert.InDelta(t, 1.0/3.0, c.Attenuation, 1e-6)
	assert.InDelta(t, 1, c.Diffuse, 1e-6)
}

func TestPointZeroCoefficientsStayFinite(t *testing.T) {
	l := ShaderLight{Type: LightTypePoint, Position: mgl32.Vec3{0, 1, 0}}
	c := Evaluate(&l, origin, up, up, SpotPolicyCosine)
	assert.False(t, math.IsInf(float64(c.Attenuation), 0))
}

func TestAmbientHasNoDirectTerms(t *testing.T) {
	l := ShaderLight{Type: LightTypeAmbient, Ambient: mgl32.Vec3{0.2, 0.2, 0.2}, Constant: 1}
	assert.Equal(t, Contribution{}, Evaluate(&l, origin, up, up, SpotPolicyCosine))
}

// The cosine policy is the conventional cone test; the legacy policy reproduces
// the older exponent-vs-cutoff comparison. Both are pinned here.
func TestSpotPolicies(t *testing.T) {
	spot := func(exponent float32) ShaderLight {
		return ShaderLight{
			Type:      LightTypeSpot,
			Position:  mgl32.Vec3{0, 2, 0},
			Direction: mgl32.Vec3{0, -1, 0},
			Constant:  1,
			Cutoff:    cosDeg(20),
			Exponent:  exponent,
		}
	}
	inside := origin
	outside := mgl32.Vec3{3, 0, 0}

	t.Run("cosine inside cone", func(t *testing.T) {
		l := spot(2)
		c := Evaluate(&l, inside, up, up, SpotPolicyCosine)
		assert.InDelta(t, 1, c.Attenuation, 1e-6)
		assert.InDelta(t, 1, c.Specular, 1e-6)
	})
	t.Run("cosine outside cone", func(t *testing.T) {
		l := spot(2)
		assert.Equal(t, Contribution{}, Evaluate(&l, outside, up, up, SpotPolicyCosine))
	})
	t.Run("cosine falloff inside cone", func(t *testing.T) {
		l := spot(8)
		edge := mgl32.Vec3{0.5, 0, 0}
		c := Evaluate(&l, edge, up, up, SpotPolicyCosine)
		cosAxis := 2 / mgl32.Vec3{0.5, 2, 0}.Len()
		assert.InDelta(t, math.Pow(float64(cosAxis), 8), c.Attenuation, 1e-5)
	})
	t.Run("legacy zeroes specular when exponent below cutoff", func(t *testing.T) {
		l := spot(0.5) // 0.5 < cos(20deg)
		c := Evaluate(&l, inside, up, up, SpotPolicyLegacy)
		assert.Zero(t, c.Specular)
		assert.InDelta(t, 1, c.Diffuse, 1e-6)
	})
	t.Run("legacy ignores the cone", func(t *testing.T) {
		l := spot(2)
		c := Evaluate(&l, outside, up, mgl32.Vec3{1, 1, 0}.Normalize(), SpotPolicyLegacy)
		assert.Greater(t, c.Diffuse, float32(0))
	})
}

func TestShaderLightMarshalLayout(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithPosition(1, 2, 3),
		WithDirection(0, 0, -2),
		WithColor(math.Pi, 0, 0),
		WithAmbient(0.1, 0.2, 0.3),
		WithAttenuation(1, 0.5, 0.25),
		WithSpotCone(60, 4),
	)
	rec := l.ShaderLight()
	buf := rec.Marshal()
	require.Len(t, buf, ShaderLightSize)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, uint32(LightTypeSpot), binary.LittleEndian.Uint32(buf[12:]))
	assert.InDelta(t, -1, f(24), 1e-6)
	assert.Equal(t, float32(1), f(28))
	assert.InDelta(t, 0.3, f(40), 1e-6)
	assert.Equal(t, float32(0.5), f(44))
	assert.InDelta(t, 1, f(48), 1e-6, "color is divided by pi")
	assert.Equal(t, float32(0.25), f(60))
	assert.InDelta(t, 0.5, f(64), 1e-6)
	assert.Equal(t, float32(4), f(68))
}

func TestPackRespectsEnabledAndLimit(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeAmbient),
		NewLight(LightTypePoint, WithEnabled(false)),
		NewLight(LightTypeDirectional),
		NewLight(LightTypePoint),
	}
	b, dropped := Pack(lights, 2)

	assert.Equal(t, 2, b.Count())
	assert.Equal(t, 1, dropped)
	assert.Equal(t, uint32(0b11), b.Mask)
	assert.Equal(t, LightTypeDirectional, b.Lights[1].Type)

	buf := b.Marshal()
	require.Len(t, buf, BlockSize)
	assert.Equal(t, uint32(0b11), binary.LittleEndian.Uint32(buf[MaxLights*ShaderLightSize:]))
}

func TestBlockSetIgnoresOutOfRange(t *testing.T) {
	var b Block
	b.Set(MaxLights, ShaderLight{Type: LightTypePoint})
	b.Set(-1, ShaderLight{Type: LightTypePoint})
	assert.Zero(t, b.Mask)
	assert.False(t, b.Active(40))
}

func TestAttenuationForRange(t *testing.T) {
	c, l, q := AttenuationForRange(10, 51.2)
	d := float32(10)
	assert.InDelta(t, 1/51.2, 1/(c+l*d+q*d*d), 1e-6)

	c, l, q = AttenuationForRange(0, 51.2)
	assert.Equal(t, [3]float32{1, 0, 0}, [3]float32{c, l, q})
}
