package tonemap

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitExposure makes MiddleGray * adapted equal 1, so the curve sees scene values directly.
const unitExposure = 1.0 / MiddleGray

func TestCurveAnchors(t *testing.T) {
	for _, white := range []float32{2, DefaultWhitePoint, 16} {
		l := NewLottes(white)
		assert.InDelta(t, MidOut, l.Curve(MidIn), 1e-5)
		assert.InDelta(t, 1, l.Curve(white), 1e-5)
		assert.Zero(t, l.Curve(0))
	}
	assert.Equal(t, float32(DefaultWhitePoint), NewLottes(0).HDRMax)
}

func TestCurveCoefficientsForDefaultWhite(t *testing.T) {
	l := NewLottes(DefaultWhitePoint)
	assert.InDelta(t, 1.046, l.B, 1e-3)
	assert.InDelta(t, 0.1693, l.C, 1e-3)
}

func TestMapIsMonotonic(t *testing.T) {
	l := NewLottes(DefaultWhitePoint)
	hues := []mgl32.Vec3{
		{1, 1, 1},
		{1, 0.5, 0.25},
		{0.1, 0.2, 1},
		{0, 1, 0},
	}
	for _, hue := range hues {
		prev := float32(-1)
		for e := float32(-14); e <= 10; e += 0.05 {
			out := l.Map(hue.Mul(math32.Exp2(e)), 1)
			for _, c := range out {
				assert.GreaterOrEqual(t, c, float32(0))
				assert.LessOrEqual(t, c, float32(1))
			}
			lum := common.Luminance(out)
			assert.GreaterOrEqual(t, lum, prev-1e-6, "hue %v at 2^%f", hue, e)
			prev = lum
		}
	}
}

func TestWhitePointMapsToFullBrightness(t *testing.T) {
	l := NewLottes(DefaultWhitePoint)
	out := l.Map(mgl32.Vec3{DefaultWhitePoint, DefaultWhitePoint, DefaultWhitePoint}, unitExposure)
	for _, c := range out {
		assert.InDelta(t, 1, c, 1e-4)
	}

	below := l.Map(mgl32.Vec3{0.9 * DefaultWhitePoint, 0.9 * DefaultWhitePoint, 0.9 * DefaultWhitePoint}, unitExposure)
	assert.Less(t, below[0], out[0], "the shoulder has not clipped before L_white")
}

func TestMiddleGrayGammaEncoded(t *testing.T) {
	out := NewLottes(DefaultWhitePoint).Map(mgl32.Vec3{MidIn, MidIn, MidIn}, unitExposure)
	assert.InDelta(t, math.Pow(MidOut, 1/Gamma), out[1], 1e-4)
}

func TestMapGuardsBadInput(t *testing.T) {
	l := NewLottes(DefaultWhitePoint)
	assert.Equal(t, mgl32.Vec3{}, l.Map(mgl32.Vec3{}, 1))
	assert.Equal(t, mgl32.Vec3{}, l.Map(mgl32.Vec3{-1, -2, -3}, 1))
	out := l.Map(mgl32.Vec3{1, 1, 1}, 0)
	assert.False(t, math.IsNaN(float64(out[0])))
}

func TestPassRun(t *testing.T) {
	hdr := common.NewImage(19, 7)
	for i := range hdr.Pix {
		v := float32(i) * 0.05
		hdr.Pix[i] = mgl32.Vec4{v, v * 0.5, v * 0.25, 1}
	}
	out := common.NewImage(19, 7)
	p := NewPass(WithDispatcher(dispatch.NewDispatcher(2)))
	require.NoError(t, p.Run(context.Background(), hdr, 0.2, out))

	curve := p.Curve()
	for _, i := range []int{0, 18, 19*7 - 1} {
		assert.Equal(t, curve.Map(hdr.Pix[i].Vec3(), 0.2).Vec4(1), out.Pix[i])
	}

	assert.ErrorIs(t, p.Run(context.Background(), hdr, 1, common.NewImage(1, 1)), common.ErrSizeMismatch)
}

func TestSetWhitePoint(t *testing.T) {
	p := NewPass(WithWhitePoint(8))
	assert.Equal(t, float32(8), p.Curve().HDRMax)
	p.SetWhitePoint(2)
	assert.InDelta(t, 1, p.Curve().Curve(2), 1e-5)
}

func TestGPUParamsMarshal(t *testing.T) {
	g := NewLottes(DefaultWhitePoint).GPUParams()
	buf := g.Marshal()
	require.Len(t, buf, GPUParamsSize)
	assert.Equal(t, float32(DefaultWhitePoint), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.InDelta(t, 1/2.22, math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])), 1e-7)
}
