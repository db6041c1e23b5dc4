package lighting

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eye = mgl32.Vec3{0, 10, 0}

// floor returns a G-buffer whose every pixel is a white, upward-facing surface at
// the origin with specular strength 1 and shininess 32.
func floor(w, h int) *gbuffer.GBuffer {
	gb := gbuffer.NewGBuffer(w, h)
	gb.Position.Fill(mgl32.Vec4{0, 0, 0, 1})
	gb.Normal.Fill(mgl32.Vec4{0, 1, 0, 0})
	gb.Diffuse.Fill(mgl32.Vec4{1, 1, 1, 1})
	gb.SpecShininess.Fill(mgl32.Vec4{1, 1, 1, 32})
	return gb
}

func sun() light.ShaderLight {
	return light.ShaderLight{
		Type:      light.LightTypeDirectional,
		Direction: mgl32.Vec3{0, -1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
	}
}

func run(t *testing.T, p Pass, gb *gbuffer.GBuffer, block *light.Block) (*common.Image, *common.Image) {
	t.Helper()
	hdr := common.NewImage(gb.Width(), gb.Height())
	bright := common.NewImage(gb.Width(), gb.Height())
	require.NoError(t, p.Run(context.Background(), gb, block, eye, hdr, bright))
	return hdr, bright
}

func newPass(options ...PassBuilderOption) Pass {
	return NewPass(append([]PassBuilderOption{WithDispatcher(dispatch.NewDispatcher(3))}, options...)...)
}

func TestEmptyLightmaskIsBlack(t *testing.T) {
	var block light.Block
	block.Set(0, sun())
	block.Lights[1] = light.ShaderLight{Type: light.LightTypeAmbient, Ambient: mgl32.Vec3{1, 1, 1}}
	block.Mask = 0

	hdr, bright := run(t, newPass(), floor(17, 9), &block)
	for i := range hdr.Pix {
		assert.Equal(t, mgl32.Vec3{}, hdr.Pix[i].Vec3())
		assert.Equal(t, mgl32.Vec3{}, bright.Pix[i].Vec3())
	}
}

func TestDirectionalHeadOnScenario(t *testing.T) {
	var block light.Block
	block.Set(0, sun())

	scattered, reflected := Accumulate(&block, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0}, 32, light.SpotPolicyCosine)
	assert.InDelta(t, 1, scattered[0], 1e-6)
	assert.InDelta(t, 5, reflected[0], 1e-5, "(32+8)/8 * 1^32")

	hdr, bright := run(t, newPass(), floor(20, 20), &block)
	for _, i := range []int{0, 19, 399} {
		assert.InDelta(t, 6, hdr.Pix[i][0], 1e-5)
		assert.InDelta(t, 6, hdr.Pix[i][2], 1e-5)
		assert.InDelta(t, 24, bright.Pix[i][1], 1e-4, "luminance 6 is past the threshold")
	}
}

func TestUncoveredPixelsAreBlack(t *testing.T) {
	var block light.Block
	block.Set(0, sun())
	gb := floor(4, 4)
	gb.Diffuse.Set(2, 1, mgl32.Vec4{1, 1, 1, 0})

	hdr, _ := run(t, newPass(), gb, &block)
	assert.Equal(t, mgl32.Vec3{}, hdr.At(2, 1).Vec3())
	assert.NotEqual(t, mgl32.Vec3{}, hdr.At(1, 1).Vec3())
}

func TestAmbientOnlyLight(t *testing.T) {
	var block light.Block
	block.Set(3, light.ShaderLight{Type: light.LightTypeAmbient, Ambient: mgl32.Vec3{0.1, 0.2, 0.3}})
	gb := floor(2, 2)
	gb.Diffuse.Fill(mgl32.Vec4{0.5, 0.5, 0.5, 1})

	hdr, bright := run(t, newPass(), gb, &block)
	got := hdr.At(0, 0)
	assert.InDelta(t, 0.05, got[0], 1e-6)
	assert.InDelta(t, 0.15, got[2], 1e-6)
	assert.Less(t, bright.At(0, 0)[0], got[0]*BrightScale)
}

func TestPointLightAttenuates(t *testing.T) {
	var block light.Block
	block.Set(0, light.ShaderLight{
		Type:     light.LightTypePoint,
		Position: mgl32.Vec3{0, 2, 0},
		Color:    mgl32.Vec3{1, 1, 1},
		Constant: 1, Linear: 0.5, Quadratic: 0.25,
	})
	gb := floor(1, 1)
	gb.SpecShininess.Fill(mgl32.Vec4{0, 0, 0, 32})

	hdr, _ := run(t, newPass(), gb, &block)
	assert.InDelta(t, 1.0/3.0, hdr.Pix[0][0], 1e-5)
}

func TestSpotOutsideConeContributesNothing(t *testing.T) {
	var block light.Block
	block.Set(0, light.ShaderLight{
		Type:      light.LightTypeSpot,
		Position:  mgl32.Vec3{0, 2, 0},
		Direction: mgl32.Vec3{1, 0, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Constant:  1,
		Cutoff:    0.9,
		Exponent:  1,
	})
	hdr, _ := run(t, newPass(), floor(2, 2), &block)
	assert.Equal(t, mgl32.Vec3{}, hdr.Pix[0].Vec3())
}

func TestThresholdControlsBrightPass(t *testing.T) {
	var block light.Block
	block.Set(0, sun())

	p := newPass(WithThreshold(100, 200))
	assert.Equal(t, mgl32.Vec2{100, 200}, p.Threshold())
	_, bright := run(t, p, floor(2, 2), &block)
	assert.Equal(t, mgl32.Vec3{}, bright.Pix[0].Vec3())

	p.SetThreshold(mgl32.Vec2{0, 1.2})
	_, bright = run(t, p, floor(2, 2), &block)
	assert.InDelta(t, 24, bright.Pix[0][0], 1e-4)
}

func TestRunRejectsMismatchedPlanes(t *testing.T) {
	var block light.Block
	err := newPass().Run(context.Background(), floor(4, 4), &block, eye, common.NewImage(4, 4), common.NewImage(3, 4))
	assert.ErrorIs(t, err, common.ErrSizeMismatch)
}
