package bloom

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPass(options ...PassBuilderOption) Pass {
	return NewPass(append([]PassBuilderOption{WithDispatcher(dispatch.NewDispatcher(3))}, options...)...)
}

func scratch(src *common.Image) (*common.Image, *common.Image) {
	return common.NewImage(src.Width, src.Height), common.NewImage(src.Width, src.Height)
}

func TestKernelIsNormalized(t *testing.T) {
	sum := Weights[0]
	for _, w := range Weights[1:] {
		sum += 2 * w
	}
	assert.InDelta(t, 1, sum, 1e-5)
}

func TestBlurKeepsUniformPlane(t *testing.T) {
	src := common.NewImage(21, 13)
	src.Fill(mgl32.Vec4{2, 3, 4, 1})
	ping, pong := scratch(src)

	out, err := newPass().Blur(context.Background(), src, ping, pong)
	require.NoError(t, err)
	assert.Same(t, pong, out)
	for _, p := range out.Pix {
		assert.InDelta(t, 2, p[0], 1e-4)
		assert.InDelta(t, 4, p[2], 1e-4)
	}
	assert.Equal(t, mgl32.Vec4{2, 3, 4, 1}, src.Pix[0], "source untouched")
}

func TestBlurSpreadsImpulseSymmetrically(t *testing.T) {
	src := common.NewImage(41, 41)
	src.Set(20, 20, mgl32.Vec4{1, 1, 1, 1})
	ping, pong := scratch(src)

	out, err := newPass(WithBlurPasses(1)).Blur(context.Background(), src, ping, pong)
	require.NoError(t, err)

	center := out.At(20, 20)[0]
	assert.InDelta(t, Weights[0]*Weights[0], center, 1e-6)
	assert.InDelta(t, Weights[1]*Weights[0], out.At(21, 20)[0], 1e-6)
	assert.Equal(t, out.At(21, 20), out.At(19, 20))
	assert.Equal(t, out.At(20, 23), out.At(20, 17))
	assert.Zero(t, out.At(25, 20)[0], "outside the 9-tap footprint")

	var total float32
	for _, p := range out.Pix {
		total += p[0]
	}
	assert.InDelta(t, 1, total, 1e-4, "energy is preserved away from the borders")

	out2, err := newPass().Blur(context.Background(), src, ping, pong)
	require.NoError(t, err)
	assert.Less(t, out2.At(20, 20)[0], center, "a second iteration widens the blur")
	assert.Greater(t, out2.At(25, 20)[0], float32(0))
}

func TestBlurWithoutPassesReturnsSource(t *testing.T) {
	src := common.NewImage(4, 4)
	ping, pong := scratch(src)
	out, err := newPass(WithBlurPasses(0)).Blur(context.Background(), src, ping, pong)
	require.NoError(t, err)
	assert.Same(t, src, out)

	p := newPass()
	p.SetPasses(-3)
	out, err = p.Blur(context.Background(), src, ping, pong)
	require.NoError(t, err)
	assert.Same(t, src, out)
}

func TestCompositeIsUnclampedWeightedSum(t *testing.T) {
	scene := common.NewImage(3, 2)
	scene.Fill(mgl32.Vec4{4, 0.5, 0, 1})
	blurred := common.NewImage(3, 2)
	blurred.Fill(mgl32.Vec4{2, 1, 8, 1})
	out := common.NewImage(3, 2)

	require.NoError(t, Composite(scene, blurred, 0.5, 2, out))
	assert.Equal(t, mgl32.Vec4{6, 2.25, 16, 1}, out.Pix[5])

	p := newPass(WithFactors(0.5, 2))
	sf, bf := p.Factors()
	assert.Equal(t, float32(0.5), sf)
	assert.Equal(t, float32(2), bf)

	// out may alias the scene plane
	require.NoError(t, p.Composite(context.Background(), scene, blurred, scene))
	assert.Equal(t, out.Pix, scene.Pix)
}

func TestDefaultFactorsAddBloom(t *testing.T) {
	scene := common.NewImage(1, 1)
	scene.Fill(mgl32.Vec4{1, 1, 1, 1})
	blurred := common.NewImage(1, 1)
	blurred.Fill(mgl32.Vec4{0.25, 0.5, 0.75, 1})

	p := newPass()
	require.NoError(t, p.Composite(context.Background(), scene, blurred, scene))
	assert.Equal(t, mgl32.Vec4{1.25, 1.5, 1.75, 1}, scene.Pix[0])

	p.SetFactors(0, 1)
	require.NoError(t, p.Composite(context.Background(), scene, blurred, scene))
	assert.Equal(t, mgl32.Vec4{0.25, 0.5, 0.75, 1}, scene.Pix[0])
}

func TestSizeMismatch(t *testing.T) {
	a, b := common.NewImage(2, 2), common.NewImage(2, 3)
	assert.ErrorIs(t, Composite(a, b, 1, 1, a), common.ErrSizeMismatch)
	_, err := newPass().Blur(context.Background(), a, b, a)
	assert.ErrorIs(t, err, common.ErrSizeMismatch)
	assert.ErrorIs(t, newPass().Composite(context.Background(), a, a, b), common.ErrSizeMismatch)
}
