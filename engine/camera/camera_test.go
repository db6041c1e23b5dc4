package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraProjectsTargetToCenter(t *testing.T) {
	c := NewCamera(WithPosition(0, 2, 6), WithTarget(0, 0, 0), WithAspect(16.0/9.0))
	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip[3])
	assert.InDelta(t, 0, ndc[0], 1e-5)
	assert.InDelta(t, 0, ndc[1], 1e-5)
	assert.True(t, ndc[2] > 0 && ndc[2] < 1)
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	c := NewCamera(WithPosition(0, 1, 4))
	before := c.Position().Sub(c.Target()).Len()
	c.Orbit(mgl32.DegToRad(90))
	p := c.Position()
	assert.InDelta(t, before, p.Sub(c.Target()).Len(), 1e-5)
	assert.InDelta(t, 1, p[1], 1e-5)
	assert.InDelta(t, 4, p[0], 1e-4)
}

func TestCameraUniformAndFrustum(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3))
	u := c.Uniform()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, u.Position)
	assert.Len(t, u.Marshal(), GPUCameraUniformSize)

	f := c.Frustum()
	assert.True(t, f.ContainsSphere(mgl32.Vec3{}, 0.1))
	assert.False(t, f.ContainsSphere(mgl32.Vec3{10, 20, 30}, 0.1))
}

func TestCameraIgnoresInvalidAspect(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
}
