package gbuffer

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(name string, c mgl32.Vec4) material.Material {
	return material.NewMaterial(
		material.WithName(name),
		material.WithDiffuseFactor(c),
		material.WithSpecular(mgl32.Vec3{0.5, 0.5, 0.5}, 16),
	)
}

func quadBatch(mat material.Material, z float32) scene.DrawBatch {
	return scene.DrawBatch{
		Model:     model.NewQuad("quad", 2),
		Material:  mat,
		Instances: []model.GPUInstance{model.NewGPUInstance(mgl32.Translate3D(0, 0, z))},
	}
}

func newPass(options ...GeometryPassBuilderOption) GeometryPass {
	return NewGeometryPass(append([]GeometryPassBuilderOption{WithDispatcher(dispatch.NewDispatcher(4))}, options...)...)
}

func countCovered(gb *GBuffer) int {
	n := 0
	for y := 0; y < gb.Height(); y++ {
		for x := 0; x < gb.Width(); x++ {
			if gb.Covered(x, y) {
				n++
			}
		}
	}
	return n
}

func TestClearResetsPlanes(t *testing.T) {
	gb := NewGBuffer(4, 3)
	gb.Diffuse.Set(1, 1, mgl32.Vec4{1, 1, 1, 1})
	gb.Depth[5] = 0.25
	require.True(t, gb.Covered(1, 1))

	gb.Clear()
	assert.False(t, gb.Covered(1, 1))
	assert.Equal(t, float32(1), gb.Depth[5])
	assert.Equal(t, 4, gb.Width())
	assert.Equal(t, 3, gb.Height())
}

func TestDrawQuadWritesAttributes(t *testing.T) {
	gb := NewGBuffer(64, 64)
	cam := camera.NewCamera()
	red := solid("red", mgl32.Vec4{1, 0, 0, 1})

	require.NoError(t, newPass().Draw(context.Background(), gb, cam, []scene.DrawBatch{quadBatch(red, 0)}))

	require.True(t, gb.Covered(32, 32))
	assert.False(t, gb.Covered(0, 0))

	pos := gb.Position.At(32, 32)
	assert.InDelta(t, 0, pos[0], 0.05)
	assert.InDelta(t, 0, pos[1], 0.05)
	assert.InDelta(t, 0, pos[2], 1e-4)
	assert.Equal(t, float32(1), pos[3])

	n := gb.Normal.At(32, 32)
	assert.InDelta(t, 1, n[2], 1e-5)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, gb.Diffuse.At(32, 32))
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0.5, 16}, gb.SpecShininess.At(32, 32))
	assert.Less(t, gb.Depth[32*64+32], float32(1))
}

func TestDrawQuadCoverageHasNoSeams(t *testing.T) {
	// The quad's edges project to x,y in [16.55, 47.45], which holds the
	// centers of pixels 17..46 on both axes.
	gb := NewGBuffer(64, 64)
	red := solid("red", mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, newPass().Draw(context.Background(), gb, camera.NewCamera(), []scene.DrawBatch{quadBatch(red, 0)}))

	assert.Equal(t, 30*30, countCovered(gb))
	assert.True(t, gb.Covered(17, 17))
	assert.True(t, gb.Covered(46, 46))
	assert.False(t, gb.Covered(16, 32))
	assert.False(t, gb.Covered(47, 32))
}

func TestDepthTestKeepsNearestRegardlessOfOrder(t *testing.T) {
	red := solid("red", mgl32.Vec4{1, 0, 0, 1})
	green := solid("green", mgl32.Vec4{0, 1, 0, 1})

	orders := [][]scene.DrawBatch{
		{quadBatch(red, 0), quadBatch(green, 1)},
		{quadBatch(green, 1), quadBatch(red, 0)},
	}
	for _, batches := range orders {
		gb := NewGBuffer(32, 32)
		require.NoError(t, newPass().Draw(context.Background(), gb, camera.NewCamera(), batches))
		assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, gb.Diffuse.At(16, 16))
		assert.InDelta(t, 1, gb.Position.At(16, 16)[2], 1e-4)
	}
}

func TestBackFacesAreCulled(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(0, 0, -5))
	red := solid("red", mgl32.Vec4{1, 0, 0, 1})

	gb := NewGBuffer(32, 32)
	require.NoError(t, newPass().Draw(context.Background(), gb, cam, []scene.DrawBatch{quadBatch(red, 0)}))
	assert.Zero(t, countCovered(gb))

	require.NoError(t, newPass(WithBackFaceCulling(false)).Draw(context.Background(), gb, cam, []scene.DrawBatch{quadBatch(red, 0)}))
	assert.True(t, gb.Covered(16, 16))
}

func TestGroundPlaneCrossingNearPlaneIsClipped(t *testing.T) {
	// Most of the plane lies behind the camera, so every triangle needs clipping.
	cam := camera.NewCamera(camera.WithPosition(0, 1, 0), camera.WithTarget(0, 1, -10))
	ground := scene.DrawBatch{
		Model:     model.NewPlane("ground", 100, 1),
		Material:  solid("ground", mgl32.Vec4{0.5, 0.5, 0.5, 1}),
		Instances: []model.GPUInstance{model.NewGPUInstance(mgl32.Ident4())},
	}

	gb := NewGBuffer(64, 64)
	require.NoError(t, newPass().Draw(context.Background(), gb, cam, []scene.DrawBatch{ground}))

	require.True(t, gb.Covered(32, 63), "ground below the horizon")
	assert.False(t, gb.Covered(32, 0), "sky above the horizon")
	assert.InDelta(t, 1, gb.Normal.At(32, 63)[1], 1e-5)
	assert.InDelta(t, 0, gb.Position.At(32, 63)[1], 1e-4)
}

func TestDrawKeepsUncoveredPixels(t *testing.T) {
	gb := NewGBuffer(16, 16)
	marker := mgl32.Vec4{0.1, 0.2, 0.3, 1}
	gb.Diffuse.Set(0, 0, marker)

	require.NoError(t, newPass().Draw(context.Background(), gb, camera.NewCamera(), nil))
	assert.Equal(t, marker, gb.Diffuse.At(0, 0))
}

func TestDrawCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gb := NewGBuffer(16, 16)
	err := newPass().Draw(ctx, gb, camera.NewCamera(), []scene.DrawBatch{quadBatch(solid("red", mgl32.Vec4{1, 0, 0, 1}), 0)})
	assert.ErrorIs(t, err, context.Canceled)
}
