package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/exposure"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/tonemap"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlurSchedule(t *testing.T) {
	assert.Nil(t, blurSchedule(0))
	assert.Nil(t, blurSchedule(-3))
	assert.Equal(t, []int{blurFirstHorizontal, blurVertical}, blurSchedule(1))
	assert.Equal(t, []int{0, 1, 2, 1}, blurSchedule(2))

	s := blurSchedule(5)
	require.Len(t, s, 10)
	// every pass pair ends with the vertical blur into pong
	for i := 1; i < len(s); i += 2 {
		assert.Equal(t, blurVertical, s[i])
	}
	assert.Equal(t, blurFirstHorizontal, s[0])
}

func TestInstanceCapacity(t *testing.T) {
	cases := map[int]int{0: 16, 1: 16, 16: 16, 17: 32, 100: 128, 1024: 1024, 1025: 2048}
	for n, want := range cases {
		assert.Equal(t, want, instanceCapacity(n), "n=%d", n)
	}
}

func TestAlignedRowPitch(t *testing.T) {
	assert.Equal(t, 256, alignedRowPitch(1, 4))
	assert.Equal(t, 256, alignedRowPitch(64, 4))
	assert.Equal(t, 512, alignedRowPitch(65, 4))
	assert.Equal(t, 5120, alignedRowPitch(1280, 4))
}

func TestUnpadRows(t *testing.T) {
	const w, h = 3, 2
	pitch := alignedRowPitch(w, 4)
	padded := make([]byte, pitch*h)
	for y := range h {
		for i := range w * 4 {
			padded[y*pitch+i] = byte(y*100 + i)
		}
	}
	out := unpadRows(padded, w, h, 4)
	require.Len(t, out, w*h*4)
	assert.Equal(t, byte(0), out[0])
	assert.Equal(t, byte(11), out[11])
	assert.Equal(t, byte(100), out[12])
	assert.Equal(t, byte(111), out[23])

	tight := make([]byte, 64*4*2+8)
	assert.Len(t, unpadRows(tight, 64, 2, 4), 64*4*2)
}

func TestPickSurfaceFormat(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, pickSurfaceFormat(nil))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm,
		pickSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm}))
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb,
		pickSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb}))
}

func TestNewFrameParams(t *testing.T) {
	g := config.Default().Graphics
	g.SpotPolicy = "legacy"
	eye := mgl32.Vec3{1, 2, 3}

	p := newFrameParams(g, eye, 640, 480, 0.016)

	assert.Equal(t, eye, p.lighting.CameraPosition)
	assert.Equal(t, light.SpotPolicyLegacy, p.lighting.SpotPolicy)
	assert.Equal(t, mgl32.Vec2{g.MinBloomThreshold, g.MaxBloomThreshold}, p.lighting.Threshold)

	assert.Equal(t, uint32(640), p.histogram.Width)
	assert.Equal(t, uint32(480), p.histogram.Height)
	assert.InDelta(t, 1/(g.MaxLogLuminance-g.MinLogLuminance), p.histogram.InvLogLuminanceRange, 1e-6)

	assert.Equal(t, uint32(640*480), p.average.PixelCount)
	assert.InDelta(t, exposure.TimeCoefficient(0.016, g.AutoExposureSpeed), p.average.TimeCoefficient, 1e-6)

	assert.Equal(t, g.SceneFactor, p.bloom.SceneFactor)
	assert.Equal(t, g.BloomFactor, p.bloom.BloomFactor)
	assert.Equal(t, tonemap.NewLottes(g.WhitePoint).GPUParams(), p.tonemap)
}

func TestNewFrameParamsStalledClock(t *testing.T) {
	p := newFrameParams(config.Default().Graphics, mgl32.Vec3{}, 8, 8, 0)
	assert.Zero(t, p.average.TimeCoefficient)
}
