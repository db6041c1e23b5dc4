package renderer

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/bloom"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/exposure"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/lighting"
	"github.com/Carmen-Shannon/oxy-hdr/engine/tonemap"
	"github.com/go-gl/mathgl/mgl32"
)

// frameParams holds every per-frame uniform of the compute passes.
type frameParams struct {
	lighting  lighting.GPUParams
	histogram exposure.HistogramParams
	average   exposure.AverageParams
	bloom     bloom.GPUBloomParams
	tonemap   tonemap.GPUParams
}

func newFrameParams(g config.GraphicsConfig, cameraPos mgl32.Vec3, width, height int, dt float32) frameParams {
	return frameParams{
		lighting: lighting.NewGPUParams(
			light.ParseSpotPolicy(g.SpotPolicy),
			mgl32.Vec2{g.MinBloomThreshold, g.MaxBloomThreshold},
			cameraPos,
		),
		histogram: exposure.NewHistogramParams(g.MinLogLuminance, g.MaxLogLuminance, width, height),
		average: exposure.NewAverageParams(
			g.MinLogLuminance,
			g.MaxLogLuminance,
			exposure.TimeCoefficient(dt, g.AutoExposureSpeed),
			width,
			height,
		),
		bloom:   bloom.GPUBloomParams{SceneFactor: g.SceneFactor, BloomFactor: g.BloomFactor},
		tonemap: tonemap.NewLottes(g.WhitePoint).GPUParams(),
	}
}

// Blur bind groups: bright to ping along x, ping to pong along y, pong to ping along x.
const (
	blurFirstHorizontal = iota
	blurVertical
	blurHorizontal
	blurGroupCount
)

// blurSchedule lists the blur bind groups dispatched for the given number of
// horizontal and vertical pass pairs. The result always ends in pong.
func blurSchedule(passes int) []int {
	if passes <= 0 {
		return nil
	}
	out := make([]int, 0, passes*2)
	out = append(out, blurFirstHorizontal, blurVertical)
	for range passes - 1 {
		out = append(out, blurHorizontal, blurVertical)
	}
	return out
}

// instanceCapacity rounds an instance count up to the next power of two, at least 16.
func instanceCapacity(n int) int {
	c := 16
	for c < n {
		c <<= 1
	}
	return c
}
