package hdr

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene(lights ...light.Light) scene.Scene {
	cam := camera.NewCamera(camera.WithPosition(0, 3, 6), camera.WithAspect(4.0/3.0))
	white := material.NewMaterial(material.WithName("white"))
	red := material.NewMaterial(material.WithName("red"), material.WithDiffuseFactor(mgl32.Vec4{1, 0.1, 0.1, 1}))
	return scene.NewScene("test", cam,
		scene.WithObjects(
			game_object.NewGameObject(game_object.WithModel(model.NewPlane("ground", 20, 4)), game_object.WithMaterial(white)),
			game_object.NewGameObject(game_object.WithModel(model.NewCube("cube", 1)), game_object.WithMaterial(red), game_object.WithPosition(0, 0.5, 0)),
		),
		scene.WithLights(lights...),
	)
}

func sunAndSky() []light.Light {
	return []light.Light{
		light.NewLight(light.LightTypeDirectional, light.WithDirection(-0.3, -1, -0.4), light.WithColor(6, 6, 6)),
		light.NewLight(light.LightTypeAmbient, light.WithAmbient(0.05, 0.05, 0.05)),
	}
}

func newPipeline(options ...PipelineBuilderOption) Pipeline {
	return NewPipeline(append([]PipelineBuilderOption{
		WithSize(64, 48),
		WithDispatcher(dispatch.NewDispatcher(4)),
	}, options...)...)
}

func TestRenderProducesDisplayRangeImage(t *testing.T) {
	p := newPipeline()
	frame, err := p.Render(context.Background(), testScene(sunAndSky()...), 1.0/60)
	require.NoError(t, err)

	assert.Equal(t, 64, frame.LDR.Width)
	assert.Equal(t, 48, frame.LDR.Height)
	assert.Equal(t, 2, frame.Lights)
	assert.Equal(t, 2, frame.Batches)

	lit := 0
	for _, px := range frame.LDR.Pix {
		for c := range 3 {
			require.GreaterOrEqual(t, px[c], float32(0))
			require.LessOrEqual(t, px[c], float32(1))
		}
		if px[0] > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 64*48/4)

	// the cube is red where it is lit
	center := frame.LDR.At(32, 23)
	assert.Greater(t, center[0], center[1])
}

func TestAdaptationStepsTowardsMeasurement(t *testing.T) {
	p := newPipeline()
	s := testScene(sunAndSky()...)

	first, err := p.Render(context.Background(), s, 1.0/60)
	require.NoError(t, err)
	res := first.Exposure
	assert.Equal(t, float32(1), res.Previous, "default adapted luminance")
	assert.Greater(t, res.Measured, float32(0))
	k := (res.Adapted - res.Previous) / (res.Measured - res.Previous)
	assert.InDelta(t, 0.0181, k, 1e-3, "1 - exp(-dt * 1.1) at 60 Hz")

	second, err := p.Render(context.Background(), s, 1.0/60)
	require.NoError(t, err)
	assert.Equal(t, res.Adapted, second.Exposure.Previous)
	assert.Equal(t, res.Measured, second.Exposure.Measured, "same image, same measurement")
	assert.Less(t,
		math32.Abs(second.Exposure.Adapted-second.Exposure.Measured),
		math32.Abs(res.Adapted-res.Measured))
	assert.Equal(t, second.Exposure.Adapted, p.Adapted().Load())
}

func TestEmptySceneAdaptsToFloor(t *testing.T) {
	p := newPipeline()
	s := scene.NewScene("empty", camera.NewCamera(), scene.WithLights(sunAndSky()...))

	var frame *Frame
	var err error
	for range 30 {
		frame, err = p.Render(context.Background(), s, 1)
		require.NoError(t, err)
	}
	assert.Less(t, frame.Exposure.Measured, float32(0.005))
	assert.InDelta(t, frame.Exposure.Measured, p.Adapted().Load(), 1e-4)
	for _, px := range frame.LDR.Pix {
		assert.Equal(t, mgl32.Vec3{}, px.Vec3())
	}
}

func TestBloomAddsBrightPlane(t *testing.T) {
	s := testScene(sunAndSky()...)
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 64, 48

	cfg.Graphics.Bloom = false
	plain, err := newPipeline(WithConfig(cfg)).Render(context.Background(), s, 0)
	require.NoError(t, err)
	plainHDR := plain.HDR.Clone()

	cfg.Graphics.Bloom = true
	bloomed, err := newPipeline(WithConfig(cfg)).Render(context.Background(), s, 0)
	require.NoError(t, err)

	var plainSum, bloomSum float32
	for i := range plainHDR.Pix {
		plainSum += plainHDR.Pix[i][0]
		bloomSum += bloomed.HDR.Pix[i][0]
		assert.GreaterOrEqual(t, bloomed.HDR.Pix[i][0], plainHDR.Pix[i][0]-1e-5)
	}
	assert.Greater(t, bloomSum, plainSum)
}

func TestApplyGraphics(t *testing.T) {
	s := testScene(sunAndSky()...)
	cfg := config.Default()
	cfg.Graphics.Bloom = false
	cfg.Window.Width, cfg.Window.Height = 64, 48
	want, err := newPipeline(WithConfig(cfg)).Render(context.Background(), s, 0)
	require.NoError(t, err)
	wantHDR, wantLDR := want.HDR.Clone(), want.LDR.Clone()

	p := newPipeline()
	p.ApplyGraphics(cfg.Graphics)
	got, err := p.Render(context.Background(), s, 0)
	require.NoError(t, err)
	assert.Equal(t, wantHDR.Pix, got.HDR.Pix, "bloom switched off")
	assert.Equal(t, wantLDR.Pix, got.LDR.Pix)

	cfg.Graphics.WhitePoint = 16
	p.ApplyGraphics(cfg.Graphics)
	got, err = p.Render(context.Background(), s, 0)
	require.NoError(t, err)
	assert.NotEqual(t, wantLDR.Pix, got.LDR.Pix, "a new white point re-solves the curve")
}

func TestResize(t *testing.T) {
	p := newPipeline()
	p.Adapted().Store(0.3)
	p.Resize(32, 16)
	w, h := p.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)
	assert.Equal(t, float32(0.3), p.Adapted().Load())

	frame, err := p.Render(context.Background(), testScene(sunAndSky()...), 0)
	require.NoError(t, err)
	assert.Equal(t, 32, frame.LDR.Width)

	p.Resize(0, 10)
	w, _ = p.Size()
	assert.Equal(t, 32, w)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline().Render(ctx, testScene(sunAndSky()...), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFrameSavePNG(t *testing.T) {
	frame, err := newPipeline().Render(context.Background(), testScene(sunAndSky()...), 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, frame.SavePNG(path, 0, 0))
	img, err := imgio.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	half := frame.Image(32, 0).Bounds()
	assert.Equal(t, 32, half.Dx())
	assert.Equal(t, 24, half.Dy())

	assert.Error(t, frame.SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), 0, 0))
}
