package engine

import (
	"errors"
	"image"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu       sync.Mutex
	width    int
	height   int
	frames   int
	errs     []error // returned by successive Render calls, then nil
	graphics *config.GraphicsConfig
	released bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) Render(s scene.Scene, dt float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeRenderer) Resize(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
	return nil
}

func (f *fakeRenderer) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}

func (f *fakeRenderer) ApplyGraphics(g config.GraphicsConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.graphics = &g
}

func (f *fakeRenderer) Capture() (*image.NRGBA, error)       { return nil, nil }
func (f *fakeRenderer) AdaptedLuminance() (float32, error)   { return 1, nil }
func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return nil }
func (f *fakeRenderer) Headless() bool                       { return true }

func (f *fakeRenderer) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
}

func (f *fakeRenderer) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

func testScene() scene.Scene {
	return scene.NewScene("test", camera.NewCamera())
}

func quitAfter(e Engine, frames int) func(float32) {
	n := 0
	return func(float32) {
		n++
		if n >= frames {
			e.Quit()
		}
	}
}

func TestRunWithoutRenderer(t *testing.T) {
	assert.ErrorIs(t, NewEngine().Run(), ErrNoRenderer)
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	r := &fakeRenderer{width: 64, height: 32}
	e := NewEngine(WithRenderer(r), WithScene(testScene()))
	e.SetRenderCallback(quitAfter(e, 3))

	require.NoError(t, e.Run())
	assert.GreaterOrEqual(t, r.frameCount(), 3)
	assert.True(t, r.released)
	e.Quit()
}

func TestSkippedFramesKeepRunning(t *testing.T) {
	r := &fakeRenderer{width: 8, height: 8, errs: []error{renderer.ErrSurfaceUnavailable, renderer.ErrSurfaceUnavailable}}
	e := NewEngine(WithRenderer(r), WithScene(testScene()))
	e.SetRenderCallback(quitAfter(e, 4))

	require.NoError(t, e.Run())
	assert.GreaterOrEqual(t, r.frameCount(), 4)
}

func TestRenderErrorStopsEngine(t *testing.T) {
	boom := errors.New("device lost")
	r := &fakeRenderer{width: 8, height: 8, errs: []error{boom}}
	e := NewEngine(WithRenderer(r), WithScene(testScene()))

	assert.ErrorIs(t, e.Run(), boom)
	assert.Equal(t, 1, r.frameCount())
	assert.True(t, r.released)
}

func TestSceneAspectFollowsRenderer(t *testing.T) {
	r := &fakeRenderer{width: 200, height: 100}
	s := testScene()
	e := NewEngine(WithRenderer(r), WithScene(s))
	assert.InDelta(t, 2.0, s.Camera().Aspect(), 1e-6)

	other := testScene()
	e.SetScene(other)
	assert.Same(t, other, e.Scene())
	assert.InDelta(t, 2.0, other.Camera().Aspect(), 1e-6)

	impl := e.(*engine)
	impl.resize(300, 300)
	assert.InDelta(t, 1.0, other.Camera().Aspect(), 1e-6)
	w, h := r.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 300, h)

	impl.resize(0, 0)
	w, _ = r.Size()
	assert.Equal(t, 300, w, "a minimized window keeps its targets")
}

func TestApplyConfig(t *testing.T) {
	r := &fakeRenderer{width: 8, height: 8}
	e := NewEngine(WithRenderer(r), WithScene(testScene()))

	cfg := config.Default()
	cfg.Graphics.WhitePoint = 8
	e.ApplyConfig(cfg)
	require.NotNil(t, r.graphics)
	assert.Equal(t, float32(8), r.graphics.WhitePoint)
}

func TestConfigFileAppliedOnRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	cfg.Graphics.Bloom = false
	cfg.Graphics.WhitePoint = 6
	require.NoError(t, config.Save(path, cfg))

	r := &fakeRenderer{width: 8, height: 8}
	e := NewEngine(WithRenderer(r), WithScene(testScene()), WithConfigFile(path))
	e.SetRenderCallback(quitAfter(e, 1))

	require.NoError(t, e.Run())
	require.NotNil(t, r.graphics)
	assert.False(t, r.graphics.Bloom)
	assert.Equal(t, float32(6), r.graphics.WhitePoint)
}

func TestInvalidConfigFileFailsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	cfg.Graphics.MinLogLuminance = 4
	cfg.Graphics.MaxLogLuminance = -4
	require.NoError(t, config.Save(path, cfg))

	r := &fakeRenderer{width: 8, height: 8}
	e := NewEngine(WithRenderer(r), WithConfigFile(path))
	assert.ErrorIs(t, e.Run(), config.ErrInvalidConfig)
	assert.Zero(t, r.frameCount())
}

func TestTickRateOptions(t *testing.T) {
	e := NewEngine(WithTickRate(-1), WithRenderFrameLimit(120)).(*engine)
	assert.Equal(t, int64(16666666), e.engineTickRate.Nanoseconds())
	assert.Equal(t, int64(8333333), e.renderFrameLimit.Nanoseconds())

	e.SetTickRate(30)
	assert.Equal(t, int64(33333333), e.engineTickRate.Nanoseconds())
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
