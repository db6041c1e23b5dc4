// Package hdr runs the CPU deferred pipeline for one frame: geometry, lighting,
// exposure, bloom and tone mapping.
package hdr

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/bloom"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/exposure"
	"github.com/Carmen-Shannon/oxy-hdr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/lighting"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/Carmen-Shannon/oxy-hdr/engine/tonemap"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrSizeMismatch is returned (wrapped) when planes handed to a pass differ in size.
var ErrSizeMismatch = common.ErrSizeMismatch

// Pipeline renders scenes through the deferred HDR passes.
type Pipeline interface {
	// Render draws one frame of s.
	//
	// Parameters:
	//   - ctx: cancels the frame between passes
	//   - s: the scene, its camera supplies the view
	//   - dt: time since the previous frame in seconds, drives eye adaptation
	//
	// Returns:
	//   - *Frame: the planes of this frame, valid until the next Render
	//   - error: if a pass fails or ctx is cancelled
	Render(ctx context.Context, s scene.Scene, dt float32) (*Frame, error)

	// Resize reallocates every plane. The adapted luminance is kept.
	//
	// Parameters:
	//   - width: frame width in pixels
	//   - height: frame height in pixels
	Resize(width, height int)

	// Size returns the frame size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Adapted returns the persistent adapted luminance.
	//
	// Returns:
	//   - *exposure.AdaptedLuminance: the state carried between frames
	Adapted() *exposure.AdaptedLuminance

	// ApplyGraphics takes over exposure, tone curve and bloom tunables from a
	// reloaded configuration.
	//
	// Parameters:
	//   - g: the graphics section
	ApplyGraphics(g config.GraphicsConfig)
}

type pipeline struct {
	mu       sync.Mutex
	width    int
	height   int
	graphics config.GraphicsConfig
	workers  int
	logger   zerolog.Logger

	dispatcher dispatch.Dispatcher
	geometry   gbuffer.GeometryPass
	lighting   lighting.Pass
	histogram  exposure.HistogramBuilder
	reducer    exposure.Reducer
	bloom      bloom.Pass
	tonemap    tonemap.Pass

	adapted *exposure.AdaptedLuminance
	hist    *exposure.Histogram

	gb     *gbuffer.GBuffer
	hdr    *common.Image
	bright *common.Image
	ping   *common.Image
	pong   *common.Image
	ldr    *common.Image
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline with the default configuration at 1920x1080.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Pipeline: the pipeline
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	def := config.Default()
	p := &pipeline{
		width:    def.Window.Width,
		height:   def.Window.Height,
		graphics: def.Graphics,
		workers:  def.Performance.Workers,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.NewDispatcher(p.workers)
	}

	g := p.graphics
	p.geometry = gbuffer.NewGeometryPass(
		gbuffer.WithDispatcher(p.dispatcher),
		gbuffer.WithLogger(p.logger),
	)
	p.lighting = lighting.NewPass(
		lighting.WithDispatcher(p.dispatcher),
		lighting.WithThreshold(g.MinBloomThreshold, g.MaxBloomThreshold),
		lighting.WithSpotPolicy(light.ParseSpotPolicy(g.SpotPolicy)),
		lighting.WithLogger(p.logger),
	)
	p.histogram = exposure.NewHistogramBuilder(
		exposure.WithDispatcher(p.dispatcher),
		exposure.WithBuilderLogger(p.logger),
	)
	p.reducer = exposure.NewReducer(exposure.WithReducerLogger(p.logger))
	p.bloom = bloom.NewPass(
		bloom.WithDispatcher(p.dispatcher),
		bloom.WithFactors(g.SceneFactor, g.BloomFactor),
		bloom.WithBlurPasses(g.BlurPasses),
		bloom.WithLogger(p.logger),
	)
	p.tonemap = tonemap.NewPass(
		tonemap.WithDispatcher(p.dispatcher),
		tonemap.WithWhitePoint(g.WhitePoint),
		tonemap.WithLogger(p.logger),
	)
	p.adapted = exposure.NewAdaptedLuminance(g.InitialAdaptedLuminance)
	p.hist = exposure.NewHistogram()
	p.allocate()
	return p
}

func (p *pipeline) allocate() {
	p.gb = gbuffer.NewGBuffer(p.width, p.height)
	p.hdr = common.NewImage(p.width, p.height)
	p.bright = common.NewImage(p.width, p.height)
	p.ping = common.NewImage(p.width, p.height)
	p.pong = common.NewImage(p.width, p.height)
	p.ldr = common.NewImage(p.width, p.height)
}

func (p *pipeline) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width <= 0 || height <= 0 || (width == p.width && height == p.height) {
		return
	}
	p.width, p.height = width, height
	p.allocate()
	p.logger.Info().Int("width", width).Int("height", height).Msg("pipeline resized")
}

func (p *pipeline) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

func (p *pipeline) Adapted() *exposure.AdaptedLuminance {
	return p.adapted
}

func (p *pipeline) ApplyGraphics(g config.GraphicsConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.graphics = g
	p.lighting.SetThreshold(mgl32.Vec2{g.MinBloomThreshold, g.MaxBloomThreshold})
	p.lighting.SetSpotPolicy(light.ParseSpotPolicy(g.SpotPolicy))
	p.bloom.SetFactors(g.SceneFactor, g.BloomFactor)
	p.bloom.SetPasses(g.BlurPasses)
	p.tonemap.SetWhitePoint(g.WhitePoint)
	p.logger.Info().
		Float32("white_point", g.WhitePoint).
		Float32("speed", g.AutoExposureSpeed).
		Bool("bloom", g.Bloom).
		Msg("graphics settings applied")
}

func (p *pipeline) Render(ctx context.Context, s scene.Scene, dt float32) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cam := s.Camera()
	if cam == nil {
		return nil, fmt.Errorf("scene %q has no camera", s.Name())
	}
	g := p.graphics
	batches := s.Batches()
	block := s.LightBlock()

	p.gb.Clear()
	if err := p.geometry.Draw(ctx, p.gb, cam, batches); err != nil {
		return nil, err
	}
	if err := p.lighting.Run(ctx, p.gb, &block, cam.Position(), p.hdr, p.bright); err != nil {
		return nil, err
	}

	// Exposure reads the lit scene and blur reads the bright plane; neither
	// writes what the other reads.
	var result exposure.Result
	blurred := p.bright
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p.hist.Reset()
		params := exposure.NewHistogramParams(g.MinLogLuminance, g.MaxLogLuminance, p.width, p.height)
		if err := p.histogram.Build(egCtx, p.hdr, params, p.hist); err != nil {
			return err
		}
		k := exposure.TimeCoefficient(dt, g.AutoExposureSpeed)
		result = p.reducer.Reduce(p.hist, exposure.NewAverageParams(g.MinLogLuminance, g.MaxLogLuminance, k, p.width, p.height), p.adapted)
		return nil
	})
	if g.Bloom {
		eg.Go(func() error {
			out, err := p.bloom.Blur(egCtx, p.bright, p.ping, p.pong)
			if err != nil {
				return err
			}
			blurred = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if g.Bloom {
		if err := p.bloom.Composite(ctx, p.hdr, blurred, p.hdr); err != nil {
			return nil, err
		}
	}
	if err := p.tonemap.Run(ctx, p.hdr, result.Adapted, p.ldr); err != nil {
		return nil, err
	}

	frame := &Frame{
		HDR:      p.hdr,
		Bright:   p.bright,
		LDR:      p.ldr,
		Exposure: result,
		Lights:   block.Count(),
		Batches:  len(batches),
	}
	p.logger.Debug().
		Int("batches", frame.Batches).
		Int("lights", frame.Lights).
		Float32("adapted", result.Adapted).
		Msg("frame rendered")
	return frame, nil
}
