// Package renderer runs the deferred HDR pipeline on the GPU through WebGPU:
// a G-buffer render pass followed by lighting, exposure, bloom and tone mapping
// compute passes, presented to a window or read back when headless.
package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/Carmen-Shannon/oxy-hdr/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog"
)

// ErrInvalidSize is returned when a frame size is not positive.
var ErrInvalidSize = errors.New("frame size must be positive")

type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	logger      zerolog.Logger

	width    int
	height   int
	graphics config.GraphicsConfig

	targets  *frameTargets
	exposure bind_group_provider.BindGroupProvider // histogram bins and adapted luminance, kept across resizes
	dirty    bool                                  // bind groups must be rebuilt before the next frame

	instances     []bind_group_provider.BindGroupProvider
	instanceSlots []int
	owned         map[bind_group_provider.BindGroupProvider]struct{}

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer renders scenes through the deferred HDR passes on the GPU.
//
// A windowed renderer presents every frame; a headless renderer keeps the tone-mapped
// image on the GPU until Capture reads it back.
type Renderer interface {
	// Render draws one frame of s.
	//
	// Parameters:
	//   - s: the scene, its camera supplies the view
	//   - dt: seconds since the previous frame, drives eye adaptation
	//
	// Returns:
	//   - error: if the scene has no camera or a GPU resource cannot be created
	Render(s scene.Scene, dt float32) error

	// Resize reallocates every frame-sized target. The adapted luminance is kept.
	//
	// Parameters:
	//   - width: frame width in pixels
	//   - height: frame height in pixels
	//
	// Returns:
	//   - error: ErrInvalidSize, or a target allocation failure
	Resize(width, height int) error

	// Size returns the frame size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// SetPresentMode changes the present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// ApplyGraphics takes over exposure, tone curve and bloom tunables from a
	// reloaded configuration, starting with the next frame.
	//
	// Parameters:
	//   - g: the graphics section
	ApplyGraphics(g config.GraphicsConfig)

	// Capture reads the tone-mapped image of the last frame back from the GPU.
	//
	// Returns:
	//   - *image.NRGBA: the gamma-encoded image
	//   - error: if the readback fails
	Capture() (*image.NRGBA, error)

	// AdaptedLuminance reads the adapted luminance left by the last frame.
	//
	// Returns:
	//   - float32: the adapted luminance
	//   - error: if the readback fails
	AdaptedLuminance() (float32, error)

	// Pipeline retrieves a registered pipeline by key, or nil.
	//
	// Parameters:
	//   - key: one of the pipeline keys
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Pipeline(key string) pipeline.Pipeline

	// Headless reports whether the renderer has no surface.
	Headless() bool

	// Release frees every GPU object the renderer created, including the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer on the given backend. With a nil window the
// renderer is headless and takes its size from WithSize.
//
// Parameters:
//   - backendType: the rendering backend
//   - win: the presentation window, or nil
//   - options: builder options
//
// Returns:
//   - Renderer: the renderer with every pipeline registered
//   - error: if the device, a pipeline or a frame target cannot be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	def := config.Default()
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		logger:        zerolog.Nop(),
		width:         def.Window.Width,
		height:        def.Window.Height,
		graphics:      def.Graphics,
		owned:         make(map[bind_group_provider.BindGroupProvider]struct{}),
	}

	// options first so the adapter request sees the fallback flag
	for _, opt := range options {
		opt(r)
	}

	var surfaceDescriptor *wgpu.SurfaceDescriptor
	if win != nil {
		surfaceDescriptor = win.SurfaceDescriptor()
		if surfaceDescriptor == nil {
			return nil, errors.New("window has no surface")
		}
		r.width, r.height = win.Width(), win.Height()
	}
	if r.width <= 0 || r.height <= 0 {
		return nil, ErrInvalidSize
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(r.width, r.height)

	if err := r.registerPipelines(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initExposure(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.allocateTargets(); err != nil {
		r.Release()
		return nil, err
	}
	r.logger.Info().
		Int("width", r.width).
		Int("height", r.height).
		Bool("headless", r.backend.Headless()).
		Msg("renderer ready")
	return r, nil
}

func (r *renderer) registerPipelines() error {
	pipelines := make([]pipeline.Pipeline, 0, len(computeKeys)+2)

	gbuffer, err := NewGBufferPipeline()
	if err != nil {
		return err
	}
	pipelines = append(pipelines, gbuffer)
	for _, key := range computeKeys {
		p, err := NewComputePipeline(key)
		if err != nil {
			return err
		}
		pipelines = append(pipelines, p)
	}
	if !r.backend.Headless() {
		present, err := NewPresentPipeline(r.backend.SurfaceFormat())
		if err != nil {
			return err
		}
		pipelines = append(pipelines, present)
	}

	for _, p := range pipelines {
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			err = r.backend.RegisterComputePipeline(p)
		case pipeline.PipelineTypeRender:
			err = r.backend.RegisterRenderPipeline(p)
		}
		if err != nil {
			return err
		}
		r.pipelineCache[p.Key()] = p
		r.logger.Debug().Str("pipeline", p.Key()).Msg("pipeline registered")
	}
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Headless() bool {
	return r.backend.Headless()
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	if width == r.width && height == r.height {
		return nil
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
	if err := r.allocateTargets(); err != nil {
		return err
	}
	r.logger.Info().Int("width", width).Int("height", height).Msg("renderer resized")
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
	r.backend.ConfigureSurface(r.width, r.height)
}

func (r *renderer) ApplyGraphics(g config.GraphicsConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.graphics
	r.graphics = g
	// the bloom and tonemap bind groups read different planes depending on these
	if prev.Bloom != g.Bloom || (prev.BlurPasses > 0) != (g.BlurPasses > 0) {
		r.dirty = true
	}
	r.logger.Info().
		Float32("white_point", g.WhitePoint).
		Float32("speed", g.AutoExposureSpeed).
		Bool("bloom", g.Bloom).
		Int("blur_passes", g.BlurPasses).
		Msg("graphics settings applied")
}

func (r *renderer) Capture() (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pix, err := r.backend.ReadTexture(r.targets.ldr.tex, r.width, r.height, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to capture frame: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, pix)
	return img, nil
}

func (r *renderer) AdaptedLuminance() (float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.backend.ReadBuffer(r.exposure.Buffer(exposureAdaptedBinding), 4)
	if err != nil {
		return 0, fmt.Errorf("failed to read adapted luminance: %w", err)
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(raw)), nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.targets != nil {
		r.targets.release()
		r.targets = nil
	}
	for _, p := range r.instances {
		p.Release()
	}
	r.instances, r.instanceSlots = nil, nil
	for p := range r.owned {
		p.Release()
	}
	clear(r.owned)
	if r.exposure != nil {
		r.exposure.Release()
		r.exposure = nil
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}
