package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/bloom"
	"github.com/Carmen-Shannon/oxy-hdr/engine/exposure"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// average pass bindings, the histogram and tonemap passes share the buffers behind them
const (
	exposureHistogramBinding = 0
	exposureAdaptedBinding   = 1
	exposureParamsBinding    = 2
)

const (
	histogramHDRBinding    = 0
	histogramBinsBinding   = 1
	histogramParamsBinding = 2
)

const (
	lightingLightsBinding = 4
	lightingParamsBinding = 5
	lightingHDRBinding    = 6
	lightingBrightBinding = 7
)

const (
	blurSrcBinding    = 0
	blurDstBinding    = 1
	blurParamsBinding = 2
)

const (
	bloomSceneBinding     = 0
	bloomBlurredBinding   = 1
	bloomCompositeBinding = 2
	bloomParamsBinding    = 3
)

const (
	tonemapSourceBinding  = 0
	tonemapAdaptedBinding = 1
	tonemapLDRBinding     = 2
	tonemapParamsBinding  = 3
)

type renderTarget struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *renderTarget) release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// frameTargets are the frame-sized textures and the compute bind groups reading them.
type frameTargets struct {
	gbuffer   [4]renderTarget
	depth     renderTarget
	hdr       renderTarget
	bright    renderTarget
	ping      renderTarget
	pong      renderTarget
	composite renderTarget
	ldr       renderTarget

	lighting  bind_group_provider.BindGroupProvider
	histogram bind_group_provider.BindGroupProvider
	blur      [blurGroupCount]bind_group_provider.BindGroupProvider
	bloom     bind_group_provider.BindGroupProvider
	tonemap   bind_group_provider.BindGroupProvider
	present   bind_group_provider.BindGroupProvider // nil when headless
}

func (t *frameTargets) gbufferViews() []*wgpu.TextureView {
	views := make([]*wgpu.TextureView, len(t.gbuffer))
	for i := range t.gbuffer {
		views[i] = t.gbuffer[i].view
	}
	return views
}

// releaseBindGroups frees the bind groups and their own buffers. Shared exposure
// buffers are detached first so only the exposure provider releases them.
func (t *frameTargets) releaseBindGroups() {
	if t.histogram != nil {
		t.histogram.SetBuffer(histogramBinsBinding, nil)
	}
	if t.tonemap != nil {
		t.tonemap.SetBuffer(tonemapAdaptedBinding, nil)
	}
	providers := []bind_group_provider.BindGroupProvider{t.lighting, t.histogram, t.bloom, t.tonemap, t.present}
	providers = append(providers, t.blur[:]...)
	for _, p := range providers {
		if p != nil {
			p.Release()
		}
	}
	t.lighting, t.histogram, t.bloom, t.tonemap, t.present = nil, nil, nil, nil, nil
	t.blur = [blurGroupCount]bind_group_provider.BindGroupProvider{}
}

func (t *frameTargets) release() {
	t.releaseBindGroups()
	for i := range t.gbuffer {
		t.gbuffer[i].release()
	}
	for _, rt := range []*renderTarget{&t.depth, &t.hdr, &t.bright, &t.ping, &t.pong, &t.composite, &t.ldr} {
		rt.release()
	}
}

// initExposure creates the histogram bins and the adapted luminance once; they
// outlive resizes so adaptation continues across them.
func (r *renderer) initExposure() error {
	p := r.pipelineCache[PipelineAverage]
	provider := bind_group_provider.NewBindGroupProvider("exposure")
	err := r.backend.InitBindGroup(provider, p.Layouts()[0],
		map[int]wgpu.BufferUsage{exposureAdaptedBinding: wgpu.BufferUsageCopySrc},
		map[int]uint64{exposureHistogramBinding: exposure.HistogramBins * 4},
	)
	if err != nil {
		provider.Release()
		return fmt.Errorf("failed to create exposure buffers: %w", err)
	}
	r.exposure = provider
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  exposureAdaptedBinding,
		Data:     common.SliceToBytes([]float32{r.graphics.InitialAdaptedLuminance}),
	}})
	return nil
}

func (r *renderer) createTarget(rt *renderTarget, label string, format wgpu.TextureFormat, usage wgpu.TextureUsage) error {
	tex, view, err := r.backend.CreateRenderTarget(label, r.width, r.height, format, usage)
	if err != nil {
		return err
	}
	rt.tex, rt.view = tex, view
	return nil
}

// allocateTargets replaces every frame-sized texture and rebuilds the bind groups over them.
func (r *renderer) allocateTargets() error {
	if r.targets != nil {
		r.targets.release()
	}
	t := &frameTargets{}
	r.targets = t

	const (
		attachment = wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
		storage    = wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding
	)
	gbufferNames := [4]string{"G-Buffer Position", "G-Buffer Normal", "G-Buffer Diffuse", "G-Buffer Specular"}
	for i := range t.gbuffer {
		if err := r.createTarget(&t.gbuffer[i], gbufferNames[i], gbufferFormats[i], attachment); err != nil {
			return err
		}
	}
	targets := []struct {
		rt     *renderTarget
		label  string
		format wgpu.TextureFormat
		usage  wgpu.TextureUsage
	}{
		{&t.depth, "Depth", depthFormat, wgpu.TextureUsageRenderAttachment},
		{&t.hdr, "HDR", hdrFormat, storage},
		{&t.bright, "Bright", hdrFormat, storage},
		{&t.ping, "Blur Ping", hdrFormat, storage},
		{&t.pong, "Blur Pong", hdrFormat, storage},
		{&t.composite, "Composite", hdrFormat, storage},
		{&t.ldr, "LDR", ldrFormat, storage | wgpu.TextureUsageCopySrc},
	}
	for _, target := range targets {
		if err := r.createTarget(target.rt, target.label, target.format, target.usage); err != nil {
			return err
		}
	}
	return r.buildBindGroups()
}

// buildBindGroups recreates the compute and present bind groups for the current
// targets and graphics settings.
func (r *renderer) buildBindGroups() error {
	t := r.targets
	t.releaseBindGroups()
	r.dirty = false

	g := r.graphics
	var writes []bind_group_provider.BufferWrite

	t.lighting = bind_group_provider.NewBindGroupProvider("lighting",
		bind_group_provider.WithTextureViews(map[int]*wgpu.TextureView{
			0:                     t.gbuffer[0].view,
			1:                     t.gbuffer[1].view,
			2:                     t.gbuffer[2].view,
			3:                     t.gbuffer[3].view,
			lightingHDRBinding:    t.hdr.view,
			lightingBrightBinding: t.bright.view,
		}),
	)
	if err := r.initComputeBindGroup(PipelineLighting, t.lighting); err != nil {
		return err
	}

	t.histogram = bind_group_provider.NewBindGroupProvider("histogram",
		bind_group_provider.WithTextureViews(map[int]*wgpu.TextureView{histogramHDRBinding: t.hdr.view}),
	)
	t.histogram.SetBuffer(histogramBinsBinding, r.exposure.Buffer(exposureHistogramBinding))
	if err := r.initComputeBindGroup(PipelineHistogram, t.histogram); err != nil {
		return err
	}

	blurPlanes := [blurGroupCount][2]*wgpu.TextureView{
		blurFirstHorizontal: {t.bright.view, t.ping.view},
		blurVertical:        {t.ping.view, t.pong.view},
		blurHorizontal:      {t.pong.view, t.ping.view},
	}
	for i, planes := range blurPlanes {
		t.blur[i] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("blur %d", i),
			bind_group_provider.WithTextureViews(map[int]*wgpu.TextureView{
				blurSrcBinding: planes[0],
				blurDstBinding: planes[1],
			}),
		)
		if err := r.initComputeBindGroup(PipelineBlur, t.blur[i]); err != nil {
			return err
		}
		params := bloom.GPUBlurParams{}
		if i != blurVertical {
			params.Horizontal = 1
		}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: t.blur[i], Binding: blurParamsBinding, Data: params.Marshal()})
	}

	blurred := t.pong.view
	if g.BlurPasses <= 0 {
		blurred = t.bright.view
	}
	t.bloom = bind_group_provider.NewBindGroupProvider("bloom",
		bind_group_provider.WithTextureViews(map[int]*wgpu.TextureView{
			bloomSceneBinding:     t.hdr.view,
			bloomBlurredBinding:   blurred,
			bloomCompositeBinding: t.composite.view,
		}),
	)
	if err := r.initComputeBindGroup(PipelineBloom, t.bloom); err != nil {
		return err
	}

	source := t.hdr.view
	if g.Bloom {
		source = t.composite.view
	}
	t.tonemap = bind_group_provider.NewBindGroupProvider("tonemap",
		bind_group_provider.WithTextureViews(map[int]*wgpu.TextureView{
			tonemapSourceBinding: source,
			tonemapLDRBinding:    t.ldr.view,
		}),
	)
	t.tonemap.SetBuffer(tonemapAdaptedBinding, r.exposure.Buffer(exposureAdaptedBinding))
	if err := r.initComputeBindGroup(PipelineTonemap, t.tonemap); err != nil {
		return err
	}

	if !r.backend.Headless() {
		t.present = bind_group_provider.NewBindGroupProvider("present",
			bind_group_provider.WithTextureViews(map[int]*wgpu.TextureView{0: t.ldr.view}),
		)
		err := r.backend.InitSampler(t.present, 1, common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeNearest,
			MinFilter:    wgpu.FilterModeNearest,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
		})
		if err != nil {
			return err
		}
		if err := r.backend.InitBindGroup(t.present, r.pipelineCache[PipelinePresent].Layouts()[0], nil, nil); err != nil {
			return fmt.Errorf("failed to build present bind group: %w", err)
		}
	}

	r.backend.WriteBuffers(writes)
	return nil
}

func (r *renderer) initComputeBindGroup(key string, provider bind_group_provider.BindGroupProvider) error {
	if err := r.backend.InitBindGroup(provider, r.pipelineCache[key].Layouts()[0], nil, nil); err != nil {
		return fmt.Errorf("failed to build %s bind group: %w", key, err)
	}
	return nil
}
