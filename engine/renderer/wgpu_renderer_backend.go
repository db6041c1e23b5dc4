package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoFrame is returned when a frame operation runs outside BeginFrame and EndFrame.
var ErrNoFrame = errors.New("no frame in progress")

// ErrSurfaceUnavailable is returned (wrapped) when the surface cannot provide a texture,
// typically while the window is minimized or right after a resize.
var ErrSurfaceUnavailable = errors.New("surface texture unavailable")

// copyRowAlignment is the bytes-per-row alignment required by texture to buffer copies.
const copyRowAlignment = 256

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface // nil when headless

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	// one encoder records the whole frame and is submitted once
	frameEncoder *wgpu.CommandEncoder
	geometryPass *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// ConfigureSurface sizes the swapchain. A headless backend ignores the call.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode changes the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// Headless reports whether the backend renders without a surface.
	//
	// Returns:
	//   - bool: true when no surface exists
	Headless() bool

	// SurfaceFormat returns the configured swapchain format, undefined when headless.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// RegisterRenderPipeline creates the shader modules, layouts and render pipeline of p.
	//
	// Parameters:
	//   - p: a render pipeline
	//
	// Returns:
	//   - error: if a GPU object cannot be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the shader module, layouts and compute pipeline of p.
	//
	// Parameters:
	//   - p: a compute pipeline
	//
	// Returns:
	//   - error: if a GPU object cannot be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into new buffers on provider.
	//
	// Parameters:
	//   - provider: receives the buffers
	//   - vertexData: packed vertices
	//   - indexData: packed 32-bit indices
	//   - indexCount: number of indices
	//
	// Returns:
	//   - error: if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates missing buffers for the descriptor's buffer bindings and a
	// bind group over them and the provider's texture views and samplers.
	//
	// Parameters:
	//   - provider: holds the resources and receives the bind group
	//   - descriptor: the layout to bind against
	//   - bufferUsageOverrides: usage flags OR-ed into derived usage, keyed by binding
	//   - bufferSizeOverrides: sizes used instead of MinBindingSize, keyed by binding
	//
	// Returns:
	//   - error: if a resource is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads RGBA8 pixels into a new sampled texture owned by provider.
	//
	// Parameters:
	//   - provider: receives the texture and view
	//   - bindingKey: the binding index
	//   - stagingData: the pixels
	//   - srgb: true for an sRGB texture format
	//
	// Returns:
	//   - error: if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData, srgb bool) error

	// InitSampler creates a sampler on provider, zero fields take repeat and linear defaults.
	//
	// Parameters:
	//   - provider: receives the sampler
	//   - bindingKey: the binding index
	//   - samplerStagingData: the sampler state
	//
	// Returns:
	//   - error: if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// CreateRenderTarget creates a frame-sized texture and its view.
	//
	// Parameters:
	//   - label: debug label
	//   - width: width in pixels
	//   - height: height in pixels
	//   - format: texel format
	//   - usage: texture usage flags
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	//   - *wgpu.TextureView: its default view
	//   - error: if creation fails
	CreateRenderTarget(label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error)

	// WriteBuffers queues buffer uploads.
	//
	// Parameters:
	//   - writes: the uploads, coalesced per target
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame opens the frame command encoder.
	//
	// Returns:
	//   - error: if a frame is already open or the encoder cannot be created
	BeginFrame() error

	// BeginGeometryPass starts a render pass that clears every color target and the depth target.
	//
	// Parameters:
	//   - colorViews: attachment views in location order
	//   - depthView: the depth attachment
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame
	BeginGeometryPass(colorViews []*wgpu.TextureView, depthView *wgpu.TextureView) error

	// DrawCall records one instanced indexed draw in the geometry pass.
	//
	// Parameters:
	//   - p: the render pipeline
	//   - meshProvider: vertex and index buffers
	//   - instanceCount: instances to draw
	//   - bindGroups: providers bound at group 0, 1, ...
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndGeometryPass ends the geometry render pass.
	EndGeometryPass()

	// DispatchCompute records one compute pass in the frame encoder.
	//
	// Parameters:
	//   - p: the compute pipeline
	//   - computeProvider: bound at group 0
	//   - workGroupCount: work-groups in x, y and z
	DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32)

	// Blit records a full-screen triangle into the acquired surface texture.
	//
	// Parameters:
	//   - p: the present pipeline
	//   - provider: bound at group 0
	//
	// Returns:
	//   - error: if the backend is headless or the surface texture cannot be acquired
	Blit(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) error

	// EndFrame submits the frame encoder.
	//
	// Returns:
	//   - error: if encoding fails
	EndFrame() error

	// Present shows the surface texture acquired by Blit.
	Present()

	// ReadTexture copies a 2D texture into host memory, rows tightly packed.
	//
	// Parameters:
	//   - tex: the source, created with CopySrc usage
	//   - width: width in texels
	//   - height: height in texels
	//   - bytesPerTexel: texel size
	//
	// Returns:
	//   - []byte: width*height*bytesPerTexel bytes
	//   - error: if the copy or mapping fails
	ReadTexture(tex *wgpu.Texture, width, height, bytesPerTexel int) ([]byte, error)

	// ReadBuffer copies the first size bytes of a buffer into host memory.
	//
	// Parameters:
	//   - buf: the source, created with CopySrc usage
	//   - size: bytes to read
	//
	// Returns:
	//   - []byte: the bytes
	//   - error: if the copy or mapping fails
	ReadBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error)

	// Release frees the device and every backend-held object.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "HDR Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()
	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = pickSurfaceFormat(capabilities.Formats)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

// pickSurfaceFormat prefers a linear 8-bit format; the tone-mapped image is already gamma encoded.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8Unorm
	}
	return formats[0]
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) Headless() bool {
	return b.surface == nil
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

// createLayouts creates one bind group layout per group of p, in group order.
func (b *wgpuRendererBackendImpl) createLayouts(p pipeline.Pipeline) (*wgpu.PipelineLayout, error) {
	descriptors := p.Layouts()
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, shader.GroupCount(descriptors))
	for g := range bindGroupLayouts {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s group %d", p.Key(), g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		bindGroupLayouts[g] = layout
	}
	p.SetBindGroupLayouts(bindGroupLayouts)

	return b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: bindGroupLayouts,
	})
}

func (b *wgpuRendererBackendImpl) createModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader %s: %w", s.Key(), err)
	}
	return module, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vs, err := b.createModule(vertexShader)
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.createModule(fragmentShader)
	if err != nil {
		return err
	}
	defer fs.Release()

	layout, err := b.createLayouts(p)
	if err != nil {
		return err
	}
	defer layout.Release()

	targets := make([]wgpu.ColorTargetState, len(p.ColorTargets()))
	for i, format := range p.ColorTargets() {
		targets[i] = wgpu.ColorTargetState{
			Format:    format,
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthFormat() != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            p.DepthFormat(),
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline %s: %w", p.Key(), err)
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	module, err := b.createModule(computeShader)
	if err != nil {
		return err
	}
	defer module.Release()

	layout, err := b.createLayouts(p)
	if err != nil {
		return err
	}
	defer layout.Release()

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.Key() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create compute pipeline %s: %w", p.Key(), err)
	}
	p.SetComputePipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined,
			entry.StorageTexture.Access != wgpu.StorageTextureAccessUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		default:
			usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
				usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			}
			if overrideUsage, ok := bufferUsageOverrides[binding]; ok {
				usage |= overrideUsage
			}

			buf := provider.Buffer(binding)
			if buf == nil {
				size := entry.Buffer.MinBindingSize
				if overrideSize, ok := bufferSizeOverrides[binding]; ok {
					size = overrideSize
				}
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData, srgb bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	format := wgpu.TextureFormatRGBA8Unorm
	if srgb {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	size := wgpu.Extent3D{
		Width:              stagingData.Width,
		Height:             stagingData.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fmt.Sprintf("%s Texture %d", provider.Label(), bindingKey),
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetOwnedTexture(bindingKey, tex, view)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingKey, samp)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateRenderTarget(label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range bind_group_provider.Pending(writes) {
		b.queue.WriteBuffer(w.Provider.Buffer(w.Binding), w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		return errors.New("previous frame not yet submitted")
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.frameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) BeginGeometryPass(colorViews []*wgpu.TextureView, depthView *wgpu.TextureView) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	attachments := make([]wgpu.RenderPassColorAttachment, len(colorViews))
	for i, view := range colorViews {
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{},
		}
	}
	b.geometryPass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "Geometry Pass",
		ColorAttachments: attachments,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.geometryPass == nil {
		return
	}
	b.geometryPass.SetPipeline(p.Pipeline().(*wgpu.RenderPipeline))
	for i, bg := range bindGroups {
		b.geometryPass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.geometryPass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.geometryPass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.geometryPass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndGeometryPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.geometryPass == nil {
		return
	}
	b.geometryPass.End()
	b.geometryPass.Release()
	b.geometryPass = nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(
	p pipeline.Pipeline,
	computeProvider bind_group_provider.BindGroupProvider,
	workGroupCount [3]uint32,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}
	pass := b.frameEncoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline().(*wgpu.ComputePipeline))
	pass.SetBindGroup(0, computeProvider.BindGroup(), nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackendImpl) Blit(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return errors.New("headless renderer has no surface to present to")
	}
	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view

	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Present Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1},
			},
		},
	})
	pass.SetPipeline(p.Pipeline().(*wgpu.RenderPipeline))
	pass.SetBindGroup(0, provider.BindGroup(), nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	encoder := b.frameEncoder
	b.frameEncoder = nil
	defer encoder.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		b.releaseFrameSurface()
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// alignedRowPitch rounds a row up to the copy alignment.
func alignedRowPitch(width, bytesPerTexel int) int {
	row := width * bytesPerTexel
	return (row + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}

// unpadRows drops the per-row copy padding.
func unpadRows(padded []byte, width, height, bytesPerTexel int) []byte {
	row := width * bytesPerTexel
	pitch := alignedRowPitch(width, bytesPerTexel)
	if pitch == row {
		return padded[:row*height]
	}
	out := make([]byte, row*height)
	for y := range height {
		copy(out[y*row:(y+1)*row], padded[y*pitch:y*pitch+row])
	}
	return out
}

func (b *wgpuRendererBackendImpl) ReadTexture(tex *wgpu.Texture, width, height, bytesPerTexel int) ([]byte, error) {
	pitch := alignedRowPitch(width, bytesPerTexel)
	size := uint64(pitch * height)
	raw, err := b.readback(size, func(encoder *wgpu.CommandEncoder, staging *wgpu.Buffer) error {
		return encoder.CopyTextureToBuffer(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			&wgpu.ImageCopyBuffer{
				Buffer: staging,
				Layout: wgpu.TextureDataLayout{
					Offset:       0,
					BytesPerRow:  uint32(pitch),
					RowsPerImage: uint32(height),
				},
			},
			&wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return unpadRows(raw, width, height, bytesPerTexel), nil
}

func (b *wgpuRendererBackendImpl) ReadBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error) {
	// copies must be a multiple of 4 bytes
	padded := (size + 3) &^ 3
	raw, err := b.readback(padded, func(encoder *wgpu.CommandEncoder, staging *wgpu.Buffer) error {
		return encoder.CopyBufferToBuffer(buf, 0, staging, 0, padded)
	})
	if err != nil {
		return nil, err
	}
	return raw[:size], nil
}

// readback records a copy into a mappable staging buffer, submits it and waits for the map.
func (b *wgpuRendererBackendImpl) readback(size uint64, record func(*wgpu.CommandEncoder, *wgpu.Buffer) error) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Release()
	if err := record(encoder, staging); err != nil {
		return nil, fmt.Errorf("failed to record readback copy: %w", err)
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	var status wgpu.BufferMapAsyncStatus
	done := false
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map readback buffer: %w", err)
	}
	for !done {
		b.device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("failed to map readback buffer: status %d", status)
	}

	out := make([]byte, size)
	copy(out, staging.GetMappedRange(0, uint(size)))
	staging.Unmap()
	return out, nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
