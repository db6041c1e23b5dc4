package bind_group_provider

import (
	"slices"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

type bindGroupProvider struct {
	mu sync.Mutex

	label           string
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout

	buffers      map[int]*wgpu.Buffer
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	// textures created on behalf of this provider, released with it
	ownedTextures map[int]*wgpu.Texture

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider owns the GPU resources behind one bind group: its layout, the
// buffers, texture views and samplers keyed by binding index, and optionally a mesh's
// vertex and index buffers.
type BindGroupProvider interface {
	// Label returns the debug label used for every GPU object created for this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup returns the bind group, or nil until the backend builds it.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	BindGroup() *wgpu.BindGroup

	// SetBindGroup replaces the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the new bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// BindGroupLayout returns the layout the bind group was built against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// SetBindGroupLayout sets the layout used to build the bind group.
	//
	// Parameters:
	//   - bgl: the layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// Buffer returns the buffer at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	Buffer(binding int) *wgpu.Buffer

	// SetBuffer stores a buffer at a binding. The provider takes ownership.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// TextureView returns the texture view at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	TextureView(binding int) *wgpu.TextureView

	// SetTextureView stores a borrowed texture view at a binding. Views set this way
	// are not released by Release; render targets are shared between passes.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the view
	SetTextureView(binding int, view *wgpu.TextureView)

	// SetOwnedTexture stores a texture and its view at a binding; both are released
	// with the provider.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	//   - view: a view of tex
	SetOwnedTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView)

	// Sampler returns the sampler at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	Sampler(binding int) *wgpu.Sampler

	// SetSampler stores a sampler at a binding. The provider takes ownership.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// Bindings returns every binding index that currently holds a resource, ascending.
	//
	// Returns:
	//   - []int: the binding indices
	Bindings() []int

	// Invalidate drops the bind group so it is rebuilt against the current resources,
	// for example after render targets are recreated on resize.
	Invalidate()

	VertexBuffer() *wgpu.Buffer
	SetVertexBuffer(buf *wgpu.Buffer)
	IndexBuffer() *wgpu.Buffer
	SetIndexBuffer(buf *wgpu.Buffer)
	IndexCount() int
	SetIndexCount(n int)

	// Release frees every GPU object the provider owns.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label for the GPU objects created for it
//   - options: functional options to preset resources
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:         label,
		buffers:       make(map[int]*wgpu.Buffer),
		textureViews:  make(map[int]*wgpu.TextureView),
		samplers:      make(map[int]*wgpu.Sampler),
		ownedTextures: make(map[int]*wgpu.Texture),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroupLayout
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if buf == nil {
		delete(p.buffers, binding)
		return
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, view *wgpu.TextureView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if view == nil {
		delete(p.textureViews, binding)
		return
	}
	p.textureViews[binding] = view
}

func (p *bindGroupProvider) SetOwnedTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textureViews[binding] = view
	p.ownedTextures[binding] = tex
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s == nil {
		delete(p.samplers, binding)
		return
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Bindings() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[int]struct{}, len(p.buffers)+len(p.textureViews)+len(p.samplers))
	for b := range p.buffers {
		seen[b] = struct{}{}
	}
	for b := range p.textureViews {
		seen[b] = struct{}{}
	}
	for b := range p.samplers {
		seen[b] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

func (p *bindGroupProvider) Invalidate() {
	p.SetBindGroup(nil)
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vertexBuffer
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.indexBuffer
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexBuffer = buf
}

func (p *bindGroupProvider) IndexCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.indexCount
}

func (p *bindGroupProvider) SetIndexCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexCount = n
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for b, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, b)
	}
	for b, tex := range p.ownedTextures {
		if view := p.textureViews[b]; view != nil {
			view.Release()
		}
		tex.Release()
		delete(p.ownedTextures, b)
	}
	clear(p.textureViews)
	for b, s := range p.samplers {
		s.Release()
		delete(p.samplers, b)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}
