package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

// ErrMissingShader is returned when the shaders set on a pipeline do not form a complete stage set.
var ErrMissingShader = errors.New("pipeline needs a compute shader or both a vertex and a fragment shader")

type pipeline struct {
	pipelineType PipelineType
	key          string

	vertexShader, fragmentShader, computeShader shader.Shader

	layouts          map[int]wgpu.BindGroupLayoutDescriptor
	bindGroupLayouts []*wgpu.BindGroupLayout

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	// render state, ignored by compute pipelines
	colorTargets      []wgpu.TextureFormat
	depthFormat       wgpu.TextureFormat
	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
}

// Pipeline is a render or compute pipeline together with the reflected shaders and
// the state needed to create it. The GPU objects are attached by the renderer backend.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: render or compute
	Type() PipelineType

	// Key returns the unique key of the pipeline, used as the GPU label.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Shader returns the shader of a stage, or nil.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader(shaderType shader.ShaderType) shader.Shader

	// Layouts returns the bind group layouts of every stage merged by group.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: layouts keyed by group
	Layouts() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayout returns the created layout of a group, or nil before registration.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// SetBindGroupLayouts stores the layouts created for the pipeline layout, indexed by group.
	//
	// Parameters:
	//   - layouts: one layout per group
	SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout)

	// WorkgroupCount returns the dispatch size that covers a width x height grid with
	// the compute shader's work-groups.
	//
	// Parameters:
	//   - width: grid width in invocations
	//   - height: grid height in invocations
	//
	// Returns:
	//   - [3]uint32: work-groups in x, y and z
	WorkgroupCount(width, height int) [3]uint32

	ColorTargets() []wgpu.TextureFormat
	DepthFormat() wgpu.TextureFormat
	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace

	// Pipeline returns *wgpu.RenderPipeline or *wgpu.ComputePipeline, matching Type.
	//
	// Returns:
	//   - any: the GPU pipeline, nil before registration
	Pipeline() any

	SetRenderPipeline(p *wgpu.RenderPipeline)
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release frees the GPU pipeline and its bind group layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline from its shaders. The type follows from the shaders:
// a compute shader makes a compute pipeline, a vertex and fragment pair a render pipeline.
// Render pipelines default to depth-tested triangle lists with counter-clockwise front faces.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: builder options
//
// Returns:
//   - Pipeline: the pipeline
//   - error: ErrMissingShader when the shader set is incomplete
func NewPipeline(key string, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		key:               key,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.computeShader != nil:
		p.pipelineType = PipelineTypeCompute
		p.layouts = p.computeShader.BindGroupLayoutDescriptors()
	case p.vertexShader != nil && p.fragmentShader != nil:
		p.pipelineType = PipelineTypeRender
		p.layouts = shader.MergeBindGroupLayouts(
			p.vertexShader.BindGroupLayoutDescriptors(),
			p.fragmentShader.BindGroupLayoutDescriptors(),
		)
		if len(p.colorTargets) == 0 {
			return nil, fmt.Errorf("pipeline %s: render pipeline has no color targets", key)
		}
	default:
		return nil, fmt.Errorf("pipeline %s: %w", key, ErrMissingShader)
	}
	return p, nil
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) Layouts() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.layouts
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) SetBindGroupLayouts(layouts []*wgpu.BindGroupLayout) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) WorkgroupCount(width, height int) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	if p.computeShader != nil {
		size = p.computeShader.WorkgroupSize()
	}
	ceil := func(n int, d uint32) uint32 {
		if n <= 0 {
			return 0
		}
		return (uint32(n) + d - 1) / d
	}
	return [3]uint32{ceil(width, size[0]), ceil(height, size[1]), 1}
}

func (p *pipeline) ColorTargets() []wgpu.TextureFormat {
	return p.colorTargets
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}
