package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const computeSource = `
struct Params {
    size: vec2<u32>,
    gain: f32,
}

@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var dst: texture_storage_2d<rgba16float, write>;
@group(0) @binding(2) var<uniform> params: Params;
@group(0) @binding(3) var<storage, read_write> bins: array<atomic<u32>, 256>;
@group(1) @binding(0) var<storage, read> values: array<vec4<f32>>;

@compute @workgroup_size(8, 4)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

const renderSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
}

struct Camera {
    view_proj: mat4x4<f32>,
    position: vec4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;
@group(1) @binding(0) var tex: texture_2d<f32>;
@group(1) @binding(1) var samp: sampler;

@vertex
fn vs_main(in: VertexInput, @builtin(instance_index) idx: u32) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureSample(tex, samp, vec2<f32>(0.0));
}
`

func TestComputeReflection(t *testing.T) {
	s, err := NewShader("test", ShaderTypeCompute, computeSource)
	require.NoError(t, err)

	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{8, 4, 1}, s.WorkgroupSize())
	assert.Empty(t, s.VertexLayouts())

	layouts := s.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 2)
	entries := layouts[0].Entries
	require.Len(t, entries, 4)

	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[0].Texture.ViewDimension)

	assert.Equal(t, wgpu.TextureFormatRGBA16Float, entries[1].StorageTexture.Format)
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, entries[1].StorageTexture.Access)

	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[2].Buffer.Type)
	assert.Equal(t, uint64(16), entries[2].Buffer.MinBindingSize)

	assert.Equal(t, wgpu.BufferBindingTypeStorage, entries[3].Buffer.Type)
	assert.Equal(t, uint64(1024), entries[3].Buffer.MinBindingSize)

	values := layouts[1].Entries[0]
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, values.Buffer.Type)
	assert.Equal(t, uint64(16), values.Buffer.MinBindingSize)

	for _, e := range entries {
		assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
	}
	assert.Equal(t, "bins", s.BindingName(0, 3))
	b, ok := s.Binding(0, "params")
	assert.True(t, ok)
	assert.Equal(t, 2, b)
	_, ok = s.Binding(1, "params")
	assert.False(t, ok)
}

func TestVertexReflection(t *testing.T) {
	s, err := NewShader("test_vertex", ShaderTypeVertex, renderSource)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.EntryPoint())

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(32), layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layouts[0].Attributes[1].Format)
	assert.Equal(t, uint64(12), layouts[0].Attributes[1].Offset)
	assert.Equal(t, uint64(24), layouts[0].Attributes[2].Offset)

	cam := s.BindGroupLayoutDescriptors()[0].Entries[0]
	assert.Equal(t, uint64(80), cam.Buffer.MinBindingSize)
}

func TestFragmentEntryPoint(t *testing.T) {
	s, err := NewShader("test_fragment", ShaderTypeFragment, renderSource)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Equal(t, [3]uint32{1, 1, 1}, s.WorkgroupSize())

	samp := s.BindGroupLayoutDescriptors()[1].Entries[1]
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, samp.Sampler.Type)
}

func TestMissingEntryPoint(t *testing.T) {
	_, err := NewShader("test", ShaderTypeCompute, renderSource)
	assert.ErrorContains(t, err, "no @compute entry point")

	_, err = NewShader("empty", ShaderTypeVertex, "  \n")
	assert.ErrorContains(t, err, "empty source")
}

func TestCommentedEntryPointIgnored(t *testing.T) {
	src := "// @compute @workgroup_size(4)\n/* fn fake() {} */\n" + computeSource
	s, err := NewShader("test", ShaderTypeCompute, src)
	require.NoError(t, err)
	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{8, 4, 1}, s.WorkgroupSize())
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vs, err := NewShader("v", ShaderTypeVertex, renderSource)
	require.NoError(t, err)
	fs, err := NewShader("f", ShaderTypeFragment, renderSource)
	require.NoError(t, err)

	merged := MergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
	require.Len(t, merged, 2)
	assert.Equal(t, 2, GroupCount(merged))

	cam := merged[0].Entries[0]
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, cam.Visibility)
	require.Len(t, merged[1].Entries, 2)
	assert.Equal(t, uint32(0), merged[1].Entries[0].Binding)
	assert.Equal(t, uint32(1), merged[1].Entries[1].Binding)
}

func TestGroupCountSparse(t *testing.T) {
	assert.Zero(t, GroupCount(nil))
	assert.Equal(t, 3, GroupCount(map[int]wgpu.BindGroupLayoutDescriptor{0: {}, 2: {}}))
}

func TestPreProcessorIncludes(t *testing.T) {
	p := NewPreProcessor()
	p.Register("answer", "const ANSWER: u32 = 42u;\n")

	out, err := p.Process("//@oxy:include answer\n// @oxy:include answer\nfn f() {}")
	require.NoError(t, err)
	assert.Equal(t, "const ANSWER: u32 = 42u;\nfn f() {}", out)

	_, err = p.Process("//@oxy:include nope")
	assert.ErrorContains(t, err, `unknown include "nope"`)
}

func TestPreProcessorEngineStructs(t *testing.T) {
	out, err := NewPreProcessor().Process("//@oxy:include tonemap_params\n//@oxy:include light_block")
	require.NoError(t, err)
	assert.Contains(t, out, "struct TonemapParams")
	assert.NotContains(t, out, "@oxy:include")
}
