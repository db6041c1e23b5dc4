package renderer

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spirvMagic = 0x07230203

func allKeys() []string {
	return append([]string{PipelineGBuffer, PipelinePresent}, computeKeys...)
}

func TestShaderSourceExpandsIncludes(t *testing.T) {
	for _, key := range allKeys() {
		src, err := ShaderSource(key)
		require.NoError(t, err, key)
		assert.NotContains(t, src, "@oxy:include", key)
	}
	_, err := ShaderSource("missing")
	assert.Error(t, err)
}

func TestShadersCompileToSPIRV(t *testing.T) {
	for _, key := range allKeys() {
		t.Run(key, func(t *testing.T) {
			src, err := ShaderSource(key)
			require.NoError(t, err)

			spirv, err := naga.Compile(src)
			if err != nil {
				msg := err.Error()
				if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
					t.Skipf("naga feature not yet implemented: %v", err)
				}
				if strings.Contains(msg, "atomic") || strings.Contains(msg, "storage texture") {
					t.Skipf("naga limitation: %v", err)
				}
				t.Fatalf("failed to compile %s: %v", key, err)
			}
			require.GreaterOrEqual(t, len(spirv), 4)
			assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(spirv[:4]))
		})
	}
}

func TestGBufferPipeline(t *testing.T) {
	p, err := NewGBufferPipeline()
	require.NoError(t, err)

	assert.Equal(t, pipeline.PipelineTypeRender, p.Type())
	assert.Equal(t, gbufferFormats, p.ColorTargets())
	assert.Equal(t, depthFormat, p.DepthFormat())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())

	layouts := p.Layouts()
	require.Len(t, layouts, 3)
	assert.Len(t, layouts[cameraGroup].Entries, 1)
	assert.Len(t, layouts[instanceGroup].Entries, 1)
	assert.Len(t, layouts[materialGroup].Entries, 4)

	vertex := p.Shader(shader.ShaderTypeVertex).VertexLayouts()
	require.Len(t, vertex, 1)
	assert.Equal(t, uint64(model.GPUVertexSize), vertex[0].ArrayStride)

	cam := layouts[cameraGroup].Entries[0]
	assert.NotZero(t, cam.Visibility&wgpu.ShaderStageVertex)
	mat := layouts[materialGroup].Entries[materialDiffuseBinding]
	assert.NotZero(t, mat.Visibility&wgpu.ShaderStageFragment)
}

func TestPresentPipeline(t *testing.T) {
	p, err := NewPresentPipeline(wgpu.TextureFormatBGRA8Unorm)
	require.NoError(t, err)
	assert.Equal(t, []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm}, p.ColorTargets())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	require.Len(t, p.Layouts(), 1)
	assert.Len(t, p.Layouts()[0].Entries, 2)
}

func TestComputePipelines(t *testing.T) {
	bindings := map[string]int{
		PipelineLighting:  8,
		PipelineHistogram: 3,
		PipelineAverage:   3,
		PipelineBlur:      3,
		PipelineBloom:     4,
		PipelineTonemap:   4,
	}
	for _, key := range computeKeys {
		p, err := NewComputePipeline(key)
		require.NoError(t, err, key)
		assert.Equal(t, pipeline.PipelineTypeCompute, p.Type(), key)
		require.Len(t, p.Layouts(), 1, key)
		assert.Len(t, p.Layouts()[0].Entries, bindings[key], key)

		size := p.Shader(shader.ShaderTypeCompute).WorkgroupSize()
		if key == PipelineAverage {
			assert.Equal(t, [3]uint32{256, 1, 1}, size)
			continue
		}
		assert.Equal(t, [3]uint32{16, 16, 1}, size, key)
		assert.Equal(t, [3]uint32{80, 45, 1}, p.WorkgroupCount(1280, 720), key)
	}
}

func TestComputeBindingKinds(t *testing.T) {
	p, err := NewComputePipeline(PipelineTonemap)
	require.NoError(t, err)
	entries := p.Layouts()[0].Entries

	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[tonemapSourceBinding].Texture.SampleType)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[tonemapAdaptedBinding].Buffer.Type)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, entries[tonemapLDRBinding].StorageTexture.Format)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[tonemapParamsBinding].Buffer.Type)

	avg, err := NewComputePipeline(PipelineAverage)
	require.NoError(t, err)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, avg.Layouts()[0].Entries[exposureAdaptedBinding].Buffer.Type)
}
