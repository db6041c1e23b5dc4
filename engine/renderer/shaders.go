package renderer

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Pipeline keys, also used as GPU labels.
const (
	PipelineGBuffer   = "gbuffer"
	PipelineLighting  = "lighting"
	PipelineHistogram = "histogram"
	PipelineAverage   = "average"
	PipelineBlur      = "blur"
	PipelineBloom     = "bloom"
	PipelineTonemap   = "tonemap"
	PipelinePresent   = "present"
)

// G-buffer attachment formats in fragment output order: position, normal, diffuse, specular+shininess.
var gbufferFormats = []wgpu.TextureFormat{
	wgpu.TextureFormatRGBA16Float,
	wgpu.TextureFormatRGBA16Float,
	wgpu.TextureFormatRGBA16Float,
	wgpu.TextureFormatRGBA16Float,
}

const (
	depthFormat = wgpu.TextureFormatDepth24Plus
	hdrFormat   = wgpu.TextureFormatRGBA16Float
	ldrFormat   = wgpu.TextureFormatRGBA8Unorm
)

// computeKeys lists the compute passes in frame order.
var computeKeys = []string{
	PipelineLighting,
	PipelineHistogram,
	PipelineAverage,
	PipelineBlur,
	PipelineBloom,
	PipelineTonemap,
}

// ShaderSource returns the composed WGSL of an embedded pass, includes expanded.
//
// Parameters:
//   - key: one of the pipeline keys
//
// Returns:
//   - string: the WGSL module
//   - error: if the asset is missing or an include is unknown
func ShaderSource(key string) (string, error) {
	raw, err := assets.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("shader %s: %w", key, err)
	}
	return shader.NewPreProcessor().Process(string(raw))
}

func loadShader(key string, shaderType shader.ShaderType) (shader.Shader, error) {
	raw, err := assets.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return shader.NewShader(key+"_"+shaderType.String(), shaderType, string(raw))
}

// NewComputePipeline builds the pipeline of one embedded compute pass.
//
// Parameters:
//   - key: one of the compute pipeline keys
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
//   - error: if the shader cannot be loaded or reflected
func NewComputePipeline(key string) (pipeline.Pipeline, error) {
	cs, err := loadShader(key, shader.ShaderTypeCompute)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(key, pipeline.WithComputeShader(cs))
}

// NewGBufferPipeline builds the geometry pass writing the four G-buffer targets with depth.
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
//   - error: if the shaders cannot be loaded or reflected
func NewGBufferPipeline() (pipeline.Pipeline, error) {
	vs, err := loadShader(PipelineGBuffer, shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	fs, err := loadShader(PipelineGBuffer, shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(PipelineGBuffer,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithColorTargets(gbufferFormats...),
		pipeline.WithDepth(depthFormat, true, true),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	)
}

// NewPresentPipeline builds the full-screen blit into a surface of the given format.
//
// Parameters:
//   - surfaceFormat: the swapchain format
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
//   - error: if the shaders cannot be loaded or reflected
func NewPresentPipeline(surfaceFormat wgpu.TextureFormat) (pipeline.Pipeline, error) {
	vs, err := loadShader(PipelinePresent, shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	fs, err := loadShader(PipelinePresent, shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}
	// the covering triangle winds clockwise
	return pipeline.NewPipeline(PipelinePresent,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithColorTargets(surfaceFormat),
		pipeline.WithCullMode(wgpu.CullModeNone),
	)
}
