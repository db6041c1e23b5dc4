package lighting

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUParamsSource is the canonical WGSL definition of the LightingParams struct.
//
//go:embed assets/lighting_params.wgsl
var GPUParamsSource string

// GPUParamsSize is the size of a marshaled GPUParams in bytes.
const GPUParamsSize = 32

// GPUParams is the per-frame uniform of the lighting compute pass.
// Matches the WGSL LightingParams struct layout exactly (see GPUParamsSource).
type GPUParams struct {
	CameraPosition mgl32.Vec3       // offset  0
	SpotPolicy     light.SpotPolicy // offset 12
	Threshold      mgl32.Vec2       // offset 16: bloom smoothstep edges
	BrightScale    float32          // offset 24
	// offset 28: 4 bytes of padding
}

// NewGPUParams builds the uniform for one frame.
//
// Parameters:
//   - policy: spot cone evaluation
//   - threshold: bloom smoothstep edges on luminance
//   - cameraPos: world-space eye position
//
// Returns:
//   - GPUParams: the uniform, with the bright pass scaled by BrightScale
func NewGPUParams(policy light.SpotPolicy, threshold mgl32.Vec2, cameraPos mgl32.Vec3) GPUParams {
	return GPUParams{
		CameraPosition: cameraPos,
		SpotPolicy:     policy,
		Threshold:      threshold,
		BrightScale:    BrightScale,
	}
}

// Marshal serializes the parameters into a 32-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUParams) Marshal() []byte {
	buf := make([]byte, GPUParamsSize)
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:16], uint32(g.SpotPolicy))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Threshold[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Threshold[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.BrightScale))
	return buf
}
