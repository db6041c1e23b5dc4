package bloom

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUBlurParamsSource is the canonical WGSL definition of the BlurParams struct.
//
//go:embed assets/blur_params.wgsl
var GPUBlurParamsSource string

// GPUBloomParamsSource is the canonical WGSL definition of the BloomParams struct.
//
//go:embed assets/bloom_params.wgsl
var GPUBloomParamsSource string

// GPUParamsSize is the size of both marshaled parameter blocks in bytes.
const GPUParamsSize = 16

// GPUBlurParams selects the blur direction of one dispatch.
// Matches the WGSL BlurParams struct layout exactly (see GPUBlurParamsSource).
type GPUBlurParams struct {
	Horizontal uint32 // offset 0: 1 blurs along x, 0 along y
	// offset 4: 12 bytes of padding
}

// Marshal serializes the parameters into a 16-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUBlurParams) Marshal() []byte {
	buf := make([]byte, GPUParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], g.Horizontal)
	return buf
}

// GPUBloomParams weights the composite.
// Matches the WGSL BloomParams struct layout exactly (see GPUBloomParamsSource).
type GPUBloomParams struct {
	SceneFactor float32 // offset 0
	BloomFactor float32 // offset 4
	// offset 8: 8 bytes of padding
}

// Marshal serializes the parameters into a 16-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUBloomParams) Marshal() []byte {
	buf := make([]byte, GPUParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.SceneFactor))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.BloomFactor))
	return buf
}
