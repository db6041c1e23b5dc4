package tonemap

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUParamsSource is the canonical WGSL definition of the TonemapParams struct.
//
//go:embed assets/tonemap_params.wgsl
var GPUParamsSource string

// GPUParamsSize is the size of a marshaled GPUParams in bytes.
const GPUParamsSize = 16

// GPUParams carries the solved curve to the tone-mapping shader.
// Matches the WGSL TonemapParams struct layout exactly (see GPUParamsSource).
type GPUParams struct {
	WhitePoint float32 // offset  0: L_white
	B          float32 // offset  4
	C          float32 // offset  8
	InvGamma   float32 // offset 12
}

// GPUParams packs the curve coefficients for upload.
func (l Lottes) GPUParams() GPUParams {
	return GPUParams{WhitePoint: l.HDRMax, B: l.B, C: l.C, InvGamma: 1 / Gamma}
}

// Marshal serializes the parameters into a 16-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUParams) Marshal() []byte {
	buf := make([]byte, GPUParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.WhitePoint))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.B))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.C))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.InvGamma))
	return buf
}
