package material

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUMaterialSource is the canonical WGSL definition of the Material struct.
// Matches GPUMaterial layout exactly (48 bytes).
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterialSize is the size of a marshaled GPUMaterial in bytes.
const GPUMaterialSize = 48

// GPUMaterial is the uniform bound to the geometry pass for one draw batch.
// Matches the WGSL Material struct layout exactly (see GPUMaterialSource).
type GPUMaterial struct {
	DiffuseFactor      mgl32.Vec4 // offset  0: RGBA diffuse, alpha is coverage
	SpecularFactor     mgl32.Vec4 // offset 16: RGB specular strength, alpha is shininess
	UseDiffuseTexture  uint32     // offset 32: 1 samples the diffuse texture
	UseSpecularTexture uint32     // offset 36: 1 samples the specular texture
	// offset 40: 8 bytes of padding
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, GPUMaterialSize)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.DiffuseFactor[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.SpecularFactor[i]))
	}
	binary.LittleEndian.PutUint32(buf[32:36], g.UseDiffuseTexture)
	binary.LittleEndian.PutUint32(buf[36:40], g.UseSpecularTexture)
	return buf
}
