package camera

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (80 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the size of a marshaled GPUCameraUniform in bytes.
const GPUCameraUniformSize = 80

// GPUCameraUniform is the camera data shared by the geometry and lighting passes.
type GPUCameraUniform struct {
	ViewProj mgl32.Mat4 // offset  0: combined view-projection matrix
	Position mgl32.Vec3 // offset 64: world-space eye position, w is written as 1
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	common.PutMat4(buf[0:64], g.ViewProj)
	common.PutVec4(buf[64:80], g.Position[0], g.Position[1], g.Position[2], 1)
	return buf
}
