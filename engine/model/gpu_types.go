package model

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertexSize is the stride of one vertex in the vertex buffer.
const GPUVertexSize = 32

// GPUVertex is one mesh vertex as laid out in the vertex buffer.
type GPUVertex struct {
	Position mgl32.Vec3 // offset  0: model-space position
	Normal   mgl32.Vec3 // offset 12: model-space normal
	TexCoord mgl32.Vec2 // offset 24: texture coordinate
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	g.put(buf)
	return buf
}

func (g *GPUVertex) put(buf []byte) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Normal[i]))
	}
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.TexCoord[1]))
}

// MarshalVertices packs a vertex slice into one contiguous buffer.
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*GPUVertexSize)
	for i := range vertices {
		vertices[i].put(buf[i*GPUVertexSize:])
	}
	return buf
}

// MarshalIndices packs 32-bit indices little-endian.
func MarshalIndices(indices []uint32) []byte {
	return common.SliceToBytes(indices)
}

// ComputeBoundingRadius returns the largest distance from the model origin to any vertex.
//
// Parameters:
//   - vertices: the vertex data
//
// Returns:
//   - float32: the bounding sphere radius around the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		if d := v.Position.Dot(v.Position); d > maxDistSq {
			maxDistSq = d
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// GPUInstanceSource is the canonical WGSL definition of the Instance struct.
// Matches GPUInstance layout exactly (128 bytes).
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// GPUInstanceSize is the stride of one instance in the instance storage buffer.
const GPUInstanceSize = 128

// GPUInstance is the per-instance transform read by the geometry pass vertex stage.
// The normal matrix is widened to a mat4 so the record needs no padding.
type GPUInstance struct {
	Model  mgl32.Mat4 // offset  0: model-to-world transform
	Normal mgl32.Mat4 // offset 64: inverse transpose of the upper 3x3 of Model
}

// NewGPUInstance derives the normal matrix from a model matrix.
func NewGPUInstance(model mgl32.Mat4) GPUInstance {
	return GPUInstance{Model: model, Normal: common.NormalMatrix(model).Mat4()}
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, GPUInstanceSize)
	common.PutMat4(buf[0:64], g.Model)
	common.PutMat4(buf[64:128], g.Normal)
	return buf
}

// MarshalInstances packs an instance slice into one contiguous buffer.
func MarshalInstances(instances []GPUInstance) []byte {
	buf := make([]byte, len(instances)*GPUInstanceSize)
	for i := range instances {
		common.PutMat4(buf[i*GPUInstanceSize:], instances[i].Model)
		common.PutMat4(buf[i*GPUInstanceSize+64:], instances[i].Normal)
	}
	return buf
}
