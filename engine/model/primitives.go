package model

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NewPlane builds a square in the XZ plane centered on the origin with its
// normal along +Y. Triangles wind counter-clockwise seen from above.
//
// Parameters:
//   - name: model identifier
//   - size: edge length
//   - uvRepeat: texture repeats across the plane
//
// Returns:
//   - Model: the plane
func NewPlane(name string, size, uvRepeat float32) Model {
	h := size / 2
	n := mgl32.Vec3{0, 1, 0}
	vertices := []GPUVertex{
		{Position: mgl32.Vec3{-h, 0, -h}, Normal: n, TexCoord: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{-h, 0, h}, Normal: n, TexCoord: mgl32.Vec2{0, uvRepeat}},
		{Position: mgl32.Vec3{h, 0, h}, Normal: n, TexCoord: mgl32.Vec2{uvRepeat, uvRepeat}},
		{Position: mgl32.Vec3{h, 0, -h}, Normal: n, TexCoord: mgl32.Vec2{uvRepeat, 0}},
	}
	return NewModel(WithName(name), WithMesh(vertices, []uint32{0, 1, 2, 0, 2, 3}))
}

// NewQuad builds a square in the XY plane centered on the origin facing +Z.
//
// Parameters:
//   - name: model identifier
//   - size: edge length
//
// Returns:
//   - Model: the quad
func NewQuad(name string, size float32) Model {
	h := size / 2
	n := mgl32.Vec3{0, 0, 1}
	vertices := []GPUVertex{
		{Position: mgl32.Vec3{-h, -h, 0}, Normal: n, TexCoord: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{h, -h, 0}, Normal: n, TexCoord: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{h, h, 0}, Normal: n, TexCoord: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{-h, h, 0}, Normal: n, TexCoord: mgl32.Vec2{0, 0}},
	}
	return NewModel(WithName(name), WithMesh(vertices, []uint32{0, 1, 2, 0, 2, 3}))
}

// NewCube builds an axis-aligned cube with per-face normals, 24 vertices and 12 triangles.
//
// Parameters:
//   - name: model identifier
//   - size: edge length
//
// Returns:
//   - Model: the cube
func NewCube(name string, size float32) Model {
	h := size / 2
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Mul(h).Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
			vertices = append(vertices, GPUVertex{
				Position: p,
				Normal:   f.normal,
				TexCoord: mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewModel(WithName(name), WithMesh(vertices, indices))
}

// NewSphere builds a UV sphere centered on the origin.
//
// Parameters:
//   - name: model identifier
//   - radius: sphere radius
//   - segments: longitudinal slices, at least 3
//   - rings: latitudinal bands, at least 2
//
// Returns:
//   - Model: the sphere
func NewSphere(name string, radius float32, segments, rings int) Model {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]GPUVertex, 0, (segments+1)*(rings+1))
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		phi := v * math32.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			theta := u * 2 * math32.Pi
			n := mgl32.Vec3{
				math32.Sin(phi) * math32.Cos(theta),
				math32.Cos(phi),
				-math32.Sin(phi) * math32.Sin(theta),
			}
			vertices = append(vertices, GPUVertex{Position: n.Mul(radius), Normal: n, TexCoord: mgl32.Vec2{u, v}})
		}
	}

	stride := uint32(segments + 1)
	indices := make([]uint32, 0, segments*rings*6)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return NewModel(WithName(name), WithMesh(vertices, indices), WithBoundingRadius(radius))
}
