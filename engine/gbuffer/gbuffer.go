// Package gbuffer holds the deferred geometry buffer and the pass that fills it.
package gbuffer

import (
	"github.com/Carmen-Shannon/oxy-hdr/common"
)

// GBuffer is the set of full-screen planes written by the geometry pass and read
// by the lighting pass. All planes share one size.
type GBuffer struct {
	// Position holds the world-space position, w is 1 where geometry was drawn.
	Position *common.Image

	// Normal holds the unit world-space normal.
	Normal *common.Image

	// Diffuse holds the diffuse color; alpha 0 marks pixels nothing was drawn to.
	Diffuse *common.Image

	// SpecShininess holds the specular strength in rgb and the Phong shininess in a.
	SpecShininess *common.Image

	// Depth is the rasterizer's depth plane in [0, 1], 1 is the far plane.
	Depth []float32

	width  int
	height int
}

// NewGBuffer allocates a cleared G-buffer.
//
// Parameters:
//   - width: plane width in pixels
//   - height: plane height in pixels
//
// Returns:
//   - *GBuffer: the allocated buffer
func NewGBuffer(width, height int) *GBuffer {
	gb := &GBuffer{
		Position:      common.NewImage(width, height),
		Normal:        common.NewImage(width, height),
		Diffuse:       common.NewImage(width, height),
		SpecShininess: common.NewImage(width, height),
		Depth:         make([]float32, width*height),
		width:         width,
		height:        height,
	}
	gb.Clear()
	return gb
}

// Width returns the plane width in pixels.
func (g *GBuffer) Width() int {
	return g.width
}

// Height returns the plane height in pixels.
func (g *GBuffer) Height() int {
	return g.height
}

// Clear zeroes every color plane and resets depth to the far plane.
func (g *GBuffer) Clear() {
	clear(g.Position.Pix)
	clear(g.Normal.Pix)
	clear(g.Diffuse.Pix)
	clear(g.SpecShininess.Pix)
	for i := range g.Depth {
		g.Depth[i] = 1
	}
}

// Covered reports whether the geometry pass wrote pixel (x, y) since the last Clear.
func (g *GBuffer) Covered(x, y int) bool {
	return g.Diffuse.At(x, y)[3] > 0
}
