package common

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Image is a full-screen plane of linear float RGBA texels stored row-major.
// It stands in for an rgba16float render target on the CPU path.
type Image struct {
	// Width is the plane width in pixels.
	Width int

	// Height is the plane height in pixels.
	Height int

	// Pix holds Width*Height texels, row 0 first.
	Pix []mgl32.Vec4
}

// NewImage allocates a zeroed plane of the given size.
//
// Parameters:
//   - width: plane width in pixels
//   - height: plane height in pixels
//
// Returns:
//   - *Image: the allocated plane
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]mgl32.Vec4, width*height),
	}
}

// In reports whether (x, y) lies inside the plane.
func (m *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At returns the texel at (x, y). Out-of-range reads return the zero texel.
func (m *Image) At(x, y int) mgl32.Vec4 {
	if !m.In(x, y) {
		return mgl32.Vec4{}
	}
	return m.Pix[y*m.Width+x]
}

// Set writes the texel at (x, y). Out-of-range writes are dropped.
func (m *Image) Set(x, y int, v mgl32.Vec4) {
	if !m.In(x, y) {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Fill overwrites every texel with v.
func (m *Image) Fill(v mgl32.Vec4) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// SameSize reports whether o has the same dimensions as m.
func (m *Image) SameSize(o *Image) bool {
	return o != nil && m.Width == o.Width && m.Height == o.Height
}

// Clone returns a deep copy of the plane.
func (m *Image) Clone() *Image {
	c := NewImage(m.Width, m.Height)
	copy(c.Pix, m.Pix)
	return c
}

// ToNRGBA quantizes the plane to 8 bits per channel. Values are clamped to [0, 1];
// no tone mapping or gamma is applied here.
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := m.Pix[y*m.Width+x]
			out.SetNRGBA(x, y, color.NRGBA{
				R: quantize(p[0]),
				G: quantize(p[1]),
				B: quantize(p[2]),
				A: quantize(p[3]),
			})
		}
	}
	return out
}

func quantize(v float32) uint8 {
	return uint8(Saturate(v)*255 + 0.5)
}
