package hdr

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/exposure"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// Frame is the output of one Render call. Its planes belong to the pipeline and
// are overwritten by the next Render.
type Frame struct {
	// HDR is the lit scene with bloom added, before tone mapping.
	HDR *common.Image

	// Bright is the bright-pass plane written by the lighting pass.
	Bright *common.Image

	// LDR is the tone-mapped, gamma-encoded image.
	LDR *common.Image

	// Exposure reports the histogram reduction of this frame.
	Exposure exposure.Result

	// Lights is the number of active lights after the slot limit.
	Lights int

	// Batches is the number of instanced draws submitted.
	Batches int
}

// Image quantizes the LDR plane to 8 bits per channel.
//
// Parameters:
//   - width: output width, 0 keeps the frame width
//   - height: output height, 0 keeps the frame height
//
// Returns:
//   - image.Image: the display image
func (f *Frame) Image(width, height int) image.Image {
	img := f.LDR.ToNRGBA()
	if width <= 0 && height <= 0 {
		return img
	}
	if width <= 0 {
		width = f.LDR.Width * height / max(f.LDR.Height, 1)
	}
	if height <= 0 {
		height = f.LDR.Height * width / max(f.LDR.Width, 1)
	}
	if width == f.LDR.Width && height == f.LDR.Height {
		return img
	}
	return transform.Resize(img, width, height, transform.Linear)
}

// SavePNG writes the LDR image to path.
//
// Parameters:
//   - path: destination file
//   - width: output width, 0 keeps the frame width
//   - height: output height, 0 keeps the frame height
//
// Returns:
//   - error: if encoding or writing fails
func (f *Frame) SavePNG(path string, width, height int) error {
	if err := imgio.Save(path, f.Image(width, height), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save frame to %s: %w", path, err)
	}
	return nil
}
