package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds decoded RGBA8 pixels ready for a GPU texture upload.
type TextureStagingData struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// SamplerStagingData describes sampler state; zero fields fall back to renderer defaults.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	Compare                                  wgpu.CompareFunction
	MaxAnisotropy                            uint16
}

// ImportedTexture is an encoded image handed over by the resource loader,
// either as in-memory bytes or as a file path.
type ImportedTexture struct {
	// Name is a human readable identifier.
	Name string

	// Path is the on-disk location, used when Data is empty.
	Path string

	// Data holds the encoded image bytes (PNG, JPEG, BMP, TIFF or WebP).
	Data []byte

	// Width is filled in by Decode.
	Width int

	// Height is filled in by Decode.
	Height int

	// SamplerData overrides the default sampler when set.
	SamplerData *SamplerStagingData
}

// Decode decodes the texture into tightly packed RGBA8 pixels.
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: if the texture is nil, has no source, or fails to decode
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return TextureStagingData{}, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}, nil
}
