package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Texture is a decoded RGBA image held in linear float form for CPU sampling.
// The original RGBA8 staging data is kept so the GPU path can upload the same texels.
type Texture struct {
	Name    string
	Width   int
	Height  int
	SRGB    bool
	Staging common.TextureStagingData
	Sampler *common.SamplerStagingData

	texels []mgl32.Vec4
}

// LoadTexture decodes an imported image into a Texture.
//
// Parameters:
//   - imported: the encoded image, from memory or disk
//   - srgb: true to convert color channels from sRGB to linear on decode
//
// Returns:
//   - *Texture: the decoded texture
//   - error: if decoding fails or the image is empty
func LoadTexture(imported *common.ImportedTexture, srgb bool) (*Texture, error) {
	staging, err := imported.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %q: %w", imported.Name, err)
	}
	if staging.Width == 0 || staging.Height == 0 {
		return nil, fmt.Errorf("texture %q is empty", imported.Name)
	}
	t := NewTextureFromRGBA8(imported.Name, int(staging.Width), int(staging.Height), staging.Pixels, srgb)
	t.Sampler = imported.SamplerData
	return t, nil
}

// NewTextureFromRGBA8 wraps tightly packed RGBA8 pixels.
//
// Parameters:
//   - name: debug name
//   - width: width in texels
//   - height: height in texels
//   - pix: width*height*4 bytes
//   - srgb: true to decode color channels as sRGB
//
// Returns:
//   - *Texture: the texture
func NewTextureFromRGBA8(name string, width, height int, pix []byte, srgb bool) *Texture {
	t := &Texture{
		Name:   name,
		Width:  width,
		Height: height,
		SRGB:   srgb,
		Staging: common.TextureStagingData{
			Pixels: pix,
			Width:  uint32(width),
			Height: uint32(height),
		},
		texels: make([]mgl32.Vec4, width*height),
	}
	for i := range t.texels {
		p := pix[i*4 : i*4+4]
		c := mgl32.Vec4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
		if srgb {
			c[0], c[1], c[2] = srgbToLinear(c[0]), srgbToLinear(c[1]), srgbToLinear(c[2])
		}
		t.texels[i] = c
	}
	return t
}

// Texel returns the texel at integer coordinates, wrapping in both directions.
func (t *Texture) Texel(x, y int) mgl32.Vec4 {
	x = wrap(x, t.Width)
	y = wrap(y, t.Height)
	return t.texels[y*t.Width+x]
}

// Sample returns the bilinearly filtered texel at uv with repeat addressing.
//
// Parameters:
//   - uv: texture coordinate, (0,0) is the top-left texel corner
//
// Returns:
//   - mgl32.Vec4: linear RGBA
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	if t == nil || len(t.texels) == 0 {
		return mgl32.Vec4{}
	}
	fx := uv[0]*float32(t.Width) - 0.5
	fy := uv[1]*float32(t.Height) - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := t.Texel(x0, y0)
	c10 := t.Texel(x0+1, y0)
	c01 := t.Texel(x0, y0+1)
	c11 := t.Texel(x0+1, y0+1)

	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}
