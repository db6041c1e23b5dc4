package material

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, fill func(x, y int) color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMaterialFactorsWithoutTextures(t *testing.T) {
	m := NewMaterial(
		WithName("red"),
		WithDiffuseFactor(mgl32.Vec4{1, 0, 0, 1}),
		WithSpecular(mgl32.Vec3{0.2, 0.2, 0.2}, 64),
	)

	assert.Equal(t, "red", m.Name())
	assert.False(t, m.UseDiffuseTexture())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, m.Diffuse(mgl32.Vec2{0.3, 0.7}))
	assert.Equal(t, mgl32.Vec4{0.2, 0.2, 0.2, 64}, m.SpecShininess(mgl32.Vec2{}))
}

func TestMaterialNilTextureKeepsFactor(t *testing.T) {
	m := NewMaterial(WithDiffuseTexture(nil), WithDiffuseFactor(mgl32.Vec4{0, 1, 0, 1}))
	assert.False(t, m.UseDiffuseTexture())
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, m.Diffuse(mgl32.Vec2{0.5, 0.5}))
}

func TestMaterialSamplesTexture(t *testing.T) {
	data := encodePNG(t, 2, 2, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	})
	tex, err := LoadTexture(&common.ImportedTexture{Name: "white", Data: data}, false)
	require.NoError(t, err)

	m := NewMaterial(WithDiffuseTexture(tex), WithDiffuseFactor(mgl32.Vec4{0, 0, 0, 1}))
	require.True(t, m.UseDiffuseTexture())

	got := m.Diffuse(mgl32.Vec2{0.25, 0.75})
	assert.InDelta(t, 1.0, got[0], 1e-6)
	assert.InDelta(t, 1.0, got[3], 1e-6)

	g := m.GPUMaterial()
	assert.Equal(t, uint32(1), g.UseDiffuseTexture)
	assert.Equal(t, uint32(0), g.UseSpecularTexture)
}

func TestTextureBilinearRepeat(t *testing.T) {
	// Left column black, right column white.
	pix := []byte{
		0, 0, 0, 255, 255, 255, 255, 255,
		0, 0, 0, 255, 255, 255, 255, 255,
	}
	tex := NewTextureFromRGBA8("ramp", 2, 2, pix, false)

	assert.InDelta(t, 0.0, tex.Sample(mgl32.Vec2{0.25, 0.5})[0], 1e-6)
	assert.InDelta(t, 1.0, tex.Sample(mgl32.Vec2{0.75, 0.5})[0], 1e-6)
	assert.InDelta(t, 0.5, tex.Sample(mgl32.Vec2{0.5, 0.5})[0], 1e-6)
	// Sampling at u=0 blends the left texel with the wrapped right texel.
	assert.InDelta(t, 0.5, tex.Sample(mgl32.Vec2{0, 0.5})[0], 1e-6)
	assert.Equal(t, tex.Sample(mgl32.Vec2{0.25, 0.5}), tex.Sample(mgl32.Vec2{1.25, -0.5}))
}

func TestTextureSRGBDecode(t *testing.T) {
	tex := NewTextureFromRGBA8("gray", 1, 1, []byte{128, 128, 128, 128}, true)
	c := tex.Texel(0, 0)
	assert.InDelta(t, 0.2158, c[0], 1e-3)
	assert.InDelta(t, 128.0/255.0, c[3], 1e-6, "alpha stays linear")
}

func TestLoadTextureErrors(t *testing.T) {
	_, err := LoadTexture(&common.ImportedTexture{Name: "none"}, false)
	assert.Error(t, err)

	_, err = LoadTexture(&common.ImportedTexture{Name: "junk", Data: []byte("not an image")}, false)
	assert.Error(t, err)
}

func TestGPUMaterialMarshal(t *testing.T) {
	g := GPUMaterial{
		DiffuseFactor:      mgl32.Vec4{0.1, 0.2, 0.3, 0.4},
		SpecularFactor:     mgl32.Vec4{0.5, 0.6, 0.7, 16},
		UseDiffuseTexture:  1,
		UseSpecularTexture: 0,
	}
	buf := g.Marshal()
	require.Len(t, buf, GPUMaterialSize)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(0.3), f(8))
	assert.Equal(t, float32(16), f(28))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[32:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[40:]))
}
