package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
)

// GPULightBlockSource is the canonical WGSL definition of the Light and LightBlock structs.
//
//go:embed assets/light_block.wgsl
var GPULightBlockSource string

// MaxLights is the fixed capacity of a light block. The lightmask is a uint32,
// one bit per slot.
const MaxLights = 32

// ShaderLightSize is the size of one ShaderLight record in bytes.
const ShaderLightSize = 80

// BlockSize is the size of a marshaled Block: 32 records plus a 16-byte mask row.
const BlockSize = MaxLights*ShaderLightSize + 16

// ShaderLight is the GPU-aligned representation of a single light.
// Matches the WGSL Light struct exactly (see GPULightBlockSource).
// Size: 80 bytes (std140 aligned, every vec3 is followed by a scalar).
type ShaderLight struct {
	Position  mgl32.Vec3 // offset  0: world-space position (point/spot)
	Type      LightType  // offset 12: 0 ambient, 1 directional, 2 point, 3 spot
	Direction mgl32.Vec3 // offset 16: normalized travel direction (directional/spot)
	Constant  float32    // offset 28: constant attenuation
	Ambient   mgl32.Vec3 // offset 32: ambient color
	Linear    float32    // offset 44: linear attenuation
	Color     mgl32.Vec3 // offset 48: color, already divided by pi
	Quadratic float32    // offset 60: quadratic attenuation
	Cutoff    float32    // offset 64: cosine of the spot half-angle
	Exponent  float32    // offset 68: spot falloff exponent
	// offset 72: 8 bytes of padding to 80
}

// Marshal serializes the record into an 80-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (s *ShaderLight) Marshal() []byte {
	buf := make([]byte, ShaderLightSize)
	s.put(buf)
	return buf
}

func (s *ShaderLight) put(buf []byte) {
	f := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	f(0, s.Position[0])
	f(4, s.Position[1])
	f(8, s.Position[2])
	binary.LittleEndian.PutUint32(buf[12:16], uint32(s.Type))
	f(16, s.Direction[0])
	f(20, s.Direction[1])
	f(24, s.Direction[2])
	f(28, s.Constant)
	f(32, s.Ambient[0])
	f(36, s.Ambient[1])
	f(40, s.Ambient[2])
	f(44, s.Linear)
	f(48, s.Color[0])
	f(52, s.Color[1])
	f(56, s.Color[2])
	f(60, s.Quadratic)
	f(64, s.Cutoff)
	f(68, s.Exponent)
	f(72, 0) // padding
	f(76, 0) // padding
}

// Block is the fixed-capacity light array bound to the lighting pass together
// with the lightmask that selects active slots.
type Block struct {
	Lights [MaxLights]ShaderLight
	Mask   uint32
}

// Set stores a light in slot i and marks it active. Out-of-range slots are ignored.
//
// Parameters:
//   - i: slot index in [0, MaxLights)
//   - l: the record to store
func (b *Block) Set(i int, l ShaderLight) {
	if i < 0 || i >= MaxLights {
		return
	}
	b.Lights[i] = l
	b.Mask |= 1 << uint(i)
}

// Active reports whether slot i contributes.
func (b *Block) Active(i int) bool {
	return i >= 0 && i < MaxLights && b.Mask&(1<<uint(i)) != 0
}

// Count returns the number of active slots.
func (b *Block) Count() int {
	return bits.OnesCount32(b.Mask)
}

// Pack fills a block from the enabled lights, in order, up to limit slots.
// Lights past the limit are dropped.
//
// Parameters:
//   - lights: candidate lights
//   - limit: slot budget, clamped to [0, MaxLights]
//
// Returns:
//   - Block: the packed block with its mask
//   - int: the number of enabled lights that did not fit
func Pack(lights []Light, limit int) (Block, int) {
	limit = max(0, min(limit, MaxLights))
	var b Block
	slot, dropped := 0, 0
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		if slot >= limit {
			dropped++
			continue
		}
		b.Set(slot, l.ShaderLight())
		slot++
	}
	return b, dropped
}

// Marshal serializes the block: 32 records followed by a vec4<u32> row whose
// x component is the lightmask.
//
// Returns:
//   - []byte: BlockSize bytes ready for GPU upload
func (b *Block) Marshal() []byte {
	buf := make([]byte, BlockSize)
	for i := range b.Lights {
		b.Lights[i].put(buf[i*ShaderLightSize : (i+1)*ShaderLightSize])
	}
	binary.LittleEndian.PutUint32(buf[MaxLights*ShaderLightSize:], b.Mask)
	return buf
}
