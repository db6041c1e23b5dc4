package lighting

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUParamsLayout(t *testing.T) {
	g := NewGPUParams(light.SpotPolicyLegacy, mgl32.Vec2{0.8, 1.2}, mgl32.Vec3{1, 2, 3})
	buf := g.Marshal()
	require.Len(t, buf, GPUParamsSize)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, uint32(light.SpotPolicyLegacy), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, float32(0.8), f(16))
	assert.Equal(t, float32(1.2), f(20))
	assert.Equal(t, float32(BrightScale), f(24))
	assert.Zero(t, binary.LittleEndian.Uint32(buf[28:]))
}
