package exposure

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	minLog = float32(-8)
	maxLog = float32(3.5)
)

func gray(l float32) mgl32.Vec3 {
	return mgl32.Vec3{l, l, l}
}

func uniform(w, h int, l float32) *common.Image {
	img := common.NewImage(w, h)
	img.Fill(gray(l).Vec4(1))
	return img
}

func buildAndReduce(t *testing.T, b HistogramBuilder, r Reducer, img *common.Image, adapted *AdaptedLuminance, k float32) Result {
	t.Helper()
	hist := NewHistogram()
	require.NoError(t, b.Build(context.Background(), img, NewHistogramParams(minLog, maxLog, img.Width, img.Height), hist))
	return r.Reduce(hist, NewAverageParams(minLog, maxLog, k, img.Width, img.Height), adapted)
}

func TestColorToBin(t *testing.T) {
	inv := 1 / (maxLog - minLog)
	tests := []struct {
		name string
		lum  float32
		want uint32
	}{
		{"zero", 0, 0},
		{"below epsilon", 0.0049, 0},
		{"floor sits below epsilon", math32.Exp2(minLog), 0},
		{"just past epsilon", 0.006, 14},
		{"middle gray", 0.18, 123},
		{"at ceiling", math32.Exp2(maxLog), 255},
		{"past ceiling", 1e6, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorToBin(gray(tt.lum), minLog, inv))
		})
	}

	assert.Equal(t, uint32(0), ColorToBin(gray(float32(math.NaN())), minLog, inv))
}

func TestColorToBinMonotonic(t *testing.T) {
	inv := 1 / (maxLog - minLog)
	prev := uint32(0)
	for e := float32(-12); e <= 6; e += 0.01 {
		lum := math32.Exp2(e)
		bin := ColorToBin(gray(lum), minLog, inv)
		if lum >= BlackLuminance {
			assert.GreaterOrEqual(t, bin, uint32(1))
		} else {
			assert.Zero(t, bin)
		}
		assert.LessOrEqual(t, bin, uint32(255))
		assert.GreaterOrEqual(t, bin, prev, "log2 L = %f", e)
		prev = bin
	}
}

func TestHistogramBuildMatchesSerialBinning(t *testing.T) {
	// 37x21 leaves partial work-groups on both edges.
	img := common.NewImage(37, 21)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Set(x, y, gray(float32(x*y)*0.01).Vec4(1))
		}
	}
	params := NewHistogramParams(minLog, maxLog, img.Width, img.Height)

	var want [HistogramBins]uint32
	for _, p := range img.Pix {
		want[ColorToBin(p.Vec3(), params.MinLogLuminance, params.InvLogLuminanceRange)]++
	}

	hist := NewHistogram()
	b := NewHistogramBuilder(WithDispatcher(dispatch.NewDispatcher(4)))
	require.NoError(t, b.Build(context.Background(), img, params, hist))
	assert.Equal(t, want, hist.Snapshot())
	assert.Equal(t, uint64(37*21), hist.Total())

	// the builder only adds
	require.NoError(t, b.Build(context.Background(), img, params, hist))
	assert.Equal(t, uint64(2*37*21), hist.Total())
}

func TestHistogramBuildRejectsWrongSize(t *testing.T) {
	hist := NewHistogram()
	err := NewHistogramBuilder().Build(context.Background(), common.NewImage(4, 4), NewHistogramParams(minLog, maxLog, 5, 4), hist)
	assert.ErrorIs(t, err, common.ErrSizeMismatch)
}

func TestReduceZeroesHistogram(t *testing.T) {
	hist := NewHistogram()
	hist.Add(10, 5)
	hist.Add(200, 1)
	require.Equal(t, uint32(5), hist.Bin(10))
	NewReducer().Reduce(hist, NewAverageParams(minLog, maxLog, 1, 2, 3), NewAdaptedLuminance(1))
	assert.Zero(t, hist.Total())
}

func TestReduceWeightedAverage(t *testing.T) {
	hist := NewHistogram()
	hist.Add(1, 2)
	hist.Add(255, 2)
	adapted := NewAdaptedLuminance(1)

	res := NewReducer().Reduce(hist, NewAverageParams(minLog, maxLog, 1, 2, 2), adapted)
	// (1*2 + 255*2) / 4 - 1 = 127
	assert.InDelta(t, 127, res.WeightedLogAverage, 1e-6)
	assert.InDelta(t, math32.Exp2(127.0/254*(maxLog-minLog)+minLog), res.Measured, 1e-5)
	assert.Equal(t, float32(1), res.Previous)
	assert.Equal(t, res.Measured, res.Adapted, "a time coefficient of 1 jumps straight to the measurement")
	assert.Equal(t, res.Adapted, adapted.Load())
}

func TestBuildAndReduceIsIdempotent(t *testing.T) {
	img := common.NewImage(40, 30)
	for i := range img.Pix {
		img.Pix[i] = gray(float32(i%97) * 0.05).Vec4(1)
	}
	b := NewHistogramBuilder(WithDispatcher(dispatch.NewDispatcher(3)))
	r := NewReducer()

	first := buildAndReduce(t, b, r, img, NewAdaptedLuminance(0.5), 0.3)
	second := buildAndReduce(t, b, r, img, NewAdaptedLuminance(0.5), 0.3)
	assert.Equal(t, first.Measured, second.Measured)
	assert.Equal(t, first.Adapted, second.Adapted)
}

func TestAdaptationConvergesGeometrically(t *testing.T) {
	img := uniform(32, 32, 0.18)
	b := NewHistogramBuilder(WithDispatcher(dispatch.NewDispatcher(2)))
	r := NewReducer()
	const k = float32(0.25)

	for _, start := range []float32{0.01, 5} {
		adapted := NewAdaptedLuminance(start)
		var measured float32
		prevGap := float32(math.Inf(1))
		for n := 1; n <= 20; n++ {
			res := buildAndReduce(t, b, r, img, adapted, k)
			measured = res.Measured
			gap := math32.Abs(res.Adapted - measured)
			want := math32.Abs(start-measured) * math32.Pow(1-k, float32(n))
			assert.InDelta(t, want, gap, float64(1e-4*math32.Max(1, start)))
			assert.Less(t, gap, prevGap)
			prevGap = gap
		}
		assert.InDelta(t, 0.18, measured, 0.01, "bin quantization keeps the measurement near the input")
	}
}

func TestBlackImageAdaptsToFloor(t *testing.T) {
	img := uniform(20, 20, 0)
	b := NewHistogramBuilder()
	r := NewReducer()
	adapted := NewAdaptedLuminance(DefaultAdaptedLuminance)

	var res Result
	for range 60 {
		res = buildAndReduce(t, b, r, img, adapted, 0.5)
	}
	floor := math32.Exp2(minLog - (maxLog-minLog)/254)
	assert.InDelta(t, floor, res.Measured, 1e-6)
	assert.InDelta(t, floor, adapted.Load(), 1e-5)
	assert.Less(t, adapted.Load(), float32(BlackLuminance))
}

func TestTimeCoefficient(t *testing.T) {
	assert.Zero(t, TimeCoefficient(0, 1.1))
	assert.InDelta(t, 1-math.Exp(-1.1/60), TimeCoefficient(1.0/60, 1.1), 1e-6)
	assert.InDelta(t, 1, TimeCoefficient(1000, 1.1), 1e-6)
	assert.Zero(t, TimeCoefficient(-1, 1.1), "negative time never overshoots")
}

func TestAdaptedLuminanceDefault(t *testing.T) {
	assert.Equal(t, float32(DefaultAdaptedLuminance), NewAdaptedLuminance(0).Load())
	a := NewAdaptedLuminance(2)
	a.Store(3)
	assert.Equal(t, float32(3), a.Load())
}

func TestParamsMarshal(t *testing.T) {
	hp := NewHistogramParams(minLog, maxLog, 1920, 1080)
	buf := hp.Marshal()
	require.Len(t, buf, GPUParamsSize)
	assert.Equal(t, uint32(1080), binary.LittleEndian.Uint32(buf[12:]))
	assert.InDelta(t, 1/11.5, math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])), 1e-7)

	ap := NewAverageParams(minLog, maxLog, 0.5, 1920, 1080)
	buf = ap.Marshal()
	require.Len(t, buf, GPUParamsSize)
	assert.Equal(t, float32(11.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Equal(t, uint32(1920*1080), binary.LittleEndian.Uint32(buf[12:]))
}
