package exposure

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUHistogramParamsSource is the canonical WGSL definition of the HistogramParams struct.
//
//go:embed assets/histogram_params.wgsl
var GPUHistogramParamsSource string

// GPUAverageParamsSource is the canonical WGSL definition of the AverageParams struct.
//
//go:embed assets/average_params.wgsl
var GPUAverageParamsSource string

// GPUParamsSize is the size of both marshaled parameter blocks in bytes.
const GPUParamsSize = 16

// HistogramParams drives the histogram build.
// Matches the WGSL HistogramParams struct layout exactly (see GPUHistogramParamsSource).
type HistogramParams struct {
	MinLogLuminance      float32 // offset  0
	InvLogLuminanceRange float32 // offset  4
	Width                uint32  // offset  8
	Height               uint32  // offset 12
}

// NewHistogramParams derives the build parameters from the log-luminance window and viewport.
func NewHistogramParams(minLog, maxLog float32, width, height int) HistogramParams {
	return HistogramParams{
		MinLogLuminance:      minLog,
		InvLogLuminanceRange: 1 / (maxLog - minLog),
		Width:                uint32(width),
		Height:               uint32(height),
	}
}

// Marshal serializes the parameters into a 16-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (p *HistogramParams) Marshal() []byte {
	buf := make([]byte, GPUParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.MinLogLuminance))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.InvLogLuminanceRange))
	binary.LittleEndian.PutUint32(buf[8:12], p.Width)
	binary.LittleEndian.PutUint32(buf[12:16], p.Height)
	return buf
}

// AverageParams drives the histogram reduction and adaptation.
// Matches the WGSL AverageParams struct layout exactly (see GPUAverageParamsSource).
type AverageParams struct {
	MinLogLuminance   float32 // offset  0
	LogLuminanceRange float32 // offset  4
	TimeCoefficient   float32 // offset  8
	PixelCount        uint32  // offset 12
}

// NewAverageParams derives the reduction parameters for one frame.
func NewAverageParams(minLog, maxLog, timeCoefficient float32, width, height int) AverageParams {
	return AverageParams{
		MinLogLuminance:   minLog,
		LogLuminanceRange: maxLog - minLog,
		TimeCoefficient:   timeCoefficient,
		PixelCount:        uint32(width * height),
	}
}

// Marshal serializes the parameters into a 16-byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (p *AverageParams) Marshal() []byte {
	buf := make([]byte, GPUParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.MinLogLuminance))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.LogLuminanceRange))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.TimeCoefficient))
	binary.LittleEndian.PutUint32(buf[12:16], p.PixelCount)
	return buf
}
