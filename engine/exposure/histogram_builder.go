package exposure

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

// HistogramBuilder bins every pixel of an HDR image into a Histogram.
type HistogramBuilder interface {
	// Build adds the luminance distribution of hdr to hist. The caller zeroes hist
	// beforehand; the builder only adds.
	//
	// Parameters:
	//   - ctx: cancels the build between work-groups
	//   - hdr: the lit frame
	//   - params: log-luminance window and viewport size
	//   - hist: the global histogram
	//
	// Returns:
	//   - error: wraps common.ErrSizeMismatch when params disagree with hdr, or ctx.Err()
	Build(ctx context.Context, hdr *common.Image, params HistogramParams, hist *Histogram) error
}

type histogramBuilder struct {
	dispatcher dispatch.Dispatcher
	logger     zerolog.Logger
}

var _ HistogramBuilder = &histogramBuilder{}

// NewHistogramBuilder creates a histogram builder.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - HistogramBuilder: the builder
func NewHistogramBuilder(options ...HistogramBuilderOption) HistogramBuilder {
	b := &histogramBuilder{logger: zerolog.Nop()}
	for _, opt := range options {
		opt(b)
	}
	if b.dispatcher == nil {
		b.dispatcher = dispatch.NewDispatcher(0)
	}
	return b
}

func (b *histogramBuilder) Build(ctx context.Context, hdr *common.Image, params HistogramParams, hist *Histogram) error {
	width, height := int(params.Width), int(params.Height)
	if width != hdr.Width || height != hdr.Height {
		return fmt.Errorf("histogram build %dx%d over %dx%d image: %w", width, height, hdr.Width, hdr.Height, common.ErrSizeMismatch)
	}

	gx, gy := dispatch.GroupCounts(width, height)
	err := b.dispatcher.Dispatch(ctx, gx, gy, func(groupX, groupY int) {
		var shared [HistogramBins]atomic.Uint32

		// Phase 1: every invocation bins its own pixel into the group histogram.
		for local := range HistogramBins {
			x := groupX*dispatch.GroupSize + local%dispatch.GroupSize
			y := groupY*dispatch.GroupSize + local/dispatch.GroupSize
			if x >= width || y >= height {
				continue
			}
			bin := ColorToBin(hdr.Pix[y*width+x].Vec3(), params.MinLogLuminance, params.InvLogLuminanceRange)
			shared[bin].Add(1)
		}

		// barrier

		// Phase 2: invocation i publishes shared bin i, whichever bin it computed.
		for local := range HistogramBins {
			if n := shared[local].Load(); n > 0 {
				hist.Add(local, n)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("histogram build: %w", err)
	}

	b.logger.Debug().Int("groups", gx*gy).Msg("histogram built")
	return nil
}
