package tonemap

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/rs/zerolog"
)

// Pass tone-maps a full HDR plane.
type Pass interface {
	// Run writes the display-encoded image of hdr to out.
	//
	// Parameters:
	//   - ctx: cancels the pass between work-groups
	//   - hdr: scene radiance
	//   - adapted: the adapted luminance of this frame
	//   - out: receives gamma-encoded color with alpha 1
	//
	// Returns:
	//   - error: wraps common.ErrSizeMismatch when the planes differ in size, or ctx.Err()
	Run(ctx context.Context, hdr *common.Image, adapted float32, out *common.Image) error

	// Curve returns the curve solved for the current white point.
	//
	// Returns:
	//   - Lottes: the curve
	Curve() Lottes

	// SetWhitePoint re-solves the curve for a new L_white.
	//
	// Parameters:
	//   - whitePoint: the new L_white
	SetWhitePoint(whitePoint float32)
}

type pass struct {
	mu         sync.RWMutex
	curve      Lottes
	dispatcher dispatch.Dispatcher
	logger     zerolog.Logger
}

var _ Pass = &pass{}

// NewPass creates a tone-mapping pass for DefaultWhitePoint.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Pass: the pass
func NewPass(options ...PassBuilderOption) Pass {
	p := &pass{
		curve:  NewLottes(DefaultWhitePoint),
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.NewDispatcher(0)
	}
	return p
}

func (p *pass) Curve() Lottes {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.curve
}

func (p *pass) SetWhitePoint(whitePoint float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.curve = NewLottes(whitePoint)
}

func (p *pass) Run(ctx context.Context, hdr *common.Image, adapted float32, out *common.Image) error {
	if !hdr.SameSize(out) {
		return fmt.Errorf("tonemap pass: %w", common.ErrSizeMismatch)
	}
	curve := p.Curve()
	width, height := hdr.Width, hdr.Height

	gx, gy := dispatch.GroupCounts(width, height)
	err := p.dispatcher.Dispatch(ctx, gx, gy, func(groupX, groupY int) {
		for ly := range dispatch.GroupSize {
			y := groupY*dispatch.GroupSize + ly
			if y >= height {
				return
			}
			for lx := range dispatch.GroupSize {
				x := groupX*dispatch.GroupSize + lx
				if x >= width {
					break
				}
				idx := y*width + x
				out.Pix[idx] = curve.Map(hdr.Pix[idx].Vec3(), adapted).Vec4(1)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("tonemap pass: %w", err)
	}

	p.logger.Debug().Float32("adapted", adapted).Float32("white", curve.HDRMax).Msg("tonemap pass")
	return nil
}
