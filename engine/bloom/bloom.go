// Package bloom blurs the bright-pass plane and adds it back onto the HDR scene.
package bloom

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// Weights are the center and one-sided taps of the 9-tap gaussian kernel.
var Weights = [5]float32{0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216}

// DefaultBlurPasses is the number of horizontal-then-vertical ping-pong iterations.
const DefaultBlurPasses = 2

// Composite adds a blurred bright plane onto the scene. Nothing is clamped; the
// result stays in HDR range for tone mapping.
//
// Parameters:
//   - scene: the lit HDR plane
//   - blurred: the blurred bright plane
//   - sceneFactor: weight of the scene
//   - bloomFactor: weight of the bloom
//   - out: receives the sum, may alias scene
//
// Returns:
//   - error: wraps common.ErrSizeMismatch when the planes differ in size
func Composite(scene, blurred *common.Image, sceneFactor, bloomFactor float32, out *common.Image) error {
	if !scene.SameSize(blurred) || !scene.SameSize(out) {
		return fmt.Errorf("bloom composite: %w", common.ErrSizeMismatch)
	}
	for i := range out.Pix {
		out.Pix[i] = compositeTexel(scene.Pix[i], blurred.Pix[i], sceneFactor, bloomFactor)
	}
	return nil
}

func compositeTexel(scene, blurred mgl32.Vec4, sceneFactor, bloomFactor float32) mgl32.Vec4 {
	return scene.Vec3().Mul(sceneFactor).Add(blurred.Vec3().Mul(bloomFactor)).Vec4(1)
}

// Pass is the parallel bloom stage: gaussian blur followed by the composite.
type Pass interface {
	// Blur runs the configured number of separable blur iterations over src,
	// ping-ponging between two scratch planes.
	//
	// Parameters:
	//   - ctx: cancels the blur between work-groups
	//   - src: the bright plane, left untouched
	//   - ping: scratch plane written by horizontal steps
	//   - pong: scratch plane written by vertical steps
	//
	// Returns:
	//   - *common.Image: the plane holding the result, src itself when no passes run
	//   - error: wraps common.ErrSizeMismatch, or ctx.Err()
	Blur(ctx context.Context, src, ping, pong *common.Image) (*common.Image, error)

	// Composite is the work-group parallel form of the package-level Composite,
	// using the pass factors.
	//
	// Parameters:
	//   - ctx: cancels the composite between work-groups
	//   - scene: the lit HDR plane
	//   - blurred: the blurred bright plane
	//   - out: receives the sum, may alias scene
	//
	// Returns:
	//   - error: wraps common.ErrSizeMismatch, or ctx.Err()
	Composite(ctx context.Context, scene, blurred, out *common.Image) error

	// Factors returns the scene and bloom weights.
	//
	// Returns:
	//   - float32: scene factor
	//   - float32: bloom factor
	Factors() (float32, float32)

	// SetFactors replaces the scene and bloom weights.
	//
	// Parameters:
	//   - sceneFactor: weight of the scene
	//   - bloomFactor: weight of the bloom
	SetFactors(sceneFactor, bloomFactor float32)

	// SetPasses replaces the number of blur iterations; negative values are treated as 0.
	//
	// Parameters:
	//   - passes: blur iterations
	SetPasses(passes int)
}

type pass struct {
	mu          sync.RWMutex
	sceneFactor float32
	bloomFactor float32
	passes      int
	dispatcher  dispatch.Dispatcher
	logger      zerolog.Logger
}

var _ Pass = &pass{}

// NewPass creates a bloom pass with both factors at 1 and DefaultBlurPasses iterations.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Pass: the pass
func NewPass(options ...PassBuilderOption) Pass {
	p := &pass{
		sceneFactor: 1,
		bloomFactor: 1,
		passes:      DefaultBlurPasses,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.NewDispatcher(0)
	}
	return p
}

func (p *pass) Factors() (float32, float32) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sceneFactor, p.bloomFactor
}

func (p *pass) SetFactors(sceneFactor, bloomFactor float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sceneFactor, p.bloomFactor = sceneFactor, bloomFactor
}

func (p *pass) SetPasses(passes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passes = max(passes, 0)
}

func (p *pass) Blur(ctx context.Context, src, ping, pong *common.Image) (*common.Image, error) {
	if !src.SameSize(ping) || !src.SameSize(pong) {
		return nil, fmt.Errorf("bloom blur: %w", common.ErrSizeMismatch)
	}
	p.mu.RLock()
	passes := p.passes
	p.mu.RUnlock()

	in := src
	for range passes {
		if err := p.blurAxis(ctx, in, ping, true); err != nil {
			return nil, err
		}
		if err := p.blurAxis(ctx, ping, pong, false); err != nil {
			return nil, err
		}
		in = pong
	}
	p.logger.Debug().Int("passes", passes).Msg("bloom blur")
	return in, nil
}

// blurAxis applies one 9-tap gaussian along x or y with clamp-to-edge addressing.
func (p *pass) blurAxis(ctx context.Context, src, dst *common.Image, horizontal bool) error {
	width, height := src.Width, src.Height
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
				sum := src.Pix[y*width+x].Vec3().Mul(Weights[0])
				for tap := 1; tap < len(Weights); tap++ {
					var a, b mgl32.Vec4
					if horizontal {
						a = src.Pix[y*width+min(x+tap, width-1)]
						b = src.Pix[y*width+max(x-tap, 0)]
					} else {
						a = src.Pix[min(y+tap, height-1)*width+x]
						b = src.Pix[max(y-tap, 0)*width+x]
					}
					sum = sum.Add(a.Vec3().Add(b.Vec3()).Mul(Weights[tap]))
				}
				dst.Pix[y*width+x] = sum.Vec4(1)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("bloom blur: %w", err)
	}
	return nil
}

func (p *pass) Composite(ctx context.Context, scene, blurred, out *common.Image) error {
	if !scene.SameSize(blurred) || !scene.SameSize(out) {
		return fmt.Errorf("bloom composite: %w", common.ErrSizeMismatch)
	}
	sceneFactor, bloomFactor := p.Factors()
	width, height := scene.Width, scene.Height
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
				i := y*width + x
				out.Pix[i] = compositeTexel(scene.Pix[i], blurred.Pix[i], sceneFactor, bloomFactor)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("bloom composite: %w", err)
	}
	return nil
}
