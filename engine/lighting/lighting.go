// Package lighting resolves a G-buffer against a light block into HDR radiance
// and the bright-pass plane that feeds bloom.
package lighting

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// BrightScale amplifies the thresholded radiance written to the bright plane.
const BrightScale = 4

// Pass is the deferred lighting pass.
type Pass interface {
	// Run shades every pixel of gb with the active lights of block.
	//
	// Parameters:
	//   - ctx: cancels the pass between work-groups
	//   - gb: the geometry written this frame
	//   - block: the lights and the lightmask
	//   - cameraPos: world-space eye position
	//   - hdr: receives the radiance
	//   - bright: receives the bloom source
	//
	// Returns:
	//   - error: wraps common.ErrSizeMismatch when the planes differ in size, or ctx.Err()
	Run(ctx context.Context, gb *gbuffer.GBuffer, block *light.Block, cameraPos mgl32.Vec3, hdr, bright *common.Image) error

	// Threshold returns the bloom smoothstep edges.
	//
	// Returns:
	//   - mgl32.Vec2: (min, max) luminance
	Threshold() mgl32.Vec2

	// SetThreshold replaces the bloom smoothstep edges.
	//
	// Parameters:
	//   - threshold: (min, max) luminance
	SetThreshold(threshold mgl32.Vec2)

	// SpotPolicy returns the spot cone test.
	//
	// Returns:
	//   - light.SpotPolicy: the policy
	SpotPolicy() light.SpotPolicy

	// SetSpotPolicy replaces the spot cone test.
	//
	// Parameters:
	//   - policy: the policy
	SetSpotPolicy(policy light.SpotPolicy)
}

type pass struct {
	mu         sync.RWMutex
	dispatcher dispatch.Dispatcher
	threshold  mgl32.Vec2
	policy     light.SpotPolicy
	logger     zerolog.Logger
}

var _ Pass = &pass{}

// NewPass creates a lighting pass with a bloom threshold of (0.0, 1.2) and the
// cosine spot test.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Pass: the pass
func NewPass(options ...PassBuilderOption) Pass {
	p := &pass{
		threshold: mgl32.Vec2{0.0, 1.2},
		policy:    light.SpotPolicyCosine,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.NewDispatcher(0)
	}
	return p
}

func (p *pass) Threshold() mgl32.Vec2 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.threshold
}

func (p *pass) SetThreshold(threshold mgl32.Vec2) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threshold = threshold
}

func (p *pass) SpotPolicy() light.SpotPolicy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.policy
}

func (p *pass) SetSpotPolicy(policy light.SpotPolicy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = policy
}

func (p *pass) Run(ctx context.Context, gb *gbuffer.GBuffer, block *light.Block, cameraPos mgl32.Vec3, hdr, bright *common.Image) error {
	if !gb.Diffuse.SameSize(hdr) || !gb.Diffuse.SameSize(bright) {
		return fmt.Errorf("lighting pass: %w", common.ErrSizeMismatch)
	}

	width, height := gb.Width(), gb.Height()
	threshold := p.Threshold()
	policy := p.SpotPolicy()
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
				radiance, bloom := Shade(gb, idx, block, cameraPos, policy, threshold)
				hdr.Pix[idx] = radiance.Vec4(1)
				bright.Pix[idx] = bloom.Vec4(1)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("lighting pass: %w", err)
	}

	p.logger.Debug().Int("lights", block.Count()).Msg("lighting pass")
	return nil
}

// Shade evaluates one G-buffer texel.
//
// Parameters:
//   - gb: the G-buffer
//   - idx: row-major texel index
//   - block: lights and lightmask
//   - cameraPos: world-space eye position
//   - policy: spot cone test
//   - threshold: bloom smoothstep edges
//
// Returns:
//   - mgl32.Vec3: HDR radiance, black where nothing was drawn
//   - mgl32.Vec3: bright-pass radiance
func Shade(gb *gbuffer.GBuffer, idx int, block *light.Block, cameraPos mgl32.Vec3, policy light.SpotPolicy, threshold mgl32.Vec2) (mgl32.Vec3, mgl32.Vec3) {
	diffuse := gb.Diffuse.Pix[idx]
	if diffuse[3] == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	position := gb.Position.Pix[idx].Vec3()
	normal := gb.Normal.Pix[idx].Vec3()
	specShininess := gb.SpecShininess.Pix[idx]
	shininess := specShininess[3]

	view := cameraPos.Sub(position)
	if view.Len() > 0 {
		view = view.Normalize()
	}

	scattered, reflected := Accumulate(block, position, normal, view, shininess, policy)
	radiance := common.MulVec3(diffuse.Vec3(), scattered).Add(common.MulVec3(reflected, specShininess.Vec3()))
	weight := BrightScale * common.Smoothstep(threshold[0], threshold[1], common.Luminance(radiance))
	return radiance, radiance.Mul(weight)
}

// Accumulate sums the scattered and reflected light of every slot set in the lightmask.
//
// Parameters:
//   - block: lights and lightmask
//   - position: world-space surface position
//   - normal: unit surface normal
//   - view: unit vector towards the eye
//   - shininess: Phong exponent
//   - policy: spot cone test
//
// Returns:
//   - mgl32.Vec3: scattered light, multiplied by the diffuse color by the caller
//   - mgl32.Vec3: reflected light, multiplied by the specular strength by the caller
func Accumulate(block *light.Block, position, normal, view mgl32.Vec3, shininess float32, policy light.SpotPolicy) (mgl32.Vec3, mgl32.Vec3) {
	var scattered, reflected mgl32.Vec3
	norm := light.NormalizationTerm(shininess)
	for mask := block.Mask; mask != 0; mask &= mask - 1 {
		l := &block.Lights[bits.TrailingZeros32(mask)]
		c := light.Evaluate(l, position, normal, view, policy)
		direct := c.Diffuse * c.Attenuation
		scattered = scattered.Add(l.Ambient).Add(l.Color.Mul(direct))
		if c.Specular > 0 {
			reflected = reflected.Add(l.Color.Mul(norm * math32.Pow(c.Specular, shininess) * direct))
		}
	}
	return scattered, reflected
}
