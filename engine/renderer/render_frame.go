package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/common"
	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
)

// ErrNoCamera is returned when a scene without a camera is rendered.
var ErrNoCamera = errors.New("scene has no camera")

// material group bindings of the geometry pass
const (
	materialUniformBinding  = 0
	materialDiffuseBinding  = 1
	materialSpecularBinding = 2
	materialSamplerBinding  = 3
)

const (
	cameraGroup   = 0
	instanceGroup = 1
	materialGroup = 2
)

var whiteTexel = common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}

func (r *renderer) Render(s scene.Scene, dt float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cam := s.Camera()
	if cam == nil {
		return ErrNoCamera
	}
	if r.dirty {
		if err := r.buildBindGroups(); err != nil {
			return err
		}
	}

	batches := s.Batches()
	block := s.LightBlock()
	gbuffer := r.pipelineCache[PipelineGBuffer]

	if err := r.prepareCamera(gbuffer, cam); err != nil {
		return err
	}
	if err := r.prepareInstances(gbuffer, batches); err != nil {
		return err
	}

	uniform := cam.Uniform()
	writes := []bind_group_provider.BufferWrite{
		{Provider: cam.BindGroupProvider(), Binding: 0, Data: uniform.Marshal()},
	}
	for i, b := range batches {
		if err := r.prepareMaterial(gbuffer, b.Material); err != nil {
			return err
		}
		if err := r.prepareMesh(b.Model); err != nil {
			return err
		}
		gm := b.Material.GPUMaterial()
		writes = append(writes,
			bind_group_provider.BufferWrite{Provider: r.instances[i], Binding: 0, Data: model.MarshalInstances(b.Instances)},
			bind_group_provider.BufferWrite{Provider: b.Material.BindGroupProvider(), Binding: materialUniformBinding, Data: gm.Marshal()},
		)
	}

	params := newFrameParams(r.graphics, cam.Position(), r.width, r.height, dt)
	t := r.targets
	writes = append(writes,
		bind_group_provider.BufferWrite{Provider: t.lighting, Binding: lightingLightsBinding, Data: block.Marshal()},
		bind_group_provider.BufferWrite{Provider: t.lighting, Binding: lightingParamsBinding, Data: params.lighting.Marshal()},
		bind_group_provider.BufferWrite{Provider: t.histogram, Binding: histogramParamsBinding, Data: params.histogram.Marshal()},
		bind_group_provider.BufferWrite{Provider: r.exposure, Binding: exposureParamsBinding, Data: params.average.Marshal()},
		bind_group_provider.BufferWrite{Provider: t.bloom, Binding: bloomParamsBinding, Data: params.bloom.Marshal()},
		bind_group_provider.BufferWrite{Provider: t.tonemap, Binding: tonemapParamsBinding, Data: params.tonemap.Marshal()},
	)
	r.backend.WriteBuffers(writes)

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	if err := r.backend.BeginGeometryPass(t.gbufferViews(), t.depth.view); err != nil {
		return err
	}
	for i, b := range batches {
		groups := []bind_group_provider.BindGroupProvider{
			cameraGroup:   cam.BindGroupProvider(),
			instanceGroup: r.instances[i],
			materialGroup: b.Material.BindGroupProvider(),
		}
		r.backend.DrawCall(gbuffer, b.Model.MeshProvider(), uint32(len(b.Instances)), groups)
	}
	r.backend.EndGeometryPass()

	r.dispatch(PipelineLighting, t.lighting)
	r.dispatch(PipelineHistogram, t.histogram)
	// one work-group reduces all bins
	r.backend.DispatchCompute(r.pipelineCache[PipelineAverage], r.exposure, [3]uint32{1, 1, 1})
	if r.graphics.Bloom {
		for _, group := range blurSchedule(r.graphics.BlurPasses) {
			r.dispatch(PipelineBlur, t.blur[group])
		}
		r.dispatch(PipelineBloom, t.bloom)
	}
	r.dispatch(PipelineTonemap, t.tonemap)

	if !r.backend.Headless() {
		if err := r.backend.Blit(r.pipelineCache[PipelinePresent], t.present); err != nil {
			// the offscreen passes still run so eye adaptation keeps advancing
			if endErr := r.backend.EndFrame(); endErr != nil {
				return errors.Join(err, endErr)
			}
			if errors.Is(err, ErrSurfaceUnavailable) {
				r.backend.ConfigureSurface(r.width, r.height)
			}
			return err
		}
	}
	if err := r.backend.EndFrame(); err != nil {
		return err
	}
	r.backend.Present()
	return nil
}

func (r *renderer) dispatch(key string, provider bind_group_provider.BindGroupProvider) {
	p := r.pipelineCache[key]
	r.backend.DispatchCompute(p, provider, p.WorkgroupCount(r.width, r.height))
}

func (r *renderer) prepareCamera(gbuffer pipeline.Pipeline, cam camera.Camera) error {
	provider := cam.BindGroupProvider()
	if provider.BindGroup() != nil {
		return nil
	}
	if err := r.backend.InitBindGroup(provider, gbuffer.Layouts()[cameraGroup], nil, nil); err != nil {
		return fmt.Errorf("failed to create camera bind group: %w", err)
	}
	r.owned[provider] = struct{}{}
	return nil
}

// prepareInstances makes one instance buffer per batch, growing any that is too small.
func (r *renderer) prepareInstances(gbuffer pipeline.Pipeline, batches []scene.DrawBatch) error {
	for i, b := range batches {
		if i < len(r.instances) && r.instanceSlots[i] >= len(b.Instances) {
			continue
		}
		capacity := instanceCapacity(len(b.Instances))
		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("instances %d", i))
		err := r.backend.InitBindGroup(provider, gbuffer.Layouts()[instanceGroup], nil,
			map[int]uint64{0: uint64(capacity * model.GPUInstanceSize)},
		)
		if err != nil {
			provider.Release()
			return fmt.Errorf("failed to create instance buffer: %w", err)
		}
		if i < len(r.instances) {
			r.instances[i].Release()
			r.instances[i], r.instanceSlots[i] = provider, capacity
			continue
		}
		r.instances = append(r.instances, provider)
		r.instanceSlots = append(r.instanceSlots, capacity)
		r.logger.Debug().Int("batch", i).Int("capacity", capacity).Msg("instance buffer allocated")
	}
	return nil
}

// prepareMaterial uploads a material's textures on first use. Untextured slots bind a white texel.
func (r *renderer) prepareMaterial(gbuffer pipeline.Pipeline, m material.Material) error {
	if p := m.BindGroupProvider(); p != nil && p.BindGroup() != nil {
		return nil
	}
	provider := bind_group_provider.NewBindGroupProvider(m.Name() + " Material")

	var sampler common.SamplerStagingData
	for binding, tex := range map[int]*material.Texture{
		materialDiffuseBinding:  m.DiffuseTexture(),
		materialSpecularBinding: m.SpecularTexture(),
	} {
		staging, srgb := whiteTexel, false
		if tex != nil {
			staging, srgb = tex.Staging, tex.SRGB
			if tex.Sampler != nil && binding == materialDiffuseBinding {
				sampler = *tex.Sampler
			}
		}
		if err := r.backend.InitTextureView(provider, binding, staging, srgb); err != nil {
			provider.Release()
			return fmt.Errorf("material %q: %w", m.Name(), err)
		}
	}
	if err := r.backend.InitSampler(provider, materialSamplerBinding, sampler); err != nil {
		provider.Release()
		return fmt.Errorf("material %q: %w", m.Name(), err)
	}
	if err := r.backend.InitBindGroup(provider, gbuffer.Layouts()[materialGroup], nil, nil); err != nil {
		provider.Release()
		return fmt.Errorf("material %q: %w", m.Name(), err)
	}
	m.SetBindGroupProvider(provider)
	r.owned[provider] = struct{}{}
	return nil
}

func (r *renderer) prepareMesh(mdl model.Model) error {
	provider := mdl.MeshProvider()
	if provider.VertexBuffer() != nil {
		return nil
	}
	if err := r.backend.InitMeshBuffers(provider, mdl.VertexData(), mdl.IndexData(), len(mdl.Indices())); err != nil {
		return fmt.Errorf("model %q: %w", mdl.Name(), err)
	}
	r.owned[provider] = struct{}{}
	return nil
}
