package material

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// material is the implementation of the Material interface.
type material struct {
	name               string
	diffuseFactor      mgl32.Vec4
	specularFactor     mgl32.Vec3
	shininess          float32
	diffuseTexture     *Texture
	specularTexture    *Texture
	useDiffuseTexture  bool
	useSpecularTexture bool
	bindGroupProvider  bind_group_provider.BindGroupProvider
}

// Material describes the surface attributes written into the G-buffer.
//
// Diffuse and specular are each either a constant factor or a texture sample;
// a per-material flag picks one. Shininess always comes from the material.
type Material interface {
	// Name returns the identifier of this material.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// DiffuseFactor returns the constant RGBA diffuse reflectance and coverage.
	//
	// Returns:
	//   - mgl32.Vec4: diffuse color, alpha is coverage
	DiffuseFactor() mgl32.Vec4

	// SpecularFactor returns the constant RGB specular strength.
	//
	// Returns:
	//   - mgl32.Vec3: specular strength
	SpecularFactor() mgl32.Vec3

	// Shininess returns the Phong exponent.
	//
	// Returns:
	//   - float32: the shininess exponent
	Shininess() float32

	// DiffuseTexture returns the diffuse texture, or nil.
	//
	// Returns:
	//   - *Texture: the decoded texture
	DiffuseTexture() *Texture

	// SpecularTexture returns the specular texture, or nil.
	//
	// Returns:
	//   - *Texture: the decoded texture
	SpecularTexture() *Texture

	// UseDiffuseTexture reports whether diffuse is sampled from the texture.
	//
	// Returns:
	//   - bool: true when the texture replaces the factor
	UseDiffuseTexture() bool

	// UseSpecularTexture reports whether specular strength is sampled from the texture.
	//
	// Returns:
	//   - bool: true when the texture replaces the factor
	UseSpecularTexture() bool

	// Diffuse resolves the diffuse value at a texture coordinate.
	//
	// Parameters:
	//   - uv: texture coordinate
	//
	// Returns:
	//   - mgl32.Vec4: linear RGBA diffuse
	Diffuse(uv mgl32.Vec2) mgl32.Vec4

	// SpecShininess resolves the specular strength at a texture coordinate and
	// packs the shininess into the alpha channel.
	//
	// Parameters:
	//   - uv: texture coordinate
	//
	// Returns:
	//   - mgl32.Vec4: rgb specular strength, a shininess
	SpecShininess(uv mgl32.Vec2) mgl32.Vec4

	// GPUMaterial returns the uniform block uploaded for the geometry pass.
	//
	// Returns:
	//   - GPUMaterial: the packed uniform
	GPUMaterial() GPUMaterial

	// BindGroupProvider returns the GPU resources bound for this material, or nil on the CPU path.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider attaches GPU resources created by the renderer.
	//
	// Parameters:
	//   - provider: the provider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material with the given options.
// Defaults: opaque white diffuse, specular strength 0.5, shininess 32, no textures.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the newly created material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		diffuseFactor:  mgl32.Vec4{1, 1, 1, 1},
		specularFactor: mgl32.Vec3{0.5, 0.5, 0.5},
		shininess:      32,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) DiffuseFactor() mgl32.Vec4 {
	return m.diffuseFactor
}

func (m *material) SpecularFactor() mgl32.Vec3 {
	return m.specularFactor
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) DiffuseTexture() *Texture {
	return m.diffuseTexture
}

func (m *material) SpecularTexture() *Texture {
	return m.specularTexture
}

func (m *material) UseDiffuseTexture() bool {
	return m.useDiffuseTexture && m.diffuseTexture != nil
}

func (m *material) UseSpecularTexture() bool {
	return m.useSpecularTexture && m.specularTexture != nil
}

func (m *material) Diffuse(uv mgl32.Vec2) mgl32.Vec4 {
	if m.UseDiffuseTexture() {
		return m.diffuseTexture.Sample(uv)
	}
	return m.diffuseFactor
}

func (m *material) SpecShininess(uv mgl32.Vec2) mgl32.Vec4 {
	spec := m.specularFactor
	if m.UseSpecularTexture() {
		spec = m.specularTexture.Sample(uv).Vec3()
	}
	return spec.Vec4(m.shininess)
}

func (m *material) GPUMaterial() GPUMaterial {
	g := GPUMaterial{
		DiffuseFactor:  m.diffuseFactor,
		SpecularFactor: m.specularFactor.Vec4(m.shininess),
	}
	if m.UseDiffuseTexture() {
		g.UseDiffuseTexture = 1
	}
	if m.UseSpecularTexture() {
		g.UseSpecularTexture = 1
	}
	return g
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
