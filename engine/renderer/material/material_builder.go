package material

import "github.com/go-gl/mathgl/mgl32"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithDiffuseFactor is an option builder that sets the constant RGBA diffuse color.
//
// Parameters:
//   - color: linear RGBA, alpha is coverage
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse option to a material
func WithDiffuseFactor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseFactor = color
	}
}

// WithSpecular is an option builder that sets the constant specular strength and shininess.
//
// Parameters:
//   - strength: RGB specular strength
//   - shininess: Phong exponent
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular option to a material
func WithSpecular(strength mgl32.Vec3, shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.specularFactor = strength
		m.shininess = shininess
	}
}

// WithDiffuseTexture is an option builder that samples diffuse from a texture.
// A nil texture leaves the factor in effect.
//
// Parameters:
//   - tex: the decoded diffuse texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithDiffuseTexture(tex *Texture) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = tex
		m.useDiffuseTexture = tex != nil
	}
}

// WithSpecularTexture is an option builder that samples specular strength from a texture.
// A nil texture leaves the factor in effect.
//
// Parameters:
//   - tex: the decoded specular texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithSpecularTexture(tex *Texture) MaterialBuilderOption {
	return func(m *material) {
		m.specularTexture = tex
		m.useSpecularTexture = tex != nil
	}
}
