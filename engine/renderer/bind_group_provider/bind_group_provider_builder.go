package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithTextureViews presets borrowed texture views keyed by binding.
//
// Parameters:
//   - views: binding index to texture view
//
// Returns:
//   - BindGroupProviderOption: a function that sets the views
func WithTextureViews(views map[int]*wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		for b, v := range views {
			if v != nil {
				p.textureViews[b] = v
			}
		}
	}
}
