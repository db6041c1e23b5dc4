package shader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-hdr/engine/bloom"
	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/exposure"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/lighting"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/tonemap"
)

// includeRegex matches a whole-line include directive: //@oxy:include <name>
var includeRegex = regexp.MustCompile(`^\s*//\s*@oxy:include\s+(\w+)\s*$`)

type preProcessor struct {
	registry map[string]string
}

// PreProcessor expands //@oxy:include directives into the WGSL struct definitions
// embedded by the GPU type packages, so every pass shares one definition per struct.
type PreProcessor interface {
	// Process replaces each include line with the registered source. A name included
	// more than once is emitted only the first time.
	//
	// Parameters:
	//   - source: WGSL with include directives
	//
	// Returns:
	//   - string: the expanded WGSL
	//   - error: if a directive names an unregistered struct
	Process(source string) (string, error)

	// Register adds or replaces a named include.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL to emit
	Register(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor with every engine GPU struct registered.
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[string]string{
			"camera":           camera.GPUCameraUniformSource,
			"vertex":           model.GPUVertexSource,
			"instance":         model.GPUInstanceSource,
			"material":         material.GPUMaterialSource,
			"light_block":      light.GPULightBlockSource,
			"lighting_params":  lighting.GPUParamsSource,
			"histogram_params": exposure.GPUHistogramParamsSource,
			"average_params":   exposure.GPUAverageParamsSource,
			"blur_params":      bloom.GPUBlurParamsSource,
			"bloom_params":     bloom.GPUBloomParamsSource,
			"tonemap_params":   tonemap.GPUParamsSource,
		},
	}
}

func (p *preProcessor) Register(name, source string) {
	p.registry[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[string]bool)
	for i, line := range lines {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		src, ok := p.registry[m[1]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, m[1])
		}
		if included[m[1]] {
			continue
		}
		included[m[1]] = true
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}
