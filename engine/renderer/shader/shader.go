package shader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a Shader is compiled for.
type ShaderType int

const (
	ShaderTypeCompute ShaderType = iota
	ShaderTypeVertex
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "compute"
	}
}

// stage maps the shader type to its bind group visibility flag.
func (t ShaderType) stage() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageCompute
	}
}

type shader struct {
	key        string
	source     string
	shaderType ShaderType

	entryPoint    string
	workgroupSize [3]uint32
	layouts       map[int]wgpu.BindGroupLayoutDescriptor
	names         map[int]map[int]string
	vertexLayouts []wgpu.VertexBufferLayout
}

// Shader is a WGSL module reflected for one stage: its entry point, resource bindings
// and, for vertex shaders, the vertex buffer layouts of the entry point's inputs.
type Shader interface {
	// Key returns the unique name of the shader, used as the module label.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Source returns the composed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// Type returns the stage the shader was reflected for.
	//
	// Returns:
	//   - ShaderType: the stage
	Type() ShaderType

	// EntryPoint returns the name of the stage's entry function.
	//
	// Returns:
	//   - string: the entry point
	EntryPoint() string

	// WorkgroupSize returns the compute work-group dimensions, [1, 1, 1] for other stages.
	//
	// Returns:
	//   - [3]uint32: the work-group size
	WorkgroupSize() [3]uint32

	// BindGroupLayoutDescriptors returns one layout descriptor per @group index, entries
	// sorted by binding.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: layouts keyed by group
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindingName returns the WGSL variable declared at a group and binding.
	//
	// Parameters:
	//   - group: the group index
	//   - binding: the binding index
	//
	// Returns:
	//   - string: the variable name, or empty
	BindingName(group, binding int) string

	// Binding finds the binding index of a named variable in a group.
	//
	// Parameters:
	//   - group: the group index
	//   - name: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index
	//   - bool: false if the group does not declare the name
	Binding(group int, name string) (int, bool)

	// VertexLayouts returns the vertex buffer layouts in entry point parameter order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, empty for non-vertex stages
	VertexLayouts() []wgpu.VertexBufferLayout
}

var _ Shader = &shader{}

// NewShader composes WGSL sources into one module, expands its //@oxy:include
// directives and reflects it for the given stage.
//
// Parameters:
//   - key: unique shader name
//   - shaderType: the stage to reflect
//   - sources: WGSL fragments joined in order
//
// Returns:
//   - Shader: the reflected shader
//   - error: if an include is unknown, the source is empty or it has no entry point for the stage
func NewShader(key string, shaderType ShaderType, sources ...string) (Shader, error) {
	source, err := NewPreProcessor().Process(strings.Join(sources, "\n"))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}

	cleaned := stripComments(source)
	entry := parseEntryPoint(cleaned, shaderType)
	if entry == "" {
		return nil, fmt.Errorf("shader %s: no @%s entry point", key, shaderType)
	}

	s := &shader{
		key:           key,
		source:        source,
		shaderType:    shaderType,
		entryPoint:    entry,
		workgroupSize: [3]uint32{1, 1, 1},
	}
	structs := parseStructBlocks(cleaned)
	s.layouts, s.names = parseBindGroupLayouts(cleaned, structs, shaderType.stage())
	switch shaderType {
	case ShaderTypeCompute:
		s.workgroupSize = parseWorkgroupSize(cleaned)
	case ShaderTypeVertex:
		s.vertexLayouts = parseVertexLayouts(cleaned, entry, structs)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Type() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workgroupSize
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.layouts
}

func (s *shader) BindingName(group, binding int) string {
	return s.names[group][binding]
}

func (s *shader) Binding(group int, name string) (int, bool) {
	for binding, n := range s.names[group] {
		if n == name {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

// MergeBindGroupLayouts combines the layouts of several stages of one pipeline.
// Entries that share a group and binding are merged by OR-ing their visibility.
//
// Parameters:
//   - layouts: per-stage layouts keyed by group
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts, entries sorted by binding
func MergeBindGroupLayouts(layouts ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, l := range layouts {
		for g, desc := range l {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					byGroup[g][e.Binding] = existing
					continue
				}
				byGroup[g][e.Binding] = e
			}
		}
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entries := range byGroup {
		keys := slices.Sorted(maps.Keys(entries))
		desc := wgpu.BindGroupLayoutDescriptor{Entries: make([]wgpu.BindGroupLayoutEntry, 0, len(keys))}
		for _, k := range keys {
			desc.Entries = append(desc.Entries, entries[k])
		}
		out[g] = desc
	}
	return out
}

// GroupCount returns one past the highest group index in a layout map.
func GroupCount(layouts map[int]wgpu.BindGroupLayoutDescriptor) int {
	n := 0
	for g := range layouts {
		n = max(n, g+1)
	}
	return n
}
