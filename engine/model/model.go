package model

import (
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/bind_group_provider"
)

// model is the implementation of the Model interface.
type model struct {
	name           string
	vertices       []GPUVertex
	indices        []uint32
	boundingRadius float32
	meshProvider   bind_group_provider.BindGroupProvider
}

// Model is an indexed triangle mesh drawn by the geometry pass.
// The CPU rasterizer reads Vertices and Indices directly; the GPU path uploads
// VertexData and IndexData once through the renderer and draws from MeshProvider.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the mesh vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: three indices per triangle
	Indices() []uint32

	// TriangleCount returns the number of whole triangles in the index list.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// BoundingRadius returns the radius of a sphere around the model origin enclosing every vertex.
	//
	// Returns:
	//   - float32: the radius in model space
	BoundingRadius() float32

	// VertexData returns the marshaled vertex buffer.
	//
	// Returns:
	//   - []byte: GPUVertexSize bytes per vertex
	VertexData() []byte

	// IndexData returns the marshaled index buffer.
	//
	// Returns:
	//   - []byte: 4 bytes per index
	IndexData() []byte

	// MeshProvider retrieves the BindGroupProvider holding the GPU vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider
}

var _ Model = &model{}

// NewModel creates a new Model with the given options.
// The bounding radius is computed from the vertices unless set explicitly.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{boundingRadius: -1}
	for _, opt := range options {
		opt(m)
	}
	if m.boundingRadius < 0 {
		m.boundingRadius = ComputeBoundingRadius(m.vertices)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name + " Mesh")
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) TriangleCount() int {
	return len(m.indices) / 3
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *model) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}
