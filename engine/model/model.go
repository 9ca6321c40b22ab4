package model

import (
	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// Mesh is CPU-side geometry decoded from a mesh file.
// It is produced by the Loader and is read-only once built.
type Mesh interface {
	// Name retrieves the mesh identifier, usually the source file path.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Positions retrieves the vertex positions.
	//
	// Returns:
	//   - [][3]float32: the positions
	//   - bool: false if the mesh has no position attribute
	Positions() ([][3]float32, bool)

	// Normals retrieves the vertex normals.
	//
	// Returns:
	//   - [][3]float32: the normals, one per vertex
	//   - bool: false if the mesh has no normal attribute
	Normals() ([][3]float32, bool)

	// HasTriangleIndices reports whether the mesh has triangle connectivity.
	// Meshes without it are treated as point clouds.
	//
	// Returns:
	//   - bool: true if the mesh carries at least one triangle
	HasTriangleIndices() bool

	// Indices retrieves the triangle list indices, three per triangle.
	//
	// Returns:
	//   - []uint32: the indices, nil for point clouds
	Indices() []uint32

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Bounds returns the axis-aligned bounding box of the positions.
	//
	// Returns:
	//   - common.AABB: the bounding box
	//   - bool: false if the mesh has no positions
	Bounds() (common.AABB, bool)

	// Features summarizes which attributes the mesh carries.
	//
	// Returns:
	//   - Features: the attribute presence flags
	Features() Features
}

// Features describes which attributes a mesh carries.
type Features struct {
	Positions bool
	Normals   bool
	Triangles bool
}

// Connected reports whether the mesh should be drawn with its connectivity.
func (f Features) Connected() bool {
	return f.Positions && f.Triangles
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name      string
	positions [][3]float32
	normals   [][3]float32
	indices   []uint32
	bounds    common.AABB
	hasBounds bool
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from the given options and computes its bounds.
//
// Parameters:
//   - options: functional options setting geometry
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	// normals that do not match the vertex count are unusable
	if len(m.normals) != len(m.positions) {
		m.normals = nil
	}
	// drop a trailing partial triangle
	m.indices = m.indices[:len(m.indices)-len(m.indices)%3]
	m.bounds, m.hasBounds = common.NewAABB(m.positions)
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Positions() ([][3]float32, bool) {
	return m.positions, len(m.positions) > 0
}

func (m *mesh) Normals() ([][3]float32, bool) {
	return m.normals, len(m.normals) > 0
}

func (m *mesh) HasTriangleIndices() bool {
	return len(m.indices) >= 3
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexCount() int {
	return len(m.positions)
}

func (m *mesh) Bounds() (common.AABB, bool) {
	return m.bounds, m.hasBounds
}

func (m *mesh) Features() Features {
	return Features{
		Positions: len(m.positions) > 0,
		Normals:   len(m.normals) > 0,
		Triangles: m.HasTriangleIndices(),
	}
}
