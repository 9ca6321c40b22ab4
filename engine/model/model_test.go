package model

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshFeatures(t *testing.T) {
	tri := NewMesh(
		WithName("tri"),
		WithPositions([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 2, -1}}),
		WithNormals([][3]float32{{0, 0, 1}}),
		WithIndices([]uint32{0, 1, 2, 0}),
	)
	assert.Equal(t, "tri", tri.Name())
	assert.Equal(t, Features{Positions: true, Normals: false, Triangles: true}, tri.Features())
	assert.Equal(t, []uint32{0, 1, 2}, tri.Indices())

	box, ok := tri.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, box.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, box.Max)

	empty := NewMesh()
	_, ok = empty.Positions()
	assert.False(t, ok)
	_, ok = empty.Bounds()
	assert.False(t, ok)
	assert.False(t, empty.HasTriangleIndices())
}

func TestRepresentDispatchesOnTriangles(t *testing.T) {
	pts := [][3]float32{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}
	cloud := NewMesh(WithPositions(pts))
	solid := NewMesh(WithPositions(pts), WithIndices([]uint32{0, 1, 2}))
	opts := PointOptions{Style: PointStyleDirectional, Radius: 0.1}

	switch r := Represent(7, solid, nil, opts).(type) {
	case Connected:
		assert.Equal(t, common.Handle(7), r.Mesh)
	default:
		t.Fatalf("expected Connected, got %T", r)
	}

	switch r := Represent(8, cloud, []int{0, 2}, opts).(type) {
	case Unconnected:
		assert.Equal(t, []int{0, 2}, r.SampledIndices)
		assert.Equal(t, PointStyleDirectional, r.Style)
		assert.Equal(t, float32(0.1), r.Radius)
	default:
		t.Fatalf("expected Unconnected, got %T", r)
	}
}

func TestSampleIndices(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	got := SampleIndices(1000, 50, rng)
	require.Len(t, got, 50)
	assert.IsIncreasing(t, got)
	for _, i := range got {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 1000)
	}

	assert.Equal(t, []int{0, 1, 2}, SampleIndices(3, 10, rng))
	assert.Nil(t, SampleIndices(0, 10, rng))
	assert.Nil(t, SampleIndices(10, 0, rng))
	assert.Len(t, SampleIndices(10, 9, nil), 9)
}

func TestPointStyleText(t *testing.T) {
	var s PointStyle
	require.NoError(t, s.UnmarshalText([]byte("directional")))
	assert.Equal(t, PointStyleDirectional, s)
	assert.Error(t, s.UnmarshalText([]byte("cube")))

	b, err := PointStyleSphere.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "sphere", string(b))
}
