package scene

import (
	"testing"

	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnDespawn(t *testing.T) {
	s := NewScene(WithName("test"))
	a := s.Spawn(model.Connected{Mesh: 1})
	b := s.Spawn(model.Unconnected{Mesh: 2, SampledIndices: []int{0}})
	assert.NotEqual(t, EntityRef(0), a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Count())

	rep, ok := s.Get(b)
	require.True(t, ok)
	assert.IsType(t, model.Unconnected{}, rep)

	v := s.Version()
	s.Despawn(a)
	s.Despawn(a)
	assert.Equal(t, v+1, s.Version())
	assert.Equal(t, 1, s.Count())

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, b, snap[0].Ref)

	s.Clear()
	assert.Zero(t, s.Count())
}
