package assets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameKeys(from, to int) []string {
	var out []string
	for i := from; i < to; i++ {
		out = append(out, fmt.Sprintf("frame%d.obj", i))
	}
	return out
}

func loadedKeys(m LoadManager) map[string]bool {
	out := make(map[string]bool)
	for _, e := range m.Loaded() {
		out[e.Key] = true
	}
	return out
}

func assertPartition(t *testing.T, m LoadManager) {
	t.Helper()
	loaded := loadedKeys(m)
	for _, e := range m.Loading() {
		assert.False(t, loaded[e.Key], "key %q both loaded and loading", e.Key)
	}
	for _, k := range m.Failed() {
		assert.False(t, loaded[k], "key %q both loaded and failed", k)
	}
}

func TestLoadAssetsIdempotent(t *testing.T) {
	m := NewLoadManager(frameKeys(0, 100), WithInitialLOD(10))
	ld := newFakeLoader()

	assert.Equal(t, 10, m.LoadAssets(ld))
	before := len(m.Loading())
	assert.Equal(t, 0, m.LoadAssets(ld))
	assert.Len(t, m.Loading(), before)
	assert.False(t, m.FullyLoaded())
}

func TestNaturalOrdering(t *testing.T) {
	m := NewLoadManager([]string{"frame10.obj", "frame2.obj", "frame1.obj"}, WithInitialLOD(10))
	assert.Equal(t, []string{"frame1.obj", "frame2.obj", "frame10.obj"}, m.Items())

	i, ok := m.IndexOf("frame10.obj")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = m.IndexOf("nope.obj")
	assert.False(t, ok)
}

func TestNextLODRequestsOnlyDelta(t *testing.T) {
	m := NewLoadManager(frameKeys(0, 100), WithInitialLOD(10))
	ld := newFakeLoader()
	m.LoadAssets(ld)
	ld.completeAll()
	m.UpdateLoadState(ld)
	require.True(t, m.FullyLoaded())
	require.Len(t, m.Loaded(), 10)

	require.True(t, m.NextLODAndReload(ld))
	assert.Equal(t, 1, m.Level())
	assert.Len(t, m.Loading(), 9)
	assert.Len(t, ld.requests, 19, "no key requested twice")
	assertPartition(t, m)

	seen := make(map[string]int)
	for _, k := range ld.requests {
		seen[k]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, k)
	}
}

func TestRefineToSaturation(t *testing.T) {
	m := NewLoadManager(frameKeys(0, 100), WithInitialLOD(10))
	ld := newFakeLoader()
	assert.Equal(t, []int{10, 19, 37, 73, 100}, m.LODs())

	m.LoadAssets(ld)
	for {
		ld.completeAll()
		m.UpdateLoadState(ld)
		assertPartition(t, m)
		if !m.NextLODAndReload(ld) {
			break
		}
	}
	assert.Len(t, m.Loaded(), 100)
	assert.Equal(t, []int{100}, m.LODs())
	assert.Equal(t, float32(100), m.Progress().Percent())
}

func TestAddNewAssetsPreservesLoaded(t *testing.T) {
	m := NewLoadManager(frameKeys(0, 20), WithInitialLOD(5))
	ld := newFakeLoader()
	m.LoadAssets(ld)
	ld.completeAll()
	m.UpdateLoadState(ld)
	before := loadedKeys(m)
	require.NotEmpty(t, before)

	m.NextLODAndReload(ld)
	inflight := len(m.Loading())

	added := m.AddNewAssets(append(frameKeys(15, 40), "frame3.obj"))
	assert.Equal(t, 20, added)
	assert.Len(t, m.Items(), 40)
	assert.Equal(t, 0, m.Level())
	assert.Len(t, m.Loading(), inflight)

	after := loadedKeys(m)
	for k := range before {
		assert.True(t, after[k], "lost loaded key %q", k)
	}

	assert.Equal(t, 0, m.AddNewAssets(frameKeys(0, 40)))
	m.LoadAssets(ld)
	assertPartition(t, m)
}

func TestFailedLoadsAndRetry(t *testing.T) {
	m := NewLoadManager(frameKeys(0, 3), WithInitialLOD(5))
	ld := newFakeLoader()
	m.LoadAssets(ld)
	ld.complete("frame0.obj", "frame2.obj")
	ld.fail("frame1.obj")
	m.UpdateLoadState(ld)

	assert.True(t, m.FullyLoaded())
	assert.Equal(t, []string{"frame1.obj"}, m.Failed())
	assert.Equal(t, 0, m.LoadAssets(ld))
	assertPartition(t, m)

	p := m.Progress()
	assert.Equal(t, Progress{Loaded: 2, Failed: 1, Wanted: 3, Total: 3}, p)

	ld.complete("frame1.obj")
	assert.Equal(t, 1, m.RetryFailed(ld))
	m.UpdateLoadState(ld)
	assert.Len(t, m.Loaded(), 3)
	assert.Empty(t, m.Failed())
}

func TestClearDropsEverything(t *testing.T) {
	m := NewLoadManager(frameKeys(0, 10), WithInitialLOD(4))
	ld := newFakeLoader()
	m.LoadAssets(ld)
	ld.complete("frame0.obj")
	m.UpdateLoadState(ld)

	released, discarded := m.Clear()
	assert.Len(t, released, 1)
	assert.Len(t, discarded, 3)
	assert.Empty(t, m.Items())
	assert.Empty(t, m.Loaded())
	assert.Empty(t, m.Loading())
	assert.Empty(t, m.LODs())
	assert.True(t, m.FullyLoaded())
	assert.Equal(t, 0, m.LoadAssets(ld))

	assert.Equal(t, 10, m.AddNewAssets(frameKeys(0, 10)))
}

func TestEmptyManager(t *testing.T) {
	m := NewLoadManager(nil)
	ld := newFakeLoader()
	assert.Equal(t, 0, m.LoadAssets(ld))
	assert.False(t, m.NextLODAndReload(ld))
	assert.Equal(t, float32(100), m.Progress().Percent())
}
