package assets

import (
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStringTracker() *Tracker[string, common.PendingHandle, common.Handle] {
	return NewTracker[string, common.PendingHandle, common.Handle](strings.Compare)
}

func TestTrackerRequestIsIdempotent(t *testing.T) {
	tr := newStringTracker()
	ld := newFakeLoader()

	assert.Equal(t, 3, tr.Request(ld, slices.Values([]string{"a", "b", "c"})))
	assert.Equal(t, 0, tr.Request(ld, slices.Values([]string{"a", "b", "c"})))
	assert.Len(t, tr.Loading(), 3)

	ld.complete("a")
	tr.Update(ld)
	assert.Equal(t, 0, tr.Request(ld, slices.Values([]string{"a", "b"})))
	assert.Equal(t, []string{"a", "b", "c"}, ld.requests)
}

func TestTrackerUpdatePartitions(t *testing.T) {
	tr := newStringTracker()
	ld := newFakeLoader()
	tr.Request(ld, slices.Values([]string{"c", "a", "b", "d"}))

	ld.complete("c", "a")
	ld.fail("d")
	loaded, failed := tr.Update(ld)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 1, failed)

	keys := func(es []Entry[string, common.Handle]) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Key)
		}
		return out
	}
	assert.Equal(t, []string{"a", "c"}, keys(tr.Loaded()), "loaded kept in key order")
	require.Len(t, tr.Loading(), 1)
	assert.Equal(t, "b", tr.Loading()[0].Key)
	assert.Equal(t, []string{"d"}, tr.Failed())
	assert.Equal(t, []common.PendingHandle{4}, ld.discarded, "failed handle discarded")
	assert.False(t, tr.FullyLoaded())

	st, ok := tr.State("d")
	assert.True(t, ok)
	assert.Equal(t, common.LoadStateFailed, st)
	_, ok = tr.State("zzz")
	assert.False(t, ok)

	_, ok = tr.Handle("a")
	assert.True(t, ok)
	_, ok = tr.Handle("b")
	assert.False(t, ok)
}

func TestTrackerRetryFailed(t *testing.T) {
	tr := newStringTracker()
	ld := newFakeLoader()
	tr.Request(ld, slices.Values([]string{"x"}))
	ld.fail("x")
	tr.Update(ld)
	assert.True(t, tr.FullyLoaded())
	assert.Len(t, ld.discarded, 1)

	// failed keys are not re-requested implicitly
	assert.Equal(t, 0, tr.Request(ld, slices.Values([]string{"x"})))

	ld.states["x"] = common.LoadStatePending
	assert.Equal(t, 1, tr.RetryFailed(ld))
	assert.Empty(t, tr.Failed())
	assert.Len(t, tr.Loading(), 1)
}

func TestTrackerClearReturnsLoadedAndInFlight(t *testing.T) {
	tr := newStringTracker()
	ld := newFakeLoader()
	tr.Request(ld, slices.Values([]string{"a", "b"}))
	ld.complete("a")
	tr.Update(ld)

	released, discarded := tr.Clear()
	require.Len(t, released, 1)
	assert.Equal(t, "a", released[0].Key)
	require.Len(t, discarded, 1)
	assert.Equal(t, Entry[string, common.PendingHandle]{Key: "b", Value: 2}, discarded[0])
	assert.Empty(t, tr.Loaded())
	assert.Empty(t, tr.Loading())
	assert.Equal(t, 2, tr.Request(ld, slices.Values([]string{"a", "b"})))
}

func TestBackgroundMeshesDisplayedOnce(t *testing.T) {
	b := NewBackgroundMeshes("ground.obj", "ground.obj", "")
	ld := newFakeLoader()
	assert.Equal(t, []string{"ground.obj"}, b.Paths())

	assert.Equal(t, 1, b.Load(ld))
	assert.Equal(t, 0, b.Load(ld))
	b.Update(ld)
	assert.Empty(t, b.TakeAvailable())

	ld.completeAll()
	b.Update(ld)
	got := b.TakeAvailable()
	require.Len(t, got, 1)
	assert.Equal(t, "ground.obj", got[0].Key)
	assert.Empty(t, b.TakeAvailable())
}
