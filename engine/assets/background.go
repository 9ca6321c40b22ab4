package assets

import (
	"slices"

	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// BackgroundMeshes tracks static meshes shown behind the time series, such as a ground plane.
// Each mesh is handed out for display exactly once after it loads.
type BackgroundMeshes struct {
	paths     []string
	tracker   *Tracker[string, common.PendingHandle, common.Handle]
	displayed map[string]struct{}
}

// NewBackgroundMeshes creates a tracker for the given mesh paths.
//
// Parameters:
//   - paths: mesh files to load; duplicates are ignored
//
// Returns:
//   - *BackgroundMeshes: the new tracker
func NewBackgroundMeshes(paths ...string) *BackgroundMeshes {
	b := &BackgroundMeshes{
		tracker:   NewTracker[string, common.PendingHandle, common.Handle](nil),
		displayed: make(map[string]struct{}),
	}
	for _, p := range paths {
		if p != "" && !slices.Contains(b.paths, p) {
			b.paths = append(b.paths, p)
		}
	}
	return b
}

// Paths returns the configured mesh paths.
func (b *BackgroundMeshes) Paths() []string {
	return b.paths
}

// Load requests any mesh that has not been requested yet.
func (b *BackgroundMeshes) Load(req MeshRequestor) int {
	return b.tracker.Request(req, slices.Values(b.paths))
}

// Update polls pending loads.
func (b *BackgroundMeshes) Update(poller MeshPoller) {
	b.tracker.Update(poller)
}

// TakeAvailable returns meshes that are loaded but not yet displayed and marks them displayed.
//
// Returns:
//   - []MeshEntry: entries the caller should spawn now
func (b *BackgroundMeshes) TakeAvailable() []MeshEntry {
	var out []MeshEntry
	for _, e := range b.tracker.Loaded() {
		if _, ok := b.displayed[e.Key]; ok {
			continue
		}
		b.displayed[e.Key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Failed returns the meshes that could not be loaded.
func (b *BackgroundMeshes) Failed() []string {
	return b.tracker.Failed()
}

// Clear forgets every mesh. Loaded entries are returned for the caller to release and
// in-flight entries for the caller to discard.
func (b *BackgroundMeshes) Clear() ([]MeshEntry, []PendingEntry) {
	clear(b.displayed)
	return b.tracker.Clear()
}
