package timeline

import (
	"slices"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/Carmen-Shannon/mesh-ripper/engine/scene"
)

// Visualization owns the marker entities that show a timeline's keyframes in the scene.
type Visualization struct {
	size    float32
	markers []model.Marker
	refs    []scene.EntityRef
}

// NewVisualization creates a Visualization drawing markers of the given size.
func NewVisualization(size float32) *Visualization {
	return &Visualization{size: size}
}

// Markers builds one marker per keyframe, coloured from green at the first to red at the last.
//
// Parameters:
//   - tl: the timeline to draw, nil for none
//
// Returns:
//   - []model.Marker: the markers in keyframe order
func (v *Visualization) Markers(tl *CameraTimeline) []model.Marker {
	if tl == nil || len(tl.Timeline) == 0 {
		return nil
	}
	out := make([]model.Marker, len(tl.Timeline))
	last := float32(max(len(tl.Timeline)-1, 1))
	for i, kf := range tl.Timeline {
		t := float32(i) / last
		out[i] = model.Marker{
			Pose:  kf.Pose,
			Size:  v.size,
			Color: common.RGBA{t, 1 - t, 0.2, 1},
		}
	}
	return out
}

// Sync makes the scene show the markers for tl when show is set, and nothing otherwise.
// Entities are only respawned when the markers changed.
//
// Parameters:
//   - sink: the scene to mutate
//   - tl: the enabled timeline, nil for none
//   - show: whether the visualization is on
//
// Returns:
//   - bool: true if the scene was changed
func (v *Visualization) Sync(sink scene.Sink, tl *CameraTimeline, show bool) bool {
	var want []model.Marker
	if show {
		want = v.Markers(tl)
	}
	if slices.Equal(want, v.markers) && len(v.refs) == len(want) {
		return false
	}
	v.Clear(sink)
	for _, m := range want {
		v.refs = append(v.refs, sink.Spawn(m))
	}
	v.markers = want
	return true
}

// Clear despawns every marker.
func (v *Visualization) Clear(sink scene.Sink) {
	for _, ref := range v.refs {
		sink.Despawn(ref)
	}
	v.refs = nil
	v.markers = nil
}

// Count returns the number of markers currently spawned.
func (v *Visualization) Count() int {
	return len(v.refs)
}
