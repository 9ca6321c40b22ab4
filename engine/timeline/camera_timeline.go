// Package timeline records camera poses against data frames and replays them.
package timeline

import (
	"slices"
	"sort"

	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// CameraFrame is a camera pose recorded at a data frame index.
type CameraFrame struct {
	Frame int         `toml:"frame" yaml:"frame"`
	Pose  common.Pose `toml:"pose" yaml:"pose"`
}

// CameraTimeline is a list of keyframes kept sorted ascending by Frame.
// Keyframes sharing a frame index are all kept; lookups use the first in storage order.
type CameraTimeline struct {
	Timeline []CameraFrame `toml:"timeline" yaml:"timeline"`
}

// AddFrame inserts a keyframe, keeping the timeline sorted. Insertion order is kept among equal frames.
//
// Parameters:
//   - frame: the data frame index
//   - pose: the camera pose at that frame
//
// Returns:
//   - bool: true if another keyframe already existed at frame
func (t *CameraTimeline) AddFrame(frame int, pose common.Pose) bool {
	_, duplicate := t.find(frame)
	t.Timeline = append(t.Timeline, CameraFrame{Frame: frame, Pose: pose})
	sort.SliceStable(t.Timeline, func(i, j int) bool {
		return t.Timeline[i].Frame < t.Timeline[j].Frame
	})
	return duplicate
}

// find returns the position of the first keyframe at frame.
func (t *CameraTimeline) find(frame int) (int, bool) {
	i, ok := slices.BinarySearchFunc(t.Timeline, frame, func(f CameraFrame, target int) int {
		return f.Frame - target
	})
	return i, ok
}

// PoseAtFrame evaluates the timeline at a data frame.
// An exact keyframe is returned unmodified. Between keyframes the translation is lerped
// and the rotation slerped along the shorter arc. Outside the keyframes the nearest end is returned.
//
// Parameters:
//   - frame: the data frame index
//
// Returns:
//   - common.Pose: the camera pose
//   - bool: false if the timeline is empty
func (t *CameraTimeline) PoseAtFrame(frame int) (common.Pose, bool) {
	if len(t.Timeline) == 0 {
		return common.Pose{}, false
	}
	i, exact := t.find(frame)
	if exact {
		return t.Timeline[i].Pose, true
	}
	// i is the first keyframe with Frame > frame
	switch i {
	case len(t.Timeline):
		return t.Timeline[len(t.Timeline)-1].Pose, true
	case 0:
		return t.Timeline[0].Pose, true
	}
	return LerpFrames(t.Timeline[i-1], t.Timeline[i], frame), true
}

// LerpFrames interpolates between two keyframes at an intermediate data frame.
// before.Frame must be less than after.Frame.
//
// Parameters:
//   - before: the keyframe at or before frame
//   - after: the keyframe after frame
//   - frame: the data frame index to evaluate
//
// Returns:
//   - common.Pose: the blended pose
func LerpFrames(before, after CameraFrame, frame int) common.Pose {
	t := float32(frame-before.Frame) / float32(after.Frame-before.Frame)
	return common.LerpPose(before.Pose, after.Pose, t)
}

// RemoveFrame removes the first keyframe at frame.
//
// Returns:
//   - bool: false if no keyframe existed at frame
func (t *CameraTimeline) RemoveFrame(frame int) bool {
	i, ok := t.find(frame)
	if !ok {
		return false
	}
	t.Timeline = slices.Delete(t.Timeline, i, i+1)
	return true
}

// DuplicateFrames returns every frame index held by more than one keyframe.
func (t *CameraTimeline) DuplicateFrames() []int {
	var dups []int
	for i := 1; i < len(t.Timeline); i++ {
		f := t.Timeline[i].Frame
		if f == t.Timeline[i-1].Frame && (len(dups) == 0 || dups[len(dups)-1] != f) {
			dups = append(dups, f)
		}
	}
	return dups
}

// Len returns the number of keyframes.
func (t *CameraTimeline) Len() int {
	return len(t.Timeline)
}

// Sanitize restores the sort order after decoding from storage.
func (t *CameraTimeline) Sanitize() {
	sort.SliceStable(t.Timeline, func(i, j int) bool {
		return t.Timeline[i].Frame < t.Timeline[j].Frame
	})
	for i := range t.Timeline {
		t.Timeline[i].Pose.Rotation = t.Timeline[i].Pose.Rotation.Normalize()
	}
}
