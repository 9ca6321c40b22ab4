package timeline

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Pallinder/go-randomdata"
)

// DefaultTimelineName is the timeline every new CameraSystem starts with.
const DefaultTimelineName = "Default"

// CameraSystem holds named camera timelines and the record, follow and visualization toggles.
// Record and follow modes are session state and are not persisted.
type CameraSystem struct {
	RecordMode        bool                       `toml:"-" yaml:"-"`
	FollowCamera      bool                       `toml:"-" yaml:"-"`
	ShowVisualization bool                       `toml:"show_visualization" yaml:"show_visualization"`
	CurrentTimeline   string                     `toml:"current_timeline" yaml:"current_timeline"`
	Timelines         map[string]*CameraTimeline `toml:"timelines" yaml:"timelines"`
}

// NewCameraSystem creates a CameraSystem with one empty timeline named "Default", selected.
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		CurrentTimeline: DefaultTimelineName,
		Timelines: map[string]*CameraTimeline{
			DefaultTimelineName: {},
		},
	}
}

// EnabledTimeline resolves the selected timeline.
//
// Returns:
//   - *CameraTimeline: the selected timeline
//   - bool: false if nothing is selected or the selected name no longer exists
func (c *CameraSystem) EnabledTimeline() (*CameraTimeline, bool) {
	if c.CurrentTimeline == "" {
		return nil, false
	}
	tl, ok := c.Timelines[c.CurrentTimeline]
	return tl, ok && tl != nil
}

// Names returns the timeline names in natural order.
func (c *CameraSystem) Names() []string {
	names := make([]string, 0, len(c.Timelines))
	for name := range c.Timelines {
		names = append(names, name)
	}
	slices.SortFunc(names, common.CompareNatural)
	return names
}

// AddTimeline creates an empty timeline and selects it. An empty name gets a generated one.
//
// Parameters:
//   - name: the timeline name, or "" to generate one
//
// Returns:
//   - string: the name of the timeline
//   - bool: false if a timeline with that name already existed (it is selected, not replaced)
func (c *CameraSystem) AddTimeline(name string) (string, bool) {
	if c.Timelines == nil {
		c.Timelines = make(map[string]*CameraTimeline)
	}
	if name == "" {
		name = c.uniqueName()
	}
	if _, exists := c.Timelines[name]; exists {
		c.CurrentTimeline = name
		return name, false
	}
	c.Timelines[name] = &CameraTimeline{}
	c.CurrentTimeline = name
	return name, true
}

func (c *CameraSystem) uniqueName() string {
	for range 64 {
		name := randomdata.SillyName()
		// avoid duplicate names
		if _, exists := c.Timelines[name]; !exists {
			return name
		}
	}
	for i := len(c.Timelines); ; i++ {
		name := fmt.Sprintf("Timeline %d", i)
		if _, exists := c.Timelines[name]; !exists {
			return name
		}
	}
}

// RemoveTimeline deletes a timeline. If it was selected, nothing stays selected.
//
// Returns:
//   - bool: false if no such timeline existed
func (c *CameraSystem) RemoveTimeline(name string) bool {
	if _, ok := c.Timelines[name]; !ok {
		return false
	}
	delete(c.Timelines, name)
	if c.CurrentTimeline == name {
		c.CurrentTimeline = ""
	}
	return true
}

// Select makes name the enabled timeline.
//
// Returns:
//   - bool: false if no such timeline exists; the selection is unchanged
func (c *CameraSystem) Select(name string) bool {
	if _, ok := c.Timelines[name]; !ok {
		return false
	}
	c.CurrentTimeline = name
	return true
}

// CycleTimeline selects the next timeline in natural name order, wrapping around.
//
// Returns:
//   - string: the newly selected name, "" if there are no timelines
func (c *CameraSystem) CycleTimeline() string {
	names := c.Names()
	if len(names) == 0 {
		c.CurrentTimeline = ""
		return ""
	}
	i := slices.Index(names, c.CurrentTimeline)
	c.CurrentTimeline = names[(i+1)%len(names)]
	return c.CurrentTimeline
}

// Capture records pose at frame on the enabled timeline when record mode is on.
//
// Parameters:
//   - frame: the current data frame index
//   - pose: the live camera pose
//
// Returns:
//   - bool: true if a keyframe was added
func (c *CameraSystem) Capture(frame int, pose common.Pose) bool {
	if !c.RecordMode {
		return false
	}
	tl, ok := c.EnabledTimeline()
	if !ok {
		return false
	}
	if tl.AddFrame(frame, pose) {
		slog.Warn("timeline: duplicate keyframe, lookups use the first", "timeline", c.CurrentTimeline, "frame", frame)
	}
	return true
}

// Follow evaluates the enabled timeline when follow mode is on and playback is running.
// While paused the live camera is left to manual control.
//
// Parameters:
//   - frame: the current data frame index
//   - paused: whether playback is paused
//
// Returns:
//   - common.Pose: the pose to apply to the live camera
//   - bool: false if the camera should not be driven this tick
func (c *CameraSystem) Follow(frame int, paused bool) (common.Pose, bool) {
	if !c.FollowCamera || paused {
		return common.Pose{}, false
	}
	tl, ok := c.EnabledTimeline()
	if !ok {
		return common.Pose{}, false
	}
	return tl.PoseAtFrame(frame)
}

// Sanitize repairs a system decoded from storage: nil timelines are replaced and keyframes re-sorted.
func (c *CameraSystem) Sanitize() {
	if c.Timelines == nil {
		c.Timelines = make(map[string]*CameraTimeline)
	}
	for name, tl := range c.Timelines {
		if tl == nil {
			c.Timelines[name] = &CameraTimeline{}
			continue
		}
		tl.Sanitize()
	}
}
