// Package settings holds the live viewer settings and persists them next to a dataset.
package settings

import (
	"time"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/Carmen-Shannon/mesh-ripper/engine/playback"
)

// Actions is the user-facing settings of the viewer, edited by key bindings and saved on demand.
// Fields tagged "-" are session state and are not persisted.
type Actions struct {
	CurrentFrame        int                `toml:"current_frame" yaml:"current_frame"`
	FrameDirection      playback.Direction `toml:"frame_direction" yaml:"frame_direction"`
	AdvanceEvery        float32            `toml:"advance_every" yaml:"advance_every"`
	Paused              bool               `toml:"paused" yaml:"paused"`
	FluidColor          common.RGBA        `toml:"fluid_color" yaml:"fluid_color"`
	BackgroundColor     common.RGBA        `toml:"background_color" yaml:"background_color"`
	ParticleRenderStyle model.PointStyle   `toml:"particle_render_style" yaml:"particle_render_style"`
	ParticleRadius      float32            `toml:"particle_radius" yaml:"particle_radius"`
	MaxParticlesRender  int                `toml:"max_particles_render" yaml:"max_particles_render"`
	InitialLOD          int                `toml:"initial_lod" yaml:"initial_lod"`
	CameraSpeed         float32            `toml:"camera_speed" yaml:"camera_speed"`
	CurrentFile         string             `toml:"current_file" yaml:"current_file"`

	// FluidsLoaded and FluidsLoadedPercent report load progress.
	FluidsLoaded        int     `toml:"-" yaml:"-"`
	FluidsLoadedPercent float32 `toml:"-" yaml:"-"`

	// Reset, Reload and FocusOnMesh are one-shot requests consumed by the next tick.
	Reset       bool `toml:"-" yaml:"-"`
	Reload      bool `toml:"-" yaml:"-"`
	FocusOnMesh bool `toml:"-" yaml:"-"`

	// LODs lists the reachable level sizes; WantedLOD indexes it.
	LODs      []int `toml:"-" yaml:"-"`
	WantedLOD int   `toml:"-" yaml:"-"`

	// Datasets lists the directories under the dataset root; Dataset is the selected one.
	Datasets []string `toml:"-" yaml:"-"`
	Dataset  string   `toml:"-" yaml:"-"`
}

// DefaultActions returns the settings a fresh viewer starts with.
func DefaultActions() Actions {
	var a Actions
	a.SetDefaults()
	return a
}

// SetDefaults resets every persisted field to its default.
func (a *Actions) SetDefaults() {
	*a = Actions{
		AdvanceEvery:        0.1,
		Paused:              true,
		FrameDirection:      playback.Forward,
		FluidColor:          common.RGBA{95.0 / 255, 133.0 / 255, 194.0 / 255, 1},
		BackgroundColor:     common.RGBA{0.08, 0.08, 0.1, 1},
		ParticleRenderStyle: model.PointStyleSphere,
		ParticleRadius:      0.05,
		MaxParticlesRender:  1000,
		InitialLOD:          100,
		CameraSpeed:         2,
	}
}

// Sanitize clamps persisted values that would stall or break playback.
func (a *Actions) Sanitize() {
	if a.AdvanceEvery <= 0 {
		a.AdvanceEvery = 0.1
	}
	if a.InitialLOD < 1 {
		a.InitialLOD = 1
	}
	a.MaxParticlesRender = max(a.MaxParticlesRender, 0)
	if a.ParticleRadius <= 0 {
		a.ParticleRadius = 0.05
	}
	if a.CameraSpeed <= 0 {
		a.CameraSpeed = 2
	}
}

// Period returns AdvanceEvery as a duration.
func (a *Actions) Period() time.Duration {
	return time.Duration(float64(a.AdvanceEvery) * float64(time.Second))
}

// KeepSession copies the session-only fields from prev, used after loading from disk.
func (a *Actions) KeepSession(prev Actions) {
	a.FluidsLoaded = prev.FluidsLoaded
	a.FluidsLoadedPercent = prev.FluidsLoadedPercent
	a.LODs = prev.LODs
	a.WantedLOD = prev.WantedLOD
	a.Datasets = prev.Datasets
	a.Dataset = prev.Dataset
}

// PointOptions returns the representation styling for the current settings.
func (a *Actions) PointOptions() model.PointOptions {
	return model.PointOptions{
		Style:  a.ParticleRenderStyle,
		Radius: a.ParticleRadius,
		Color:  a.FluidColor,
	}
}
