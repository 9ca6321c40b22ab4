// Package playback owns the flipbook position over the loaded frames and whatever
// is currently displayed for it.
package playback

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/Carmen-Shannon/mesh-ripper/engine/scene"
)

// MeshPool tracks the current frame of a time series, advances it on a period,
// and is the exclusive owner of the entities displayed for that frame.
// Not safe for concurrent use; driven from the tick.
type MeshPool interface {
	// Tick accumulates delta and reports whether the displayed frame must be redrawn.
	// The first call with frames available always reports true, even while paused.
	// While paused nothing advances. Otherwise the index moves one step in the current
	// direction once the accumulated time exceeds the period.
	//
	// Parameters:
	//   - delta: wall-clock time since the last tick
	//
	// Returns:
	//   - bool: true if Redraw should be called for CurrentIndex
	Tick(delta time.Duration) bool

	// NeedsUpdate reports, without mutating, whether Tick(delta) would report a redraw.
	NeedsUpdate(delta time.Duration) bool

	// Advance moves one frame forward, wrapping to 0. No-op with zero frames.
	Advance()

	// Retreat moves one frame back, wrapping to the last frame. No-op with zero frames.
	Retreat()

	// Step moves one frame in dir.
	Step(dir Direction)

	// Reset rewinds to frame 0 without redrawing; the next tick redraws.
	Reset()

	// Redraw despawns everything currently displayed, then spawns reps.
	//
	// Parameters:
	//   - sink: the scene to mutate
	//   - reps: what to display for the current frame
	Redraw(sink scene.Sink, reps ...model.Representation)

	// Despawn removes everything currently displayed and forgets that anything was shown.
	Despawn(sink scene.Sink)

	// Displayed returns the entities currently owned by the pool.
	Displayed() []scene.EntityRef

	// HasShownOnce reports whether anything has been displayed since construction or Despawn.
	HasShownOnce() bool

	// SetTotalFrames updates the number of available frames, clamping the index to 0 if it fell out of range.
	SetTotalFrames(n int)

	// TotalFrames returns the number of available frames.
	TotalFrames() int

	// CurrentIndex returns the index of the displayed frame.
	CurrentIndex() int

	// SetCurrentIndex jumps to index i, ignored when out of range.
	SetCurrentIndex(i int)

	// Direction returns the playback direction.
	Direction() Direction

	// SetDirection changes the playback direction.
	SetDirection(d Direction)

	// Paused reports whether playback is paused.
	Paused() bool

	// SetPaused pauses or resumes playback.
	SetPaused(paused bool)

	// Period returns how long each frame stays on screen.
	Period() time.Duration

	// SetPeriod changes how long each frame stays on screen. Non-positive values are ignored.
	SetPeriod(d time.Duration)

	// SampledIndices returns the vertex subset used for point-cloud frames.
	SampledIndices() []int

	// SetSampledIndices installs an externally chosen vertex subset.
	SetSampledIndices(indices []int)

	// EnsureSampled resamples the vertex subset when the sample size or vertex count changed.
	//
	// Parameters:
	//   - vertexCount: vertex count of the current frame
	//   - sampleSize: how many points to draw
	//
	// Returns:
	//   - []int: the sampled indices
	EnsureSampled(vertexCount, sampleSize int) []int
}

// meshPool is the implementation of the MeshPool interface.
type meshPool struct {
	totalFrames  int
	currentIndex int
	direction    Direction
	paused       bool
	period       time.Duration
	elapsed      time.Duration
	hasShownOnce bool
	displayed    []scene.EntityRef

	sampled         []int
	sampledFor      int
	sampleSize      int
	sampledExternal bool
	rng             *rand.Rand
}

var _ MeshPool = &meshPool{}

// NewMeshPool creates a MeshPool. Defaults: paused, forward, 100ms per frame.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - MeshPool: the new pool
func NewMeshPool(options ...MeshPoolBuilderOption) MeshPool {
	p := &meshPool{
		paused: true,
		period: 100 * time.Millisecond,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p
}

func (p *meshPool) NeedsUpdate(delta time.Duration) bool {
	if p.totalFrames == 0 {
		return false
	}
	if !p.hasShownOnce {
		return true
	}
	if p.paused {
		return false
	}
	return p.elapsed+delta > p.period
}

func (p *meshPool) Tick(delta time.Duration) bool {
	if p.totalFrames == 0 {
		return false
	}
	if !p.hasShownOnce {
		return true
	}
	if p.paused {
		return false
	}
	p.elapsed += delta
	if p.elapsed <= p.period {
		return false
	}
	p.elapsed = 0
	p.Step(p.direction)
	return true
}

func (p *meshPool) Advance() {
	if p.totalFrames == 0 {
		return
	}
	p.currentIndex = (p.currentIndex + 1) % p.totalFrames
}

func (p *meshPool) Retreat() {
	if p.totalFrames == 0 {
		return
	}
	if p.currentIndex == 0 {
		p.currentIndex = p.totalFrames - 1
		return
	}
	p.currentIndex--
}

func (p *meshPool) Step(dir Direction) {
	if dir == Back {
		p.Retreat()
		return
	}
	p.Advance()
}

func (p *meshPool) Reset() {
	p.currentIndex = 0
	p.elapsed = 0
}

func (p *meshPool) Redraw(sink scene.Sink, reps ...model.Representation) {
	for _, ref := range p.displayed {
		sink.Despawn(ref)
	}
	p.displayed = p.displayed[:0]
	for _, rep := range reps {
		p.displayed = append(p.displayed, sink.Spawn(rep))
	}
	p.hasShownOnce = true
}

func (p *meshPool) Despawn(sink scene.Sink) {
	for _, ref := range p.displayed {
		sink.Despawn(ref)
	}
	p.displayed = nil
	p.hasShownOnce = false
}

func (p *meshPool) Displayed() []scene.EntityRef {
	return slices.Clone(p.displayed)
}

func (p *meshPool) HasShownOnce() bool {
	return p.hasShownOnce
}

func (p *meshPool) SetTotalFrames(n int) {
	p.totalFrames = max(n, 0)
	if p.currentIndex >= p.totalFrames {
		p.currentIndex = 0
	}
}

func (p *meshPool) TotalFrames() int {
	return p.totalFrames
}

func (p *meshPool) CurrentIndex() int {
	return p.currentIndex
}

func (p *meshPool) SetCurrentIndex(i int) {
	if i >= 0 && i < p.totalFrames {
		p.currentIndex = i
	}
}

func (p *meshPool) Direction() Direction {
	return p.direction
}

func (p *meshPool) SetDirection(d Direction) {
	p.direction = d
}

func (p *meshPool) Paused() bool {
	return p.paused
}

func (p *meshPool) SetPaused(paused bool) {
	p.paused = paused
}

func (p *meshPool) Period() time.Duration {
	return p.period
}

func (p *meshPool) SetPeriod(d time.Duration) {
	if d > 0 {
		p.period = d
	}
}

func (p *meshPool) SampledIndices() []int {
	return p.sampled
}

func (p *meshPool) SetSampledIndices(indices []int) {
	p.sampled = indices
	p.sampledExternal = indices != nil
}

func (p *meshPool) EnsureSampled(vertexCount, sampleSize int) []int {
	if p.sampledExternal {
		return p.sampled
	}
	if p.sampled != nil && p.sampledFor == vertexCount && p.sampleSize == sampleSize {
		return p.sampled
	}
	p.sampled = model.SampleIndices(vertexCount, sampleSize, p.rng)
	p.sampledFor = vertexCount
	p.sampleSize = sampleSize
	return p.sampled
}
