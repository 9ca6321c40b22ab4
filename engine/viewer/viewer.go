// Package viewer drives one tick of the mesh viewer: input, loading, level of detail,
// playback and the camera, always in that order.
package viewer

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/assets"
	"github.com/Carmen-Shannon/mesh-ripper/engine/camera"
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/Carmen-Shannon/mesh-ripper/engine/playback"
	"github.com/Carmen-Shannon/mesh-ripper/engine/scene"
	"github.com/Carmen-Shannon/mesh-ripper/engine/settings"
	"github.com/Carmen-Shannon/mesh-ripper/engine/timeline"
)

// MeshLoader is the asynchronous loader the viewer drives. loader.Loader satisfies it.
type MeshLoader interface {
	assets.Loader[string, common.PendingHandle, common.Handle]

	// Mesh returns the decoded mesh for a resolved handle.
	Mesh(h common.Handle) (model.Mesh, bool)

	// Release drops the viewer's reference to a mesh.
	Release(h common.Handle)

	// Discard abandons a load the viewer will never resolve.
	Discard(pending common.PendingHandle)
}

// Viewer is the per-tick context of the application. Every mutable piece of viewer state lives
// here and is only touched from Tick, except the input queue which PushKey feeds from the window thread.
type Viewer interface {
	// PushKey queues a key event for the next Tick. Safe to call from any goroutine.
	//
	// Parameters:
	//   - ev: the key event
	PushKey(ev common.KeyEvent)

	// Tick runs one update: drain input, poll loads, apply source and level changes,
	// advance playback, then drive the camera.
	//
	// Parameters:
	//   - dt: wall-clock time since the previous tick
	Tick(dt time.Duration)

	// Actions returns a copy of the current settings.
	Actions() settings.Actions

	// UpdateActions applies fn to the live settings under the viewer lock.
	UpdateActions(fn func(a *settings.Actions))

	// Cameras returns the camera timeline system. Only use it from the tick goroutine.
	Cameras() *timeline.CameraSystem

	// Camera returns the live camera.
	Camera() camera.Camera

	// Pool returns the playback state. Only use it from the tick goroutine.
	Pool() playback.MeshPool

	// Manager returns the load manager of the active source.
	Manager() assets.LoadManager

	// Title returns the current window title text.
	Title() string

	// SaveConfig writes the settings and camera timelines next to the active dataset.
	SaveConfig() error

	// LoadConfig reads the settings and camera timelines from the active dataset.
	// On failure the live values are kept.
	LoadConfig() error

	// Close despawns everything, releases loaded meshes and stops the directory watcher.
	Close() error
}

// viewerImpl is the implementation of the Viewer interface.
type viewerImpl struct {
	mu     sync.Mutex
	logger *slog.Logger

	loader MeshLoader
	sink   scene.Sink
	cam    camera.Camera
	ctrl   camera.CameraController

	actions  settings.Actions
	cameras  *timeline.CameraSystem
	vis      *timeline.Visualization
	pool     playback.MeshPool
	resolver assets.Resolver

	background     *assets.BackgroundMeshes
	backgroundRefs []scene.EntityRef

	// configuration collected from builder options
	pattern         string
	datasetRoot     string
	backgroundPaths []string
	watch           bool
	onTitle         func(string)

	want        assets.Source
	watcher     *datasetWatcher
	lastFailed  int
	title       string
	inputMu     sync.Mutex
	input       []common.KeyEvent
	shownKey    string
	shownHandle common.Handle
	shownOpts   model.PointOptions
	shownSize   int
}

var _ Viewer = &viewerImpl{}

// NewViewer creates a Viewer drawing into sink with meshes from ldr.
//
// Parameters:
//   - ldr: the asynchronous mesh loader
//   - sink: the scene the viewer spawns representations into
//   - cam: the live camera
//   - options: functional options selecting the data source and behaviour
//
// Returns:
//   - Viewer: the new viewer
//   - error: error if the dataset watcher could not be started
func NewViewer(ldr MeshLoader, sink scene.Sink, cam camera.Camera, options ...ViewerBuilderOption) (Viewer, error) {
	v := &viewerImpl{
		logger:  slog.Default(),
		loader:  ldr,
		sink:    sink,
		cam:     cam,
		actions: settings.DefaultActions(),
		cameras: timeline.NewCameraSystem(),
		vis:     timeline.NewVisualization(0.1),
	}
	for _, opt := range options {
		opt(v)
	}
	v.actions.Sanitize()

	v.ctrl = camera.NewCameraController(camera.WithMoveSpeed(v.actions.CameraSpeed))
	v.pool = playback.NewMeshPool(
		playback.WithPeriod(v.actions.Period()),
		playback.WithPaused(v.actions.Paused),
		playback.WithDirection(v.actions.FrameDirection),
	)
	manager := assets.NewLoadManager(nil,
		assets.WithInitialLOD(v.actions.InitialLOD),
		assets.WithLogger(v.logger),
	)
	v.resolver = assets.NewResolver(v.datasetRoot, manager, assets.WithResolverLogger(v.logger))
	v.background = assets.NewBackgroundMeshes(v.backgroundPaths...)
	v.background.Load(ldr)

	switch {
	case v.datasetRoot != "":
		v.actions.Datasets = v.resolver.ListSubdirectories()
		if v.actions.Dataset == "" && len(v.actions.Datasets) > 0 {
			v.actions.Dataset = v.actions.Datasets[0]
		}
		v.want = assets.Source{Subdir: v.actions.Dataset}
	case v.pattern != "":
		v.want = assets.Source{Pattern: v.pattern}
	}
	if v.want.IsZero() {
		v.logger.Warn("viewer: no data source", "root", v.datasetRoot, "pattern", v.pattern)
	}

	if v.watch {
		w, err := newDatasetWatcher(v.logger, v.resolver.HasMeshExtension)
		if err != nil {
			return nil, fmt.Errorf("failed to start dataset watcher: %w", err)
		}
		v.watcher = w
	}
	return v, nil
}

func (v *viewerImpl) Tick(dt time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.handleInput()
	v.updateLoads()
	v.updateSource()
	v.updateLevelOfDetail()
	v.updatePlayback(dt)
	v.updateCamera(dt)
	v.updateTitle()
}

func (v *viewerImpl) Actions() settings.Actions {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.actions
}

func (v *viewerImpl) UpdateActions(fn func(a *settings.Actions)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.actions)
	v.actions.Sanitize()
}

func (v *viewerImpl) Cameras() *timeline.CameraSystem {
	return v.cameras
}

func (v *viewerImpl) Camera() camera.Camera {
	return v.cam
}

func (v *viewerImpl) Pool() playback.MeshPool {
	return v.pool
}

func (v *viewerImpl) Manager() assets.LoadManager {
	return v.resolver.Manager()
}

func (v *viewerImpl) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

func (v *viewerImpl) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pool.Despawn(v.sink)
	v.vis.Clear(v.sink)
	for _, ref := range v.backgroundRefs {
		v.sink.Despawn(ref)
	}
	v.backgroundRefs = nil
	released, discarded := v.resolver.Manager().Clear()
	v.releaseAll(released, discarded)
	v.releaseAll(v.background.Clear())
	if v.watcher != nil {
		return v.watcher.Close()
	}
	return nil
}

// updateLoads polls the loader and spawns background meshes as they become available.
func (v *viewerImpl) updateLoads() {
	mgr := v.resolver.Manager()
	mgr.UpdateLoadState(v.loader)

	if failed := len(mgr.Failed()); failed != v.lastFailed {
		if failed > v.lastFailed {
			v.logger.Warn("viewer: frames failed to load, Ctrl+R retries", "failed", failed)
		}
		v.lastFailed = failed
	}

	v.background.Update(v.loader)
	for _, e := range v.background.TakeAvailable() {
		v.backgroundRefs = append(v.backgroundRefs, v.sink.Spawn(model.Connected{
			Mesh:       e.Value,
			Color:      common.RGBA{0.6, 0.6, 0.6, 1},
			Background: true,
		}))
		v.logger.Info("viewer: background mesh shown", "path", e.Key)
	}

	p := mgr.Progress()
	v.actions.FluidsLoaded = p.Loaded
	v.actions.FluidsLoadedPercent = p.Percent()
}

// updateSource applies dataset switches, reload requests and watcher notifications.
func (v *viewerImpl) updateSource() {
	if v.datasetRoot != "" && v.actions.Dataset != v.want.Subdir {
		v.want = assets.Source{Subdir: v.actions.Dataset}
	}

	changed := v.watcher != nil && v.watcher.Changed()
	reload := v.actions.Reload
	v.actions.Reload = false
	if v.want.IsZero() || (v.want == v.resolver.Source() && !reload && !changed) {
		return
	}

	res := v.resolver.Update(v.want, v.loader)
	if res.Switched {
		v.switchDataset(res.Released, res.Discarded)
	}
	if reload {
		if n := v.resolver.Manager().RetryFailed(v.loader); n > 0 {
			v.logger.Info("viewer: retrying failed frames", "count", n)
		}
	}
	if res.Added > 0 || res.Switched {
		v.actions.LODs = v.resolver.Manager().LODs()
		v.actions.WantedLOD = min(v.actions.WantedLOD, max(len(v.actions.LODs)-1, 0))
		v.logger.Info("viewer: files discovered", "added", res.Added, "total", len(v.resolver.Manager().Items()), "requested", res.Requested)
	}
}

// releaseAll hands loaded meshes and abandoned loads back to the loader.
func (v *viewerImpl) releaseAll(released []assets.MeshEntry, discarded []assets.PendingEntry) {
	for _, e := range released {
		v.loader.Release(e.Value)
	}
	for _, e := range discarded {
		v.loader.Discard(e.Value)
	}
}

// switchDataset tears down the previous dataset after the manager was cleared.
func (v *viewerImpl) switchDataset(released []assets.MeshEntry, discarded []assets.PendingEntry) {
	v.pool.Despawn(v.sink)
	v.pool.Reset()
	v.pool.SetSampledIndices(nil)
	v.releaseAll(released, discarded)
	v.shownKey, v.shownHandle = "", 0
	v.lastFailed = 0
	v.actions.WantedLOD = 0

	if v.watcher != nil {
		if dir := v.configDir(); dir != "" {
			if err := v.watcher.Watch(dir); err != nil {
				v.logger.Warn("viewer: cannot watch dataset", "dir", dir, "err", err)
			}
		}
	}
}

// updateLevelOfDetail refines one level per tick until the wanted level is reached.
// A level is only refined once everything in flight has settled.
func (v *viewerImpl) updateLevelOfDetail() {
	mgr := v.resolver.Manager()
	if mgr.Level() >= v.actions.WantedLOD || !mgr.FullyLoaded() {
		return
	}
	if mgr.NextLODAndReload(v.loader) {
		v.logger.Info("viewer: level of detail raised", "level", mgr.Level(), "wanted", mgr.Progress().Wanted)
		return
	}
	v.actions.WantedLOD = mgr.Level()
}

// updatePlayback advances the frame clock and redraws when the shown frame changes.
func (v *viewerImpl) updatePlayback(dt time.Duration) {
	mgr := v.resolver.Manager()
	loaded := mgr.Loaded()

	v.pool.SetPeriod(v.actions.Period())
	v.pool.SetPaused(v.actions.Paused)
	v.pool.SetDirection(v.actions.FrameDirection)
	v.pool.SetTotalFrames(len(loaded))

	if len(loaded) == 0 {
		if len(v.pool.Displayed()) > 0 {
			v.pool.Despawn(v.sink)
			v.shownKey, v.shownHandle = "", 0
		}
		return
	}

	// newly loaded frames shift positions; keep showing the same file
	if v.shownKey != "" {
		if i := slices.IndexFunc(loaded, func(e assets.MeshEntry) bool { return e.Key == v.shownKey }); i >= 0 {
			v.pool.SetCurrentIndex(i)
		}
	}
	if v.actions.Reset {
		v.actions.Reset = false
		v.pool.Reset()
	}
	v.pool.Tick(dt)

	cur := loaded[v.pool.CurrentIndex()]
	opts := v.actions.PointOptions()
	size := v.actions.MaxParticlesRender
	firstShow := !v.pool.HasShownOnce()
	if !firstShow && !v.actions.FocusOnMesh && cur.Key == v.shownKey && cur.Value == v.shownHandle && opts == v.shownOpts && size == v.shownSize {
		return
	}

	m, ok := v.loader.Mesh(cur.Value)
	if !ok {
		v.logger.Warn("viewer: loaded frame has no mesh", "path", cur.Key)
		return
	}
	var sampled []int
	if !m.Features().Connected() {
		sampled = v.pool.EnsureSampled(m.VertexCount(), size)
	}
	v.pool.Redraw(v.sink, model.Represent(cur.Value, m, sampled, opts))
	v.shownKey, v.shownHandle, v.shownOpts, v.shownSize = cur.Key, cur.Value, opts, size

	if idx, ok := mgr.IndexOf(cur.Key); ok {
		v.actions.CurrentFrame = idx
	}
	v.actions.CurrentFile = cur.Key

	if firstShow || v.actions.FocusOnMesh {
		v.actions.FocusOnMesh = false
		if box, ok := m.Bounds(); ok {
			v.cam.SetPose(box.FramingPose())
		}
	}
}

// updateCamera flies the camera, then lets a followed timeline override it and refreshes markers.
func (v *viewerImpl) updateCamera(dt time.Duration) {
	v.ctrl.SetMoveSpeed(v.actions.CameraSpeed)
	// arrows step frames while paused
	v.ctrl.Apply(v.cam, dt, !v.actions.Paused)

	if v.pool.HasShownOnce() {
		if pose, ok := v.cameras.Follow(v.actions.CurrentFrame, v.actions.Paused); ok {
			v.cam.SetPose(pose)
		}
	}

	tl, _ := v.cameras.EnabledTimeline()
	v.vis.Sync(v.sink, tl, v.cameras.ShowVisualization)
}

// updateTitle reports the playback state through the title callback when it changes.
func (v *viewerImpl) updateTitle() {
	mgr := v.resolver.Manager()
	p := mgr.Progress()
	title := "mesh ripper"
	if v.pool.TotalFrames() > 0 {
		title = fmt.Sprintf("mesh ripper | frame %d/%d | LOD %d/%d | %.0f%% loaded",
			v.actions.CurrentFrame+1, p.Total, p.Wanted, p.Total, p.Percent())
	}
	if v.actions.Paused {
		title += " | paused"
	}
	if p.Failed > 0 {
		title += fmt.Sprintf(" | %d failed", p.Failed)
	}
	if v.cameras.RecordMode {
		title += " | REC " + v.cameras.CurrentTimeline
	}
	if v.cameras.FollowCamera {
		title += " | follow " + v.cameras.CurrentTimeline
	}
	if title == v.title {
		return
	}
	v.title = title
	if v.onTitle != nil {
		v.onTitle(title)
	}
}
