package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/camera"
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/Carmen-Shannon/mesh-ripper/engine/scene"
	"github.com/Carmen-Shannon/mesh-ripper/engine/settings"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 10 * time.Millisecond

func makeDataset(t *testing.T, root, name string, frames int) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := 1; i <= frames; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("frame%d.obj", i)), []byte("v 0 0 0\n"), 0o644))
	}
	return dir
}

type harness struct {
	v      Viewer
	loader *fakeLoader
	scene  scene.Scene
	cam    camera.Camera
	titles []string
}

func newHarness(t *testing.T, options ...ViewerBuilderOption) *harness {
	t.Helper()
	h := &harness{
		loader: newFakeLoader(),
		scene:  scene.NewScene(),
		cam:    camera.NewCamera(),
	}
	options = append(options, WithTitleCallback(func(title string) {
		h.titles = append(h.titles, title)
	}))
	v, err := NewViewer(h.loader, h.scene, h.cam, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	h.v = v
	return h
}

func (h *harness) ticks(n int, dt time.Duration) {
	for range n {
		h.v.Tick(dt)
	}
}

func (h *harness) key(key uint32, mods common.Modifier) {
	h.v.PushKey(common.KeyEvent{Key: key, Mods: mods, Pressed: true})
	h.v.PushKey(common.KeyEvent{Key: key, Mods: mods})
}

func TestFirstFrameShownAndFramed(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "a", 5)
	h := newHarness(t, WithDatasetRoot(root, ""))

	assert.Equal(t, []string{"a"}, h.v.Actions().Datasets)

	// first tick requests, second tick resolves and draws
	h.ticks(2, tick)

	actions := h.v.Actions()
	assert.Equal(t, 5, actions.FluidsLoaded)
	assert.InDelta(t, 100, actions.FluidsLoadedPercent, 1e-3)
	assert.Equal(t, filepath.Join(dir, "frame1.obj"), actions.CurrentFile)
	assert.Equal(t, 0, actions.CurrentFrame)

	require.Equal(t, 1, h.scene.Count())
	rep, ok := h.scene.Get(h.v.Pool().Displayed()[0])
	require.True(t, ok)
	points, ok := rep.(model.Unconnected)
	require.True(t, ok)
	assert.Len(t, points.SampledIndices, 10)

	assert.NotEqual(t, common.IdentityPose(), h.cam.Pose())
	require.NotEmpty(t, h.titles)
	assert.Contains(t, h.v.Title(), "frame 1/5")
	assert.Contains(t, h.v.Title(), "paused")
}

func TestPlaybackAdvancesWhenUnpaused(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "a", 3)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.ticks(2, tick)

	h.key(common.KeyX, 0)
	h.ticks(1, 150*time.Millisecond)
	assert.False(t, h.v.Actions().Paused)
	assert.Equal(t, 1, h.v.Actions().CurrentFrame)
	assert.Equal(t, filepath.Join(dir, "frame2.obj"), h.v.Actions().CurrentFile)
	assert.Equal(t, 1, h.scene.Count())

	// below the period nothing changes
	h.ticks(1, 50*time.Millisecond)
	assert.Equal(t, 1, h.v.Actions().CurrentFrame)

	h.key(common.KeyB, 0)
	h.ticks(1, 150*time.Millisecond)
	assert.Equal(t, 0, h.v.Actions().CurrentFrame)
}

func TestStepWhilePausedAndReset(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 4)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.ticks(2, tick)

	h.key(common.KeyRight, 0)
	h.key(common.KeyRight, 0)
	h.ticks(1, tick)
	assert.Equal(t, 2, h.v.Actions().CurrentFrame)

	h.key(common.KeyLeft, 0)
	h.ticks(1, tick)
	assert.Equal(t, 1, h.v.Actions().CurrentFrame)

	h.key(common.KeyR, 0)
	h.ticks(1, tick)
	assert.Equal(t, 0, h.v.Actions().CurrentFrame)
	assert.Equal(t, 1, h.scene.Count())
}

func TestSpeedBindings(t *testing.T) {
	h := newHarness(t)
	before := h.v.Actions().AdvanceEvery
	h.key(common.KeyF, 0)
	h.ticks(1, tick)
	assert.Less(t, h.v.Actions().AdvanceEvery, before)

	h.key(common.KeyG, 0)
	h.key(common.KeyG, 0)
	h.ticks(1, tick)
	assert.Greater(t, h.v.Actions().AdvanceEvery, before)
}

func TestDatasetSwitchReleasesPreviousFrames(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 5)
	dirB := makeDataset(t, root, "b", 2)
	h := newHarness(t, WithDatasetRoot(root, ""))
	h.ticks(2, tick)
	require.Equal(t, 5, h.v.Actions().FluidsLoaded)

	h.key(common.KeyRightBracket, 0)
	h.ticks(1, tick)
	assert.Equal(t, "b", h.v.Actions().Dataset)
	assert.Equal(t, 5, h.loader.releasedCount())
	assert.Zero(t, h.scene.Count())

	h.ticks(1, tick)
	assert.Equal(t, filepath.Join(dirB, "frame1.obj"), h.v.Actions().CurrentFile)
	assert.Equal(t, 2, h.v.Manager().Progress().Total)
	assert.Equal(t, 1, h.scene.Count())

	// wraps around
	h.key(common.KeyRightBracket, 0)
	h.ticks(1, tick)
	assert.Equal(t, "a", h.v.Actions().Dataset)
}

func TestDatasetSwitchDiscardsInFlightLoads(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 5)
	makeDataset(t, root, "b", 2)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.loader.hold = true
	h.ticks(1, tick)
	inFlight := len(h.v.Manager().Loading())
	require.Positive(t, inFlight)

	h.key(common.KeyRightBracket, 0)
	h.ticks(1, tick)
	assert.Equal(t, "b", h.v.Actions().Dataset)
	assert.Equal(t, inFlight, h.loader.discardedCount())
	assert.Zero(t, h.loader.releasedCount())
}

func TestLevelOfDetailRaisedOnDemand(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 20)
	h := newHarness(t, WithDatasetRoot(root, "a"), WithInitialLOD(3))
	h.ticks(2, tick)

	mgr := h.v.Manager()
	lods := h.v.Actions().LODs
	require.Greater(t, len(lods), 1)
	assert.Equal(t, lods[0], mgr.Progress().Wanted)
	assert.Equal(t, lods[0], h.v.Actions().FluidsLoaded)

	h.key(common.KeyPageUp, 0)
	h.ticks(1, tick)
	assert.Equal(t, 1, mgr.Level())
	h.ticks(1, tick)
	assert.Equal(t, lods[1], h.v.Actions().FluidsLoaded)

	// cannot go below the level already loaded
	h.key(common.KeyPageDown, 0)
	h.ticks(1, tick)
	assert.Equal(t, 1, h.v.Actions().WantedLOD)
}

func TestLevelOfDetailWaitsForInFlightLoads(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 20)
	h := newHarness(t, WithDatasetRoot(root, "a"), WithInitialLOD(3))
	h.loader.hold = true
	h.ticks(1, tick)

	h.key(common.KeyPageUp, 0)
	h.ticks(3, tick)
	assert.Zero(t, h.v.Manager().Level())

	h.loader.hold = false
	h.ticks(2, tick)
	assert.Equal(t, 1, h.v.Manager().Level())
}

func TestFailedFramesRetriedOnReload(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "a", 3)
	bad := filepath.Join(dir, "frame2.obj")
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.loader.setFail(bad, true)
	h.ticks(2, tick)

	assert.Equal(t, []string{bad}, h.v.Manager().Failed())
	assert.Equal(t, 2, h.v.Actions().FluidsLoaded)
	assert.Contains(t, h.v.Title(), "1 failed")

	h.loader.setFail(bad, false)
	h.key(common.KeyR, common.ModControl)
	h.ticks(2, tick)
	assert.Empty(t, h.v.Manager().Failed())
	assert.Equal(t, 3, h.v.Actions().FluidsLoaded)
}

func TestRecordAndFollow(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 3)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.ticks(2, tick)

	first := common.NewPose(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())
	second := common.NewPose(mgl32.Vec3{5, 2, 3}, mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}))

	// K without record mode does nothing
	h.key(common.KeyK, 0)
	h.ticks(1, tick)
	tl, ok := h.v.Cameras().EnabledTimeline()
	require.True(t, ok)
	assert.Zero(t, tl.Len())

	h.key(common.KeyK, common.ModControl)
	h.cam.SetPose(first)
	h.key(common.KeyK, 0)
	h.ticks(1, tick)
	assert.Contains(t, h.v.Title(), "REC")

	h.key(common.KeyRight, 0)
	h.key(common.KeyRight, 0)
	h.ticks(1, tick)
	h.cam.SetPose(second)
	h.key(common.KeyK, 0)
	h.ticks(1, tick)
	require.Equal(t, 2, tl.Len())

	h.key(common.KeyK, common.ModControl)
	h.key(common.KeyC, common.ModControl)
	h.key(common.KeyR, 0)
	h.key(common.KeyX, 0)
	h.ticks(1, tick)
	assert.True(t, common.ApproxEqualVec3(first.Translation, h.cam.Pose().Translation, 1e-4))

	h.ticks(1, 150*time.Millisecond)
	assert.Equal(t, 1, h.v.Actions().CurrentFrame)
	assert.True(t, common.ApproxEqualVec3(mgl32.Vec3{3, 2, 3}, h.cam.Pose().Translation, 1e-4))

	// markers for both keyframes
	h.key(common.KeyV, common.ModControl)
	h.ticks(1, tick)
	assert.Equal(t, 3, h.scene.Count())
}

func TestTimelineBindings(t *testing.T) {
	h := newHarness(t)
	h.key(common.KeyN, 0)
	h.ticks(1, tick)
	names := h.v.Cameras().Names()
	require.Len(t, names, 2)
	created := h.v.Cameras().CurrentTimeline
	assert.NotEqual(t, "Default", created)

	h.key(common.KeyTab, 0)
	h.ticks(1, tick)
	assert.NotEqual(t, created, h.v.Cameras().CurrentTimeline)
}

func TestSaveAndLoadConfig(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "a", 3)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.ticks(2, tick)

	h.key(common.KeyRight, 0)
	h.ticks(1, tick)
	require.Equal(t, 1, h.v.Actions().CurrentFrame)

	h.key(common.KeyF, 0)
	h.key(common.KeyS, common.ModControl)
	h.ticks(1, tick)
	assert.FileExists(t, filepath.Join(dir, settings.ConfigFileName))
	assert.FileExists(t, filepath.Join(dir, settings.CameraConfigFileName))
	saved := h.v.Actions()

	h.key(common.KeyG, 0)
	h.key(common.KeyG, 0)
	h.key(common.KeyR, 0)
	h.ticks(1, tick)
	require.NotEqual(t, saved.AdvanceEvery, h.v.Actions().AdvanceEvery)
	require.Equal(t, 0, h.v.Actions().CurrentFrame)

	require.NoError(t, h.v.LoadConfig())
	h.ticks(1, tick)
	assert.Equal(t, saved.AdvanceEvery, h.v.Actions().AdvanceEvery)
	assert.Equal(t, 1, h.v.Actions().CurrentFrame)
	assert.Equal(t, []string{"a"}, h.v.Actions().Datasets)
}

func TestLoadConfigCorruptKeepsSettings(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "a", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, settings.ConfigFileName), []byte("advance_every = ["), 0o644))
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.ticks(1, tick)

	before := h.v.Actions()
	assert.Error(t, h.v.LoadConfig())
	assert.Equal(t, before.AdvanceEvery, h.v.Actions().AdvanceEvery)
}

func TestConfigWithoutSource(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.v.SaveConfig(), ErrNoDataset)
}

func TestPatternSourceAndBackground(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "run", 2)
	ground := filepath.Join(root, "ground.obj")
	require.NoError(t, os.WriteFile(ground, []byte("v 0 0 0\n"), 0o644))

	h := newHarness(t,
		WithPattern(filepath.Join(dir, "*.obj")),
		WithBackgroundMeshes(ground),
	)
	h.ticks(2, tick)

	assert.Equal(t, 2, h.v.Actions().FluidsLoaded)
	// one frame and one background mesh
	assert.Equal(t, 2, h.scene.Count())

	var background int
	for _, e := range h.scene.Snapshot() {
		if c, ok := e.Representation.(model.Connected); ok && c.Background {
			background++
		}
	}
	assert.Equal(t, 1, background)

	require.NoError(t, h.v.SaveConfig())
	assert.FileExists(t, filepath.Join(dir, settings.ConfigFileName))

	require.NoError(t, h.v.Close())
	assert.Zero(t, h.scene.Count())
	assert.Equal(t, 3, h.loader.releasedCount())
}

func TestWatcherPicksUpNewFrames(t *testing.T) {
	root := t.TempDir()
	dir := makeDataset(t, root, "a", 2)
	h := newHarness(t, WithDatasetRoot(root, "a"), WithWatch(true))
	h.ticks(2, tick)
	require.Equal(t, 2, h.v.Manager().Progress().Total)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame3.obj"), []byte("v 0 0 0\n"), 0o644))
	require.Eventually(t, func() bool {
		h.v.Tick(tick)
		return h.v.Actions().FluidsLoaded == 3
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCloseDespawnsAndReleases(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 3)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.ticks(2, tick)
	require.Equal(t, 1, h.scene.Count())

	require.NoError(t, h.v.Close())
	assert.Zero(t, h.scene.Count())
	assert.Equal(t, 3, h.loader.releasedCount())
}

func TestCloseDiscardsInFlightLoads(t *testing.T) {
	root := t.TempDir()
	makeDataset(t, root, "a", 3)
	h := newHarness(t, WithDatasetRoot(root, "a"))
	h.loader.hold = true
	h.ticks(1, tick)
	inFlight := len(h.v.Manager().Loading())
	require.Positive(t, inFlight)

	require.NoError(t, h.v.Close())
	assert.Equal(t, inFlight, h.loader.discardedCount())
	assert.Zero(t, h.loader.releasedCount())
}
