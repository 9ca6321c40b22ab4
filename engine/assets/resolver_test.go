package assets

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func datasetTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "run_a", "frame10.obj"))
	touch(t, filepath.Join(root, "run_a", "frame2.OBJ"))
	touch(t, filepath.Join(root, "run_a", "notes.txt"))
	touch(t, filepath.Join(root, "run_a", "nested", "frame0.obj"))
	touch(t, filepath.Join(root, "run_b", "scan.glb"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	return root
}

func TestResolveSubdirFiltersAndIsShallow(t *testing.T) {
	root := datasetTree(t)
	r := NewResolver(root, NewLoadManager(nil))

	got := r.Resolve(Source{Subdir: "run_a", Pattern: "ignored/**"})
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "run_a", "frame10.obj"),
		filepath.Join(root, "run_a", "frame2.OBJ"),
	}, got)
}

func TestResolvePattern(t *testing.T) {
	root := datasetTree(t)
	r := NewResolver(root, NewLoadManager(nil))

	got := r.Resolve(Source{Pattern: filepath.Join(root, "run_a", "**", "*.obj")})
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "run_a", "frame10.obj"),
		filepath.Join(root, "run_a", "nested", "frame0.obj"),
	}, got)
}

func TestResolveErrorsDegradeToEmpty(t *testing.T) {
	root := datasetTree(t)
	r := NewResolver(root, NewLoadManager(nil))

	assert.Empty(t, r.Resolve(Source{Subdir: "does-not-exist"}))
	assert.Empty(t, r.Resolve(Source{Pattern: "[unterminated"}))
	assert.Empty(t, r.Resolve(Source{}))
}

func TestUpdateFeedsManagerAndSwitchClears(t *testing.T) {
	root := datasetTree(t)
	m := NewLoadManager(nil, WithInitialLOD(10))
	r := NewResolver(root, m)
	ld := newFakeLoader()

	res := r.Update(Source{Subdir: "run_a"}, ld)
	assert.True(t, res.Switched)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Requested)
	assert.Equal(t, filepath.Join(root, "run_a"), r.Dir())
	assert.Equal(t, []string{
		filepath.Join(root, "run_a", "frame2.OBJ"),
		filepath.Join(root, "run_a", "frame10.obj"),
	}, m.Items())

	ld.completeAll()
	m.UpdateLoadState(ld)

	// same source again is incremental
	touch(t, filepath.Join(root, "run_a", "frame11.obj"))
	res = r.Update(Source{Subdir: "run_a"}, ld)
	assert.False(t, res.Switched)
	assert.Equal(t, 1, res.Added)
	assert.Len(t, m.Loaded(), 2)

	res = r.Update(Source{Subdir: "run_b"}, ld)
	assert.True(t, res.Switched)
	assert.Len(t, res.Released, 2)
	assert.Empty(t, res.Discarded)
	assert.Equal(t, []string{filepath.Join(root, "run_b", "scan.glb")}, m.Items())
	assert.Empty(t, m.Loaded())
}

func TestListSubdirectories(t *testing.T) {
	root := datasetTree(t)
	r := NewResolver(root, NewLoadManager(nil))

	assert.Equal(t, []string{
		"empty",
		"run_a",
		filepath.Join("run_a", "nested"),
		"run_b",
	}, r.ListSubdirectories())
}

func TestListSubdirectoriesFollowsSymlinksWithoutLooping(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := datasetTree(t)
	other := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(other, "linked_run"), 0o755))
	require.NoError(t, os.Symlink(other, filepath.Join(root, "external")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "run_b", "loop")))

	r := NewResolver(root, NewLoadManager(nil))
	dirs := r.ListSubdirectories()
	assert.Contains(t, dirs, "external")
	assert.Contains(t, dirs, filepath.Join("external", "linked_run"))
	assert.NotContains(t, dirs, filepath.Join("run_b", "loop"))
}

func TestWithExtensions(t *testing.T) {
	root := datasetTree(t)
	r := NewResolver(root, NewLoadManager(nil), WithExtensions(".GLB"))
	assert.Equal(t, []string{filepath.Join(root, "run_b", "scan.glb")}, r.Resolve(Source{Subdir: "run_b"}))
	assert.Empty(t, r.Resolve(Source{Subdir: "run_a"}))
	assert.True(t, r.HasMeshExtension("x.glb"))
	assert.False(t, r.HasMeshExtension("x.obj"))
}
