package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtensions are the mesh file extensions picked up from a dataset directory.
var DefaultExtensions = []string{".obj", ".gltf", ".glb"}

// Source is the active data source. A non-empty Subdir takes precedence over Pattern.
type Source struct {
	// Pattern is a glob over file paths, "**" allowed.
	Pattern string `toml:"pattern" yaml:"pattern"`
	// Subdir is a dataset directory relative to the resolver's root.
	Subdir string `toml:"subdir" yaml:"subdir"`
}

// IsZero reports whether no source is selected.
func (s Source) IsZero() bool {
	return s.Pattern == "" && s.Subdir == ""
}

// UpdateResult describes what a Resolver update did.
type UpdateResult struct {
	// Switched is true when the source changed and the manager was cleared.
	Switched bool
	// Released holds the entries that were loaded before a switch, for the caller to release.
	Released []MeshEntry
	// Discarded holds the loads still in flight at a switch, for the caller to discard.
	Discarded []PendingEntry
	// Added is the number of newly discovered files.
	Added int
	// Requested is the number of load requests issued.
	Requested int
}

// Resolver turns a Source into a file list and feeds it to the LoadManager it owns.
type Resolver interface {
	// Update resolves the source and merges the resulting files into the manager.
	// Changing source clears the manager first. Resolution errors are logged and yield no files.
	//
	// Parameters:
	//   - source: the pattern or dataset directory to load
	//   - req: the loader to request from
	//
	// Returns:
	//   - UpdateResult: what changed
	Update(source Source, req MeshRequestor) UpdateResult

	// Resolve lists the files of a source without touching the manager.
	Resolve(source Source) []string

	// ListSubdirectories walks the root recursively, following symlinks, and returns every
	// directory found relative to the root in natural order. Unreadable entries are skipped.
	ListSubdirectories() []string

	// HasMeshExtension reports whether a file name has a recognized mesh extension.
	HasMeshExtension(name string) bool

	// Manager returns the owned LoadManager.
	Manager() LoadManager

	// Source returns the source of the last update.
	Source() Source

	// Root returns the directory subdirectories are resolved against.
	Root() string

	// Dir returns the directory holding the active dataset, or "" for a pattern source.
	Dir() string
}

// resolverImpl is the implementation of the Resolver interface.
type resolverImpl struct {
	root       string
	extensions []string
	source     Source
	manager    LoadManager
	logger     *slog.Logger
}

var _ Resolver = &resolverImpl{}

// NewResolver creates a Resolver rooted at root.
//
// Parameters:
//   - root: directory that dataset subdirectories live under
//   - manager: the LoadManager to own and feed
//   - options: functional options
//
// Returns:
//   - Resolver: the new resolver
func NewResolver(root string, manager LoadManager, options ...ResolverBuilderOption) Resolver {
	r := &resolverImpl{
		root:       root,
		extensions: DefaultExtensions,
		manager:    manager,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *resolverImpl) Update(source Source, req MeshRequestor) UpdateResult {
	var res UpdateResult
	if source != r.source {
		res.Switched = true
		res.Released, res.Discarded = r.manager.Clear()
		r.logger.Info("resolver: source changed", "pattern", source.Pattern, "subdir", source.Subdir, "released", len(res.Released), "discarded", len(res.Discarded))
		r.source = source
	}
	res.Added = r.manager.AddNewAssets(r.Resolve(source))
	res.Requested = r.manager.LoadAssets(req)
	return res
}

func (r *resolverImpl) Resolve(source Source) []string {
	if source.Subdir != "" {
		return r.listDir(filepath.Join(r.root, source.Subdir))
	}
	if source.Pattern == "" {
		return nil
	}
	matches, err := doublestar.FilepathGlob(source.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		r.logger.Warn("resolver: glob failed", "pattern", source.Pattern, "err", err)
		return nil
	}
	return matches
}

// listDir returns files directly inside dir with a recognized extension.
func (r *resolverImpl) listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.logger.Warn("resolver: read dir failed", "dir", dir, "err", err)
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !r.HasMeshExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}

// HasMeshExtension reports whether name ends in one of the resolver's extensions, case-insensitively.
func (r *resolverImpl) HasMeshExtension(name string) bool {
	return slices.Contains(r.extensions, strings.ToLower(filepath.Ext(name)))
}

func (r *resolverImpl) ListSubdirectories() []string {
	var dirs []string
	visited := make(map[string]struct{})
	if real, err := filepath.EvalSymlinks(r.root); err == nil {
		visited[real] = struct{}{}
	}

	var walk func(dir, rel string)
	walk = func(dir, rel string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			r.logger.Debug("resolver: skip unreadable dir", "dir", dir, "err", err)
			return
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			info, err := os.Stat(path) // follows symlinks
			if err != nil || !info.IsDir() {
				continue
			}
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				continue
			}
			if _, seen := visited[real]; seen {
				continue
			}
			visited[real] = struct{}{}
			child := filepath.Join(rel, e.Name())
			dirs = append(dirs, child)
			walk(path, child)
		}
	}
	walk(r.root, "")

	common.SortNatural(dirs)
	return dirs
}

func (r *resolverImpl) Manager() LoadManager {
	return r.manager
}

func (r *resolverImpl) Source() Source {
	return r.source
}

func (r *resolverImpl) Root() string {
	return r.root
}

func (r *resolverImpl) Dir() string {
	if r.source.Subdir == "" {
		return ""
	}
	return filepath.Join(r.root, r.source.Subdir)
}
