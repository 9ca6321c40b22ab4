package assets

import (
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/lod"
)

// MeshRequestor requests mesh files by path.
type MeshRequestor = Requestor[string, common.PendingHandle]

// MeshPoller polls mesh loads.
type MeshPoller = Poller[common.PendingHandle, common.Handle]

// MeshEntry is a loaded mesh file and its handle.
type MeshEntry = Entry[string, common.Handle]

// PendingEntry is an in-flight mesh file and its pending handle.
type PendingEntry = Entry[string, common.PendingHandle]

// Progress summarizes a LoadManager for display.
type Progress struct {
	// Loaded is the number of realized frames.
	Loaded int
	// Loading is the number of frames in flight.
	Loading int
	// Failed is the number of frames whose load failed.
	Failed int
	// Wanted is the size of the current level of detail.
	Wanted int
	// Total is the number of known files.
	Total int
}

// Percent returns loaded frames as a percentage of the current level, 100 when nothing is wanted.
func (p Progress) Percent() float32 {
	if p.Wanted == 0 {
		return 100
	}
	return float32(p.Loaded) / float32(p.Wanted) * 100
}

// LoadManager loads a time series of mesh files one level of detail at a time.
type LoadManager interface {
	// LoadAssets requests every item of the current level that is not loaded, loading, or failed.
	// Idempotent.
	//
	// Parameters:
	//   - req: the loader to request from
	//
	// Returns:
	//   - int: the number of requests issued
	LoadAssets(req MeshRequestor) int

	// UpdateLoadState polls pending loads once and promotes completed ones. Never blocks.
	//
	// Parameters:
	//   - poller: the loader to poll
	UpdateLoadState(poller MeshPoller)

	// NextLODAndReload refines to the next level and requests only the newly exposed items.
	//
	// Parameters:
	//   - req: the loader to request from
	//
	// Returns:
	//   - bool: false if the current level is already saturated
	NextLODAndReload(req MeshRequestor) bool

	// AddNewAssets merges keys not already known into the backing list, re-sorts it in natural
	// order and reinitializes the level of detail. Loaded and loading entries are kept.
	//
	// Parameters:
	//   - keys: newly discovered file paths
	//
	// Returns:
	//   - int: the number of keys that were new
	AddNewAssets(keys []string) int

	// RetryFailed re-requests every failed key.
	//
	// Returns:
	//   - int: the number of requests issued
	RetryFailed(req MeshRequestor) int

	// Clear drops the backing list, the level of detail, and all load state.
	//
	// Returns:
	//   - []MeshEntry: the entries that were loaded, for the caller to release
	//   - []PendingEntry: the entries still in flight, for the caller to discard
	Clear() ([]MeshEntry, []PendingEntry)

	// FullyLoaded reports whether nothing is in flight.
	FullyLoaded() bool

	// Loaded returns the realized frames in natural key order. Must not be modified.
	Loaded() []MeshEntry

	// Loading returns the in-flight requests. Must not be modified.
	Loading() []Entry[string, common.PendingHandle]

	// Failed returns the keys whose load failed. Must not be modified.
	Failed() []string

	// Items returns the full backing list. Must not be modified.
	Items() []string

	// IndexOf returns the position of key in the backing list.
	IndexOf(key string) (int, bool)

	// LODs returns the size of every level reachable from the current one, starting with it.
	LODs() []int

	// Level returns how many refinements were applied since the last (re)initialization.
	Level() int

	// Progress returns counts for display.
	Progress() Progress
}

// loadManagerImpl is the implementation of the LoadManager interface.
type loadManagerImpl struct {
	sampler lod.Sampler[string]
	tracker *Tracker[string, common.PendingHandle, common.Handle]
	known   map[string]struct{}
	level   int
	logger  *slog.Logger
}

var _ LoadManager = &loadManagerImpl{}

// NewLoadManager creates a LoadManager over the given keys.
//
// Parameters:
//   - keys: initial file paths (sorted in natural order, duplicates dropped)
//   - options: functional options
//
// Returns:
//   - LoadManager: the new manager
func NewLoadManager(keys []string, options ...LoadManagerBuilderOption) LoadManager {
	m := &loadManagerImpl{
		tracker: NewTracker[string, common.PendingHandle, common.Handle](common.CompareNatural),
		known:   make(map[string]struct{}),
		logger:  slog.Default(),
	}
	cfg := loadManagerConfig{initialLOD: DefaultInitialLOD}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.logger != nil {
		m.logger = cfg.logger
	}
	m.sampler = lod.NewSampler[string](nil, cfg.initialLOD)
	m.AddNewAssets(keys)
	return m
}

func (m *loadManagerImpl) LoadAssets(req MeshRequestor) int {
	n := m.tracker.Request(req, m.sampler.Values())
	if n > 0 {
		m.logger.Debug("load manager: requested", "count", n, "lod", m.sampler.Len())
	}
	return n
}

func (m *loadManagerImpl) UpdateLoadState(poller MeshPoller) {
	loaded, failed := m.tracker.Update(poller)
	if failed > 0 {
		m.logger.Warn("load manager: loads failed", "count", failed, "total_failed", len(m.tracker.Failed()))
	}
	if loaded > 0 && m.tracker.FullyLoaded() {
		m.logger.Debug("load manager: level loaded", "lod", m.sampler.Len(), "loaded", len(m.tracker.Loaded()))
	}
}

func (m *loadManagerImpl) NextLODAndReload(req MeshRequestor) bool {
	next, ok := m.sampler.NextLOD()
	if !ok {
		return false
	}
	m.sampler = next
	m.level++
	// the refined set is a superset, so already known keys are skipped by the tracker
	m.LoadAssets(req)
	return true
}

func (m *loadManagerImpl) AddNewAssets(keys []string) int {
	items := slices.Clone(m.sampler.Items())
	added := 0
	for _, k := range keys {
		if _, ok := m.known[k]; ok {
			continue
		}
		m.known[k] = struct{}{}
		items = append(items, k)
		added++
	}
	if added == 0 {
		return 0
	}
	common.SortNatural(items)
	m.sampler.SetItems(items)
	m.level = 0
	return added
}

func (m *loadManagerImpl) RetryFailed(req MeshRequestor) int {
	return m.tracker.RetryFailed(req)
}

func (m *loadManagerImpl) Clear() ([]MeshEntry, []PendingEntry) {
	m.sampler.Clear()
	m.level = 0
	clear(m.known)
	return m.tracker.Clear()
}

func (m *loadManagerImpl) FullyLoaded() bool {
	return m.tracker.FullyLoaded()
}

func (m *loadManagerImpl) Loaded() []MeshEntry {
	return m.tracker.Loaded()
}

func (m *loadManagerImpl) Loading() []Entry[string, common.PendingHandle] {
	return m.tracker.Loading()
}

func (m *loadManagerImpl) Failed() []string {
	return m.tracker.Failed()
}

func (m *loadManagerImpl) Items() []string {
	return m.sampler.Items()
}

func (m *loadManagerImpl) IndexOf(key string) (int, bool) {
	if _, ok := m.known[key]; !ok {
		return 0, false
	}
	items := m.sampler.Items()
	if i, ok := slices.BinarySearchFunc(items, key, common.CompareNatural); ok && items[i] == key {
		return i, true
	}
	// natural order can tie distinct keys ("f01", "f1")
	i := slices.Index(items, key)
	return i, i >= 0
}

func (m *loadManagerImpl) LODs() []int {
	return m.sampler.LODs()
}

func (m *loadManagerImpl) Level() int {
	return m.level
}

func (m *loadManagerImpl) Progress() Progress {
	return Progress{
		Loaded:  len(m.tracker.Loaded()),
		Loading: len(m.tracker.Loading()),
		Failed:  len(m.tracker.Failed()),
		Wanted:  m.sampler.Len(),
		Total:   len(m.sampler.Items()),
	}
}
