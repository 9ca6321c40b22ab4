// Package assets reconciles the set of wanted assets against an asynchronous loader.
package assets

import (
	"iter"
	"slices"

	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// Requestor issues asynchronous load requests.
type Requestor[K comparable, P any] interface {
	// Request starts loading key and returns a handle to poll.
	Request(key K) P
}

// Poller reports on and resolves pending loads.
type Poller[P, H any] interface {
	// Poll returns the current state of a pending load. Never blocks.
	Poll(pending P) common.LoadState

	// Resolve returns the realized handle for a pending load that polled as loaded.
	Resolve(pending P) H
}

// Discarder is implemented by loaders that keep a record of every request until it is resolved.
// The tracker discards the handles of failed loads so those records do not pile up.
type Discarder[P any] interface {
	// Discard forgets a pending load that will never be resolved.
	Discard(pending P)
}

// Loader is the full contract of the external async loader.
type Loader[K comparable, P, H any] interface {
	Requestor[K, P]
	Poller[P, H]
}

// Entry pairs an asset key with a handle.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

type slot uint8

const (
	slotLoading slot = iota
	slotLoaded
	slotFailed
)

// Tracker keeps three disjoint sets of keys: loaded, loading and failed.
// A key is in at most one of them, and is never requested while present in any.
// Not safe for concurrent use; one owner drives it from the tick.
type Tracker[K comparable, P, H any] struct {
	loaded  []Entry[K, H]
	loading []Entry[K, P]
	failed  []K
	where   map[K]slot

	// order keeps loaded sorted when set; otherwise loaded is in completion order.
	order func(a, b K) int
}

// NewTracker creates an empty tracker.
//
// Parameters:
//   - order: optional comparison keeping the loaded list sorted by key, nil for completion order
//
// Returns:
//   - *Tracker[K, P, H]: the new tracker
func NewTracker[K comparable, P, H any](order func(a, b K) int) *Tracker[K, P, H] {
	return &Tracker[K, P, H]{
		where: make(map[K]slot),
		order: order,
	}
}

// Request issues a load for every key not already loaded, loading, or failed.
//
// Parameters:
//   - req: the loader to request from
//   - keys: candidate keys, duplicates are ignored
//
// Returns:
//   - int: the number of requests issued
func (t *Tracker[K, P, H]) Request(req Requestor[K, P], keys iter.Seq[K]) int {
	issued := 0
	for key := range keys {
		if _, ok := t.where[key]; ok {
			continue
		}
		t.loading = append(t.loading, Entry[K, P]{Key: key, Value: req.Request(key)})
		t.where[key] = slotLoading
		issued++
	}
	return issued
}

// Update polls every pending load once. Completed loads move to loaded,
// failed loads move to failed, and the rest stay pending in their original order.
// If poller is also a Discarder, the handles of failed loads are discarded.
//
// Parameters:
//   - poller: the loader to poll
//
// Returns:
//   - loaded: number of keys promoted to loaded
//   - failed: number of keys that failed
func (t *Tracker[K, P, H]) Update(poller Poller[P, H]) (loaded, failed int) {
	discarder, _ := poller.(Discarder[P])
	pending := t.loading[:0]
	for _, e := range t.loading {
		switch poller.Poll(e.Value) {
		case common.LoadStateLoaded:
			t.insertLoaded(Entry[K, H]{Key: e.Key, Value: poller.Resolve(e.Value)})
			t.where[e.Key] = slotLoaded
			loaded++
		case common.LoadStateFailed:
			if discarder != nil {
				discarder.Discard(e.Value)
			}
			t.failed = append(t.failed, e.Key)
			t.where[e.Key] = slotFailed
			failed++
		default:
			pending = append(pending, e)
		}
	}
	clear(t.loading[len(pending):])
	t.loading = pending
	return loaded, failed
}

func (t *Tracker[K, P, H]) insertLoaded(e Entry[K, H]) {
	if t.order == nil {
		t.loaded = append(t.loaded, e)
		return
	}
	i, _ := slices.BinarySearchFunc(t.loaded, e.Key, func(x Entry[K, H], k K) int {
		return t.order(x.Key, k)
	})
	t.loaded = slices.Insert(t.loaded, i, e)
}

// RetryFailed re-issues requests for every failed key.
//
// Parameters:
//   - req: the loader to request from
//
// Returns:
//   - int: the number of requests issued
func (t *Tracker[K, P, H]) RetryFailed(req Requestor[K, P]) int {
	failed := t.failed
	t.failed = nil
	for _, k := range failed {
		delete(t.where, k)
	}
	return t.Request(req, slices.Values(failed))
}

// Loaded returns the realized entries. The slice must not be modified.
func (t *Tracker[K, P, H]) Loaded() []Entry[K, H] {
	return t.loaded
}

// Loading returns the in-flight entries. The slice must not be modified.
func (t *Tracker[K, P, H]) Loading() []Entry[K, P] {
	return t.loading
}

// Failed returns the keys whose load failed. The slice must not be modified.
func (t *Tracker[K, P, H]) Failed() []K {
	return t.failed
}

// State reports which set key is in.
//
// Returns:
//   - common.LoadState: pending, loaded, or failed
//   - bool: false if the key was never requested
func (t *Tracker[K, P, H]) State(key K) (common.LoadState, bool) {
	s, ok := t.where[key]
	if !ok {
		return common.LoadStatePending, false
	}
	switch s {
	case slotLoaded:
		return common.LoadStateLoaded, true
	case slotFailed:
		return common.LoadStateFailed, true
	default:
		return common.LoadStatePending, true
	}
}

// Handle returns the realized handle for key if it is loaded.
func (t *Tracker[K, P, H]) Handle(key K) (H, bool) {
	var zero H
	if t.where[key] != slotLoaded {
		return zero, false
	}
	for _, e := range t.loaded {
		if e.Key == key {
			return e.Value, true
		}
	}
	return zero, false
}

// FullyLoaded reports whether nothing is in flight.
func (t *Tracker[K, P, H]) FullyLoaded() bool {
	return len(t.loading) == 0
}

// Clear drops all state. Loaded entries are returned for the caller to release, and
// in-flight entries for the caller to discard with the loader.
//
// Returns:
//   - released: the previously loaded entries
//   - discarded: the previously in-flight entries
func (t *Tracker[K, P, H]) Clear() (released []Entry[K, H], discarded []Entry[K, P]) {
	released, discarded = t.loaded, t.loading
	t.loaded = nil
	t.loading = nil
	t.failed = nil
	clear(t.where)
	return released, discarded
}
