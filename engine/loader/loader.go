// Package loader decodes mesh files on a background worker pool and hands out
// pollable handles so the frame loop never waits on disk.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
)

// ErrUnsupportedFormat is reported for files no backend can decode.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// ErrClosed is reported for requests issued after Close.
var ErrClosed = errors.New("loader closed")

// request is the bookkeeping of one Request call.
type request struct {
	path   string
	state  common.LoadState
	handle common.Handle
	err    error
}

// cachedMesh is a decoded mesh shared by every request for the same path.
type cachedMesh struct {
	path string
	mesh model.Mesh
	refs int
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu     sync.Mutex
	logger *slog.Logger

	backends map[string]loaderBackend

	workers int
	pool    worker.DynamicWorkerPool

	// queue is drained by the feeder goroutine so Request never blocks on a full pool
	queue  []string
	wake   chan struct{}
	done   chan struct{}
	closed bool

	nextPending common.PendingHandle
	nextHandle  common.Handle
	requests    map[common.PendingHandle]*request
	inflight    map[string][]common.PendingHandle

	meshes map[common.Handle]*cachedMesh
	byPath map[string]common.Handle
}

// Loader defines the public-facing interface for asynchronous mesh loading.
// Decoded meshes are cached by path and reference counted: every resolved request
// holds one reference until Release is called with its handle.
type Loader interface {
	// Request queues path for loading and returns immediately.
	//
	// Parameters:
	//   - path: the mesh file to load
	//
	// Returns:
	//   - common.PendingHandle: a handle to Poll
	Request(path string) common.PendingHandle

	// Poll returns the state of a pending load. Unknown handles report failed.
	//
	// Parameters:
	//   - pending: a handle returned by Request
	//
	// Returns:
	//   - common.LoadState: pending, loaded or failed
	Poll(pending common.PendingHandle) common.LoadState

	// Resolve converts a loaded pending handle into a mesh handle and forgets the pending handle.
	// Resolving a handle that is not loaded returns the zero Handle.
	//
	// Parameters:
	//   - pending: a handle that polled as loaded
	//
	// Returns:
	//   - common.Handle: the mesh handle
	Resolve(pending common.PendingHandle) common.Handle

	// Err returns the reason a pending load failed, or nil.
	Err(pending common.PendingHandle) error

	// Mesh returns the decoded mesh for a handle.
	//
	// Parameters:
	//   - h: a handle returned by Resolve
	//
	// Returns:
	//   - model.Mesh: the mesh
	//   - bool: false if the handle is unknown or released
	Mesh(h common.Handle) (model.Mesh, bool)

	// Release drops one reference to a mesh. The mesh is evicted when no references remain.
	Release(h common.Handle)

	// Discard forgets a pending handle that will never be resolved. An in-flight decode
	// nobody else waits on is dropped on completion, and a loaded but unresolved mesh
	// with no references is evicted.
	//
	// Parameters:
	//   - pending: a handle returned by Request
	Discard(pending common.PendingHandle)

	// Cached returns the number of meshes held in memory.
	Cached() int

	// Close stops the worker pool. Pending requests fail with ErrClosed.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF and OBJ backends registered and options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a started Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:   slog.Default(),
		backends: make(map[string]loaderBackend),
		workers:  max(runtime.NumCPU()-1, 1),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		requests: make(map[common.PendingHandle]*request),
		inflight: make(map[string][]common.PendingHandle),
		meshes:   make(map[common.Handle]*cachedMesh),
		byPath:   make(map[string]common.Handle),
	}
	for _, b := range []loaderBackend{newGLTFLoaderBackend(), newOBJLoaderBackend()} {
		l.register(b)
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, time.Second)
	go l.feed()
	return l
}

func (l *loader) register(b loaderBackend) {
	for _, ext := range b.Extensions() {
		l.backends[ext] = b
	}
}

func (l *loader) Request(path string) common.PendingHandle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextPending++
	p := l.nextPending
	r := &request{path: path, state: common.LoadStatePending}
	l.requests[p] = r

	switch {
	case l.closed:
		r.state, r.err = common.LoadStateFailed, ErrClosed
	case l.byPath[path] != 0:
		r.state, r.handle = common.LoadStateLoaded, l.byPath[path]
	case l.backendFor(path) == nil:
		r.state = common.LoadStateFailed
		r.err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	default:
		waiting, queued := l.inflight[path]
		l.inflight[path] = append(waiting, p)
		if !queued {
			l.queue = append(l.queue, path)
			select {
			case l.wake <- struct{}{}:
			default:
			}
		}
	}
	return p
}

func (l *loader) Poll(pending common.PendingHandle) common.LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.requests[pending]
	if !ok {
		return common.LoadStateFailed
	}
	return r.state
}

func (l *loader) Resolve(pending common.PendingHandle) common.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.requests[pending]
	if !ok || r.state != common.LoadStateLoaded {
		return 0
	}
	delete(l.requests, pending)
	m, ok := l.meshes[r.handle]
	if !ok {
		return 0
	}
	m.refs++
	return r.handle
}

func (l *loader) Err(pending common.PendingHandle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.requests[pending]; ok {
		return r.err
	}
	return nil
}

func (l *loader) Mesh(h common.Handle) (model.Mesh, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.meshes[h]
	if !ok {
		return nil, false
	}
	return m.mesh, true
}

func (l *loader) Release(h common.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.meshes[h]
	if !ok {
		return
	}
	m.refs--
	l.evictUnused(h, m)
}

func (l *loader) Discard(pending common.PendingHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.requests[pending]
	if !ok {
		return
	}
	delete(l.requests, pending)

	switch r.state {
	case common.LoadStatePending:
		waiting := slices.DeleteFunc(l.inflight[r.path], func(p common.PendingHandle) bool { return p == pending })
		if len(waiting) > 0 {
			l.inflight[r.path] = waiting
			return
		}
		// complete drops results for paths nobody waits on
		delete(l.inflight, r.path)
		l.queue = slices.DeleteFunc(l.queue, func(path string) bool { return path == r.path })
	case common.LoadStateLoaded:
		if m, ok := l.meshes[r.handle]; ok {
			l.evictUnused(r.handle, m)
		}
	}
}

// evictUnused drops a mesh nobody holds or is about to resolve. Callers hold mu.
func (l *loader) evictUnused(h common.Handle, m *cachedMesh) {
	if m.refs > 0 {
		return
	}
	// loaded requests not yet resolved keep the mesh alive
	for _, r := range l.requests {
		if r.handle == h && r.state == common.LoadStateLoaded {
			return
		}
	}
	delete(l.meshes, h)
	delete(l.byPath, m.path)
}

func (l *loader) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.meshes)
}

func (l *loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	for path, waiting := range l.inflight {
		for _, p := range waiting {
			if r, ok := l.requests[p]; ok {
				r.state, r.err = common.LoadStateFailed, ErrClosed
			}
		}
		delete(l.inflight, path)
	}
	l.queue = nil
	l.mu.Unlock()

	close(l.done)
	l.pool.Stop()
}

// backendFor selects a backend by lower-case file extension. Callers hold mu.
func (l *loader) backendFor(path string) loaderBackend {
	return l.backends[strings.ToLower(filepath.Ext(path))]
}

// feed moves queued paths into the worker pool until the loader closes.
func (l *loader) feed() {
	taskID := 0
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if l.closed || len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			path := l.queue[0]
			l.queue = l.queue[1:]
			backend := l.backendFor(path)
			l.mu.Unlock()

			taskID++
			l.pool.SubmitTask(worker.Task{
				ID:      taskID,
				Payload: path,
				Do: func() (any, error) {
					m, err := decode(backend, path)
					l.complete(path, m, err)
					return m, err
				},
			})
		}
	}
}

// decode runs a backend, turning a panic in a malformed file into an error.
func decode(backend loaderBackend, path string) (m model.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("panic decoding %s: %v", path, r)
		}
	}()
	return backend.Load(path)
}

// complete publishes the result of a decode to every request waiting on path.
func (l *loader) complete(path string, m model.Mesh, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	waiting, ok := l.inflight[path]
	if !ok {
		// closed, or every waiter discarded, while decoding
		return
	}
	delete(l.inflight, path)

	if err != nil {
		l.logger.Warn("mesh load failed", "path", path, "error", err)
		for _, p := range waiting {
			if r, ok := l.requests[p]; ok {
				r.state, r.err = common.LoadStateFailed, err
			}
		}
		return
	}

	l.nextHandle++
	h := l.nextHandle
	l.meshes[h] = &cachedMesh{path: path, mesh: m}
	l.byPath[path] = h
	l.logger.Debug("mesh loaded", "path", path, "vertices", m.VertexCount())
	for _, p := range waiting {
		if r, ok := l.requests[p]; ok {
			r.state, r.handle = common.LoadStateLoaded, h
		}
	}
}
