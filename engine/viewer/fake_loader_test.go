package viewer

import (
	"sync"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
)

// fakeLoader completes every request on the first poll unless the path is held or failing.
type fakeLoader struct {
	mu        sync.Mutex
	next      common.PendingHandle
	pending   map[common.PendingHandle]string
	fail      map[string]bool
	hold      bool
	meshes    map[common.Handle]model.Mesh
	requests  []string
	released  []common.Handle
	discarded []common.PendingHandle
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		pending: make(map[common.PendingHandle]string),
		fail:    make(map[string]bool),
		meshes:  make(map[common.Handle]model.Mesh),
	}
}

func (f *fakeLoader) Request(path string) common.PendingHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.pending[f.next] = path
	f.requests = append(f.requests, path)
	return f.next
}

func (f *fakeLoader) Poll(p common.PendingHandle) common.LoadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, ok := f.pending[p]
	switch {
	case !ok, f.fail[path]:
		return common.LoadStateFailed
	case f.hold:
		return common.LoadStatePending
	default:
		return common.LoadStateLoaded
	}
}

func (f *fakeLoader) Resolve(p common.PendingHandle) common.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := f.pending[p]
	delete(f.pending, p)
	h := common.Handle(p)
	f.meshes[h] = pointCloud(path, 10)
	return h
}

func (f *fakeLoader) Mesh(h common.Handle) (model.Mesh, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meshes[h]
	return m, ok
}

func (f *fakeLoader) Release(h common.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.meshes, h)
	f.released = append(f.released, h)
}

func (f *fakeLoader) Discard(p common.PendingHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, p)
	f.discarded = append(f.discarded, p)
}

func (f *fakeLoader) discardedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.discarded)
}

func (f *fakeLoader) setFail(path string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[path] = fail
}

func (f *fakeLoader) releasedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.released)
}

func pointCloud(name string, n int) model.Mesh {
	positions := make([][3]float32, n)
	for i := range positions {
		positions[i] = [3]float32{float32(i), float32(i % 3), 1}
	}
	return model.NewMesh(model.WithName(name), model.WithPositions(positions))
}
