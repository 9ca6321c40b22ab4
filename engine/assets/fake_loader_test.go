package assets

import (
	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// fakeLoader hands out sequential pending handles and lets tests decide when they complete.
type fakeLoader struct {
	next     common.PendingHandle
	requests []string
	keys     map[common.PendingHandle]string
	states   map[string]common.LoadState

	discarded []common.PendingHandle
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		keys:   make(map[common.PendingHandle]string),
		states: make(map[string]common.LoadState),
	}
}

func (f *fakeLoader) Request(key string) common.PendingHandle {
	f.next++
	f.requests = append(f.requests, key)
	f.keys[f.next] = key
	if _, ok := f.states[key]; !ok {
		f.states[key] = common.LoadStatePending
	}
	return f.next
}

func (f *fakeLoader) Poll(p common.PendingHandle) common.LoadState {
	return f.states[f.keys[p]]
}

func (f *fakeLoader) Resolve(p common.PendingHandle) common.Handle {
	return common.Handle(p)
}

func (f *fakeLoader) Discard(p common.PendingHandle) {
	f.discarded = append(f.discarded, p)
}

func (f *fakeLoader) complete(keys ...string) {
	for _, k := range keys {
		f.states[k] = common.LoadStateLoaded
	}
}

func (f *fakeLoader) completeAll() {
	for k := range f.states {
		f.states[k] = common.LoadStateLoaded
	}
}

func (f *fakeLoader) fail(keys ...string) {
	for _, k := range keys {
		f.states[k] = common.LoadStateFailed
	}
}
