package scene

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
)

// EntityRef identifies a spawned representation. Zero is never issued.
type EntityRef uint64

// Sink is the scene-graph mutation surface the viewer core depends on.
type Sink interface {
	// Spawn adds a representation to the scene.
	//
	// Parameters:
	//   - rep: what to display
	//
	// Returns:
	//   - EntityRef: the reference used to despawn it
	Spawn(rep model.Representation) EntityRef

	// Despawn removes a previously spawned representation. Unknown refs are ignored.
	//
	// Parameters:
	//   - ref: the entity to remove
	Despawn(ref EntityRef)
}

// Entity is a spawned representation together with its reference.
type Entity struct {
	Ref            EntityRef
	Representation model.Representation
}

// Scene is the in-memory entity registry backing the Sink.
// The tick goroutine mutates it while the render goroutine reads snapshots.
// Thread-safe for concurrent access.
type Scene interface {
	Sink

	// Name returns the scene's identifier.
	Name() string

	// Get returns the representation spawned under ref.
	//
	// Returns:
	//   - model.Representation: the representation, nil if not found
	//   - bool: false if ref is not live
	Get(ref EntityRef) (model.Representation, bool)

	// Count returns the number of live entities.
	Count() int

	// Snapshot returns the live entities ordered by ref.
	Snapshot() []Entity

	// Version increments on every mutation, letting readers skip unchanged frames.
	Version() uint64

	// Clear despawns everything.
	Clear()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu       *sync.RWMutex
	name     string
	registry map[EntityRef]model.Representation
	nextID   EntityRef
	version  uint64
	logger   *slog.Logger
}

var _ Scene = &scene{}

// NewScene creates an empty Scene.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     "main",
		registry: make(map[EntityRef]model.Representation),
		nextID:   1,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Spawn(rep model.Representation) EntityRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := s.nextID
	s.nextID++
	s.registry[ref] = rep
	s.version++
	s.logger.Debug("scene: spawn", "scene", s.name, "ref", uint64(ref), "what", model.Describe(rep))
	return ref
}

func (s *scene) Despawn(ref EntityRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registry[ref]; !ok {
		return
	}
	delete(s.registry, ref)
	s.version++
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Get(ref EntityRef) (model.Representation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.registry[ref]
	return rep, ok
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Snapshot() []Entity {
	s.mu.RLock()
	out := make([]Entity, 0, len(s.registry))
	for ref, rep := range s.registry {
		out = append(out, Entity{Ref: ref, Representation: rep})
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entity) int {
		return cmp.Compare(a.Ref, b.Ref)
	})
	return out
}

func (s *scene) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.registry)
	s.version++
}
