package loader

import (
	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
)

// loaderBackend decodes one mesh file format into CPU-side geometry.
// Concrete implementations (gltfLoaderBackend, objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes the file at path. Safe to call from multiple goroutines.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.Mesh: the decoded mesh
	//   - error: error if reading or decoding fails
	Load(path string) (model.Mesh, error)

	// Extensions lists the lower-case file extensions the backend handles.
	Extensions() []string
}
