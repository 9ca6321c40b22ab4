// Package renderer presents the viewer surface every render frame.
package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceSource supplies the platform surface and its size. window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	clearColor common.RGBA
	frames     atomic.Uint64
	failed     atomic.Uint64

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the display surface and draws one frame per call to Render, cleared to the
// configured background colour. A failed frame (for example a surface lost during a resize) is
// counted and skipped; the next frame tries again.
type Renderer interface {
	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode and reconfigures the surface on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background colour. Unchanged colours are not forwarded to the backend.
	//
	// Parameters:
	//   - color: linear RGBA in [0, 1]
	SetClearColor(color common.RGBA)

	// ClearColor returns the current background colour.
	//
	// Returns:
	//   - common.RGBA: the colour frames are cleared to
	ClearColor() common.RGBA

	// Render draws and presents one frame.
	//
	// Returns:
	//   - error: the backend error if the frame was skipped
	Render() error

	// Frames returns the number of frames presented.
	Frames() uint64

	// FailedFrames returns the number of frames skipped because of a backend error.
	FailedFrames() uint64

	// BackendType returns the backend the renderer was created with.
	BackendType() RendererBackendType

	// Release frees the backend's resources. The renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and surface source.
// The surface source is typically the Window; it may be nil for the headless backend.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the platform surface provider
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		clearColor:  common.RGBA{0.1, 0.1, 0.1, 1},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = &headlessRendererBackend{}
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(r.clearColor)

	if surface != nil {
		r.backend.ConfigureSurface(surface.Width(), surface.Height())
	}
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(color common.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if color == r.clearColor {
		return
	}
	r.clearColor = color
	r.backend.SetClearColor(color)
}

func (r *renderer) ClearColor() common.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) Render() error {
	if err := r.backend.DrawFrame(); err != nil {
		r.failed.Add(1)
		return err
	}
	r.frames.Add(1)
	return nil
}

func (r *renderer) Frames() uint64 {
	return r.frames.Load()
}

func (r *renderer) FailedFrames() uint64 {
	return r.failed.Load()
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.backend.Release()
}
