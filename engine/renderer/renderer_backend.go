package renderer

import (
	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects a backend that draws nothing and only counts frames.
	// Used when running without a display.
	BackendTypeHeadless
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// RendererBackend is the contract every backend implements for the Renderer.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain for the given size.
	ConfigureSurface(width, height int)

	// SetPresentMode changes the present mode used on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the frame is cleared to.
	SetClearColor(color common.RGBA)

	// DrawFrame acquires the next surface image, clears it and presents it.
	//
	// Returns:
	//   - error: an error if the surface image could not be acquired
	DrawFrame() error

	// Release frees every GPU object held by the backend.
	Release()
}
