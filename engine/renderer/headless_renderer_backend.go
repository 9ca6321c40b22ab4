package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// headlessRendererBackend satisfies RendererBackend without a GPU.
type headlessRendererBackend struct {
	mu         sync.Mutex
	width      int
	height     int
	clearColor common.RGBA
	released   bool
}

var _ RendererBackend = &headlessRendererBackend{}

func (b *headlessRendererBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 && height > 0 {
		b.width, b.height = width, height
	}
}

func (b *headlessRendererBackend) SetPresentMode(PresentMode) {}

func (b *headlessRendererBackend) SetClearColor(color common.RGBA) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = color
}

func (b *headlessRendererBackend) DrawFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return fmt.Errorf("backend released")
	}
	return nil
}

func (b *headlessRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}
