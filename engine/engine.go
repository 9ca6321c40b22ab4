// Package engine runs the viewer: a fixed-rate tick goroutine drives the Viewer, a render goroutine
// presents frames, and the window message loop (when there is a window) owns the main thread.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/mesh-ripper/engine/profiler"
	"github.com/Carmen-Shannon/mesh-ripper/engine/renderer"
	"github.com/Carmen-Shannon/mesh-ripper/engine/scene"
	"github.com/Carmen-Shannon/mesh-ripper/engine/viewer"
	"github.com/Carmen-Shannon/mesh-ripper/engine/window"
)

// ErrRenderPanic is returned by Run when the render goroutine panicked and the engine shut down.
var ErrRenderPanic = errors.New("render goroutine panicked")

// engine implements the Engine interface.
// Coordinates tick, render, and window threads.
type engine struct {
	logger *slog.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel  chan struct{}
	quitOnce     sync.Once // Ensures quitChannel is only closed once
	shutdownOnce sync.Once
	failure      atomic.Pointer[error]

	window   window.Window
	renderer renderer.Renderer
	viewer   viewer.Viewer
	scene    scene.Scene

	tickProfiler     *profiler.Profiler
	renderProfiler   *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point of the viewer application.
// It orchestrates the tick loop, render loop, and window management.
type Engine interface {
	// Window returns the window, nil when running headless.
	Window() window.Window

	// Renderer returns the renderer, nil when no frames are drawn.
	Renderer() renderer.Renderer

	// Viewer returns the viewer driven by the tick loop.
	Viewer() viewer.Viewer

	// EnableProfiler enables periodic loop statistics in the log.
	EnableProfiler()

	// DisableProfiler disables loop statistics.
	DisableProfiler()

	// SetTickRate sets the viewer tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the loops and blocks until the window closes, ctx is cancelled or Quit is called.
	// With a window, Run must be called from the goroutine that created it.
	//
	// Parameters:
	//   - ctx: cancelling it shuts the engine down
	//
	// Returns:
	//   - error: ErrRenderPanic if the render goroutine crashed, nil otherwise
	Run(ctx context.Context) error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
// The window's key events are forwarded to the viewer and resizes to the renderer and camera.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, viewer, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:          slog.Default(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.tickProfiler = profiler.NewProfiler("tick", e.logger)
	e.tickProfiler.SetExtra(e.tickStats)
	e.renderProfiler = profiler.NewProfiler("render", e.logger)
	e.renderProfiler.SetExtra(e.renderStats)

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			if e.viewer != nil && height > 0 {
				e.viewer.Camera().SetAspect(float32(width) / float32(height))
			}
		})
		if e.viewer != nil {
			e.window.SetKeyCallback(e.viewer.PushKey)
			if h := e.window.Height(); h > 0 {
				e.viewer.Camera().SetAspect(float32(e.window.Width()) / float32(h))
			}
		}
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.shutdown()
			default:
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Viewer() viewer.Viewer {
	return e.viewer
}

func (e *engine) Run(ctx context.Context) error {
	e.running.Store(true)
	e.handle(ctx)

	if e.window != nil {
		e.window.ProcessMessages()
	} else {
		<-e.quitChannel
	}

	e.signalQuit()
	e.shutdown()

	if err := e.failure.Load(); err != nil {
		return *err
	}
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// shutdown waits for the loops, then frees the GPU surface before the window that backs it.
// Runs on the window thread when there is one.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.wg.Wait()
		if e.renderer != nil {
			e.renderer.Release()
		}
		if e.window != nil && e.window.IsRunning() {
			if err := e.window.Close(); err != nil {
				e.logger.Warn("engine: window close failed", "err", err)
			}
		}
		e.logger.Info("engine: stopped")
	})
}

// handle launches the tick, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle(ctx context.Context) {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit(ctx)
	if e.renderer != nil {
		e.wg.Add(1)
		go e.handleRender()
	}
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Ticks the viewer at the configured rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick)
			lastTick = now

			if e.viewer != nil {
				e.viewer.Tick(dt)
			}
			if e.profilingEnabled.Load() {
				e.tickProfiler.Tick()
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine: render goroutine recovered from panic", "panic", r)
			err := fmt.Errorf("%w: %v", ErrRenderPanic, r)
			e.failure.Store(&err)
			e.signalQuit()
		}
	}()

	var lastErr string
	for {
		select {
		case <-e.quitChannel:
			return
		default:
			start := time.Now()

			if e.viewer != nil {
				e.renderer.SetClearColor(e.viewer.Actions().BackgroundColor)
			}
			if err := e.renderer.Render(); err != nil {
				// a lost surface repeats every frame until the next resize
				if msg := err.Error(); msg != lastErr {
					e.logger.Warn("engine: frame skipped", "err", err)
					lastErr = msg
				}
			} else {
				lastErr = ""
			}

			if e.profilingEnabled.Load() {
				e.renderProfiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until ctx is cancelled or the quit channel is closed.
func (e *engine) handleQuit(ctx context.Context) {
	defer e.wg.Done()
	select {
	case <-ctx.Done():
		e.signalQuit()
	case <-e.quitChannel:
	}
}

func (e *engine) tickStats() []slog.Attr {
	if e.viewer == nil {
		return nil
	}
	a := e.viewer.Actions()
	return []slog.Attr{
		slog.Int("loaded", a.FluidsLoaded),
		slog.Float64("loaded_pct", float64(a.FluidsLoadedPercent)),
		slog.Int("frame", a.CurrentFrame),
	}
}

func (e *engine) renderStats() []slog.Attr {
	attrs := []slog.Attr{
		slog.Uint64("frames", e.renderer.Frames()),
		slog.Uint64("failed", e.renderer.FailedFrames()),
	}
	if e.scene != nil {
		attrs = append(attrs, slog.Int("entities", e.scene.Count()))
	}
	return attrs
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickPeriod(fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = framePeriod(fps)
}

// tickPeriod converts a rate to a ticker period, 60Hz when fps <= 0.
func tickPeriod(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// framePeriod converts a frame cap to a minimum frame duration, 0 when uncapped.
func framePeriod(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
