package profiler

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Profiler tracks tick rate and memory statistics for performance monitoring.
// Stats are written to a structured logger at a configurable interval.
type Profiler struct {
	name           string
	logger         *slog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// extra supplies additional attributes (loaded counts, current frame) per report.
	extra func() []slog.Attr

	now func() time.Time
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - name: label attached to every report (e.g. "tick", "render")
//   - logger: destination logger, slog.Default() when nil
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(name string, logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{
		name:           name,
		logger:         logger,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		now:            time.Now,
	}
}

// SetInterval changes how often reports are emitted.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// SetExtra installs a callback that contributes extra attributes to each report.
func (p *Profiler) SetExtra(fn func() []slog.Attr) {
	p.extra = fn
}

// Tick should be called once per loop iteration.
// Logs rate, heap usage, allocation rate, and GC pauses when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var lastPause, maxPause time.Duration
	if gcCount > 0 {
		// PauseNs is a ring of the last 256 pauses
		lastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPause = max(maxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	attrs := []slog.Attr{
		slog.String("loop", p.name),
		slog.Float64("rate_hz", float64(p.frameCount)/elapsed.Seconds()),
		slog.Float64("heap_mb", float64(p.memStats.Alloc)/1024/1024),
		slog.Float64("alloc_mb_s", float64(allocDelta)/1024/1024/elapsed.Seconds()),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Duration("gc_last", lastPause),
		slog.Duration("gc_max", maxPause),
		slog.Float64("sys_mb", float64(p.memStats.Sys)/1024/1024),
	}
	if p.extra != nil {
		attrs = append(attrs, p.extra()...)
	}
	p.logger.LogAttrs(context.Background(), slog.LevelInfo, "profiler", attrs...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
