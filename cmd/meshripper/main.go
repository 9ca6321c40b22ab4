// Command meshripper plays back a time series of mesh files.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Carmen-Shannon/mesh-ripper/engine"
	"github.com/Carmen-Shannon/mesh-ripper/engine/camera"
	"github.com/Carmen-Shannon/mesh-ripper/engine/loader"
	"github.com/Carmen-Shannon/mesh-ripper/engine/renderer"
	"github.com/Carmen-Shannon/mesh-ripper/engine/scene"
	"github.com/Carmen-Shannon/mesh-ripper/engine/settings"
	"github.com/Carmen-Shannon/mesh-ripper/engine/viewer"
	"github.com/Carmen-Shannon/mesh-ripper/engine/window"
	"github.com/spf13/cobra"
)

// GLFW must run on the main thread.
func init() {
	runtime.LockOSThread()
}

type options struct {
	datasetDir    string
	dataset       string
	loadMax       int
	loadMesh      []string
	tickRate      float64
	frameLimit    float64
	sampleSize    int
	workers       int
	profile       bool
	verbose       bool
	watch         bool
	headless      bool
	width         int
	height        int
	forceFallback bool
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "meshripper [file-glob]",
		Short: "Mesh time series viewer",
		Long: `meshripper - play back a sequence of mesh files (OBJ, glTF, GLB) as an animation.

Give either a file glob ("**" allowed, quote it) or --dataset-dir, a directory whose
subdirectories are datasets.

Controls:
  X            - Pause / play
  T / B        - Play forward / backward
  Left/Right   - Step one frame while paused
  R            - Rewind to the first frame
  F / G        - Faster / slower
  PageUp/Down  - Load more / fewer frames
  [ / ]        - Previous / next dataset
  W/A/S/D Q/E  - Fly the camera, arrows turn while playing
  Ctrl+F       - Frame the current mesh
  Ctrl+K, K    - Toggle recording, capture a camera keyframe
  Ctrl+C       - Follow the camera timeline
  Ctrl+V       - Show camera keyframes
  N / Tab      - New / next camera timeline
  Ctrl+R       - Rescan and retry failed files
  Ctrl+S / L   - Save / load config next to the dataset
  Esc          - Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pattern string
			if len(args) == 1 {
				pattern = args[0]
			}
			if pattern == "" && opts.datasetDir == "" {
				return errors.New("give a file glob or --dataset-dir")
			}
			return run(cmd.Context(), pattern, opts)
		},
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVar(&opts.datasetDir, "dataset-dir", "", "Directory whose subdirectories are datasets")
	f.StringVar(&opts.dataset, "dataset", "", "Dataset shown first, relative to --dataset-dir")
	f.IntVar(&opts.loadMax, "load-max", settings.DefaultActions().InitialLOD, "Frames in the first level of detail")
	f.StringSliceVar(&opts.loadMesh, "load-mesh", nil, "Static background mesh (repeatable)")
	f.Float64Var(&opts.tickRate, "tick-rate", 60, "Viewer ticks per second")
	f.Float64Var(&opts.frameLimit, "frame-limit", 0, "Render frame cap, 0 for uncapped")
	f.IntVar(&opts.sampleSize, "sample-size", settings.DefaultActions().MaxParticlesRender, "Points drawn per point cloud frame")
	f.IntVar(&opts.workers, "workers", 0, "Decode workers, 0 for one per spare CPU")
	f.BoolVar(&opts.profile, "profile", false, "Log loop statistics every second")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	f.BoolVar(&opts.watch, "watch", false, "Pick up files added to the dataset while running")
	f.BoolVar(&opts.headless, "headless", false, "Run without a window until interrupted")
	f.IntVar(&opts.width, "width", 1280, "Window width")
	f.IntVar(&opts.height, "height", 720, "Window height")
	f.BoolVar(&opts.forceFallback, "force-fallback-adapter", false, "Use the software WebGPU adapter")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, pattern string, opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	loaderOpts := []loader.LoaderBuilderOption{loader.WithLogger(logger)}
	if opts.workers > 0 {
		loaderOpts = append(loaderOpts, loader.WithWorkers(opts.workers))
	}
	ldr := loader.NewLoader(loaderOpts...)
	defer ldr.Close()

	sc := scene.NewScene(scene.WithName("meshripper"), scene.WithLogger(logger))
	cam := camera.NewCamera(camera.WithAspect(float32(opts.width) / float32(opts.height)))

	var win window.Window
	if !opts.headless {
		w, err := window.NewWindow(window.WithTitle("mesh ripper"), window.WithSize(opts.width, opts.height))
		if err != nil {
			return err
		}
		win = w
	}

	viewerOpts := []viewer.ViewerBuilderOption{
		viewer.WithPattern(pattern),
		viewer.WithBackgroundMeshes(opts.loadMesh...),
		viewer.WithInitialLOD(opts.loadMax),
		viewer.WithSampleSize(opts.sampleSize),
		viewer.WithWatch(opts.watch),
		viewer.WithLogger(logger),
	}
	if opts.datasetDir != "" {
		viewerOpts = append(viewerOpts, viewer.WithDatasetRoot(opts.datasetDir, opts.dataset))
	}
	if win != nil {
		viewerOpts = append(viewerOpts, viewer.WithTitleCallback(win.SetTitle))
	} else {
		viewerOpts = append(viewerOpts, viewer.WithTitleCallback(func(title string) {
			logger.Debug("status", "title", title)
		}))
	}
	v, err := viewer.NewViewer(ldr, sc, cam, viewerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create viewer: %w", err)
	}
	defer func() {
		if err := v.Close(); err != nil {
			logger.Warn("viewer close failed", "err", err)
		}
	}()

	engineOpts := []engine.EngineBuilderOption{
		engine.WithViewer(v),
		engine.WithScene(sc),
		engine.WithTickRate(opts.tickRate),
		engine.WithRenderFrameLimit(opts.frameLimit),
		engine.WithProfiling(opts.profile),
		engine.WithLogger(logger),
	}
	if win != nil {
		r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
			renderer.WithForceFallbackAdapter(opts.forceFallback),
			renderer.WithClearColor(v.Actions().BackgroundColor),
		)
		engineOpts = append(engineOpts, engine.WithWindow(win), engine.WithRenderer(r))

		// scroll tunes the fly speed
		win.SetScrollCallback(func(delta float32) {
			v.UpdateActions(func(a *settings.Actions) {
				if delta > 0 {
					a.CameraSpeed *= 1.1
				} else if delta < 0 {
					a.CameraSpeed /= 1.1
				}
			})
		})
	}

	return engine.NewEngine(engineOpts...).Run(ctx)
}
