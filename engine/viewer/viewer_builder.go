package viewer

import (
	"log/slog"

	"github.com/Carmen-Shannon/mesh-ripper/engine/settings"
)

// ViewerBuilderOption is a functional option for configuring a Viewer via NewViewer.
type ViewerBuilderOption func(*viewerImpl)

// WithPattern selects a glob pattern as the data source. A dataset root takes precedence.
//
// Parameters:
//   - pattern: a file glob, "**" allowed
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithPattern(pattern string) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.pattern = pattern
	}
}

// WithDatasetRoot selects dataset mode: every directory under root is a dataset and
// dataset is shown first. An empty dataset selects the first one in natural order.
//
// Parameters:
//   - root: the directory holding the datasets
//   - dataset: the initial dataset, relative to root
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithDatasetRoot(root, dataset string) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.datasetRoot = root
		v.actions.Dataset = dataset
	}
}

// WithBackgroundMeshes adds static meshes shown behind the time series.
func WithBackgroundMeshes(paths ...string) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.backgroundPaths = append(v.backgroundPaths, paths...)
	}
}

// WithActions replaces the starting settings.
//
// Parameters:
//   - actions: the settings to start from
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithActions(actions settings.Actions) ViewerBuilderOption {
	return func(v *viewerImpl) {
		dataset := v.actions.Dataset
		v.actions = actions
		if v.actions.Dataset == "" {
			v.actions.Dataset = dataset
		}
	}
}

// WithSampleSize sets how many points of a point cloud are drawn.
func WithSampleSize(n int) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if n > 0 {
			v.actions.MaxParticlesRender = n
		}
	}
}

// WithInitialLOD sets the size of the first level of detail.
func WithInitialLOD(n int) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if n > 0 {
			v.actions.InitialLOD = n
		}
	}
}

// WithWatch enables the fsnotify watcher on the active dataset directory.
func WithWatch(enabled bool) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.watch = enabled
	}
}

// WithTitleCallback registers a function receiving the status line whenever it changes.
func WithTitleCallback(fn func(title string)) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.onTitle = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if logger != nil {
			v.logger = logger
		}
	}
}
