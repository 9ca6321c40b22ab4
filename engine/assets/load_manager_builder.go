package assets

import "log/slog"

// DefaultInitialLOD is the size of the first level of detail when none is configured.
const DefaultInitialLOD = 100

type loadManagerConfig struct {
	initialLOD int
	logger     *slog.Logger
}

// LoadManagerBuilderOption is a functional option for configuring a LoadManager.
type LoadManagerBuilderOption func(c *loadManagerConfig)

// WithInitialLOD sets the requested size of the first level of detail.
//
// Parameters:
//   - n: roughly how many frames to load first; values below 1 are ignored
//
// Returns:
//   - LoadManagerBuilderOption: option function to apply
func WithInitialLOD(n int) LoadManagerBuilderOption {
	return func(c *loadManagerConfig) {
		if n > 0 {
			c.initialLOD = n
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
//
// Parameters:
//   - logger: the logger, slog.Default() when nil
//
// Returns:
//   - LoadManagerBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) LoadManagerBuilderOption {
	return func(c *loadManagerConfig) {
		c.logger = logger
	}
}
