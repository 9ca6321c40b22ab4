package playback

import (
	"math/rand/v2"
	"time"
)

// MeshPoolBuilderOption is a functional option for configuring a MeshPool.
type MeshPoolBuilderOption func(p *meshPool)

// WithPeriod sets how long each frame stays on screen.
//
// Parameters:
//   - d: the frame period, ignored if not positive
//
// Returns:
//   - MeshPoolBuilderOption: option function to apply
func WithPeriod(d time.Duration) MeshPoolBuilderOption {
	return func(p *meshPool) {
		if d > 0 {
			p.period = d
		}
	}
}

// WithPaused sets the initial pause state.
//
// Parameters:
//   - paused: true to start paused
//
// Returns:
//   - MeshPoolBuilderOption: option function to apply
func WithPaused(paused bool) MeshPoolBuilderOption {
	return func(p *meshPool) {
		p.paused = paused
	}
}

// WithDirection sets the initial playback direction.
//
// Parameters:
//   - d: the direction
//
// Returns:
//   - MeshPoolBuilderOption: option function to apply
func WithDirection(d Direction) MeshPoolBuilderOption {
	return func(p *meshPool) {
		p.direction = d
	}
}

// WithRand sets the random source used for point sampling.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - MeshPoolBuilderOption: option function to apply
func WithRand(rng *rand.Rand) MeshPoolBuilderOption {
	return func(p *meshPool) {
		p.rng = rng
	}
}
