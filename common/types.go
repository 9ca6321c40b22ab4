// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types shared between the engine packages.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a rigid 3D transform: a translation followed by a rotation.
// Poses are immutable value types once handed to a timeline.
type Pose struct {
	// Translation is the world-space position.
	Translation mgl32.Vec3 `toml:"translation" yaml:"translation"`

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat `toml:"rotation" yaml:"rotation"`
}

// IdentityPose returns a pose at the origin with no rotation.
//
// Returns:
//   - Pose: the identity pose
func IdentityPose() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

// NewPose builds a pose from a translation and a rotation.
//
// Parameters:
//   - translation: world-space position
//   - rotation: orientation quaternion (normalized on construction)
//
// Returns:
//   - Pose: the new pose
func NewPose(translation mgl32.Vec3, rotation mgl32.Quat) Pose {
	return Pose{Translation: translation, Rotation: rotation.Normalize()}
}

// Matrix returns the pose as a 4x4 column-major model matrix.
//
// Returns:
//   - mgl32.Mat4: translation * rotation
func (p Pose) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(p.Translation.X(), p.Translation.Y(), p.Translation.Z()).Mul4(p.Rotation.Mat4())
}

// Forward returns the pose's local -Z axis in world space.
//
// Returns:
//   - mgl32.Vec3: unit forward vector
func (p Pose) Forward() mgl32.Vec3 {
	return p.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Right returns the pose's local +X axis in world space.
//
// Returns:
//   - mgl32.Vec3: unit right vector
func (p Pose) Right() mgl32.Vec3 {
	return p.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

// Up returns the pose's local +Y axis in world space.
//
// Returns:
//   - mgl32.Vec3: unit up vector
func (p Pose) Up() mgl32.Vec3 {
	return p.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// LoadState is the state of an asynchronous asset load as reported by the loader.
type LoadState int

const (
	// LoadStatePending means the request has been issued and has not completed.
	LoadStatePending LoadState = iota
	// LoadStateLoaded means the asset is realized and can be resolved to a Handle.
	LoadStateLoaded
	// LoadStateFailed means the loader gave up on the request.
	LoadStateFailed
)

// String returns a human readable load state.
func (s LoadState) String() string {
	switch s {
	case LoadStatePending:
		return "pending"
	case LoadStateLoaded:
		return "loaded"
	case LoadStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PendingHandle identifies an in-flight load request.
type PendingHandle uint64

// Handle identifies a realized asset held by the loader.
type Handle uint64

// RGBA is a linear colour with alpha, each channel in [0, 1].
type RGBA [4]float32
