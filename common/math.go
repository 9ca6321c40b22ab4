package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lerp linearly interpolates between a and b.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: a + (b - a) * t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec3 linearly interpolates two vectors component-wise.
//
// Parameters:
//   - a: vector at t = 0
//   - b: vector at t = 1
//   - t: interpolation factor
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpShortest spherically interpolates between two rotations along the shortest arc.
// mgl32.QuatSlerp does not flip hemispheres on its own, so q2 is negated when the
// rotations are more than 180 degrees apart.
//
// Parameters:
//   - q1: rotation at t = 0
//   - q2: rotation at t = 1
//   - t: interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the interpolated unit rotation
func SlerpShortest(q1, q2 mgl32.Quat, t float32) mgl32.Quat {
	q1 = q1.Normalize()
	q2 = q2.Normalize()
	if q1.Dot(q2) < 0 {
		q2 = q2.Scale(-1)
	}
	return mgl32.QuatSlerp(q1, q2, t).Normalize()
}

// LerpPose interpolates translation linearly and rotation by shortest-arc slerp.
//
// Parameters:
//   - a: pose at t = 0
//   - b: pose at t = 1
//   - t: interpolation factor in [0, 1]
//
// Returns:
//   - Pose: the blended pose
func LerpPose(a, b Pose, t float32) Pose {
	return Pose{
		Translation: LerpVec3(a.Translation, b.Translation, t),
		Rotation:    SlerpShortest(a.Rotation, b.Rotation, t),
	}
}

// LookAtPose builds a pose at eye whose forward (-Z) axis points at target.
//
// Parameters:
//   - eye: the pose translation
//   - target: the point to face
//   - up: world up hint
//
// Returns:
//   - Pose: the resulting pose, or an identity-rotated pose at eye if eye == target
func LookAtPose(eye, target, up mgl32.Vec3) Pose {
	dir := target.Sub(eye)
	if dir.Len() < 1e-6 {
		return Pose{Translation: eye, Rotation: mgl32.QuatIdent()}
	}
	dir = dir.Normalize()
	if math32.Abs(dir.Dot(up.Normalize())) > 0.9999 {
		up = mgl32.Vec3{0, 0, -1}
	}
	// mgl32.QuatLookAtV yields the inverse (view) rotation, so the basis is built directly
	right := dir.Cross(up).Normalize()
	trueUp := right.Cross(dir)
	basis := mgl32.Mat3FromCols(right, trueUp, dir.Mul(-1))
	return Pose{Translation: eye, Rotation: mgl32.Mat4ToQuat(basis.Mat4()).Normalize()}
}

// ViewMatrix returns the inverse of the pose's model matrix, suitable as a camera view.
//
// Parameters:
//   - p: the camera pose
//
// Returns:
//   - mgl32.Mat4: world-to-view transform
func ViewMatrix(p Pose) mgl32.Mat4 {
	return p.Rotation.Conjugate().Mat4().Mul4(mgl32.Translate3D(-p.Translation.X(), -p.Translation.Y(), -p.Translation.Z()))
}

// ApproxEqualVec3 reports whether two vectors are equal within epsilon per component.
func ApproxEqualVec3(a, b mgl32.Vec3, epsilon float32) bool {
	return a.ApproxEqualThreshold(b, epsilon)
}

// SameRotation reports whether two quaternions describe the same rotation within epsilon,
// treating q and -q as equal.
func SameRotation(a, b mgl32.Quat, epsilon float32) bool {
	return math32.Abs(math32.Abs(a.Normalize().Dot(b.Normalize()))-1) <= epsilon
}
