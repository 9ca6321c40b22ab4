package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	// Min is the corner with the smallest coordinates.
	Min mgl32.Vec3
	// Max is the corner with the largest coordinates.
	Max mgl32.Vec3
}

// NewAABB computes the bounding box of a set of points.
// Returns false when points is empty.
//
// Parameters:
//   - points: the vertex positions to enclose
//
// Returns:
//   - AABB: the enclosing box
//   - bool: false if there were no points
func NewAABB(points [][3]float32) (AABB, bool) {
	if len(points) == 0 {
		return AABB{}, false
	}
	inf := math32.Inf(1)
	box := AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
	for _, p := range points {
		box.TakePoint(p)
	}
	return box, true
}

// TakePoint grows the box so it contains p.
//
// Parameters:
//   - p: the point to include
func (b *AABB) TakePoint(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the full size of the box along each axis.
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest side length of the box.
func (b AABB) MaxExtent() float32 {
	e := b.Extents()
	return math32.Max(e.X(), math32.Max(e.Y(), e.Z()))
}

// FramingPose returns a camera pose that looks at the box from above and behind.
// The eye is placed at (center.x, max.y*1.5, max.z*1.5); if that lands closer to the
// center than 1.5x the box's largest extent it is pushed back along the same direction.
//
// Returns:
//   - Pose: a pose whose forward axis points at the box center
func (b AABB) FramingPose() Pose {
	target := b.Center()
	eye := mgl32.Vec3{target.X(), b.Max.Y() * 1.5, b.Max.Z() * 1.5}

	minDistance := b.MaxExtent() * 1.5
	offset := eye.Sub(target)
	if dist := offset.Len(); dist < minDistance {
		if dist < 1e-6 {
			offset = mgl32.Vec3{0, 1, 1}.Normalize()
		} else {
			offset = offset.Normalize()
		}
		eye = target.Add(offset.Mul(math32.Max(minDistance, 1)))
	}
	return LookAtPose(eye, target, mgl32.Vec3{0, 1, 0})
}
