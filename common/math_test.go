package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func TestLookAtPose(t *testing.T) {
	cases := []struct {
		name        string
		eye, target mgl32.Vec3
	}{
		{"down -z", mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}},
		{"from above and behind", mgl32.Vec3{0, 5, 10}, mgl32.Vec3{}},
		{"sideways", mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{"straight down", mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := LookAtPose(tc.eye, tc.target, mgl32.Vec3{0, 1, 0})
			want := tc.target.Sub(tc.eye).Normalize()
			assert.True(t, ApproxEqualVec3(want, p.Forward(), eps), "forward %v want %v", p.Forward(), want)
			assert.InDelta(t, 0, p.Up().Dot(p.Forward()), eps)
			assert.Equal(t, tc.eye, p.Translation)
		})
	}

	same := LookAtPose(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, mgl32.QuatIdent(), same.Rotation)
}

func TestSlerpShortestTakesShortArc(t *testing.T) {
	a := mgl32.QuatRotate(0, mgl32.Vec3{0, 1, 0})
	b := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}).Scale(-1)
	require.Negative(t, a.Dot(b))

	mid := SlerpShortest(a, b, 0.5)
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	assert.True(t, SameRotation(want, mid, eps))
	assert.InDelta(t, 1, mid.Len(), eps)
}

func TestLerpPoseEndpoints(t *testing.T) {
	a := NewPose(mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent())
	b := NewPose(mgl32.Vec3{2, 4, 6}, mgl32.QuatRotate(1, mgl32.Vec3{1, 0, 0}))

	assert.True(t, ApproxEqualVec3(a.Translation, LerpPose(a, b, 0).Translation, eps))
	assert.True(t, SameRotation(b.Rotation, LerpPose(a, b, 1).Rotation, eps))
	assert.True(t, ApproxEqualVec3(mgl32.Vec3{1, 2, 3}, LerpPose(a, b, 0.5).Translation, eps))
}

func TestViewMatrixInvertsPose(t *testing.T) {
	p := NewPose(mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0}))
	assert.True(t, ViewMatrix(p).Mul4(p.Matrix()).ApproxEqualThreshold(mgl32.Ident4(), eps))
}

func TestFramingPose(t *testing.T) {
	box, ok := NewAABB([][3]float32{{-1, 0, -1}, {1, 2, 1}})
	require.True(t, ok)

	p := box.FramingPose()
	center := box.Center()
	assert.GreaterOrEqual(t, p.Translation.Sub(center).Len(), 1.5*box.MaxExtent()-eps)
	assert.True(t, ApproxEqualVec3(center.Sub(p.Translation).Normalize(), p.Forward(), eps))

	_, ok = NewAABB(nil)
	assert.False(t, ok)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
