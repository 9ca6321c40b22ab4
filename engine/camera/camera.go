// Package camera holds the live viewer camera and the keyboard controller that flies it.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the forward vector away from the poles so yaw stays well defined.
const maxPitch = 89 * math.Pi / 180

type cameraImpl struct {
	mu *sync.Mutex

	pose common.Pose
	up   mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera defines the interface for the live viewer camera.
// The camera owns a Pose and perspective settings; matrices are recomputed on every mutation.
type Camera interface {
	// Pose returns the camera's world-space pose.
	//
	// Returns:
	//   - common.Pose: translation and rotation of the camera
	Pose() common.Pose

	// SetPose replaces the camera pose. Used when following a timeline or auto-framing.
	//
	// Parameters:
	//   - pose: the new pose
	SetPose(pose common.Pose)

	// LookAt places the camera at eye facing target.
	//
	// Parameters:
	//   - eye: world-space camera position
	//   - target: world-space point to face
	LookAt(eye, target mgl32.Vec3)

	// Move translates the camera along its local axes.
	//
	// Parameters:
	//   - local: direction in camera space (x right, y up, z forward); not normalized
	//   - distance: world units to travel along the normalized direction
	Move(local mgl32.Vec3, distance float32)

	// Turn applies yaw about the world up axis and pitch about the camera's right axis.
	// Pitch is clamped so the camera never flips over the pole.
	//
	// Parameters:
	//   - yaw: radians, positive turns left
	//   - pitch: radians, positive looks up
	Turn(yaw, pitch float32)

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes matrices. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// ViewMatrix returns the current view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current perspective projection matrix.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() mgl32.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		pose:   common.IdentityPose(),
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(45),
		aspect: 1,
		near:   0.01,
		far:    1000,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Pose() common.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *cameraImpl) SetPose(pose common.Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose = common.NewPose(pose.Translation, pose.Rotation)
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(eye, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose = common.LookAtPose(eye, target, c.up)
	c.updateMatrices()
}

func (c *cameraImpl) Move(local mgl32.Vec3, distance float32) {
	if local.Len() == 0 || distance == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := local.Normalize()
	world := c.pose.Right().Mul(dir.X()).
		Add(c.pose.Up().Mul(dir.Y())).
		Add(c.pose.Forward().Mul(dir.Z()))
	c.pose.Translation = c.pose.Translation.Add(world.Mul(distance))
	c.updateMatrices()
}

func (c *cameraImpl) Turn(yaw, pitch float32) {
	if yaw == 0 && pitch == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	forward := c.pose.Forward()
	current := float32(math.Asin(float64(mgl32.Clamp(forward.Dot(c.up), -1, 1))))
	pitch = mgl32.Clamp(current+pitch, -maxPitch, maxPitch) - current

	rot := mgl32.QuatRotate(yaw, c.up).Mul(mgl32.QuatRotate(pitch, c.pose.Right()))
	c.pose.Rotation = rot.Mul(c.pose.Rotation).Normalize()
	c.updateMatrices()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = common.ViewMatrix(c.pose)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
