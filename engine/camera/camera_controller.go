package camera

import (
	"time"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Default rates for the fly controller.
const (
	DefaultMoveSpeed = 2.0 // world units per second
	DefaultTurnSpeed = 1.5 // radians per second
)

// CameraController maps held keys onto camera motion.
// WASD moves in the horizontal plane of the camera, Q/E move down/up, and the arrow keys turn
// the camera when turning is enabled (the viewer gives arrows to frame stepping while paused).
type CameraController interface {
	// HandleKey records a key press or release. Events with modifiers held are ignored
	// so chords such as Ctrl+S never move the camera.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: true if the key is a movement or turning key
	HandleKey(ev common.KeyEvent) bool

	// Apply moves and turns the camera for a tick of length dt.
	//
	// Parameters:
	//   - cam: the camera to drive
	//   - dt: elapsed time since the previous tick
	//   - turning: whether arrow keys may turn the camera this tick
	//
	// Returns:
	//   - bool: true if the camera moved
	Apply(cam Camera, dt time.Duration, turning bool) bool

	// MoveSpeed returns the translation speed in world units per second.
	MoveSpeed() float32

	// SetMoveSpeed sets the translation speed. Non-positive values are ignored.
	SetMoveSpeed(speed float32)

	// Reset releases every held key, used when the window loses focus.
	Reset()
}

type flyController struct {
	held      map[uint32]bool
	moveSpeed float32
	turnSpeed float32
}

var _ CameraController = &flyController{}

// NewCameraController creates a fly controller with the default speeds.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the new controller
func NewCameraController(options ...CameraControllerBuilderOption) CameraController {
	f := &flyController{
		held:      make(map[uint32]bool),
		moveSpeed: DefaultMoveSpeed,
		turnSpeed: DefaultTurnSpeed,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// CameraControllerBuilderOption is a functional option for NewCameraController.
type CameraControllerBuilderOption func(*flyController)

// WithMoveSpeed sets the translation speed in world units per second.
func WithMoveSpeed(speed float32) CameraControllerBuilderOption {
	return func(f *flyController) {
		if speed > 0 {
			f.moveSpeed = speed
		}
	}
}

// WithTurnSpeed sets the turn speed in radians per second.
func WithTurnSpeed(speed float32) CameraControllerBuilderOption {
	return func(f *flyController) {
		if speed > 0 {
			f.turnSpeed = speed
		}
	}
}

var movementKeys = map[uint32]mgl32.Vec3{
	common.KeyW: {0, 0, 1},
	common.KeyS: {0, 0, -1},
	common.KeyD: {1, 0, 0},
	common.KeyA: {-1, 0, 0},
	common.KeyE: {0, 1, 0},
	common.KeyQ: {0, -1, 0},
}

// turnKeys map to (yaw, pitch) signs.
var turnKeys = map[uint32][2]float32{
	common.KeyLeft:  {1, 0},
	common.KeyRight: {-1, 0},
	common.KeyUp:    {0, 1},
	common.KeyDown:  {0, -1},
}

func (f *flyController) HandleKey(ev common.KeyEvent) bool {
	_, move := movementKeys[ev.Key]
	_, turn := turnKeys[ev.Key]
	if !move && !turn {
		return false
	}
	if !ev.Pressed {
		delete(f.held, ev.Key)
		return true
	}
	if ev.Mods != 0 {
		return false
	}
	f.held[ev.Key] = true
	return true
}

func (f *flyController) Apply(cam Camera, dt time.Duration, turning bool) bool {
	if len(f.held) == 0 || dt <= 0 {
		return false
	}
	seconds := float32(dt.Seconds())

	var dir mgl32.Vec3
	var yaw, pitch float32
	for key := range f.held {
		if v, ok := movementKeys[key]; ok {
			dir = dir.Add(v)
		}
		if t, ok := turnKeys[key]; ok && turning {
			yaw += t[0]
			pitch += t[1]
		}
	}

	moved := false
	if dir.Len() > 0 {
		cam.Move(dir, f.moveSpeed*seconds)
		moved = true
	}
	if yaw != 0 || pitch != 0 {
		cam.Turn(yaw*f.turnSpeed*seconds, pitch*f.turnSpeed*seconds)
		moved = true
	}
	return moved
}

func (f *flyController) MoveSpeed() float32 {
	return f.moveSpeed
}

func (f *flyController) SetMoveSpeed(speed float32) {
	if speed > 0 {
		f.moveSpeed = speed
	}
}

func (f *flyController) Reset() {
	clear(f.held)
}
