package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA = 65 // A key (ASCII)
	KeyB = 66 // B key (ASCII)
	KeyC = 67 // C key (ASCII)
	KeyD = 68 // D key (ASCII)
	KeyE = 69 // E key (ASCII)
	KeyF = 70 // F key (ASCII)
	KeyG = 71 // G key (ASCII)
	KeyK = 75 // K key (ASCII)
	KeyL = 76 // L key (ASCII)
	KeyN = 78 // N key (ASCII)
	KeyQ = 81 // Q key (ASCII)
	KeyR = 82 // R key (ASCII)
	KeyS = 83 // S key (ASCII)
	KeyT = 84 // T key (ASCII)
	KeyV = 86 // V key (ASCII)
	KeyW = 87 // W key (ASCII)
	KeyX = 88 // X key (ASCII)

	KeyLeftBracket  = 91 // [ key (ASCII)
	KeyRightBracket = 93 // ] key (ASCII)
)

// Non-printable keys (GLFW values).
const (
	KeyEsc      = 256
	KeyTab      = 258
	KeyRight    = 262
	KeyLeft     = 263
	KeyDown     = 264
	KeyUp       = 265
	KeyPageUp   = 266
	KeyPageDown = 267
)

// Modifier is a bit set of held modifier keys. Bit values match glfw.ModifierKey.
type Modifier uint8

const (
	ModShift   Modifier = 0x0001
	ModControl Modifier = 0x0002
	ModAlt     Modifier = 0x0004
	ModSuper   Modifier = 0x0008
)

// Has reports whether every bit in m is set.
func (mods Modifier) Has(m Modifier) bool {
	return mods&m == m
}

// KeyEvent is a single key transition delivered by the window.
type KeyEvent struct {
	// Key is the virtual key code.
	Key uint32
	// Mods holds the modifier keys held when the event fired.
	Mods Modifier
	// Pressed is true for press and repeat, false for release.
	Pressed bool
	// Repeat is true when the event is an OS key-repeat of a held key.
	Repeat bool
}
