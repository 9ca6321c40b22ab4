package playback

import "fmt"

// Direction is the playback direction.
type Direction int

const (
	// Forward advances the frame index.
	Forward Direction = iota
	// Back retreats the frame index.
	Back
)

func (d Direction) String() string {
	if d == Back {
		return "back"
	}
	return "forward"
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "forward":
		*d = Forward
	case "back":
		*d = Back
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}
