package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownEncoding is returned when a settings path has an extension with no known encoding.
var ErrUnknownEncoding = errors.New("unknown settings encoding")

const (
	// ConfigFileName is the settings file written into a dataset directory.
	ConfigFileName = "config.toml"
	// CameraConfigFileName is the camera timelines file written into a dataset directory.
	CameraConfigFileName = "camera-config.toml"
)

// defaulter is implemented by settings types with non-zero defaults.
type defaulter interface {
	SetDefaults()
}

// sanitizer is implemented by settings types that repair themselves after decoding.
type sanitizer interface {
	Sanitize()
}

type codec struct {
	marshal   func(v any) ([]byte, error)
	unmarshal func(data []byte, v any) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return codec{marshal: toml.Marshal, unmarshal: toml.Unmarshal}, nil
	case ".yaml", ".yml":
		return codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}, nil
	default:
		return codec{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, filepath.Ext(path))
	}
}

// Save encodes v by the extension of path (.toml, .yaml, .yml) and writes it atomically.
//
// Parameters:
//   - path: destination file
//   - v: the value to encode
//
// Returns:
//   - error: encoding or write failure
func Save(path string, v any) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	data, err := c.marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Load decodes path into a fresh value and only replaces *dst when decoding succeeds.
// The fresh value starts from defaults when T has them and is sanitized afterwards.
// On any error *dst is left untouched.
//
// Parameters:
//   - path: source file
//   - dst: the live value to replace
//
// Returns:
//   - error: read, encoding, or decode failure
func Load[T any](path string, dst *T) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var fresh T
	if d, ok := any(&fresh).(defaulter); ok {
		d.SetDefaults()
	}
	if err := c.unmarshal(data, &fresh); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if s, ok := any(&fresh).(sanitizer); ok {
		s.Sanitize()
	}
	*dst = fresh
	return nil
}
