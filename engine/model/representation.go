package model

import (
	"fmt"

	"github.com/Carmen-Shannon/mesh-ripper/common"
)

// PointStyle selects how unconnected points are drawn.
type PointStyle int

const (
	// PointStyleSphere draws each sampled point as a small sphere.
	PointStyleSphere PointStyle = iota
	// PointStyleDirectional draws each sampled point as a cone oriented along its normal.
	PointStyleDirectional
)

func (s PointStyle) String() string {
	switch s {
	case PointStyleSphere:
		return "sphere"
	case PointStyleDirectional:
		return "directional"
	default:
		return fmt.Sprintf("PointStyle(%d)", int(s))
	}
}

// MarshalText encodes the style by name.
func (s PointStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a style name.
func (s *PointStyle) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sphere":
		*s = PointStyleSphere
	case "directional":
		*s = PointStyleDirectional
	default:
		return fmt.Errorf("unknown point style %q", text)
	}
	return nil
}

// Representation is what gets spawned into the scene for an asset.
// The set of variants is closed: Connected, Unconnected and Marker.
type Representation interface {
	isRepresentation()
}

// Connected draws a mesh with its triangle connectivity.
type Connected struct {
	Mesh  common.Handle
	Color common.RGBA
	// Background marks static meshes that are not part of the time series.
	Background bool
}

// Unconnected draws a sampled subset of a mesh's vertices as instanced primitives.
type Unconnected struct {
	Mesh           common.Handle
	SampledIndices []int
	Style          PointStyle
	Radius         float32
	Color          common.RGBA
}

// Marker draws a small oriented gizmo, used to visualize camera keyframes.
type Marker struct {
	Pose  common.Pose
	Size  float32
	Color common.RGBA
}

func (Connected) isRepresentation()   {}
func (Unconnected) isRepresentation() {}
func (Marker) isRepresentation()      {}

// PointOptions controls how a frame is represented.
type PointOptions struct {
	Style  PointStyle
	Radius float32
	Color  common.RGBA
}

// Represent picks the representation for a realized mesh once, by its features.
// Meshes with triangles are Connected; everything else is Unconnected using sampled.
//
// Parameters:
//   - handle: the realized mesh handle
//   - m: the mesh, used for feature introspection
//   - sampled: vertex indices to draw when the mesh is a point cloud
//   - opts: styling
//
// Returns:
//   - Representation: the chosen variant
func Represent(handle common.Handle, m Mesh, sampled []int, opts PointOptions) Representation {
	if m != nil && m.Features().Connected() {
		return Connected{Mesh: handle, Color: opts.Color}
	}
	return Unconnected{
		Mesh:           handle,
		SampledIndices: sampled,
		Style:          opts.Style,
		Radius:         opts.Radius,
		Color:          opts.Color,
	}
}

// Describe returns a short human readable label for a representation.
func Describe(r Representation) string {
	switch v := r.(type) {
	case Connected:
		if v.Background {
			return fmt.Sprintf("background mesh %d", v.Mesh)
		}
		return fmt.Sprintf("mesh %d", v.Mesh)
	case Unconnected:
		return fmt.Sprintf("%d %s points of mesh %d", len(v.SampledIndices), v.Style, v.Mesh)
	case Marker:
		return fmt.Sprintf("marker at %v", v.Pose.Translation)
	default:
		return "unknown"
	}
}
