package loader

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/g3n/engine/loader/obj"
)

// objLoaderBackend is a loaderBackend for Wavefront OBJ files.
// Only geometry is kept: positions, normals and faces of every object. Polygons are
// fan-triangulated; a file with vertices and no faces is a point cloud.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() *objLoaderBackend {
	return &objLoaderBackend{}
}

func (b *objLoaderBackend) Extensions() []string {
	return []string{".obj"}
}

func (b *objLoaderBackend) Load(path string) (model.Mesh, error) {
	// an empty material path makes the decoder look for a sibling .mtl and fall back to defaults
	dec, err := obj.Decode(path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode OBJ %s: %w", path, err)
	}
	for _, w := range dec.Warnings {
		slog.Debug("loader: OBJ warning", "path", path, "warning", w)
	}

	positions := vec3s(dec.Vertices)
	normals := vec3s(dec.Normals)

	// -1 marks a vertex no face gave a normal
	vertexNormal := make([]int, len(positions))
	for i := range vertexNormal {
		vertexNormal[i] = -1
	}

	var indices []uint32
	for _, object := range dec.Objects {
		for fi, face := range object.Faces {
			for _, v := range face.Vertices {
				if v < 0 || v >= len(positions) {
					return nil, fmt.Errorf("failed to decode OBJ %s: object %q face %d: vertex index %d out of range", path, object.Name, fi, v+1)
				}
			}
			for i, v := range face.Vertices {
				if i < len(face.Normals) {
					if n := face.Normals[i]; n >= 0 && n < len(normals) {
						vertexNormal[v] = n
					}
				}
			}
			// fan around the first corner
			for i := 1; i+1 < len(face.Vertices); i++ {
				indices = append(indices,
					uint32(face.Vertices[0]),
					uint32(face.Vertices[i]),
					uint32(face.Vertices[i+1]),
				)
			}
		}
	}

	return model.NewMesh(
		model.WithName(path),
		model.WithPositions(positions),
		model.WithNormals(perVertexNormals(positions, normals, vertexNormal, len(indices) > 0)),
		model.WithIndices(indices),
	), nil
}

// vec3s splits a flat xyz array into triples.
func vec3s(flat []float32) [][3]float32 {
	out := make([][3]float32, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, [3]float32{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}

// perVertexNormals returns one normal per position, or nil unless every vertex got one.
func perVertexNormals(positions, normals [][3]float32, vertexNormal []int, hasFaces bool) [][3]float32 {
	if len(normals) == 0 {
		return nil
	}
	// point clouds often list normals 1:1 with vertices and no faces
	if !hasFaces {
		if len(normals) == len(positions) {
			return normals
		}
		return nil
	}
	out := make([][3]float32, len(positions))
	for i, ni := range vertexNormal {
		if ni < 0 {
			return nil
		}
		out[i] = normals[ni]
	}
	return out
}
