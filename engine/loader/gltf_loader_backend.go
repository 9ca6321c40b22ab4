package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/mesh-ripper/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfLoaderBackend is a loaderBackend for glTF and GLB files.
// Every triangle and point primitive of every mesh is merged into one Mesh.
type gltfLoaderBackend struct{}

var _ loaderBackend = &gltfLoaderBackend{}

func newGLTFLoaderBackend() *gltfLoaderBackend {
	return &gltfLoaderBackend{}
}

func (b *gltfLoaderBackend) Extensions() []string {
	return []string{".gltf", ".glb"}
}

func (b *gltfLoaderBackend) Load(path string) (model.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glTF %s: %w", path, err)
	}

	var (
		positions [][3]float32
		normals   [][3]float32
		indices   []uint32
	)
	for _, mesh := range doc.Meshes {
		for _, primitive := range mesh.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles && primitive.Mode != gltf.PrimitivePoints {
				continue
			}
			posIdx, ok := primitive.Attributes["POSITION"]
			if !ok {
				continue
			}
			primitivePositions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("failed to read positions of mesh %q: %w", mesh.Name, err)
			}
			base := uint32(len(positions))
			positions = append(positions, primitivePositions...)

			if normIdx, ok := primitive.Attributes["NORMAL"]; ok {
				primitiveNormals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
				if err != nil {
					return nil, fmt.Errorf("failed to read normals of mesh %q: %w", mesh.Name, err)
				}
				normals = append(normals, primitiveNormals...)
			}

			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if primitive.Indices == nil {
				// non-indexed triangle list
				for i := range uint32(len(primitivePositions)) {
					indices = append(indices, base+i)
				}
				continue
			}
			primitiveIndices, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("failed to read indices of mesh %q: %w", mesh.Name, err)
			}
			for _, i := range primitiveIndices {
				indices = append(indices, base+i)
			}
		}
	}

	return model.NewMesh(
		model.WithName(path),
		model.WithPositions(positions),
		model.WithNormals(normals),
		model.WithIndices(indices),
	), nil
}
