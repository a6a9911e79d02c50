package mesh

import (
	"bytes"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxtiler/vox"
)

const glbGenerator = "voxtiler"

// NewDocument returns an empty glTF document for voxel meshes.
func NewDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = glbGenerator
	return doc
}

// Document builds a glTF document with one mesh holding every quad as two
// triangles. Positions use the same Y/Z swap as the OBJ writer; triangle
// winding is reversed to stay outward facing after the swap. Palette colors
// become linear per-vertex COLOR_0 values.
func Document(quads []Quad, pal *vox.Palette) *gltf.Document {
	doc := NewDocument()
	AddNode(doc, "ChunkMesh", quads, pal, [3]float64{})
	return doc
}

// AddNode appends a mesh built from quads and a scene node placing it at
// translation, in glTF space. All meshes share one material, switched to
// alpha blending once any of them uses a translucent color. An empty quad
// list adds nothing.
func AddNode(doc *gltf.Document, name string, quads []Quad, pal *vox.Palette, translation [3]float64) {
	if len(quads) == 0 {
		return
	}
	positions := make([][3]float32, 0, 4*len(quads))
	normals := make([][3]float32, 0, 4*len(quads))
	colors := make([][4]float32, 0, 4*len(quads))
	indices := make([]uint32, 0, 6*len(quads))
	hasAlpha := false

	for _, q := range quads {
		p := glbCorners(q)
		n := glbNormal(p)

		entry := pal[q.Color]
		r, g, b := colorful.Color{R: float64(entry.R) / 255, G: float64(entry.G) / 255, B: float64(entry.B) / 255}.LinearRgb()
		rgba := [4]float32{float32(r), float32(g), float32(b), float32(entry.A) / 255}
		if entry.A < 255 {
			hasAlpha = true
		}

		base := uint32(len(positions))
		for _, v := range p {
			positions = append(positions, [3]float32(v))
			normals = append(normals, [3]float32(n))
			colors = append(colors, rgba)
		}
		indices = append(indices, base, base+2, base+1, base, base+3, base+2)
	}

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	if len(doc.Materials) == 0 {
		doc.Materials = []*gltf.Material{{
			Name: "voxel",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(1),
			},
			AlphaMode: gltf.AlphaOpaque,
		}}
	}
	if hasAlpha {
		doc.Materials[0].AlphaMode = gltf.AlphaBlend
	}

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        name,
		Mesh:        gltf.Index(len(doc.Meshes) - 1),
		Translation: translation,
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
}

// OriginTranslation maps a chunk origin in model cells to a glTF node
// translation, swapping Y and Z like the vertex positions.
func OriginTranslation(origin [3]uint32) [3]float64 {
	return [3]float64{float64(origin[0]), float64(origin[2]), float64(origin[1])}
}

// glbCorners returns the quad corners in glTF space (Y and Z swapped).
func glbCorners(q Quad) [4]mgl32.Vec3 {
	var p [4]mgl32.Vec3
	for i, c := range q.Corners {
		p[i] = mgl32.Vec3{float32(c[0]), float32(c[2]), float32(c[1])}
	}
	return p
}

// glbNormal is the normal of the reversed winding used for the triangles.
func glbNormal(p [4]mgl32.Vec3) mgl32.Vec3 {
	return p[2].Sub(p[0]).Cross(p[1].Sub(p[0])).Normalize()
}

// WriteGLB writes the quads as a binary glTF stream.
func WriteGLB(w io.Writer, quads []Quad, pal *vox.Palette) error {
	return WriteDocument(w, Document(quads, pal))
}

// WriteDocument writes doc as binary glTF.
func WriteDocument(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// EncodeGLB returns the quads as binary glTF bytes.
func EncodeGLB(quads []Quad, pal *vox.Palette) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGLB(&buf, quads, pal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
