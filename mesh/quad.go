// Package mesh turns voxel grids into quad meshes and writes them as
// Wavefront OBJ/MTL or binary glTF.
package mesh

import "github.com/voxelsplace/voxtiler/vox"

// Vec3 is an integer corner position in grid space.
type Vec3 [3]int

// Face identifies one of the six axis-aligned cell faces.
type Face uint8

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Faces lists the directions in the order the mesher tests them.
var Faces = [6]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

type faceSpec struct {
	name    string
	normal  Vec3
	corners [4]Vec3 // offsets from the cell origin, counter-clockwise seen from outside
}

var faceSpecs = [6]faceSpec{
	FacePosX: {"+X", Vec3{1, 0, 0}, [4]Vec3{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	FaceNegX: {"-X", Vec3{-1, 0, 0}, [4]Vec3{{0, 1, 0}, {0, 0, 0}, {0, 0, 1}, {0, 1, 1}}},
	FacePosY: {"+Y", Vec3{0, 1, 0}, [4]Vec3{{1, 1, 0}, {0, 1, 0}, {0, 1, 1}, {1, 1, 1}}},
	FaceNegY: {"-Y", Vec3{0, -1, 0}, [4]Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	FacePosZ: {"+Z", Vec3{0, 0, 1}, [4]Vec3{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	FaceNegZ: {"-Z", Vec3{0, 0, -1}, [4]Vec3{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
}

func (f Face) String() string { return faceSpecs[f].name }

// Normal returns the outward unit normal of the face.
func (f Face) Normal() Vec3 { return faceSpecs[f].normal }

// Quad is one visible unit face of an occupied cell.
type Quad struct {
	Corners [4]Vec3
	Face    Face
	Color   uint8
}

// Build emits one quad per exposed cell face: a face is exposed when the
// neighbouring cell is outside the grid or empty. Cells are visited by x,
// then y, then z, and faces in the order of Faces, so the output is
// deterministic.
func Build(g *vox.Grid) []Quad {
	var quads []Quad
	for _, p := range g.Positions() {
		color, _ := g.At(p)
		x, y, z := int(p.X), int(p.Y), int(p.Z)
		for _, f := range Faces {
			n := f.Normal()
			if g.Occupied(x+n[0], y+n[1], z+n[2]) {
				continue
			}
			q := Quad{Face: f, Color: color}
			for i, c := range faceSpecs[f].corners {
				q.Corners[i] = Vec3{x + c[0], y + c[1], z + c[2]}
			}
			quads = append(quads, q)
		}
	}
	return quads
}
