package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"github.com/voxelsplace/voxtiler/vox"
)

// MaterialName is the MTL material used for a palette index.
func MaterialName(color uint8) string { return fmt.Sprintf("color_%d", color) }

// Materials returns the distinct color indices used by quads whose palette
// entry is visible, in ascending order.
func Materials(quads []Quad, pal *vox.Palette) []uint8 {
	used := lo.Uniq(lo.Map(quads, func(q Quad, _ int) uint8 { return q.Color }))
	used = lo.Filter(used, func(c uint8, _ int) bool { return pal[c].Visible() })
	slices.Sort(used)
	return used
}

// WriteMTL writes one material block per entry of Materials.
func WriteMTL(w io.Writer, quads []Quad, pal *vox.Palette) error {
	bw := bufio.NewWriter(w)
	for _, c := range Materials(quads, pal) {
		kd := pal[c].Float()
		fmt.Fprintf(bw, "newmtl %s\n", MaterialName(c))
		fmt.Fprintf(bw, "Kd %.6f %.6f %.6f\n", kd[0], kd[1], kd[2])
		fmt.Fprint(bw, "Ka 0.000000 0.000000 0.000000\n")
		fmt.Fprint(bw, "Ks 0.000000 0.000000 0.000000\n")
		fmt.Fprint(bw, "d 1.000000\n")
		fmt.Fprint(bw, "illum 1\n\n")
	}
	return bw.Flush()
}

// WriteOBJ writes the quads as an OBJ stream referencing mtlName. Each quad
// gets four vertices of its own; vertices are written as "v x z y" so the
// model's Z axis becomes the up axis of Y-up viewers. The material
// directive is written for every quad, even when its color is transparent
// and has no material block.
func WriteOBJ(w io.Writer, mtlName string, quads []Quad) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "mtllib %s\n", mtlName)
	for i, q := range quads {
		for _, c := range q.Corners {
			fmt.Fprintf(bw, "v %d %d %d\n", c[0], c[2], c[1])
		}
		base := 4 * i
		fmt.Fprintf(bw, "usemtl %s\n", MaterialName(q.Color))
		fmt.Fprintf(bw, "f %d %d %d %d\n", base+1, base+2, base+3, base+4)
	}
	return bw.Flush()
}

// EncodeOBJ returns the OBJ and MTL streams for quads.
func EncodeOBJ(quads []Quad, pal *vox.Palette, mtlName string) (obj, mtl []byte) {
	var ob, mb bytes.Buffer
	// writes to a bytes.Buffer cannot fail
	_ = WriteOBJ(&ob, mtlName, quads)
	_ = WriteMTL(&mb, quads, pal)
	return ob.Bytes(), mb.Bytes()
}
