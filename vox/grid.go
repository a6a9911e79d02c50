package vox

import (
	"cmp"
	"slices"
)

// Pos is a cell coordinate inside a grid.
type Pos struct {
	X, Y, Z uint8
}

func comparePos(a, b Pos) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}

// Grid is a sparse set of occupied cells with their color index.
// Every cell lies inside Size.
type Grid struct {
	Size    Size
	Palette Palette

	cells map[Pos]uint8
	order []Pos // first insertion order
}

// NewGrid returns an empty grid.
func NewGrid(size Size, pal Palette) *Grid {
	return &Grid{Size: size, Palette: pal, cells: make(map[Pos]uint8)}
}

// GridFromModel builds a grid from decoded records. Later records overwrite
// earlier ones at the same position. Records outside the model size are
// dropped; their count is returned.
func GridFromModel(m *Model) (*Grid, int) {
	g := NewGrid(m.Size, m.Palette)
	g.order = make([]Pos, 0, len(m.Voxels))
	dropped := 0
	for _, v := range m.Voxels {
		if !g.Set(v.Pos(), v.Color) {
			dropped++
		}
	}
	return g, dropped
}

// Set stores a color at p. It returns false, leaving the grid unchanged, when
// p is outside Size.
func (g *Grid) Set(p Pos, color uint8) bool {
	if !g.Size.Contains(p) {
		return false
	}
	if _, ok := g.cells[p]; !ok {
		g.order = append(g.order, p)
	}
	g.cells[p] = color
	return true
}

// At returns the color at p and whether the cell is occupied.
func (g *Grid) At(p Pos) (uint8, bool) {
	c, ok := g.cells[p]
	return c, ok
}

// Occupied reports whether the cell at (x, y, z) is filled. Coordinates
// outside the grid are empty.
func (g *Grid) Occupied(x, y, z int) bool {
	if x < 0 || y < 0 || z < 0 || x > 255 || y > 255 || z > 255 {
		return false
	}
	_, ok := g.cells[Pos{uint8(x), uint8(y), uint8(z)}]
	return ok
}

// Len returns the number of occupied cells.
func (g *Grid) Len() int { return len(g.cells) }

// Voxels lists the occupied cells in insertion order.
func (g *Grid) Voxels() []Voxel {
	out := make([]Voxel, len(g.order))
	for i, p := range g.order {
		out[i] = Voxel{X: p.X, Y: p.Y, Z: p.Z, Color: g.cells[p]}
	}
	return out
}

// Positions lists the occupied cells ordered by x, then y, then z.
func (g *Grid) Positions() []Pos {
	out := slices.Clone(g.order)
	slices.SortFunc(out, comparePos)
	return out
}

// Model converts the grid back to an encodable model.
func (g *Grid) Model() *Model {
	return &Model{
		Version:    DefaultVersion,
		Size:       g.Size,
		Voxels:     g.Voxels(),
		Palette:    g.Palette,
		HasPalette: true,
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.Size, g.Palette)
	c.order = slices.Clone(g.order)
	for p, col := range g.cells {
		c.cells[p] = col
	}
	return c
}
