package vox

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Split configures the partitioner. A nonzero value is the chunk extent
// along that axis; zero keeps the axis whole.
type Split struct {
	X, Y, Z uint32
}

// Enabled reports whether at least one axis is split.
func (s Split) Enabled() bool { return s.X != 0 || s.Y != 0 || s.Z != 0 }

func (s Split) axes() [3]uint32 { return [3]uint32{s.X, s.Y, s.Z} }

// SplitByDivisor derives chunk extents by dividing each axis of size by the
// matching divisor. A zero divisor leaves the axis whole.
func SplitByDivisor(size Size, div [3]uint32) (Split, error) {
	ext := [3]uint32{size.X, size.Y, size.Z}
	var out [3]uint32
	for i, d := range div {
		if d == 0 {
			continue
		}
		out[i] = ext[i] / d
		if out[i] == 0 {
			return Split{}, errors.Wrapf(ErrInvalidSize, "axis %c: extent %d divided by %d is empty", "XYZ"[i], ext[i], d)
		}
	}
	return Split{out[0], out[1], out[2]}, nil
}

// ChunkKey is the integer position of a chunk along each axis.
type ChunkKey struct {
	X, Y, Z int
}

// Origin returns the position of the chunk's first cell in the source grid.
func (k ChunkKey) Origin(s Split) [3]uint32 {
	return [3]uint32{uint32(k.X) * s.X, uint32(k.Y) * s.Y, uint32(k.Z) * s.Z}
}

// Chunks maps chunk positions to their grids.
type Chunks map[ChunkKey]*Grid

// Keys returns the chunk positions ordered by x, then y, then z.
func (c Chunks) Keys() []ChunkKey {
	keys := lo.Keys(c)
	slices.SortFunc(keys, func(a, b ChunkKey) int {
		if r := cmp.Compare(a.X, b.X); r != 0 {
			return r
		}
		if r := cmp.Compare(a.Y, b.Y); r != 0 {
			return r
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return keys
}

// Partition splits g into independent chunks with coordinates rebased to
// each chunk's origin. Every chunk declares the full configured extent on a
// split axis, trailing chunks included, and the source extent on the others.
// Chunks without cells are omitted; with no axis split the result is a
// single clone of g, even when g is empty.
func Partition(g *Grid, s Split) Chunks {
	if !s.Enabled() {
		return Chunks{{}: g.Clone()}
	}
	size := g.Size
	if s.X != 0 {
		size.X = s.X
	}
	if s.Y != 0 {
		size.Y = s.Y
	}
	if s.Z != 0 {
		size.Z = s.Z
	}

	out := make(Chunks)
	axes := s.axes()
	for _, p := range g.order {
		src := [3]uint32{uint32(p.X), uint32(p.Y), uint32(p.Z)}
		var key, local [3]uint32
		for i, ext := range axes {
			if ext == 0 {
				local[i] = src[i]
				continue
			}
			key[i] = src[i] / ext
			local[i] = src[i] % ext
		}
		k := ChunkKey{int(key[0]), int(key[1]), int(key[2])}
		chunk, ok := out[k]
		if !ok {
			chunk = NewGrid(size, g.Palette)
			out[k] = chunk
		}
		chunk.Set(Pos{uint8(local[0]), uint8(local[1]), uint8(local[2])}, g.cells[p])
	}
	return out
}
