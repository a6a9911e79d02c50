package vox

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFormat is returned when the stream is not a .vox container (bad magic or no MAIN chunk).
	ErrFormat = errors.New("vox: invalid format")
	// ErrInvalidSize reports a missing or zero model extent.
	ErrInvalidSize = errors.New("vox: invalid size")
)

// Voxel is one record of an XYZI chunk. Color 0 is a usable palette slot;
// an empty cell is simply not listed.
type Voxel struct {
	X, Y, Z uint8
	Color   uint8
}

// Pos returns the voxel coordinate.
func (v Voxel) Pos() Pos { return Pos{v.X, v.Y, v.Z} }

// Size holds the model extents. The zero value means no SIZE chunk was read.
type Size struct {
	X, Y, Z uint32
}

// IsZero reports whether no extent has been set.
func (s Size) IsZero() bool { return s == Size{} }

// Validate returns ErrInvalidSize when any extent is zero.
func (s Size) Validate() error {
	if s.X == 0 || s.Y == 0 || s.Z == 0 {
		return errors.Wrapf(ErrInvalidSize, "%s", s)
	}
	return nil
}

// Contains reports whether p lies inside the extents.
func (s Size) Contains(p Pos) bool {
	return uint32(p.X) < s.X && uint32(p.Y) < s.Y && uint32(p.Z) < s.Z
}

func (s Size) String() string { return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z) }

// Model is the decoded content of a .vox file.
type Model struct {
	Version uint32
	Size    Size
	Voxels  []Voxel // file order
	Palette Palette
	// HasPalette is false when the file had no RGBA chunk and Palette is the default one.
	HasPalette bool
	// Truncated is set when the stream ended inside a chunk. Everything read
	// before that point is kept.
	Truncated bool
}

// NewModel returns an empty model with the default palette.
func NewModel(size Size) *Model {
	return &Model{Version: DefaultVersion, Size: size, Palette: DefaultPalette()}
}
