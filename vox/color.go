package vox

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// RGBA is a single palette entry.
type RGBA struct {
	R, G, B, A uint8
}

// Palette always holds exactly 256 colors, indexed by Voxel.Color.
type Palette [256]RGBA

// DefaultPalette is used when a file has no RGBA chunk: index 0 is
// transparent black, every other index opaque white.
func DefaultPalette() Palette {
	var p Palette
	for i := 1; i < len(p); i++ {
		p[i] = RGBA{255, 255, 255, 255}
	}
	return p
}

// Visible reports whether the color has a nonzero alpha.
func (c RGBA) Visible() bool { return c.A > 0 }

// Float returns the channels normalized to 0..1.
func (c RGBA) Float() [4]float64 {
	return [4]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}
}

// Hex formats the color as #rrggbbaa.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHexColor parses #rrggbb (opaque) or #rrggbbaa.
func ParseHexColor(hex string) (RGBA, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return RGBA{}, errors.Errorf("invalid hex color %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return RGBA{}, errors.Errorf("invalid hex color length %q", hex)
	}
	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return RGBA{}, errors.Wrapf(err, "invalid hex color %q", hex)
		}
		ch[i] = uint8(v)
	}
	return RGBA{ch[0], ch[1], ch[2], ch[3]}, nil
}
