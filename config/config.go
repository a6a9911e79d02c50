// Package config holds the options of a tiling run.
package config

import (
	"encoding/json"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/voxelsplace/voxtiler/vox"
)

// Mode selects how chunk extents are derived.
type Mode string

const (
	// ModeNone converts the whole model without splitting.
	ModeNone Mode = "none"
	// ModeSize uses X, Y, Z as chunk extents.
	ModeSize Mode = "size"
	// ModeDivide uses X, Y, Z as divisors of the model extents.
	ModeDivide Mode = "divide"
)

// Format is an output file type.
type Format string

const (
	FormatVox Format = "vox"
	FormatOBJ Format = "obj"
	FormatGLB Format = "glb"
)

// Flag names shared by the CLI and Merge.
const (
	FlagInput       = "input"
	FlagOutputDir   = "out"
	FlagMode        = "mode"
	FlagX           = "x"
	FlagY           = "y"
	FlagZ           = "z"
	FlagFormat      = "format"
	FlagPack        = "pack"
	FlagCompression = "compression"
	FlagWorkers     = "workers"
	FlagPalette     = "color"
)

// Config describes one tiling run. For X, Y and Z a zero value leaves the
// axis unsplit. Palette overrides model palette entries by index with
// #rrggbb or #rrggbbaa colors.
type Config struct {
	Input       string   `json:"input"`
	OutputDir   string   `json:"output_dir"`
	Mode        Mode     `json:"mode"`
	X           uint32   `json:"x"`
	Y           uint32   `json:"y"`
	Z           uint32   `json:"z"`
	Formats     []Format `json:"formats"`
	Pack        string   `json:"pack"`
	Compression string   `json:"compression"`
	Workers     int      `json:"workers"`

	Palette map[uint8]string `json:"palette,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		OutputDir:   "output_chunks",
		Mode:        ModeNone,
		Formats:     []Format{FormatVox},
		Compression: vox.PackCompZstd.String(),
		Workers:     runtime.NumCPU(),
	}
}

// Load reads a JSON config file. Fields missing from the file keep their zero values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return &cfg, nil
}

// Merge copies the values set in fromFile into cfg, except for fields whose
// flag was given explicitly on the command line.
func Merge(cfg, fromFile *Config, explicitFlags map[string]bool) {
	set := func(flag string, nonZero bool) bool { return nonZero && !explicitFlags[flag] }
	if set(FlagInput, fromFile.Input != "") {
		cfg.Input = fromFile.Input
	}
	if set(FlagOutputDir, fromFile.OutputDir != "") {
		cfg.OutputDir = fromFile.OutputDir
	}
	if set(FlagMode, fromFile.Mode != "") {
		cfg.Mode = fromFile.Mode
	}
	if set(FlagX, fromFile.X != 0) {
		cfg.X = fromFile.X
	}
	if set(FlagY, fromFile.Y != 0) {
		cfg.Y = fromFile.Y
	}
	if set(FlagZ, fromFile.Z != 0) {
		cfg.Z = fromFile.Z
	}
	if set(FlagFormat, len(fromFile.Formats) > 0) {
		cfg.Formats = fromFile.Formats
	}
	if set(FlagPack, fromFile.Pack != "") {
		cfg.Pack = fromFile.Pack
	}
	if set(FlagCompression, fromFile.Compression != "") {
		cfg.Compression = fromFile.Compression
	}
	if set(FlagWorkers, fromFile.Workers > 0) {
		cfg.Workers = fromFile.Workers
	}
	if set(FlagPalette, len(fromFile.Palette) > 0) {
		cfg.Palette = fromFile.Palette
	}
}

// ParsePalette parses palette overrides written as index=#rrggbb[aa].
func ParsePalette(entries []string) (map[uint8]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[uint8]string, len(entries))
	for _, e := range entries {
		idx, hex, ok := strings.Cut(e, "=")
		if !ok {
			return nil, errors.Errorf("palette entry %q is not index=#color", e)
		}
		i, err := strconv.ParseUint(strings.TrimSpace(idx), 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "palette entry %q", e)
		}
		hex = strings.TrimSpace(hex)
		if _, err := vox.ParseHexColor(hex); err != nil {
			return nil, errors.Wrapf(err, "palette entry %q", e)
		}
		out[uint8(i)] = hex
	}
	return out, nil
}

// ApplyPalette overwrites the entries of pal listed in Palette.
func (c *Config) ApplyPalette(pal *vox.Palette) error {
	for idx, hex := range c.Palette {
		col, err := vox.ParseHexColor(hex)
		if err != nil {
			return errors.Wrapf(err, "config: palette entry %d", idx)
		}
		pal[idx] = col
	}
	return nil
}

// ParseFormats parses a comma separated list of formats. "both" means vox
// and obj, "all" every format.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		switch f := Format(strings.ToLower(strings.TrimSpace(part))); f {
		case "":
		case "both":
			out = append(out, FormatVox, FormatOBJ)
		case "all":
			out = append(out, FormatVox, FormatOBJ, FormatGLB)
		case FormatVox, FormatOBJ, FormatGLB:
			out = append(out, f)
		default:
			return nil, errors.Errorf("unknown output format %q", part)
		}
	}
	return lo.Uniq(out), nil
}

// Validate checks the fields that do not depend on the input model.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("config: input is required")
	}
	if c.OutputDir == "" {
		return errors.New("config: output directory is required")
	}
	switch c.Mode {
	case ModeNone, ModeSize, ModeDivide:
	default:
		return errors.Errorf("config: unknown mode %q", c.Mode)
	}
	if len(c.Formats) == 0 && c.Pack == "" {
		return errors.New("config: no output format selected")
	}
	for _, f := range c.Formats {
		if f != FormatVox && f != FormatOBJ && f != FormatGLB {
			return errors.Errorf("config: unknown output format %q", f)
		}
	}
	if c.Pack != "" {
		if _, err := vox.ParsePackCompression(c.Compression); err != nil {
			return errors.Wrap(err, "config")
		}
	}
	for idx, hex := range c.Palette {
		if _, err := vox.ParseHexColor(hex); err != nil {
			return errors.Wrapf(err, "config: palette entry %d", idx)
		}
	}
	if c.Workers < 0 {
		return errors.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Split returns the partitioner settings for a model of the given size.
func (c *Config) Split(size vox.Size) (vox.Split, error) {
	switch c.Mode {
	case ModeSize:
		return vox.Split{X: c.X, Y: c.Y, Z: c.Z}, nil
	case ModeDivide:
		return vox.SplitByDivisor(size, [3]uint32{c.X, c.Y, c.Z})
	default:
		return vox.Split{}, nil
	}
}

// Wants reports whether f is one of the selected formats.
func (c *Config) Wants(f Format) bool { return lo.Contains(c.Formats, f) }
