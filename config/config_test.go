package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/voxelsplace/voxtiler/vox"
)

func TestParseFormats(t *testing.T) {
	fs, err := ParseFormats("both")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fs, test.ShouldResemble, []Format{FormatVox, FormatOBJ})

	fs, err = ParseFormats("obj, GLB,obj")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fs, test.ShouldResemble, []Format{FormatOBJ, FormatGLB})

	fs, err = ParseFormats("all")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(fs), test.ShouldEqual, 3)

	_, err = ParseFormats("vox,stl")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
	cfg.Input = "in.vox"
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	bad := *cfg
	bad.Mode = "cubes"
	test.That(t, bad.Validate(), test.ShouldNotBeNil)

	bad = *cfg
	bad.Formats = nil
	test.That(t, bad.Validate(), test.ShouldNotBeNil)
	bad.Pack = "all.voxpack"
	test.That(t, bad.Validate(), test.ShouldBeNil)
	bad.Compression = "lz4"
	test.That(t, bad.Validate(), test.ShouldNotBeNil)

	bad = *cfg
	bad.Formats = []Format{"ply"}
	test.That(t, bad.Validate(), test.ShouldNotBeNil)
}

func TestSplit(t *testing.T) {
	size := vox.Size{X: 64, Y: 30, Z: 10}
	cfg := Default()

	s, err := cfg.Split(size)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Enabled(), test.ShouldBeFalse)

	cfg.Mode, cfg.X, cfg.Z = ModeSize, 16, 4
	s, err = cfg.Split(size)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldResemble, vox.Split{X: 16, Z: 4})

	cfg.Mode, cfg.X, cfg.Y, cfg.Z = ModeDivide, 4, 3, 0
	s, err = cfg.Split(size)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldResemble, vox.Split{X: 16, Y: 10})

	cfg.Z = 20
	_, err = cfg.Split(size)
	test.That(t, errors.Is(err, vox.ErrInvalidSize), test.ShouldBeTrue)
}

func TestLoadAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.json")
	test.That(t, os.WriteFile(path, []byte(`{
		"input": "castle.vox",
		"output_dir": "tiles",
		"mode": "size",
		"x": 32,
		"formats": ["obj", "glb"],
		"workers": 2,
		"palette": {"1": "#ff8000", "7": "#00000080"}
	}`), 0o644), test.ShouldBeNil)

	fromFile, err := Load(path)
	test.That(t, err, test.ShouldBeNil)

	cfg := Default()
	cfg.OutputDir = "from-flag"
	Merge(cfg, fromFile, map[string]bool{FlagOutputDir: true})

	test.That(t, cfg.Input, test.ShouldEqual, "castle.vox")
	test.That(t, cfg.OutputDir, test.ShouldEqual, "from-flag")
	test.That(t, cfg.Mode, test.ShouldEqual, ModeSize)
	test.That(t, cfg.X, test.ShouldEqual, uint32(32))
	test.That(t, cfg.Y, test.ShouldEqual, uint32(0))
	test.That(t, cfg.Wants(FormatGLB), test.ShouldBeTrue)
	test.That(t, cfg.Wants(FormatVox), test.ShouldBeFalse)
	test.That(t, cfg.Workers, test.ShouldEqual, 2)
	test.That(t, cfg.Compression, test.ShouldEqual, "zstd")
	test.That(t, cfg.Palette, test.ShouldResemble, map[uint8]string{1: "#ff8000", 7: "#00000080"})

	_, err = Load(path + ".missing")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, os.WriteFile(path, []byte("{"), 0o644), test.ShouldBeNil)
	_, err = Load(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPalette(t *testing.T) {
	overrides, err := ParsePalette([]string{"1=#ff0000", " 255 = #00ff0080"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, overrides, test.ShouldResemble, map[uint8]string{1: "#ff0000", 255: "#00ff0080"})

	none, err := ParsePalette(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, none, test.ShouldBeNil)

	for _, bad := range []string{"1", "256=#ff0000", "x=#ff0000", "3=ff0000", "3=#ff00"} {
		_, err := ParsePalette([]string{bad})
		test.That(t, err, test.ShouldNotBeNil)
	}

	cfg := Default()
	cfg.Input = "in.vox"
	cfg.Palette = overrides
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	pal := vox.DefaultPalette()
	test.That(t, cfg.ApplyPalette(&pal), test.ShouldBeNil)
	test.That(t, pal[1], test.ShouldResemble, vox.RGBA{R: 255, A: 255})
	test.That(t, pal[255], test.ShouldResemble, vox.RGBA{G: 255, A: 128})
	test.That(t, pal[2], test.ShouldResemble, vox.RGBA{R: 255, G: 255, B: 255, A: 255})

	cfg.Palette = map[uint8]string{4: "red"}
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
	test.That(t, cfg.ApplyPalette(&pal), test.ShouldNotBeNil)
}
