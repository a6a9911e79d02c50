package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"go.viam.com/test"

	"github.com/voxelsplace/voxtiler/vox"
)

func TestTileCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tower.vox")
	m := vox.NewModel(vox.Size{X: 4, Y: 4, Z: 8})
	m.Voxels = []vox.Voxel{{X: 0, Y: 0, Z: 0, Color: 1}, {X: 3, Y: 3, Z: 7, Color: 2}}
	test.That(t, vox.WriteFile(in, m), test.ShouldBeNil)

	cfgPath := filepath.Join(dir, "tile.json")
	test.That(t, os.WriteFile(cfgPath, []byte(`{
		"input": "`+filepath.ToSlash(in)+`",
		"output_dir": "`+filepath.ToSlash(filepath.Join(dir, "ignored"))+`",
		"mode": "divide",
		"z": 2,
		"formats": ["vox"]
	}`), 0o644), test.ShouldBeNil)

	out := filepath.Join(dir, "tiles")
	err := newApp().Run([]string{"voxtiler", "tile", "--config", cfgPath, "--out", out, "--format", "both"})
	test.That(t, err, test.ShouldBeNil)

	entries, err := os.ReadDir(out)
	test.That(t, err, test.ShouldBeNil)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	test.That(t, names, test.ShouldResemble, []string{
		"chunk_z0.mtl", "chunk_z0.obj", "chunk_z0.vox",
		"chunk_z4.mtl", "chunk_z4.obj", "chunk_z4.vox",
	})
}

func TestInfoCommand(t *testing.T) {
	in := filepath.Join(t.TempDir(), "one.vox")
	m := vox.NewModel(vox.Size{X: 1, Y: 1, Z: 1})
	m.Voxels = []vox.Voxel{{Color: 5}}
	test.That(t, vox.WriteFile(in, m), test.ShouldBeNil)

	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf
	test.That(t, app.Run([]string{"voxtiler", "info", in}), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "size:      1x1x1\n")

	test.That(t, app.Run([]string{"voxtiler", "info"}), test.ShouldNotBeNil)
}

func TestTileCommandRejectsOversizedExtent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tower.vox")
	m := vox.NewModel(vox.Size{X: 4, Y: 4, Z: 4})
	m.Voxels = []vox.Voxel{{Color: 1}}
	test.That(t, vox.WriteFile(in, m), test.ShouldBeNil)

	out := filepath.Join(dir, "tiles")
	err := newApp().Run([]string{"voxtiler", "tile", "--input", in, "--out", out, "--mode", "size", "--x", "4294967296"})
	test.That(t, err, test.ShouldNotBeNil)
	_, statErr := os.Stat(out)
	test.That(t, os.IsNotExist(statErr), test.ShouldBeTrue)
}

func TestTileCommandPaletteOverride(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tower.vox")
	m := vox.NewModel(vox.Size{X: 2, Y: 2, Z: 2})
	m.Voxels = []vox.Voxel{{Color: 3}}
	test.That(t, vox.WriteFile(in, m), test.ShouldBeNil)

	out := filepath.Join(dir, "tiles")
	err := newApp().Run([]string{"voxtiler", "tile", "--input", in, "--out", out, "--color", "3=#102030", "--color", "4=#ffffff00"})
	test.That(t, err, test.ShouldBeNil)

	got, err := vox.ReadFile(filepath.Join(out, "tower.vox"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Palette[3], test.ShouldResemble, vox.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255})
	test.That(t, got.Palette[4], test.ShouldResemble, vox.RGBA{R: 255, G: 255, B: 255})

	err = newApp().Run([]string{"voxtiler", "tile", "--input", in, "--out", out, "--color", "3=blue"})
	test.That(t, err, test.ShouldNotBeNil)
}
