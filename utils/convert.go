package utils

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/voxelsplace/voxtiler/mesh"
	"github.com/voxelsplace/voxtiler/vox"
)

// RunVox2OBJ meshes a whole model into outPath and writes the materials to
// the .mtl file next to it.
func RunVox2OBJ(inPath, outPath string, log *zap.SugaredLogger) error {
	g, err := loadGrid(inPath, log)
	if err != nil {
		return err
	}
	quads := mesh.Build(g)
	mtlPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".mtl"
	if err := writeOBJ(outPath, mtlPath, quads, &g.Palette); err != nil {
		return err
	}
	log.Infow("obj written",
		"path", outPath,
		"mtl", mtlPath,
		"quads", len(quads),
		"materials", len(mesh.Materials(quads, &g.Palette)),
	)
	return nil
}

// RunVox2GLB meshes a whole model into a binary glTF file.
func RunVox2GLB(inPath, outPath string, log *zap.SugaredLogger) error {
	g, err := loadGrid(inPath, log)
	if err != nil {
		return err
	}
	quads := mesh.Build(g)
	if err := writeGLB(outPath, quads, &g.Palette); err != nil {
		return err
	}
	log.Infow("glb written", "path", outPath, "quads", len(quads))
	return nil
}

// RunInfo prints a summary of a .vox file: header fields, record count and
// the palette entries in use. The first failed write is returned.
func RunInfo(inPath string, w io.Writer) error {
	m, err := vox.ReadFile(inPath)
	if err != nil {
		return err
	}
	palette := "file"
	if !m.HasPalette {
		palette = "default"
	}
	counts := lo.CountValuesBy(m.Voxels, func(v vox.Voxel) uint8 { return v.Color })
	colors := lo.Keys(counts)
	slices.Sort(colors)

	lines := []string{
		fmt.Sprintf("file:      %s", inPath),
		fmt.Sprintf("version:   %d", m.Version),
		fmt.Sprintf("size:      %s", m.Size),
		fmt.Sprintf("voxels:    %d", len(m.Voxels)),
		fmt.Sprintf("palette:   %s", palette),
		fmt.Sprintf("truncated: %t", m.Truncated),
		fmt.Sprintf("colors:    %d", len(colors)),
	}
	for _, c := range colors {
		lines = append(lines, fmt.Sprintf("  %3d %s %d", c, m.Palette[c].Hex(), counts[c]))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, "writing info")
		}
	}
	return nil
}
