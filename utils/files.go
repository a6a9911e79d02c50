package utils

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/voxelsplace/voxtiler/mesh"
	"github.com/voxelsplace/voxtiler/vox"
)

// writeFile creates path and streams fn's output into it.
func writeFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return bw.Flush()
}

func writeBytes(path string, data []byte) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// loadGrid reads a .vox file and turns it into a grid. A truncated file or a
// missing palette is logged, not fatal. A missing or zero size is.
func loadGrid(path string, log *zap.SugaredLogger) (*vox.Grid, error) {
	m, err := vox.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if m.Truncated {
		log.Warnw("input is truncated, keeping the voxels read so far", "path", path, "voxels", len(m.Voxels))
	}
	if !m.HasPalette {
		log.Infow("no palette in input, using the default palette", "path", path)
	}
	if err := m.Size.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	g, dropped := vox.GridFromModel(m)
	if dropped > 0 {
		log.Warnw("ignoring voxels outside the model size", "path", path, "size", m.Size, "dropped", dropped)
	}
	return g, nil
}

// writeOBJ writes the OBJ file and its MTL companion.
func writeOBJ(objPath, mtlPath string, quads []mesh.Quad, pal *vox.Palette) error {
	mtlName := filepath.Base(mtlPath)
	if err := writeFile(objPath, func(w io.Writer) error {
		return mesh.WriteOBJ(w, mtlName, quads)
	}); err != nil {
		return err
	}
	return writeFile(mtlPath, func(w io.Writer) error {
		return mesh.WriteMTL(w, quads, pal)
	})
}

func writeGLB(path string, quads []mesh.Quad, pal *vox.Palette) error {
	return writeFile(path, func(w io.Writer) error {
		return mesh.WriteGLB(w, quads, pal)
	})
}
