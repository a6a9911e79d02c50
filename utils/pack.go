package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxtiler/mesh"
	"github.com/voxelsplace/voxtiler/vox"
)

// CreatePack reads .vox files and writes them into a single pack. Entries
// keep the input order; names produced by ChunkName also carry their origin.
func CreatePack(inputFiles []string, outputFile string, comp vox.PackCompression, log *zap.SugaredLogger) error {
	if len(inputFiles) == 0 {
		return errors.New("no .vox files provided")
	}
	entries := make([]vox.PackEntry, len(inputFiles))
	var eg errgroup.Group
	for i, path := range inputFiles {
		i, path := i, path
		eg.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m, err := vox.DecodeBytes(data)
			if err != nil {
				return errors.Wrap(err, path)
			}
			if m.Truncated {
				return errors.Errorf("%s: truncated .vox file", path)
			}
			name := filepath.Base(path)
			origin, _ := ParseChunkName(name)
			entries[i] = vox.PackEntry{Name: name, Origin: origin, Data: data}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return savePack(&vox.Pack{Entries: entries}, outputFile, comp, log)
}

func readPack(packFile string) (*vox.Pack, vox.PackCompression, error) {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return nil, 0, err
	}
	pack, comp, err := vox.UnmarshalPack(data)
	if err != nil {
		return nil, 0, errors.Wrap(err, packFile)
	}
	return pack, comp, nil
}

// entryFileNames returns the file name each entry is extracted to. Names are
// reduced to their base so they never leave the output directory, and must
// be unique.
func entryFileNames(entries []vox.PackEntry) ([]string, error) {
	names := make([]string, len(entries))
	seen := make(map[string]string, len(entries))
	for i, e := range entries {
		name := filepath.Base(e.Name)
		if name == "." || name == ".." || name == string(filepath.Separator) {
			return nil, errors.Errorf("invalid entry name %q", e.Name)
		}
		if prev, ok := seen[name]; ok {
			return nil, errors.Errorf("entries %q and %q both extract to %s", prev, e.Name, name)
		}
		seen[name] = e.Name
		names[i] = name
	}
	return names, nil
}

// UnpackToDir writes every entry of a pack into outputDir.
func UnpackToDir(packFile, outputDir string, log *zap.SugaredLogger) error {
	pack, comp, err := readPack(packFile)
	if err != nil {
		return err
	}
	names, err := entryFileNames(pack.Entries)
	if err != nil {
		return errors.Wrap(err, packFile)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var eg errgroup.Group
	for i, e := range pack.Entries {
		i, e := i, e
		eg.Go(func() error {
			return writeBytes(filepath.Join(outputDir, names[i]), e.Data)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	log.Infow("pack extracted", "path", packFile, "entries", len(pack.Entries), "compression", comp.String(), "out", outputDir)
	return nil
}

// RunVoxPack2GLB meshes every chunk of a pack into one binary glTF file with
// a node per chunk, placed at the chunk's origin.
func RunVoxPack2GLB(packFile, outPath string, log *zap.SugaredLogger) error {
	pack, _, err := readPack(packFile)
	if err != nil {
		return err
	}
	if len(pack.Entries) == 0 {
		return errors.Errorf("%s: pack has no entries", packFile)
	}
	doc := mesh.NewDocument()
	var quads int
	for i, e := range pack.Entries {
		m, err := vox.DecodeBytes(e.Data)
		if err != nil {
			return errors.Wrapf(err, "entry %d (%s)", i, e.Name)
		}
		if m.Truncated {
			log.Warnw("pack entry is truncated, keeping the voxels read so far", "entry", e.Name)
		}
		g, _ := vox.GridFromModel(m)
		q := mesh.Build(g)
		name := strings.TrimSuffix(filepath.Base(e.Name), filepath.Ext(e.Name))
		mesh.AddNode(doc, name, q, &g.Palette, mesh.OriginTranslation(e.Origin))
		quads += len(q)
	}
	if err := writeFile(outPath, func(w io.Writer) error {
		return mesh.WriteDocument(w, doc)
	}); err != nil {
		return err
	}
	log.Infow("glb written", "path", outPath, "entries", len(pack.Entries), "nodes", len(doc.Nodes), "quads", quads)
	return nil
}
