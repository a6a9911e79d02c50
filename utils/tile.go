package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxtiler/config"
	"github.com/voxelsplace/voxtiler/mesh"
	"github.com/voxelsplace/voxtiler/vox"
)

const axisNames = "xyz"

// ChunkName returns the file stem of chunk k. Without a split the stem is
// base; otherwise it is "chunk" followed by "_<axis><origin>" for every
// split axis, e.g. chunk_x16_z32.
func ChunkName(base string, k vox.ChunkKey, s vox.Split) string {
	if !s.Enabled() {
		return base
	}
	origin := k.Origin(s)
	var b strings.Builder
	b.WriteString("chunk")
	for i, ext := range [3]uint32{s.X, s.Y, s.Z} {
		if ext != 0 {
			fmt.Fprintf(&b, "_%c%d", axisNames[i], origin[i])
		}
	}
	return b.String()
}

// ParseChunkName recovers the origin encoded by ChunkName. The extension, if
// any, is ignored. It reports false for names ChunkName does not produce.
func ParseChunkName(name string) ([3]uint32, bool) {
	var origin [3]uint32
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(stem, "_")
	if parts[0] != "chunk" || len(parts) < 2 || len(parts) > 4 {
		return origin, false
	}
	last := -1
	for _, p := range parts[1:] {
		if len(p) < 2 {
			return origin, false
		}
		axis := strings.IndexByte(axisNames, p[0])
		if axis <= last {
			return origin, false
		}
		v, err := strconv.ParseUint(p[1:], 10, 32)
		if err != nil {
			return origin, false
		}
		origin[axis] = uint32(v)
		last = axis
	}
	return origin, true
}

// RunTile splits the input model per cfg and writes every chunk in the
// selected formats, optionally bundling the encoded chunks into a pack.
func RunTile(cfg *config.Config, log *zap.SugaredLogger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	start := time.Now()
	g, err := loadGrid(cfg.Input, log)
	if err != nil {
		return err
	}
	if err := cfg.ApplyPalette(&g.Palette); err != nil {
		return err
	}
	if len(cfg.Palette) > 0 {
		log.Infow("palette overrides applied", "entries", len(cfg.Palette))
	}
	split, err := cfg.Split(g.Size)
	if err != nil {
		return err
	}
	chunks := vox.Partition(g, split)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}
	log.Infow("tiling",
		"input", cfg.Input,
		"size", g.Size,
		"voxels", g.Len(),
		"split", fmt.Sprintf("%dx%dx%d", split.X, split.Y, split.Z),
		"chunks", len(chunks),
		"formats", cfg.Formats,
	)

	base := strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
	keys := chunks.Keys()
	payloads := make([][]byte, len(keys))
	var eg errgroup.Group
	if cfg.Workers > 0 {
		eg.SetLimit(cfg.Workers)
	}
	for i, k := range keys {
		i, k := i, k
		eg.Go(func() error {
			chunk := chunks[k]
			stem := filepath.Join(cfg.OutputDir, ChunkName(base, k, split))
			data, err := writeChunk(cfg, stem, chunk)
			if err != nil {
				return err
			}
			payloads[i] = data
			log.Debugw("chunk written", "chunk", filepath.Base(stem), "size", chunk.Size, "voxels", chunk.Len())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if cfg.Pack != "" {
		comp, err := vox.ParsePackCompression(cfg.Compression)
		if err != nil {
			return err
		}
		pack := &vox.Pack{Entries: make([]vox.PackEntry, len(keys))}
		for i, k := range keys {
			pack.Entries[i] = vox.PackEntry{
				Name:   ChunkName(base, k, split) + ".vox",
				Origin: k.Origin(split),
				Data:   payloads[i],
			}
		}
		if err := savePack(pack, cfg.Pack, comp, log); err != nil {
			return err
		}
	}
	log.Infow("tiling done", "chunks", len(keys), "out", cfg.OutputDir, "elapsed", time.Since(start))
	return nil
}

// writeChunk writes one chunk in every selected format. It returns the
// encoded .vox bytes when they are needed for a pack.
func writeChunk(cfg *config.Config, stem string, g *vox.Grid) ([]byte, error) {
	var data []byte
	if cfg.Wants(config.FormatVox) || cfg.Pack != "" {
		var err error
		if data, err = g.Model().MarshalBinary(); err != nil {
			return nil, err
		}
	}
	if cfg.Wants(config.FormatVox) {
		if err := writeBytes(stem+".vox", data); err != nil {
			return nil, err
		}
	}
	if !cfg.Wants(config.FormatOBJ) && !cfg.Wants(config.FormatGLB) {
		return data, nil
	}
	quads := mesh.Build(g)
	if cfg.Wants(config.FormatOBJ) {
		if err := writeOBJ(stem+".obj", stem+".mtl", quads, &g.Palette); err != nil {
			return nil, err
		}
	}
	if cfg.Wants(config.FormatGLB) {
		if err := writeGLB(stem+".glb", quads, &g.Palette); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// savePack encodes p and writes it to path.
func savePack(p *vox.Pack, path string, comp vox.PackCompression, log *zap.SugaredLogger) error {
	start := time.Now()
	data, err := p.Marshal(comp)
	if err != nil {
		return err
	}
	if err := writeBytes(path, data); err != nil {
		return err
	}
	var raw int
	for _, e := range p.Entries {
		raw += len(e.Data)
	}
	log.Infow("pack written",
		"path", path,
		"entries", len(p.Entries),
		"compression", comp.String(),
		"raw", units.HumanSize(float64(raw)),
		"size", units.HumanSize(float64(len(data))),
		"elapsed", time.Since(start),
	)
	return nil
}
