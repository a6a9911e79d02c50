package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/voxelsplace/voxtiler/vox"
)

// noiseColors is the number of palette entries noise voxels are drawn from.
const noiseColors = 63

// NoiseOptions controls RunGenerateNoise.
type NoiseOptions struct {
	// Each file gets a fill percentage drawn uniformly from [MinPercent, MaxPercent].
	MinPercent, MaxPercent float64
	// Size is the cube edge, 1..256.
	Size   int
	Amount int
	// Seed 0 means seed from the clock.
	Seed int64
}

// noisePalette spreads the noise colors around the hue circle.
func noisePalette() vox.Palette {
	pal := vox.DefaultPalette()
	for i := 1; i <= noiseColors; i++ {
		r, g, b := colorful.Hsv(float64(i-1)*360/noiseColors, 0.65, 0.9).RGB255()
		pal[i] = vox.RGBA{R: r, G: g, B: b, A: 255}
	}
	return pal
}

// generateNoiseGrid fills percentage of an n³ grid with random colors in
// [1..noiseColors].
func generateNoiseGrid(n int, percentage float64, r *rand.Rand) *vox.Grid {
	percentage = min(max(percentage, 0), 100)
	total := n * n * n
	want := min(int(float64(total)*(percentage/100.0)+0.5), total)

	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates: only the first want slots are needed
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	size := uint32(n)
	g := vox.NewGrid(vox.Size{X: size, Y: size, Z: size}, noisePalette())
	for _, i := range idx[:want] {
		p := vox.Pos{X: uint8(i / (n * n)), Y: uint8(i / n % n), Z: uint8(i % n)}
		g.Set(p, uint8(1+r.Intn(noiseColors)))
	}
	return g
}

// RunGenerateNoise writes opts.Amount random models named 0.vox, 1.vox, ...
// into outDir.
func RunGenerateNoise(opts NoiseOptions, outDir string, log *zap.SugaredLogger) error {
	if opts.Size < 1 || opts.Size > 256 {
		return errors.Errorf("noise size must be in 1..256, got %d", opts.Size)
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	minP, maxP := max(opts.MinPercent, 0), min(opts.MaxPercent, 100)
	if maxP < minP {
		minP, maxP = maxP, minP
	}

	baseSeed := uint64(opts.Seed)
	if baseSeed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}
	for i := 0; i < opts.Amount; i++ {
		// per-file seeds on a Weyl sequence
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := minP
		if maxP > minP {
			perc = minP + r.Float64()*(maxP-minP)
		}
		g := generateNoiseGrid(opts.Size, perc, r)
		path := filepath.Join(outDir, fmt.Sprintf("%d.vox", i))
		if err := vox.WriteFile(path, g.Model()); err != nil {
			return errors.Wrapf(err, "saving %s", path)
		}
		log.Debugw("noise model written", "path", path, "fill", perc, "voxels", g.Len())
	}
	log.Infow("noise generated", "amount", opts.Amount, "size", opts.Size, "out", outDir)
	return nil
}
