// Command voxtiler splits MagicaVoxel models into chunks and converts them
// to .vox, OBJ/MTL and GLB files.
package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voxelsplace/voxtiler/config"
	"github.com/voxelsplace/voxtiler/utils"
	"github.com/voxelsplace/voxtiler/vox"
)

const (
	flagConfig  = "config"
	flagDebug   = "debug"
	flagPercent = "percent"
	flagMaxPct  = "max-percent"
	flagSize    = "size"
	flagAmount  = "amount"
	flagSeed    = "seed"
)

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// withLogger builds the logger from the global --debug flag and hands it to fn.
func withLogger(fn func(c *cli.Context, log *zap.SugaredLogger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := newLogger(c.Bool(flagDebug))
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		return fn(c, log)
	}
}

// args returns the positional arguments, checking their count.
func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, errors.Errorf("%s expects %d arguments, got %d (usage: %s)", c.Command.Name, n, c.NArg(), c.Command.ArgsUsage)
	}
	return c.Args().Slice(), nil
}

func tileConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	cfg.Input = c.String(config.FlagInput)
	cfg.OutputDir = c.String(config.FlagOutputDir)
	cfg.Mode = config.Mode(strings.ToLower(c.String(config.FlagMode)))
	for _, axis := range []struct {
		name string
		dst  *uint32
	}{{config.FlagX, &cfg.X}, {config.FlagY, &cfg.Y}, {config.FlagZ, &cfg.Z}} {
		v := c.Uint(axis.name)
		if uint64(v) > math.MaxUint32 {
			return nil, errors.Errorf("--%s %d is out of range (max %d)", axis.name, v, uint64(math.MaxUint32))
		}
		*axis.dst = uint32(v)
	}
	cfg.Pack = c.String(config.FlagPack)
	cfg.Compression = c.String(config.FlagCompression)
	cfg.Workers = c.Int(config.FlagWorkers)
	formats, err := config.ParseFormats(c.String(config.FlagFormat))
	if err != nil {
		return nil, err
	}
	cfg.Formats = formats
	if cfg.Palette, err = config.ParsePalette(c.StringSlice(config.FlagPalette)); err != nil {
		return nil, err
	}

	if path := c.String(flagConfig); path != "" {
		fromFile, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		explicit := make(map[string]bool)
		for _, name := range []string{
			config.FlagInput, config.FlagOutputDir, config.FlagMode,
			config.FlagX, config.FlagY, config.FlagZ,
			config.FlagFormat, config.FlagPack, config.FlagCompression, config.FlagWorkers,
			config.FlagPalette,
		} {
			explicit[name] = c.IsSet(name)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	return cfg, nil
}

func tileAction(c *cli.Context, log *zap.SugaredLogger) error {
	cfg, err := tileConfig(c)
	if err != nil {
		return err
	}
	return utils.RunTile(cfg, log)
}

func newApp() *cli.App {
	defaults := config.Default()
	return &cli.App{
		Name:  "voxtiler",
		Usage: "split MagicaVoxel models into chunks and convert them",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:  "tile",
				Usage: "split a .vox model into chunks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagConfig, Usage: "JSON config file; explicit flags win"},
					&cli.StringFlag{Name: config.FlagInput, Aliases: []string{"i"}, Usage: "input .vox file"},
					&cli.StringFlag{Name: config.FlagOutputDir, Aliases: []string{"o"}, Value: defaults.OutputDir, Usage: "output directory"},
					&cli.StringFlag{Name: config.FlagMode, Value: string(defaults.Mode), Usage: "none, size (x/y/z are chunk extents) or divide (x/y/z are divisors)"},
					&cli.UintFlag{Name: config.FlagX, Usage: "x extent or divisor, 0 leaves the axis whole"},
					&cli.UintFlag{Name: config.FlagY, Usage: "y extent or divisor, 0 leaves the axis whole"},
					&cli.UintFlag{Name: config.FlagZ, Usage: "z extent or divisor, 0 leaves the axis whole"},
					&cli.StringFlag{Name: config.FlagFormat, Aliases: []string{"f"}, Value: string(config.FormatVox), Usage: "comma separated vox, obj, glb, or both (vox+obj) or all"},
					&cli.StringFlag{Name: config.FlagPack, Usage: "also bundle the encoded chunks into this .voxpack file"},
					&cli.StringFlag{Name: config.FlagCompression, Value: defaults.Compression, Usage: "pack compression: none, zlib or zstd"},
					&cli.IntFlag{Name: config.FlagWorkers, Value: defaults.Workers, Usage: "chunks written in parallel"},
					&cli.StringSliceFlag{Name: config.FlagPalette, Usage: "palette override index=#rrggbb[aa], repeatable"},
				},
				Action: withLogger(tileAction),
			},
			{
				Name:      "vox2obj",
				Usage:     "convert a whole .vox model to OBJ/MTL",
				ArgsUsage: "<input.vox> <output.obj>",
				Action: withLogger(func(c *cli.Context, log *zap.SugaredLogger) error {
					a, err := args(c, 2)
					if err != nil {
						return err
					}
					return utils.RunVox2OBJ(a[0], a[1], log)
				}),
			},
			{
				Name:      "vox2glb",
				Usage:     "convert a whole .vox model to binary glTF",
				ArgsUsage: "<input.vox> <output.glb>",
				Action: withLogger(func(c *cli.Context, log *zap.SugaredLogger) error {
					a, err := args(c, 2)
					if err != nil {
						return err
					}
					return utils.RunVox2GLB(a[0], a[1], log)
				}),
			},
			{
				Name:      "pack",
				Usage:     "bundle .vox files into a .voxpack",
				ArgsUsage: "<output.voxpack> <input.vox>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: config.FlagCompression, Value: defaults.Compression, Usage: "none, zlib or zstd"},
				},
				Action: withLogger(func(c *cli.Context, log *zap.SugaredLogger) error {
					if c.NArg() < 2 {
						return errors.Errorf("pack expects an output and at least one input (usage: %s)", c.Command.ArgsUsage)
					}
					comp, err := vox.ParsePackCompression(c.String(config.FlagCompression))
					if err != nil {
						return err
					}
					return utils.CreatePack(c.Args().Tail(), c.Args().First(), comp, log)
				}),
			},
			{
				Name:      "unpack",
				Usage:     "extract a .voxpack into a directory",
				ArgsUsage: "<input.voxpack> <output_dir>",
				Action: withLogger(func(c *cli.Context, log *zap.SugaredLogger) error {
					a, err := args(c, 2)
					if err != nil {
						return err
					}
					return utils.UnpackToDir(a[0], a[1], log)
				}),
			},
			{
				Name:      "voxpack2glb",
				Usage:     "mesh every chunk of a .voxpack into one GLB, one node per chunk",
				ArgsUsage: "<input.voxpack> <output.glb>",
				Action: withLogger(func(c *cli.Context, log *zap.SugaredLogger) error {
					a, err := args(c, 2)
					if err != nil {
						return err
					}
					return utils.RunVoxPack2GLB(a[0], a[1], log)
				}),
			},
			{
				Name:      "info",
				Usage:     "print the header, size and colors of a .vox file",
				ArgsUsage: "<input.vox>",
				Action: func(c *cli.Context) error {
					a, err := args(c, 1)
					if err != nil {
						return err
					}
					return utils.RunInfo(a[0], c.App.Writer)
				},
			},
			{
				Name:      "gennoise",
				Usage:     "generate random .vox cubes",
				ArgsUsage: "<output_dir>",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: flagPercent, Value: 50, Usage: "fill percentage, or the lower bound with --max-percent"},
					&cli.Float64Flag{Name: flagMaxPct, Usage: "upper bound of a per-file random fill percentage"},
					&cli.IntFlag{Name: flagSize, Value: 16, Usage: "cube edge, 1..256"},
					&cli.IntFlag{Name: flagAmount, Value: 1, Usage: "number of files"},
					&cli.Int64Flag{Name: flagSeed, Usage: "random seed, 0 seeds from the clock"},
				},
				Action: withLogger(func(c *cli.Context, log *zap.SugaredLogger) error {
					a, err := args(c, 1)
					if err != nil {
						return err
					}
					opts := utils.NoiseOptions{
						MinPercent: c.Float64(flagPercent),
						MaxPercent: c.Float64(flagPercent),
						Size:       c.Int(flagSize),
						Amount:     c.Int(flagAmount),
						Seed:       c.Int64(flagSeed),
					}
					if c.IsSet(flagMaxPct) {
						opts.MaxPercent = c.Float64(flagMaxPct)
					}
					return utils.RunGenerateNoise(opts, a[0], log)
				}),
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
