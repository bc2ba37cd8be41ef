package main

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/gogpu/drawtest"
)

// config is the run configuration. It is read from an optional TOML file
// and then overridden by any flag set on the command line.
type config struct {
	Seed           uint64 `toml:"seed"`
	Backend        string `toml:"backend"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	Tolerance      uint8  `toml:"tolerance"`
	MaxErrorPixels int    `toml:"max_error_pixels"`
	Run            string `toml:"run"`
	DiffDir        string `toml:"diff_dir"`
	DiffScale      int    `toml:"diff_scale"`
	Verbose        bool   `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Seed:      drawtest.DefaultSeed,
		Backend:   backendVulkan,
		Width:     256,
		Height:    256,
		DiffScale: 4,
	}
}

// loadConfig builds the configuration for a command invocation.
func loadConfig(ctx *cli.Context) (config, error) {
	cfg := defaultConfig()
	if path := ctx.Path(configFlag.Name); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if ctx.IsSet(seedFlag.Name) {
		cfg.Seed = ctx.Uint64(seedFlag.Name)
	}
	if ctx.IsSet(backendFlag.Name) {
		cfg.Backend = ctx.String(backendFlag.Name)
	}
	if ctx.IsSet(widthFlag.Name) {
		cfg.Width = ctx.Int(widthFlag.Name)
	}
	if ctx.IsSet(heightFlag.Name) {
		cfg.Height = ctx.Int(heightFlag.Name)
	}
	if ctx.IsSet(toleranceFlag.Name) {
		v := ctx.Uint(toleranceFlag.Name)
		if v > 255 {
			return cfg, fmt.Errorf("tolerance %d exceeds 255", v)
		}
		cfg.Tolerance = uint8(v)
	}
	if ctx.IsSet(maxErrorPixelsFlag.Name) {
		cfg.MaxErrorPixels = ctx.Int(maxErrorPixelsFlag.Name)
	}
	if ctx.IsSet(runFlag.Name) {
		cfg.Run = ctx.String(runFlag.Name)
	}
	if ctx.IsSet(diffDirFlag.Name) {
		cfg.DiffDir = ctx.Path(diffDirFlag.Name)
	}
	if ctx.IsSet(diffScaleFlag.Name) {
		cfg.DiffScale = ctx.Int(diffScaleFlag.Name)
	}
	if ctx.IsSet(verboseFlag.Name) {
		cfg.Verbose = ctx.Bool(verboseFlag.Name)
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("surface size %dx%d must be positive", c.Width, c.Height)
	}
	if c.MaxErrorPixels < 0 {
		return fmt.Errorf("max error pixels %d is negative", c.MaxErrorPixels)
	}
	if c.DiffScale < 1 {
		return fmt.Errorf("diff scale %d must be at least 1", c.DiffScale)
	}
	if _, err := backendByName(c.Backend); err != nil {
		return err
	}
	return nil
}

// options converts the configuration to verifier options.
func (c config) options() []drawtest.Option {
	opts := []drawtest.Option{
		drawtest.WithSeed(c.Seed),
		drawtest.WithTolerance(c.Tolerance),
		drawtest.WithMaxErrorPixels(c.MaxErrorPixels),
		drawtest.WithDiffScale(c.DiffScale),
	}
	if c.DiffDir != "" {
		opts = append(opts, drawtest.WithDiffDir(c.DiffDir))
	}
	return opts
}

func writeConfig(w io.Writer, c config) error {
	return toml.NewEncoder(w).Encode(c)
}
