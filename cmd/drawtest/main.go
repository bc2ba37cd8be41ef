// Command drawtest renders the generated draw cases on the software
// reference and on a GPU backend and reports where the two disagree.
//
// Usage:
//
//	drawtest [flags]            run the cases
//	drawtest list [flags]       print case names
//	drawtest dumpconfig [flags] print the effective configuration as TOML
//
// A TOML file given with --config supplies defaults; flags override it.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/drawtest"
	"github.com/gogpu/drawtest/gl"
	"github.com/gogpu/drawtest/hardware"
	"github.com/gogpu/drawtest/reference"
	"github.com/gogpu/gputypes"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

const (
	backendReference = "reference"
	backendVulkan    = "vulkan"
)

var (
	configFlag = &cli.PathFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	seedFlag = &cli.Uint64Flag{
		Name:  "seed",
		Usage: "base seed of generated data",
		Value: drawtest.DefaultSeed,
	}
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "backend under test (reference, vulkan)",
		Value: backendVulkan,
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "surface width in pixels",
		Value: 256,
	}
	heightFlag = &cli.IntFlag{
		Name:  "height",
		Usage: "surface height in pixels",
		Value: 256,
	}
	toleranceFlag = &cli.UintFlag{
		Name:  "tolerance",
		Usage: "per-channel difference allowed, in 8-bit steps",
	}
	maxErrorPixelsFlag = &cli.IntFlag{
		Name:  "max-error-pixels",
		Usage: "pixels allowed to exceed the tolerance",
	}
	runFlag = &cli.StringFlag{
		Name:  "run",
		Usage: "run only cases whose name matches this regular expression",
	}
	diffDirFlag = &cli.PathFlag{
		Name:  "diffdir",
		Usage: "write comparison sheets of failing cases to this directory",
	}
	diffScaleFlag = &cli.IntFlag{
		Name:  "diffscale",
		Usage: "magnification of comparison sheets",
		Value: 4,
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log every case and debug details",
	}

	appFlags = []cli.Flag{
		configFlag,
		seedFlag,
		backendFlag,
		widthFlag,
		heightFlag,
		toleranceFlag,
		maxErrorPixelsFlag,
		runFlag,
		diffDirFlag,
		diffScaleFlag,
		verboseFlag,
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:   "drawtest",
		Usage:  "verify GPU draw calls against a software reference",
		Flags:  appFlags,
		Action: runCases,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print the names of the generated cases",
				Flags:  appFlags,
				Action: listCases,
			},
			{
				Name:   "dumpconfig",
				Usage:  "print the effective configuration as TOML",
				Flags:  appFlags,
				Action: dumpConfig,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cfg config) {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	drawtest.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// backendByName returns the HAL variant of a backend name. The reference
// backend has none and returns the zero variant.
func backendByName(name string) (variant gputypes.Backend, err error) {
	switch name {
	case backendVulkan:
		variant = gputypes.BackendVulkan
	case backendReference:
	default:
		err = fmt.Errorf("unknown backend %q", name)
	}
	return variant, err
}

// openResult opens the context under test.
func openResult(cfg config) (gl.Context, error) {
	if cfg.Backend == backendReference {
		return reference.New(cfg.Width, cfg.Height), nil
	}
	variant, err := backendByName(cfg.Backend)
	if err != nil {
		return nil, err
	}
	c, err := hardware.Open(variant, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// selectCases returns the generated cases and the filter of cfg.Run.
func selectCases(cfg config) (*drawtest.Registry, func(string) bool, error) {
	reg := drawtest.NewRegistry()
	if err := drawtest.GenerateCases(reg); err != nil {
		return nil, nil, err
	}
	if cfg.Run == "" {
		return reg, nil, nil
	}
	re, err := regexp.Compile(cfg.Run)
	if err != nil {
		return nil, nil, fmt.Errorf("bad --run pattern: %w", err)
	}
	return reg, re.MatchString, nil
}

func runCases(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	reg, match, err := selectCases(cfg)
	if err != nil {
		return err
	}
	res, err := openResult(cfg)
	if err != nil {
		return err
	}
	defer res.Release()
	ref := reference.New(cfg.Width, cfg.Height)
	defer ref.Release()

	v := drawtest.NewVerifier(cfg.options()...)
	s := reg.Run(v, ref, res, match)

	w := ctx.App.Writer
	for _, r := range reg.Results() {
		if r.Verdict == drawtest.VerdictFail || r.Verdict == drawtest.VerdictError {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Verdict, r.Name, r.Message)
		}
	}
	printSummary(w, s)
	if !s.OK() {
		return cli.Exit("", 1)
	}
	return nil
}

func printSummary(w io.Writer, s drawtest.Summary) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%d cases: %d passed, %d failed, %d not supported, %d errors\n",
		s.Total, s.Passed, s.Failed, s.NotSupported, s.Errors)
}

func listCases(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	reg, match, err := selectCases(cfg)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	n := 0
	for _, c := range reg.Cases() {
		if match != nil && !match(c.Name) {
			continue
		}
		n++
		if cfg.Verbose {
			fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Desc)
		} else {
			fmt.Fprintln(w, c.Name)
		}
	}
	message.NewPrinter(language.English).Fprintf(ctx.App.ErrWriter, "%d cases\n", n)
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return writeConfig(ctx.App.Writer, cfg)
}
