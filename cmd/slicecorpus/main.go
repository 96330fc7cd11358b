package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "slicecorpus",
		Usage:   "Build type-inference training corpora from object usage slices",
		Version: version,
		Description: `slicecorpus reads object usage slices produced by a code property graph
slicer, normalizes call and type names, and writes a deduplicated,
class-balanced corpus of index-aligned feature and label arrays.

Supports: TypeScript, Python`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"SLICECORPUS_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print stage timings",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			buildCmd(),
			initCmd(),
			normalizeCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
