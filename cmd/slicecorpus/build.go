package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/slicecorpus/internal/cache"
	"github.com/panbanda/slicecorpus/internal/corpus"
	"github.com/panbanda/slicecorpus/internal/output"
	"github.com/panbanda/slicecorpus/internal/progress"
	"github.com/panbanda/slicecorpus/pkg/config"
	"github.com/panbanda/slicecorpus/pkg/pipeline"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build a balanced corpus from a directory of slice files",
		ArgsUsage: "[slices-dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "slices",
				Aliases: []string{"s"},
				Usage:   "Directory scanned recursively for slice files",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory receiving features.json and labels.json",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Source language of the slices: typescript, python",
			},
			&cli.IntFlag{
				Name:  "lower-usage-bound",
				Usage: "Minimum calls plus argument uses per object",
			},
			&cli.IntFlag{
				Name:  "upper-usage-bound",
				Usage: "Maximum calls plus argument uses per sample; larger objects are split",
			},
			&cli.IntFlag{
				Name:  "class-threshold",
				Usage: "Minimum samples per label",
			},
			&cli.IntFlag{
				Name:  "max-samples",
				Usage: "Cap on the corpus size (0 = unbounded)",
			},
			&cli.IntFlag{
				Name:  "top-n",
				Usage: "Write the N most frequent labels to top_n.json",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel document readers (0 = 2x NumCPU)",
			},
			&cli.BoolFlag{
				Name:  "language-tag",
				Usage: "Prefix every feature with the source language",
			},
			&cli.BoolFlag{
				Name:  "receiver-prefix",
				Usage: "Qualify argument calls with their receiver",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the report to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Cache per-document extraction results",
			},
			&cli.BoolFlag{
				Name:  "clear-cache",
				Usage: "Clear the extraction cache before building",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide progress bars",
			},
		},
		Action: runBuild,
	}
}

// loadConfig reads --config when given, otherwise searches the default
// locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// applyFlags overrides config values with flags set on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.Args().Len() > 0 {
		cfg.Slices.Root = c.Args().First()
	}
	if c.IsSet("slices") {
		cfg.Slices.Root = c.String("slices")
	}
	if c.IsSet("output-dir") {
		cfg.Output.Dir = c.String("output-dir")
	}
	if c.IsSet("language") {
		cfg.Language = c.String("language")
	}
	if c.IsSet("lower-usage-bound") {
		cfg.Bounds.LowerUsage = c.Int("lower-usage-bound")
	}
	if c.IsSet("upper-usage-bound") {
		cfg.Bounds.UpperUsage = c.Int("upper-usage-bound")
	}
	if c.IsSet("class-threshold") {
		cfg.Bounds.ClassThreshold = c.Int("class-threshold")
	}
	if c.IsSet("max-samples") {
		cfg.Bounds.MaxSamples = c.Int("max-samples")
	}
	if c.IsSet("top-n") {
		cfg.Bounds.TopN = c.Int("top-n")
	}
	if c.IsSet("workers") {
		cfg.Slices.Workers = c.Int("workers")
	}
	if c.IsSet("language-tag") {
		cfg.Features.LanguageTag = c.Bool("language-tag")
	}
	if c.IsSet("receiver-prefix") {
		cfg.Features.ReceiverPrefix = c.Bool("receiver-prefix")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("cache") {
		cfg.Cache.Enabled = c.Bool("cache")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
}

func runBuild(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	extractCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if c.Bool("clear-cache") {
		if err := extractCache.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	opts := []pipeline.Option{pipeline.WithCache(extractCache)}
	if !c.Bool("no-progress") {
		opts = append(opts, pipeline.WithTracker(func(stage string, total int) pipeline.Tracker {
			return progress.NewTracker(stage, total)
		}))
	}

	res, err := pipeline.New(cfg, opts...).Run(c.Context)
	if err != nil {
		return err
	}

	written, err := corpus.Write(cfg.Output.Dir, corpus.Corpus{
		Samples:   res.Samples,
		TopLabels: res.TopLabels,
		Manifest: &corpus.Manifest{
			GeneratedAt: time.Now().UTC(),
			Config:      cfg,
			Import:      res.Stats,
			Summary:     res.Summary,
			TopLabels:   res.TopLabels,
		},
	})
	if err != nil {
		return err
	}
	committed, err := corpus.Load(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to read back corpus: %w", err)
	}
	if len(committed) != len(res.Samples) {
		return fmt.Errorf("corpus in %s holds %d samples, expected %d", cfg.Output.Dir, len(committed), len(res.Samples))
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("report"), cfg.Output.Color)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer formatter.Close()

	if err := formatter.Output(buildReport(res, written, c.Bool("verbose"))); err != nil {
		return err
	}

	if len(res.Samples) == 0 {
		color.New(color.FgYellow).Fprintf(os.Stderr, "No samples met class threshold %d\n", cfg.Bounds.ClassThreshold)
		return nil
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "Wrote %d samples to %s\n", len(res.Samples), cfg.Output.Dir)
	return nil
}
