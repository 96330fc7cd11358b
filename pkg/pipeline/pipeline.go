// Package pipeline runs the corpus build: discovery, import, vectorization
// and balancing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/panbanda/slicecorpus/internal/cache"
	"github.com/panbanda/slicecorpus/internal/scanner"
	"github.com/panbanda/slicecorpus/pkg/balance"
	"github.com/panbanda/slicecorpus/pkg/config"
	"github.com/panbanda/slicecorpus/pkg/importer"
	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/vectorize"
)

// Stage labels, also used as progress bar descriptions.
const (
	StageImport    = "Importing slices..."
	StageVectorize = "Vectorizing records..."
)

// Tracker receives per-item progress for one stage.
type Tracker interface {
	Tick()
	FinishSuccess()
	FinishError(err error)
}

// TrackerFunc starts a tracker for a stage with a known total.
type TrackerFunc func(stage string, total int) Tracker

// Timings records wall time per stage.
type Timings struct {
	Scan      time.Duration `json:"scan" yaml:"scan"`
	Import    time.Duration `json:"import" yaml:"import"`
	Vectorize time.Duration `json:"vectorize" yaml:"vectorize"`
	Balance   time.Duration `json:"balance" yaml:"balance"`
}

// Result is the outcome of a run.
type Result struct {
	Files      []string
	Stats      models.ImportStats
	Vectorized int
	Deduped    int
	Samples    []models.Sample
	// Counts is the label histogram of the deduplicated samples.
	Counts    balance.Histogram
	Summary   models.Summary
	TopLabels []models.LabelCount
	Timings   Timings
}

// Runner executes the pipeline for one configuration.
type Runner struct {
	config  *config.Config
	cache   *cache.Cache
	tracker TrackerFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache sets the extraction cache.
func WithCache(c *cache.Cache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithTracker sets the progress tracker factory.
func WithTracker(fn TrackerFunc) Option {
	return func(r *Runner) {
		r.tracker = fn
	}
}

// New creates a runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) track(stage string, total int) Tracker {
	if r.tracker == nil {
		return nopTracker{}
	}
	return r.tracker(stage, total)
}

// Run executes every stage. It fails on the first unreadable or malformed
// document; nothing is produced in that case.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	res := &Result{}

	start := time.Now()
	files, err := scanner.NewScanner(cfg.Slices.Pattern).ScanDir(cfg.Slices.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", cfg.Slices.Root, err)
	}
	res.Files = files
	res.Timings.Scan = time.Since(start)

	dialect := cfg.Dialect()
	imp, err := importer.New(importer.Options{
		LowerUsage: cfg.Bounds.LowerUsage,
		Dialect:    dialect,
		Workers:    cfg.Slices.Workers,
	}, r.cache)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	tracker := r.track(StageImport, len(files))
	imported, err := imp.ImportFiles(ctx, files, tracker.Tick)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	res.Stats = imported.Stats
	res.Timings.Import = time.Since(start)

	start = time.Now()
	vec := vectorize.New(vectorize.Options{
		LowerUsage:     cfg.Bounds.LowerUsage,
		UpperUsage:     cfg.Bounds.UpperUsage,
		Dialect:        dialect,
		LanguageTag:    cfg.Features.LanguageTag,
		ReceiverPrefix: cfg.Features.ReceiverPrefix,
	})
	tracker = r.track(StageVectorize, len(imported.Records))
	samples := vec.VectorizeAll(imported.Records, tracker.Tick)
	tracker.FinishSuccess()
	res.Vectorized = len(samples)
	res.Timings.Vectorize = time.Since(start)

	start = time.Now()
	balanced := balance.Balance(samples, balance.Options{
		Threshold:  cfg.Bounds.ClassThreshold,
		MaxSamples: cfg.Bounds.MaxSamples,
	})
	res.Samples = balanced.Samples
	res.Deduped = balanced.Deduped
	res.Counts = balanced.Counts
	res.Summary = balance.Summarize(balanced.Samples, balanced.Counts)
	if cfg.Bounds.TopN > 0 {
		res.TopLabels = balance.NewHistogram(balanced.Samples).Top(cfg.Bounds.TopN)
	}
	res.Timings.Balance = time.Since(start)

	return res, nil
}

type nopTracker struct{}

func (nopTracker) Tick()             {}
func (nopTracker) FinishSuccess()    {}
func (nopTracker) FinishError(error) {}
