// Package importer extracts usage records from slice documents.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/panbanda/slicecorpus/internal/cache"
	"github.com/panbanda/slicecorpus/internal/fileproc"
	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/normalize"
	"github.com/panbanda/slicecorpus/pkg/schema"
	"github.com/panbanda/slicecorpus/pkg/scope"
)

const (
	// AnyType is the slicer's sentinel for an unknown type.
	AnyType = "ANY"

	lambdaMarker      = "=>"
	inlineTypeMarker  = "{"
	constructorMarker = " = new "
)

// Options configures record extraction.
type Options struct {
	// LowerUsage is the minimum number of observations per object.
	LowerUsage int
	// Dialect supplies the scope markers.
	Dialect normalize.Dialect
	// Workers bounds parallel document reads; 0 means 2x NumCPU.
	Workers int
}

// Importer turns slice documents into usage records.
// It holds no per-run state and is safe for concurrent use.
type Importer struct {
	opts      Options
	resolver  scope.Resolver
	validator *schema.Validator
	cache     *cache.Cache
}

// New creates an importer. c may be nil to disable caching.
func New(opts Options, c *cache.Cache) (*Importer, error) {
	v, err := schema.New()
	if err != nil {
		return nil, err
	}
	return &Importer{
		opts:      opts,
		resolver:  scope.NewResolver(opts.Dialect.AnonymousScopePrefix, opts.Dialect.ProgramScope),
		validator: v,
		cache:     c,
	}, nil
}

// Result is the extraction output for one or more documents.
type Result struct {
	Records []models.UsageRecord `json:"records"`
	Stats   models.ImportStats   `json:"stats"`
}

// ImportFiles reads every file in parallel and concatenates their records in
// file order. Any unreadable or malformed file aborts the whole import.
func (im *Importer) ImportFiles(ctx context.Context, files []string, onProgress fileproc.ProgressFunc) (*Result, error) {
	perFile, err := fileproc.MapFiles(ctx, files, im.opts.Workers, func(_ context.Context, path string) (*Result, error) {
		return im.ImportFile(path)
	}, onProgress)
	if err != nil {
		return nil, err
	}

	out := &Result{Stats: models.ImportStats{Files: len(files)}}
	for _, r := range perFile {
		out.Records = append(out.Records, r.Records...)
		out.Stats.Merge(r.Stats)
	}
	return out, nil
}

// ImportFile reads and extracts a single document.
func (im *Importer) ImportFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Result{Stats: models.ImportStats{EmptyFiles: 1}}, nil
	}

	hash := cache.HashBytes(data, []byte(im.fingerprint()))
	var cached Result
	if im.cache.Get(path, hash, &cached) {
		cached.Stats.CachedHits = 1
		return &cached, nil
	}

	res, err := im.ImportBytes(data)
	if err != nil {
		return nil, err
	}
	// a failed cache write only costs a re-parse next time
	_ = im.cache.Set(path, hash, res)
	return res, nil
}

// ImportBytes validates and extracts one raw document.
func (im *Importer) ImportBytes(data []byte) (*Result, error) {
	if err := im.validator.Validate(data); err != nil {
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse slice document: %w", err)
	}

	records, stats := im.Extract(&doc)
	return &Result{Records: records, Stats: stats}, nil
}

// Extract walks a decoded document. Scopes are visited in sorted order so
// the output does not depend on map iteration.
func (im *Importer) Extract(doc *models.Document) ([]models.UsageRecord, models.ImportStats) {
	var stats models.ImportStats

	scopes := make([]string, 0, len(doc.ObjectSlices))
	for s := range doc.ObjectSlices {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)

	var records []models.UsageRecord
	for _, s := range scopes {
		stats.Scopes++
		for _, obj := range doc.ObjectSlices[s] {
			stats.Objects++
			if rec, ok := im.Candidate(s, obj); ok {
				records = append(records, rec)
			}
		}
	}
	stats.Records = len(records)
	return records, stats
}

// Candidate applies the record-level filters to one object and builds its
// record. It reports false when the object is dropped.
func (im *Importer) Candidate(scopePath string, obj models.ObjectSlice) (models.UsageRecord, bool) {
	typeName := obj.TargetObj.TypeFullName

	if typeName == "" ||
		obj.Evidence() < im.opts.LowerUsage ||
		strings.Contains(typeName, lambdaMarker) ||
		strings.Contains(typeName, inlineTypeMarker) {
		return models.UsageRecord{}, false
	}

	if typeName == AnyType {
		recovered, ok := recoverConstructedType(obj)
		if !ok {
			return models.UsageRecord{}, false
		}
		typeName = recovered
	}

	return models.UsageRecord{
		Name:         obj.TargetObj.Name,
		Scope:        im.resolver.EnclosingName(scopePath),
		TypeName:     typeName,
		InvokedCalls: obj.InvokedCalls,
		ArgToCalls:   obj.ArgToCalls,
	}, true
}

// recoverConstructedType reads the type from a "x = new Foo" first argument call.
func recoverConstructedType(obj models.ObjectSlice) (string, bool) {
	if len(obj.ArgToCalls) == 0 {
		return "", false
	}
	name := obj.ArgToCalls[0].Call.CallName
	i := strings.Index(name, constructorMarker)
	if i < 0 {
		return "", false
	}
	return name[i+len(constructorMarker):], true
}

func (im *Importer) fingerprint() string {
	return fmt.Sprintf("v1;lower=%d;anon=%s;program=%s",
		im.opts.LowerUsage, im.opts.Dialect.AnonymousScopePrefix, im.opts.Dialect.ProgramScope)
}
