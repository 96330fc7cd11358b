// Package corpus persists a balanced corpus as index-aligned JSON arrays.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/panbanda/slicecorpus/pkg/config"
	"github.com/panbanda/slicecorpus/pkg/models"
)

// File names written into the output directory.
const (
	FeaturesFile = "features.json"
	LabelsFile   = "labels.json"
	TopNFile     = "top_n.json"
	ManifestFile = "manifest.yaml"
)

// Manifest records how a corpus was produced.
type Manifest struct {
	GeneratedAt time.Time           `yaml:"generated_at"`
	Config      *config.Config      `yaml:"config,omitempty"`
	Import      models.ImportStats  `yaml:"import"`
	Summary     models.Summary      `yaml:"summary"`
	TopLabels   []models.LabelCount `yaml:"top_labels,omitempty"`
}

// Corpus is everything Write persists.
type Corpus struct {
	Samples []models.Sample
	// TopLabels, when non-empty, is written to top_n.json.
	TopLabels []models.LabelCount
	// Manifest, when non-nil, is written to manifest.yaml.
	Manifest *Manifest
}

type artifact struct {
	name   string
	encode func() ([]byte, error)
}

// Write stores the corpus in dir and returns the paths written. Every file
// is staged next to its destination first; nothing is renamed into place
// unless all files were staged. Optional files not produced by this call are
// removed from dir.
func Write(dir string, c Corpus) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	features := make([]string, len(c.Samples))
	labels := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		features[i] = s.Feature
		labels[i] = s.Label
	}

	files := []artifact{
		{FeaturesFile, func() ([]byte, error) { return encodeJSON(features) }},
		{LabelsFile, func() ([]byte, error) { return encodeJSON(labels) }},
	}
	if len(c.TopLabels) > 0 {
		top := make([]string, len(c.TopLabels))
		for i, lc := range c.TopLabels {
			top[i] = lc.Label
		}
		files = append(files, artifact{TopNFile, func() ([]byte, error) { return encodeJSON(top) }})
	}
	if c.Manifest != nil {
		files = append(files, artifact{ManifestFile, func() ([]byte, error) { return yaml.Marshal(c.Manifest) }})
	}

	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, f := range files {
		data, err := f.encode()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		tmp, err := stage(dir, f.name, data)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		staged = append(staged, tmp)
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		dst := filepath.Join(dir, f.name)
		if err := os.Rename(staged[i], dst); err != nil {
			for _, tmp := range staged[i:] {
				os.Remove(tmp)
			}
			return written, fmt.Errorf("failed to commit %s: %w", f.name, err)
		}
		written = append(written, dst)
	}

	// optional files left by an earlier run would no longer match the arrays
	var stale []string
	if len(c.TopLabels) == 0 {
		stale = append(stale, TopNFile)
	}
	if c.Manifest == nil {
		stale = append(stale, ManifestFile)
	}
	for _, name := range stale {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return written, fmt.Errorf("failed to remove stale %s: %w", name, err)
		}
	}
	return written, nil
}

func stage(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func encodeJSON(v []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the feature and label arrays back from dir.
func Load(dir string) ([]models.Sample, error) {
	var features, labels []string
	if err := readJSON(filepath.Join(dir, FeaturesFile), &features); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, LabelsFile), &labels); err != nil {
		return nil, err
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("corpus arrays are not aligned: %d features, %d labels", len(features), len(labels))
	}

	samples := make([]models.Sample, len(features))
	for i := range features {
		samples[i] = models.Sample{Feature: features[i], Label: labels[i]}
	}
	return samples, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
