package models

// Sample is one training example: the rendered feature text and its label.
// Identity is (Feature, Label); Evidence is informational only.
type Sample struct {
	Feature  string `json:"feature"`
	Label    string `json:"label"`
	Evidence int    `json:"evidence"`
}

// Key returns the identity of the sample used for deduplication.
func (s Sample) Key() SampleKey {
	return SampleKey{Feature: s.Feature, Label: s.Label}
}

// SampleKey is the deduplication identity of a Sample.
type SampleKey struct {
	Feature string
	Label   string
}

// ImportStats aggregates counters collected while importing slice documents.
type ImportStats struct {
	Files      int `json:"files" yaml:"files"`
	EmptyFiles int `json:"empty_files" yaml:"empty_files"`
	CachedHits int `json:"cached_hits" yaml:"cached_hits"`
	Scopes     int `json:"scopes" yaml:"scopes"`
	Objects    int `json:"objects" yaml:"objects"`
	Records    int `json:"records" yaml:"records"`
}

// Merge adds the counters of other into s.
func (s *ImportStats) Merge(other ImportStats) {
	s.Files += other.Files
	s.EmptyFiles += other.EmptyFiles
	s.CachedHits += other.CachedHits
	s.Scopes += other.Scopes
	s.Objects += other.Objects
	s.Records += other.Records
}

// ScopesPerFile returns the average number of scopes per discovered file.
// Returns 0 when no files were found.
func (s ImportStats) ScopesPerFile() float64 {
	return ratio(s.Scopes, s.Files)
}

// RecordsPerFile returns the average number of retained records per file.
func (s ImportStats) RecordsPerFile() float64 {
	return ratio(s.Records, s.Files)
}

// ObjectsPerFile returns the average number of raw objects per file.
func (s ImportStats) ObjectsPerFile() float64 {
	return ratio(s.Objects, s.Files)
}

// RetainedPercent returns the share of raw objects kept as records, in percent.
func (s ImportStats) RetainedPercent() float64 {
	return ratio(s.Records, s.Objects) * 100
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// LabelCount pairs a label with its number of occurrences.
type LabelCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Summary describes the final corpus.
type Summary struct {
	Samples      int     `json:"samples" yaml:"samples"`
	Labels       int     `json:"labels" yaml:"labels"`
	MeanPerLabel float64 `json:"mean_per_label" yaml:"mean_per_label"`
	// MedianPerLabel is the upper median of per-label occurrence counts.
	MedianPerLabel float64 `json:"median_per_label" yaml:"median_per_label"`
}
