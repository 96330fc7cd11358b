package balance

import (
	"sort"

	"github.com/panbanda/slicecorpus/pkg/models"
)

// Histogram counts samples per label. It is a derived view: build a new one
// whenever the sample collection changes.
type Histogram struct {
	counts map[string]int
}

// NewHistogram counts the labels of samples.
func NewHistogram(samples []models.Sample) Histogram {
	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Label]++
	}
	return Histogram{counts: counts}
}

// Count returns the number of samples carrying label.
func (h Histogram) Count(label string) int {
	return h.counts[label]
}

// Len returns the number of distinct labels.
func (h Histogram) Len() int {
	return len(h.counts)
}

// Ranked returns all labels by descending count, ties broken by label.
func (h Histogram) Ranked() []models.LabelCount {
	ranked := make([]models.LabelCount, 0, len(h.counts))
	for label, count := range h.counts {
		ranked = append(ranked, models.LabelCount{Label: label, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Label < ranked[j].Label
	})
	return ranked
}

// Top returns the n most frequent labels.
func (h Histogram) Top(n int) []models.LabelCount {
	ranked := h.Ranked()
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
