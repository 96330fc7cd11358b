// Package balance deduplicates samples and balances the label distribution.
package balance

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/stats"
)

// Options configures balancing.
type Options struct {
	// Threshold is the minimum number of samples a label needs to be kept.
	Threshold int
	// MaxSamples caps the corpus size; 0 disables the cap.
	MaxSamples int
}

// Result is the balanced corpus together with the histogram of the
// deduplicated samples it was derived from.
type Result struct {
	Samples []models.Sample
	// Deduped is the number of samples left after deduplication.
	Deduped int
	// Counts is the label histogram of the deduplicated samples.
	Counts Histogram
}

// Balance runs deduplication, rare-label filtering and the optional size cap.
func Balance(samples []models.Sample, opts Options) Result {
	deduped := Deduplicate(samples)
	counts := NewHistogram(deduped)

	kept := FilterRare(deduped, counts, opts.Threshold)
	if opts.MaxSamples > 0 {
		kept = Cap(kept, counts, opts.Threshold, opts.MaxSamples)
	}

	return Result{Samples: kept, Deduped: len(deduped), Counts: counts}
}

// Deduplicate drops samples whose (feature, label) pair was already seen,
// keeping first occurrences in their original order.
func Deduplicate(samples []models.Sample) []models.Sample {
	buckets := make(map[uint64][]int, len(samples))
	out := make([]models.Sample, 0, len(samples))

	for i, s := range samples {
		fp := fingerprint(s)
		dup := false
		for _, j := range buckets[fp] {
			if samples[j].Key() == s.Key() {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[fp] = append(buckets[fp], i)
		out = append(out, s)
	}
	return out
}

func fingerprint(s models.Sample) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(s.Feature)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(s.Label)
	return d.Sum64()
}

// FilterRare keeps samples whose label count in counts reaches threshold.
func FilterRare(samples []models.Sample, counts Histogram, threshold int) []models.Sample {
	out := make([]models.Sample, 0, len(samples))
	for _, s := range samples {
		if counts.Count(s.Label) >= threshold {
			out = append(out, s)
		}
	}
	return out
}

// Cap shrinks samples to at most n while following the label distribution
// in counts. Labels are visited from the least frequent qualifying label up
// to the most frequent one; each contributes at most
// max(count*n/len(samples), threshold) samples in their original order, and
// the walk stops once n samples are collected. A label cut below threshold
// by the stop is removed again.
func Cap(samples []models.Sample, counts Histogram, threshold, n int) []models.Sample {
	total := len(samples)
	if total == 0 || n <= 0 {
		return nil
	}

	ranked := counts.Ranked()
	cutoff := len(ranked)
	for i, lc := range ranked {
		if lc.Count < threshold {
			cutoff = i
			break
		}
	}

	byLabel := make(map[string]*roaring.Bitmap)
	for i, s := range samples {
		bm, ok := byLabel[s.Label]
		if !ok {
			bm = roaring.New()
			byLabel[s.Label] = bm
		}
		bm.Add(uint32(i))
	}

	out := make([]models.Sample, 0, min(n, total))
	taken := make(map[string]int)
	for i := cutoff - 1; i >= 0 && len(out) < n; i-- {
		lc := ranked[i]
		bm, ok := byLabel[lc.Label]
		if !ok {
			continue
		}
		maxCount := max(lc.Count*n/total, threshold)
		it := bm.Iterator()
		for it.HasNext() && taken[lc.Label] < maxCount && len(out) < n {
			out = append(out, samples[it.Next()])
			taken[lc.Label]++
		}
	}

	final := out[:0]
	for _, s := range out {
		if taken[s.Label] >= threshold {
			final = append(final, s)
		}
	}
	return final
}

// Summarize describes the final corpus. Per-label occurrence statistics use
// the deduplicated counts of the labels present in samples.
func Summarize(samples []models.Sample, counts Histogram) models.Summary {
	final := NewHistogram(samples)

	occ := make([]int, 0, final.Len())
	for _, lc := range final.Ranked() {
		occ = append(occ, counts.Count(lc.Label))
	}
	values := stats.Floats(occ)

	return models.Summary{
		Samples:        len(samples),
		Labels:         final.Len(),
		MeanPerLabel:   stats.Mean(values),
		MedianPerLabel: stats.UpperMedian(values),
	}
}
