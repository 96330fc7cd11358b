// Package vectorize renders usage records into feature strings, splitting
// records with too much evidence into several bounded samples.
package vectorize

import (
	"strings"

	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/normalize"
)

// Options configures vectorization.
type Options struct {
	LowerUsage int
	// UpperUsage is the split threshold; it must be positive.
	UpperUsage int
	Dialect    normalize.Dialect
	// LanguageTag prefixes every feature with the source language.
	LanguageTag bool
	// ReceiverPrefix qualifies argument calls with their receiver.
	ReceiverPrefix bool
}

// Vectorizer turns usage records into samples.
type Vectorizer struct {
	opts Options
}

// New creates a Vectorizer.
func New(opts Options) *Vectorizer {
	return &Vectorizer{opts: opts}
}

// VectorizeAll vectorizes every record in order. onProgress, if set, is
// called once per record.
func (v *Vectorizer) VectorizeAll(records []models.UsageRecord, onProgress func()) []models.Sample {
	samples := make([]models.Sample, 0, len(records))
	for _, rec := range records {
		samples = append(samples, v.Vectorize(rec)...)
		if onProgress != nil {
			onProgress()
		}
	}
	return samples
}

// Vectorize produces zero or more samples from one record. The record itself
// is left untouched.
func (v *Vectorizer) Vectorize(rec models.UsageRecord) []models.Sample {
	d := v.opts.Dialect

	name := rec.Name
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}

	calls := v.invokedNames(rec.InvokedCalls)
	argTos := v.argumentNames(rec.ArgToCalls)

	// a lone assignment says nothing about the type
	if len(calls) == 0 && len(argTos) == 1 && strings.HasPrefix(argTos[0], d.AssignmentPrefix) {
		return nil
	}

	total := len(calls) + len(argTos)
	if total < v.opts.LowerUsage {
		return nil
	}

	label := d.Label(rec.TypeName)
	if label == "" {
		return nil
	}

	if total <= v.opts.UpperUsage {
		return []models.Sample{{
			Feature:  v.Render(name, rec.Scope, calls, argTos),
			Label:    label,
			Evidence: total,
		}}
	}

	parts := Split(calls, argTos, v.opts.UpperUsage)
	samples := make([]models.Sample, 0, len(parts))
	for _, p := range parts {
		samples = append(samples, models.Sample{
			Feature:  v.Render(name, rec.Scope, p.A, p.B),
			Label:    label,
			Evidence: p.Len(),
		})
	}
	return samples
}

func (v *Vectorizer) invokedNames(calls []models.Call) []string {
	seen := make(map[string]struct{}, len(calls))
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		n, ok := v.opts.Dialect.CallName(c.CallName)
		if !ok {
			continue
		}
		out = appendUnique(out, seen, n)
	}
	return out
}

func (v *Vectorizer) argumentNames(calls []models.ArgCall) []string {
	d := v.opts.Dialect
	seen := make(map[string]struct{}, len(calls))
	out := make([]string, 0, len(calls))
	for _, ac := range calls {
		n, ok := d.CallName(ac.Call.CallName)
		if !ok {
			continue
		}
		if v.opts.ReceiverPrefix && ac.Call.Receiver != nil {
			if recv := *ac.Call.Receiver; recv != "" && !d.IsTrivialReceiver(recv) {
				n = recv + "." + n
			}
		}
		out = appendUnique(out, seen, n)
	}
	return out
}

func appendUnique(out []string, seen map[string]struct{}, s string) []string {
	if _, dup := seen[s]; dup {
		return out
	}
	seen[s] = struct{}{}
	return append(out, s)
}

var featureNoise = strings.NewReplacer(`"`, "", `'`, "", `\`, "", "\n", "", "\t", "", "\r", "")

// Render builds the feature text for one (part of a) record.
func (v *Vectorizer) Render(name, scope string, calls, argTos []string) string {
	if m := v.opts.Dialect.ModuleMarker; m != "" {
		name = strings.TrimPrefix(name, m+".")
		scope = strings.TrimPrefix(scope, m+".")
	}

	var b strings.Builder
	if v.opts.LanguageTag {
		b.WriteString(string(v.opts.Dialect.Language))
		b.WriteString(": ")
	}
	b.WriteString(name)
	b.WriteString(" in ")
	b.WriteString(scope)
	if len(calls) > 0 {
		b.WriteString("; Calls: ")
		b.WriteString(strings.Join(calls, ", "))
	}
	if len(argTos) > 0 {
		b.WriteString("; Argument to: ")
		b.WriteString(strings.Join(argTos, ", "))
	}

	return featureNoise.Replace(b.String())
}
