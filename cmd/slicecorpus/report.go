package main

import (
	"fmt"
	"strconv"

	"github.com/panbanda/slicecorpus/internal/output"
	"github.com/panbanda/slicecorpus/pkg/models"
	"github.com/panbanda/slicecorpus/pkg/pipeline"
)

type importReport struct {
	models.ImportStats
	ScopesPerFile   float64 `json:"scopes_per_file" toon:"scopes_per_file"`
	ObjectsPerFile  float64 `json:"objects_per_file" toon:"objects_per_file"`
	RecordsPerFile  float64 `json:"records_per_file" toon:"records_per_file"`
	RetainedPercent float64 `json:"retained_percent" toon:"retained_percent"`
}

type corpusReport struct {
	models.Summary
	Vectorized   int `json:"vectorized" toon:"vectorized"`
	Deduplicated int `json:"deduplicated" toon:"deduplicated"`
}

type timingReport struct {
	Scan      string `json:"scan" toon:"scan"`
	Import    string `json:"import" toon:"import"`
	Vectorize string `json:"vectorize" toon:"vectorize"`
	Balance   string `json:"balance" toon:"balance"`
}

type reportData struct {
	Import    importReport        `json:"import" toon:"import"`
	Corpus    corpusReport        `json:"corpus" toon:"corpus"`
	TopLabels []models.LabelCount `json:"top_labels,omitempty" toon:"top_labels,omitempty"`
	Timings   *timingReport       `json:"timings,omitempty" toon:"timings,omitempty"`
	Written   []string            `json:"written" toon:"written"`
}

func buildReport(res *pipeline.Result, written []string, verbose bool) *output.Report {
	st := res.Stats
	data := reportData{
		Import: importReport{
			ImportStats:     st,
			ScopesPerFile:   st.ScopesPerFile(),
			ObjectsPerFile:  st.ObjectsPerFile(),
			RecordsPerFile:  st.RecordsPerFile(),
			RetainedPercent: st.RetainedPercent(),
		},
		Corpus: corpusReport{
			Summary:      res.Summary,
			Vectorized:   res.Vectorized,
			Deduplicated: res.Deduped,
		},
		TopLabels: res.TopLabels,
		Written:   written,
	}

	importRows := [][]string{
		{"Files found", strconv.Itoa(st.Files)},
		{"Empty files", strconv.Itoa(st.EmptyFiles)},
	}
	if st.CachedHits > 0 {
		importRows = append(importRows, []string{"Cached files", strconv.Itoa(st.CachedHits)})
	}
	// ratios are only meaningful once something was read
	if st.Files > 0 {
		importRows = append(importRows,
			[]string{"Scopes per file", formatFloat(st.ScopesPerFile())},
			[]string{"Objects per file", formatFloat(st.ObjectsPerFile())},
		)
	}
	importRows = append(importRows, []string{"Objects", strconv.Itoa(st.Objects)})
	if st.Objects > 0 {
		importRows = append(importRows, []string{"Candidates",
			fmt.Sprintf("%d (%s%%)", st.Records, formatFloat(st.RetainedPercent()))})
	} else {
		importRows = append(importRows, []string{"Candidates", strconv.Itoa(st.Records)})
	}
	if st.Files > 0 {
		importRows = append(importRows, []string{"Candidates per file", formatFloat(st.RecordsPerFile())})
	}

	corpusRows := [][]string{
		{"Vectorized samples", strconv.Itoa(res.Vectorized)},
		{"After deduplication", strconv.Itoa(res.Deduped)},
		{"Final samples", strconv.Itoa(res.Summary.Samples)},
		{"Labels", strconv.Itoa(res.Summary.Labels)},
	}
	if res.Summary.Labels > 0 {
		corpusRows = append(corpusRows,
			[]string{"Mean per label", formatFloat(res.Summary.MeanPerLabel)},
			[]string{"Median per label", formatFloat(res.Summary.MedianPerLabel)},
		)
	}

	sections := []output.Renderable{
		output.NewTable("Import", []string{"Metric", "Value"}, importRows, nil, nil),
		output.NewTable("Corpus", []string{"Metric", "Value"}, corpusRows, nil, nil),
	}

	if len(res.TopLabels) > 0 {
		rows := make([][]string, len(res.TopLabels))
		for i, lc := range res.TopLabels {
			rows[i] = []string{strconv.Itoa(i + 1), lc.Label, strconv.Itoa(lc.Count)}
		}
		sections = append(sections, output.NewTable("Top Labels", []string{"Rank", "Label", "Count"}, rows, nil, nil))
	}

	if verbose {
		tm := res.Timings
		data.Timings = &timingReport{
			Scan:      formatDuration(tm.Scan),
			Import:    formatDuration(tm.Import),
			Vectorize: formatDuration(tm.Vectorize),
			Balance:   formatDuration(tm.Balance),
		}
		sections = append(sections, output.NewTable("Timings", []string{"Stage", "Duration"}, [][]string{
			{"Scan", data.Timings.Scan},
			{"Import", data.Timings.Import},
			{"Vectorize", data.Timings.Vectorize},
			{"Balance", data.Timings.Balance},
		}, nil, nil))
	}

	if len(written) > 0 {
		rows := make([][]string, len(written))
		for i, p := range written {
			rows[i] = []string{p}
		}
		sections = append(sections, output.NewTable("Written", []string{"Path"}, rows, nil, nil))
	}

	return &output.Report{
		Title:    "Slice Corpus",
		Sections: sections,
		Data:     data,
	}
}
