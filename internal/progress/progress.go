// Package progress draws stage progress bars on stderr.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for one pipeline stage. A nil *Tracker is a
// valid no-op tracker.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	w     io.Writer
}

// NewTracker creates a progress bar on stderr with the given label and total.
func NewTracker(label string, total int) *Tracker {
	return NewTrackerTo(os.Stderr, label, total)
}

// NewTrackerTo creates a progress bar writing to w.
func NewTrackerTo(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(0),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, w: w}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t == nil {
		return
	}
	_ = t.bar.Add(1)
}

// Current returns the number of ticks so far.
func (t *Tracker) Current() int64 {
	if t == nil {
		return 0
	}
	return t.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely.
func (t *Tracker) FinishSuccess() {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}
