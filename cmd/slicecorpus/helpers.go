package main

import (
	"strconv"
	"time"
)

// formatFloat renders a ratio with two decimals.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
