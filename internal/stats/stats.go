// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/keyrush/internal/model"
)

const sparkChars = " .:-=+*#%@"

const (
	colorReset = "\x1b[0m"
	colorCyan  = "\x1b[36m"
)

// SessionMetrics computes WPM, CPM, and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	if durationMs <= 0 {
		return 0, 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	if minutes <= 0 {
		return 0, 0, 0
	}
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	accuracy = Accuracy(correct, incorrect)
	return wpm, cpm, accuracy
}

// Accuracy returns the share of correct keys, or 0 when nothing was typed.
func Accuracy(correct, incorrect int) float64 {
	den := float64(correct + incorrect)
	if den <= 0 {
		return 0
	}
	return float64(correct) / den
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the result of a finished game.
func RenderSummary(w io.Writer, res model.Result, window int, useColor bool) error {
	wpm, cpm, acc := SessionMetrics(res.Correct, res.Errors, res.Elapsed.Milliseconds())
	title := fmt.Sprintf("Game over: %s", res.Reason)
	if useColor {
		title = colorCyan + title + colorReset
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	rows := [][]string{
		{"WPM", fmt.Sprintf("%.1f", wpm)},
		{"CPM", fmt.Sprintf("%.1f", cpm)},
		{"Accuracy", fmt.Sprintf("%.2f%%", acc*100)},
		{"Errors", fmt.Sprintf("%d", res.Errors)},
		{"Words", fmt.Sprintf("%d/%d", res.WordsCompleted, res.TotalWords)},
		{"Time", res.Elapsed.Round(time.Second).String()},
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(res.WPMSamples) > 1 {
		line := Sparkline(MovingAverage(res.WPMSamples, window))
		if _, err := fmt.Fprintf(w, "WPM trend [%s]\n", line); err != nil {
			return err
		}
	}
	return nil
}
