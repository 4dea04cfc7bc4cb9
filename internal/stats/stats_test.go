package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keyrush/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(300, 100, 60000)
	if math.Abs(wpm-60) > 1e-9 {
		t.Fatalf("expected 60 WPM, got %f", wpm)
	}
	if math.Abs(cpm-300) > 1e-9 {
		t.Fatalf("expected 300 CPM, got %f", cpm)
	}
	if math.Abs(acc-0.75) > 1e-9 {
		t.Fatalf("expected 0.75 accuracy, got %f", acc)
	}
	if wpm, cpm, acc := SessionMetrics(10, 0, 0); wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("expected zero metrics for zero duration")
	}
}

func TestAccuracyWithoutKeys(t *testing.T) {
	if got := Accuracy(0, 0); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := Accuracy(3, 1); got != 0.75 {
		t.Fatalf("expected 0.75, got %f", got)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	res := model.Result{
		Reason:         model.FinishClockExpired,
		WordsCompleted: 12,
		TotalWords:     40,
		Correct:        150,
		Errors:         5,
		Elapsed:        30 * time.Second,
		WPMSamples:     []float64{10, 30, 55, 60},
	}
	if err := RenderSummary(&buf, res, 2, false); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Game over: time is up", "WPM", "60.0", "96.77%", "12/40", "30s", "WPM trend ["} {
		if !strings.Contains(out, needle) {
			t.Fatalf("summary missing %q:\n%s", needle, out)
		}
	}
	if strings.Contains(out, colorReset) {
		t.Fatalf("expected no color codes")
	}
}
