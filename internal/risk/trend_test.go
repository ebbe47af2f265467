package risk

import (
	"math"
	"testing"
)

func TestTrendTermNeedsHistory(t *testing.T) {
	scores := []float64{10, 20, 30}
	if TrendTerm(0, scores) != 0 {
		t.Error("index 0 should have no trend")
	}
	if TrendTerm(1, scores) != 0 {
		t.Error("index 1 should have no trend")
	}
}

func TestTrendTermRisingScores(t *testing.T) {
	scores := []float64{10, 20, 40}
	// successive diffs 10 and 20 over a window of 3
	want := 30.0 / 3
	if got := TrendTerm(2, scores); math.Abs(got-want) > 1e-9 {
		t.Errorf("TrendTerm = %v, want %v", got, want)
	}
}

func TestTrendTermFallingScoresClampedToZero(t *testing.T) {
	scores := []float64{80, 50, 20}
	if got := TrendTerm(2, scores); got != 0 {
		t.Errorf("falling trend = %v, want 0", got)
	}
}

func TestTrendTermUsesTrailingWindowOnly(t *testing.T) {
	// A spike far in the past must not affect the current window.
	a := TrendTerm(4, []float64{100, 10, 20, 30, 40})
	b := TrendTerm(4, []float64{0, 10, 20, 30, 40})
	if a != b {
		t.Errorf("window leaked history: %v != %v", a, b)
	}
}

func TestTrendTermIndexOutOfRange(t *testing.T) {
	if TrendTerm(5, []float64{1, 2, 3}) != 0 {
		t.Error("out-of-range index should score 0")
	}
}
