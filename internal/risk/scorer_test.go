package risk

import (
	"math"
	"testing"
)

func TestBaseScoreBounds(t *testing.T) {
	readings := []Reading{
		{},
		{WorkHours: 2, NearMissCount: 0, MachineUsage: "low", Shift: "day"},
		{WorkHours: 15, NearMissCount: 8, MachineUsage: "high", Shift: "night"},
		{WorkHours: 100, NearMissCount: 50, MachineUsage: "high", Shift: "night"},
	}
	w := DefaultWeights()
	for _, r := range readings {
		score := BaseScore(r, w)
		if score < 0 || score > 100 {
			t.Errorf("BaseScore(%+v) = %v, out of [0,100]", r, score)
		}
	}
}

func TestBaseScoreMonotoneInWorkHours(t *testing.T) {
	w := DefaultWeights()
	prev := -1.0
	for hours := 0.0; hours <= 24; hours += 0.5 {
		score := BaseScore(Reading{WorkHours: hours, NearMissCount: 3, MachineUsage: "normal", Shift: "day"}, w)
		if score < prev {
			t.Fatalf("score decreased at %vh: %v < %v", hours, score, prev)
		}
		prev = score
	}
}

func TestBaseScoreMonotoneInNearMisses(t *testing.T) {
	w := DefaultWeights()
	prev := -1.0
	for n := 0; n <= 20; n++ {
		score := BaseScore(Reading{WorkHours: 6, NearMissCount: n, MachineUsage: "low", Shift: "day"}, w)
		if score < prev {
			t.Fatalf("score decreased at %d near-misses: %v < %v", n, score, prev)
		}
		prev = score
	}
}

func TestBaseScoreDeterministic(t *testing.T) {
	r := Reading{WorkHours: 9.5, NearMissCount: 4, MachineUsage: "high", Shift: "night"}
	w := DefaultWeights()
	first := BaseScore(r, w)
	second := BaseScore(r, w)
	if first != second {
		t.Errorf("BaseScore not deterministic: %v != %v", first, second)
	}
}

func TestMachineTermUnrecognizedCountsAsLow(t *testing.T) {
	w := DefaultWeights()
	base := Reading{WorkHours: 6, NearMissCount: 2, Shift: "day"}

	low := base
	low.MachineUsage = "low"
	weird := base
	weird.MachineUsage = "turbo"

	if BaseScore(low, w) != BaseScore(weird, w) {
		t.Error("unrecognized machine usage should score like low")
	}
}

func TestMachineUsageOrdering(t *testing.T) {
	w := DefaultWeights()
	score := func(usage string) float64 {
		return BaseScore(Reading{WorkHours: 6, NearMissCount: 2, MachineUsage: usage, Shift: "day"}, w)
	}
	if !(score("low") < score("normal") && score("normal") < score("high")) {
		t.Errorf("expected low < normal < high, got %v / %v / %v",
			score("low"), score("normal"), score("high"))
	}
	if score("medium") != score("normal") {
		t.Error("medium should score like normal")
	}
}

func TestNightShiftAddsRisk(t *testing.T) {
	w := DefaultWeights()
	day := BaseScore(Reading{WorkHours: 6, NearMissCount: 2, MachineUsage: "low", Shift: "day"}, w)
	night := BaseScore(Reading{WorkHours: 6, NearMissCount: 2, MachineUsage: "low", Shift: "night"}, w)
	if diff := night - day; math.Abs(diff-100*w.Shift) > 1e-9 {
		t.Errorf("night shift delta = %v, want %v", diff, 100*w.Shift)
	}
}

func TestThresholdBoundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{34, LevelLow},
		{35, LevelMedium},
		{64, LevelMedium},
		{65, LevelHigh},
		{100, LevelHigh},
	}
	for _, tt := range tests {
		if got := th.LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("High") != LevelHigh {
		t.Error("expected High")
	}
	if ParseLevel("banana") != LevelLow {
		t.Error("unrecognized level should default to Low")
	}
}
