package risk

import (
	"math"
	"testing"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultWeights(), DefaultThresholds())
}

func TestAnalyzeBounds(t *testing.T) {
	a := newTestAnalyzer()
	readings := []Reading{
		{},
		{WorkHours: 2, MachineUsage: "low", Shift: "day"},
		{WorkHours: 30, NearMissCount: 20, MachineUsage: "high", Shift: "night"},
	}
	for i, r := range readings {
		got := a.Analyze(r, i, readings[:i])
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("score %d out of range for %+v", got.Score, r)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("confidence %v out of range for %+v", got.Confidence, r)
		}
	}
}

func TestAnalyzeEscalatingDemoSequence(t *testing.T) {
	a := newTestAnalyzer()
	readings := []Reading{
		{WorkHours: 2, NearMissCount: 0, MachineUsage: "low", Shift: "day", Timestamp: "08:00"},
		{WorkHours: 8, NearMissCount: 3, MachineUsage: "high", Shift: "day", Timestamp: "09:00"},
		{WorkHours: 15, NearMissCount: 8, MachineUsage: "high", Shift: "night", Timestamp: "10:00"},
	}

	var scores []int
	for i, r := range readings {
		scores = append(scores, a.Analyze(r, i, readings[:i]).Score)
	}

	for i := 1; i < len(scores); i++ {
		if scores[i] <= scores[i-1] {
			t.Fatalf("scores not strictly increasing: %v", scores)
		}
	}

	final := a.Analyze(readings[2], 2, readings[:2])
	if final.Level != LevelHigh {
		t.Errorf("final step level = %v (score %d), want High", final.Level, final.Score)
	}
}

func TestAnalyzePatternSmoothing(t *testing.T) {
	a := newTestAnalyzer()
	r := Reading{WorkHours: 15, NearMissCount: 8, MachineUsage: "high", Shift: "night"}
	key := a.Patterns().Key(r)
	a.Patterns().Remember(key, 50)

	base := BaseScore(r, DefaultWeights())
	got := a.Analyze(r, 0, nil)
	want := int(math.Round(base*0.7 + 50*0.3))
	if got.Score != want {
		t.Errorf("smoothed score = %d, want %d (base %v)", got.Score, want, base)
	}
}

func TestAnalyzeSeenBucketRaisesConfidence(t *testing.T) {
	a := newTestAnalyzer()
	r := Reading{WorkHours: 6, NearMissCount: 2, MachineUsage: "normal", Shift: "day"}

	first := a.Analyze(r, 0, nil)
	second := a.Analyze(r, 0, nil)
	if second.Confidence <= first.Confidence {
		t.Errorf("confidence should rise once the bucket is known: %v then %v",
			first.Confidence, second.Confidence)
	}
}

func TestAnalyzeConfidenceCompleteness(t *testing.T) {
	a := newTestAnalyzer()

	full := a.Analyze(Reading{WorkHours: 6, NearMissCount: 2, MachineUsage: "normal", Shift: "day"}, 0, nil)
	if math.Abs(full.Confidence-0.9) > 1e-9 {
		t.Errorf("full reading confidence = %v, want 0.9", full.Confidence)
	}

	sparse := a.Analyze(Reading{WorkHours: 3}, 0, nil)
	if math.Abs(sparse.Confidence-0.75) > 1e-9 {
		t.Errorf("sparse reading confidence = %v, want 0.75", sparse.Confidence)
	}
}

func TestAnalyzeFactorCategories(t *testing.T) {
	a := newTestAnalyzer()

	calm := a.Analyze(Reading{WorkHours: 2, MachineUsage: "low", Shift: "day"}, 0, nil)
	if len(calm.Factors) != 0 {
		t.Errorf("calm reading produced factors: %v", calm.Factors)
	}

	severe := a.Analyze(Reading{WorkHours: 14, NearMissCount: 7, MachineUsage: "high", Shift: "night"}, 0, nil)
	if len(severe.Factors) != 4 {
		t.Errorf("severe reading should trigger all four factor categories, got %v", severe.Factors)
	}
	if len(severe.Insights) != len(severe.Factors) {
		t.Errorf("each factor should carry a matching insight: %d vs %d",
			len(severe.Factors), len(severe.Insights))
	}
}

func TestTrainSeedsPatternMemory(t *testing.T) {
	a := newTestAnalyzer()
	readings := []Reading{
		{WorkHours: 4, NearMissCount: 1, MachineUsage: "low", Shift: "day"},
		{WorkHours: 10, NearMissCount: 4, MachineUsage: "high", Shift: "night"},
	}
	a.Train(readings)
	if a.Patterns().Len() != 2 {
		t.Errorf("trained buckets = %d, want 2", a.Patterns().Len())
	}

	// A trained bucket smooths the very first scoring pass.
	key := a.Patterns().Key(readings[1])
	if _, ok := a.Patterns().Recall(key); !ok {
		t.Error("expected bucket from training")
	}
}
