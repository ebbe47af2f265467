package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prosentry/prosentry/internal/risk"
)

func TestRecommendFromProvider(t *testing.T) {
	provider := &mockProvider{response: `{
		"recommendations": [
			{"action": "Rotate crew", "priority": "High", "timeframe": "Immediate",
			 "reasoning": "fatigue", "expectedImpact": "fewer incidents"}
		],
		"overallStrategy": "Intervene now",
		"urgencyLevel": "Immediate",
		"confidence": 0.92
	}`}

	rec := NewRecommender(provider, time.Second)
	advice := rec.Recommend(context.Background(),
		risk.Assessment{Score: 80, Level: risk.LevelHigh}, testReading)

	if len(advice.Actions) != 1 || advice.Actions[0].Action != "Rotate crew" {
		t.Errorf("unexpected actions: %+v", advice.Actions)
	}
	if advice.Urgency != "Immediate" {
		t.Errorf("urgency = %q", advice.Urgency)
	}
}

func TestRecommendFallbackOnProviderError(t *testing.T) {
	rec := NewRecommender(&mockProvider{err: errors.New("down")}, time.Second)
	advice := rec.Recommend(context.Background(),
		risk.Assessment{Score: 80, Level: risk.LevelHigh},
		risk.Reading{WorkHours: 14, NearMissCount: 7})

	if len(advice.Actions) != 3 {
		t.Errorf("expected 3 high-risk fallback actions, got %d", len(advice.Actions))
	}
	if advice.Urgency != "Immediate" {
		t.Errorf("urgency = %q, want Immediate", advice.Urgency)
	}
}

func TestRecommendFallbackByLevel(t *testing.T) {
	rec := NewRecommender(nil, time.Second)

	tests := []struct {
		level   risk.Level
		urgency string
	}{
		{risk.LevelLow, "Planned"},
		{risk.LevelMedium, "Soon"},
		{risk.LevelHigh, "Immediate"},
	}
	for _, tt := range tests {
		advice := rec.Recommend(context.Background(),
			risk.Assessment{Level: tt.level}, risk.Reading{WorkHours: 6})
		if advice.Urgency != tt.urgency {
			t.Errorf("%s: urgency = %q, want %q", tt.level, advice.Urgency, tt.urgency)
		}
		if len(advice.Actions) == 0 {
			t.Errorf("%s: no fallback actions", tt.level)
		}
	}
}

func TestRecommendFallbackOnMalformedJSON(t *testing.T) {
	rec := NewRecommender(&mockProvider{response: "not json"}, time.Second)
	advice := rec.Recommend(context.Background(),
		risk.Assessment{Level: risk.LevelMedium}, risk.Reading{WorkHours: 6})
	if len(advice.Actions) != 2 {
		t.Errorf("expected medium-level fallback actions, got %d", len(advice.Actions))
	}
}
