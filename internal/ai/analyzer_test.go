package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prosentry/prosentry/internal/risk"
)

// mockProvider implements Provider for testing.
type mockProvider struct {
	response string
	err      error
	block    bool
}

func (m *mockProvider) IsConfigured() bool { return true }

func (m *mockProvider) Generate(ctx context.Context, _ string, _ int) (string, error) {
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

var testReading = risk.Reading{
	WorkHours: 10, NearMissCount: 4, MachineUsage: "high", Shift: "night", Timestamp: "12:00",
}

func TestAnalyzeOK(t *testing.T) {
	provider := &mockProvider{response: `{
		"riskScore": 72,
		"riskLevel": "High",
		"factors": ["fatigue"],
		"confidence": 0.9,
		"aiInsights": ["escalating pattern"],
		"recommendations": ["rotate operators"]
	}`}

	a := NewRiskAnalyzer(provider, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusOK {
		t.Fatalf("status = %v, err = %v", out.Status, out.Err)
	}
	if out.Assessment.Score != 72 || out.Assessment.Level != risk.LevelHigh {
		t.Errorf("unexpected assessment: %+v", out.Assessment)
	}
	if len(out.Assessment.Recommendations) != 1 {
		t.Errorf("expected recommendations to pass through, got %v", out.Assessment.Recommendations)
	}
}

func TestAnalyzeClampsOutOfRangeValues(t *testing.T) {
	provider := &mockProvider{response: `{"riskScore": 400, "riskLevel": "High", "confidence": 3.5}`}
	a := NewRiskAnalyzer(provider, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusOK {
		t.Fatalf("status = %v", out.Status)
	}
	if out.Assessment.Score != 100 {
		t.Errorf("score = %d, want 100", out.Assessment.Score)
	}
	if out.Assessment.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", out.Assessment.Confidence)
	}
}

func TestAnalyzeSanitizesLevel(t *testing.T) {
	provider := &mockProvider{response: `{"riskScore": 20, "riskLevel": "CATASTROPHIC"}`}
	a := NewRiskAnalyzer(provider, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusOK {
		t.Fatalf("status = %v", out.Status)
	}
	if out.Assessment.Level != risk.LevelLow {
		t.Errorf("level = %v, want Low", out.Assessment.Level)
	}
}

func TestAnalyzeMalformedResponseFails(t *testing.T) {
	provider := &mockProvider{response: "sorry, I can't do that"}
	a := NewRiskAnalyzer(provider, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusFailed {
		t.Errorf("status = %v, want StatusFailed", out.Status)
	}
}

func TestAnalyzeMissingScoreFails(t *testing.T) {
	provider := &mockProvider{response: `{"riskLevel": "High"}`}
	a := NewRiskAnalyzer(provider, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusFailed {
		t.Errorf("status = %v, want StatusFailed", out.Status)
	}
}

func TestAnalyzeProviderErrorFails(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	a := NewRiskAnalyzer(provider, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusFailed {
		t.Errorf("status = %v, want StatusFailed", out.Status)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	provider := &mockProvider{block: true}
	a := NewRiskAnalyzer(provider, 10*time.Millisecond)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusTimedOut {
		t.Errorf("status = %v, want StatusTimedOut", out.Status)
	}
}

func TestAnalyzeNilProviderFails(t *testing.T) {
	a := NewRiskAnalyzer(nil, time.Second)
	out := a.Analyze(context.Background(), testReading, nil)
	if out.Status != StatusFailed {
		t.Errorf("status = %v, want StatusFailed", out.Status)
	}
}
