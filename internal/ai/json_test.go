package ai

import "testing"

func TestExtractJSONPlain(t *testing.T) {
	got := ExtractJSON(`{"riskScore": 42}`)
	if got == nil || got["riskScore"].(float64) != 42 {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestExtractJSONCodeFence(t *testing.T) {
	text := "```json\n{\"riskScore\": 10}\n```"
	got := ExtractJSON(text)
	if got == nil || got["riskScore"].(float64) != 10 {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	text := `Here is the assessment you asked for: {"riskScore": 55, "riskLevel": "Medium"} Hope that helps!`
	got := ExtractJSON(text)
	if got == nil || got["riskLevel"].(string) != "Medium" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestExtractJSONGarbage(t *testing.T) {
	if got := ExtractJSON("I cannot answer that."); got != nil {
		t.Errorf("expected nil for non-JSON, got %v", got)
	}
	if got := ExtractJSON(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
