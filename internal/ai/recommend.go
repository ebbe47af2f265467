package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prosentry/prosentry/internal/risk"
)

const recommendPrompt = `You are an industrial safety consultant. Based on the current risk assessment, generate specific, actionable safety recommendations.

CURRENT RISK SITUATION:
- Risk Score: %d/100
- Risk Level: %s
- Contributing Factors: %s

OPERATIONAL DATA:
- Continuous Work Hours: %gh
- Near Miss Count: %d
- Machine Usage Level: %s
- Shift Type: %s

Generate 3-5 recommendations that supervisors can implement immediately, each with a priority (High/Medium/Low), a realistic timeframe, the reasoning, and the expected safety impact. Also give an overall strategy, an urgency level (Immediate/Soon/Planned), and a confidence (0.0-1.0).

Respond with ONLY this JSON:
{
    "recommendations": [
        {
            "action": "Specific action to take",
            "priority": "High|Medium|Low",
            "timeframe": "Immediate|Next 10 minutes|Next 30 minutes",
            "reasoning": "Why this action is needed",
            "expectedImpact": "Expected safety improvement"
        }
    ],
    "overallStrategy": "High-level approach to manage current risk",
    "urgencyLevel": "Immediate|Soon|Planned",
    "confidence": 0.9
}`

// Action is one ranked preventive recommendation.
type Action struct {
	Action         string `json:"action"`
	Priority       string `json:"priority"`
	Timeframe      string `json:"timeframe"`
	Reasoning      string `json:"reasoning"`
	ExpectedImpact string `json:"expectedImpact"`
}

// Advice is the advisory output for one assessment. It never carries
// control-flow consequences.
type Advice struct {
	Actions    []Action `json:"recommendations"`
	Strategy   string   `json:"overallStrategy"`
	Urgency    string   `json:"urgencyLevel"`
	Confidence float64  `json:"confidence"`
}

// Recommender produces preventive-action advice, via the provider
// when available and deterministic level-keyed rules otherwise.
type Recommender struct {
	provider Provider
	timeout  time.Duration
}

// NewRecommender creates a recommender. A nil provider always uses
// the fallback rules.
func NewRecommender(provider Provider, timeout time.Duration) *Recommender {
	return &Recommender{provider: provider, timeout: timeout}
}

// Recommend generates advice for an assessment. Any provider failure
// falls back to the deterministic rules; Recommend never errors.
func (rec *Recommender) Recommend(ctx context.Context, a risk.Assessment, r risk.Reading) Advice {
	if rec.provider == nil {
		return fallbackAdvice(a, r)
	}

	ctx, cancel := context.WithTimeout(ctx, rec.timeout)
	defer cancel()

	prompt := fmt.Sprintf(recommendPrompt,
		a.Score, a.Level, strings.Join(a.Factors, ", "),
		r.WorkHours, r.NearMissCount, r.MachineUsage, r.Shift)

	text, err := rec.provider.Generate(ctx, prompt, 768)
	if err != nil {
		return fallbackAdvice(a, r)
	}

	parsed := ExtractJSON(text)
	if parsed == nil {
		return fallbackAdvice(a, r)
	}

	advice := Advice{
		Strategy:   getString(parsed, "overallStrategy", "Monitor situation closely"),
		Urgency:    getString(parsed, "urgencyLevel", "Soon"),
		Confidence: getFloat(parsed, "confidence", 0.8),
	}
	if advice.Confidence < 0 {
		advice.Confidence = 0
	}
	if advice.Confidence > 1 {
		advice.Confidence = 1
	}

	if raw, ok := parsed["recommendations"].([]any); ok {
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			advice.Actions = append(advice.Actions, Action{
				Action:         getString(m, "action", ""),
				Priority:       getString(m, "priority", "Medium"),
				Timeframe:      getString(m, "timeframe", "Soon"),
				Reasoning:      getString(m, "reasoning", ""),
				ExpectedImpact: getString(m, "expectedImpact", ""),
			})
		}
	}
	if len(advice.Actions) == 0 {
		return fallbackAdvice(a, r)
	}

	return advice
}

// fallbackAdvice is the deterministic rule set keyed on risk level.
func fallbackAdvice(a risk.Assessment, r risk.Reading) Advice {
	var actions []Action

	switch a.Level {
	case risk.LevelHigh:
		if r.WorkHours > 12 {
			actions = append(actions, Action{
				Action:         "Immediately rotate fatigued operators to less critical positions",
				Priority:       "High",
				Timeframe:      "Immediate",
				Reasoning:      "Extended work hours significantly increase error probability",
				ExpectedImpact: "Reduces fatigue-related incidents by 60-80%",
			})
		}
		if r.NearMissCount > 5 {
			actions = append(actions, Action{
				Action:         "Conduct emergency safety briefing and equipment inspection",
				Priority:       "High",
				Timeframe:      "Next 15 minutes",
				Reasoning:      "High near-miss frequency indicates systemic safety breakdown",
				ExpectedImpact: "Prevents escalation to actual incidents",
			})
		}
		actions = append(actions, Action{
			Action:         "Reduce production speed by 30% until risk subsides",
			Priority:       "High",
			Timeframe:      "Immediate",
			Reasoning:      "Slower pace allows better safety protocol adherence",
			ExpectedImpact: "Significantly reduces accident probability",
		})
	case risk.LevelMedium:
		actions = append(actions,
			Action{
				Action:         "Schedule mandatory 15-minute safety break",
				Priority:       "Medium",
				Timeframe:      "Next 20 minutes",
				Reasoning:      "Moderate risk requires attention reset",
				ExpectedImpact: "Improves alertness and safety awareness",
			},
			Action{
				Action:         "Increase supervisor presence on floor",
				Priority:       "Medium",
				Timeframe:      "Next 30 minutes",
				Reasoning:      "Enhanced oversight during elevated risk periods",
				ExpectedImpact: "Early detection of developing issues",
			})
	default:
		actions = append(actions, Action{
			Action:         "Continue standard safety monitoring procedures",
			Priority:       "Low",
			Timeframe:      "Ongoing",
			Reasoning:      "Current conditions are within acceptable parameters",
			ExpectedImpact: "Maintains baseline safety levels",
		})
	}

	strategy := "Maintain standard safety protocols"
	urgency := "Planned"
	switch a.Level {
	case risk.LevelHigh:
		strategy = "Immediate intervention required to prevent incidents"
		urgency = "Immediate"
	case risk.LevelMedium:
		strategy = "Enhanced monitoring and preventive measures"
		urgency = "Soon"
	}

	return Advice{
		Actions:    actions,
		Strategy:   strategy,
		Urgency:    urgency,
		Confidence: 0.85,
	}
}
