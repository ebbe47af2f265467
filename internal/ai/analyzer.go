package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prosentry/prosentry/internal/risk"
)

const analysisPrompt = `You are an expert industrial safety analyst. Analyze the following operational data and provide a JSON risk assessment.

CURRENT OPERATIONAL DATA:
- Work Hours: %g hours continuous
- Near Miss Count: %d incidents
- Machine Usage: %s
- Shift Type: %s
- Timestamp: %s

HISTORICAL CONTEXT:
%s

ANALYSIS REQUIREMENTS:
1. Calculate a risk score (0-100) from fatigue levels, incident patterns, equipment stress, circadian factors, and the historical trend.
2. Determine the risk level: Low, Medium or High.
3. Identify the specific contributing factors.
4. Provide a confidence level (0.0-1.0).
5. Generate insights about patterns and trends.
6. Suggest specific preventive recommendations.

Respond with ONLY this JSON:
{
    "riskScore": number,
    "riskLevel": "Low|Medium|High",
    "factors": ["factor1", "factor2"],
    "confidence": number,
    "aiInsights": ["insight1", "insight2"],
    "recommendations": ["rec1", "rec2"]
}`

// Status tags the outcome of an AI analysis attempt.
type Status int

const (
	StatusOK Status = iota
	StatusTimedOut
	StatusFailed
)

// Outcome is the tagged result of an AI analysis attempt. Callers
// fall back to the deterministic engine on any non-OK status.
type Outcome struct {
	Status     Status
	Assessment risk.Assessment
	Err        error
}

// RiskAnalyzer scores readings through a generative-language provider
// under a hard deadline.
type RiskAnalyzer struct {
	provider Provider
	timeout  time.Duration
}

// NewRiskAnalyzer creates an analyzer. A nil provider makes every
// Analyze call fail, which callers treat as a fallback trigger.
func NewRiskAnalyzer(provider Provider, timeout time.Duration) *RiskAnalyzer {
	return &RiskAnalyzer{provider: provider, timeout: timeout}
}

// Analyze asks the provider to score one reading given its history.
// The call is bounded by the configured timeout.
func (a *RiskAnalyzer) Analyze(ctx context.Context, r risk.Reading, history []risk.Reading) Outcome {
	if a.provider == nil {
		return Outcome{Status: StatusFailed, Err: errors.New("no provider configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf(analysisPrompt,
		r.WorkHours, r.NearMissCount, r.MachineUsage, r.Shift, r.Timestamp,
		formatHistory(history))

	text, err := a.provider.Generate(ctx, prompt, 512)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Outcome{Status: StatusTimedOut, Err: err}
		}
		return Outcome{Status: StatusFailed, Err: err}
	}

	parsed := ExtractJSON(text)
	if parsed == nil {
		return Outcome{Status: StatusFailed, Err: errors.New("response was not valid JSON")}
	}
	if _, ok := parsed["riskScore"]; !ok {
		return Outcome{Status: StatusFailed, Err: errors.New("response missing riskScore")}
	}

	return Outcome{Status: StatusOK, Assessment: assessmentFrom(parsed)}
}

// assessmentFrom builds a sanitized assessment from parsed model
// output: score and confidence clamped, level coerced to a known
// value.
func assessmentFrom(m map[string]any) risk.Assessment {
	score := int(getFloat(m, "riskScore", 0))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	confidence := getFloat(m, "confidence", 0.7)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return risk.Assessment{
		Score:           score,
		Level:           risk.ParseLevel(getString(m, "riskLevel", "Low")),
		Factors:         getStrings(m, "factors"),
		Confidence:      confidence,
		Insights:        getStrings(m, "aiInsights"),
		Recommendations: getStrings(m, "recommendations"),
	}
}

func formatHistory(history []risk.Reading) string {
	if len(history) == 0 {
		return "No prior readings."
	}
	var lines []string
	for i, h := range history {
		lines = append(lines, fmt.Sprintf("Step %d: %gh work, %d near-misses, %s machine usage, %s shift",
			i+1, h.WorkHours, h.NearMissCount, h.MachineUsage, h.Shift))
	}
	return strings.Join(lines, "\n")
}
