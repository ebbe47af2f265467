package risk

import (
	"fmt"
	"math"
	"strings"
)

// Analyzer is the deterministic risk engine: weighted base scoring,
// pattern-memory smoothing, and temporal trend adjustment. It is the
// fallback whenever AI analysis is unavailable, and the only engine
// in offline runs.
type Analyzer struct {
	weights    Weights
	thresholds Thresholds
	patterns   *PatternMemory
}

// NewAnalyzer creates an analyzer with its own pattern memory.
func NewAnalyzer(w Weights, t Thresholds) *Analyzer {
	return &Analyzer{weights: w, thresholds: t, patterns: NewPatternMemory()}
}

// Patterns exposes the pattern memory for seeding and reset.
func (a *Analyzer) Patterns() *PatternMemory {
	return a.patterns
}

// Train precomputes pattern associations across a full dataset, so
// that scoring a row of the same dataset benefits from every similar
// row, not just the ones already processed.
func (a *Analyzer) Train(readings []Reading) {
	for _, r := range readings {
		a.patterns.Remember(a.patterns.Key(r), BaseScore(r, a.weights))
	}
}

// Analyze scores one reading. index is the reading's position in the
// run and history holds the readings processed before it, in order;
// both feed the temporal trend term.
func (a *Analyzer) Analyze(r Reading, index int, history []Reading) Assessment {
	base := BaseScore(r, a.weights)
	key := a.patterns.Key(r)
	_, seen := a.patterns.Recall(key)

	adjusted := a.patterns.Adjust(key, base)
	final := adjusted + TrendTerm(index, a.baseScores(history, r))*a.weights.Temporal*10

	a.patterns.Remember(key, base)

	score := int(math.Round(final))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	factors, insights := describe(r)

	return Assessment{
		Score:      score,
		Level:      a.thresholds.LevelFor(final),
		Factors:    factors,
		Confidence: confidence(r, seen),
		Insights:   insights,
	}
}

// baseScores returns the base score of every prior reading plus the
// current one, in sequence order.
func (a *Analyzer) baseScores(history []Reading, current Reading) []float64 {
	scores := make([]float64, 0, len(history)+1)
	for _, h := range history {
		scores = append(scores, BaseScore(h, a.weights))
	}
	return append(scores, BaseScore(current, a.weights))
}

// describe generates the human-readable contributing factors and the
// matching advisory insights. These are presentation content only.
func describe(r Reading) (factors, insights []string) {
	if r.WorkHours > 12 {
		factors = append(factors, fmt.Sprintf("Critical fatigue risk: %gh continuous work", r.WorkHours))
		insights = append(insights, "Severe fatigue pattern detected - high incident correlation")
	} else if r.WorkHours > 8 {
		factors = append(factors, fmt.Sprintf("Elevated fatigue: %gh work period", r.WorkHours))
		insights = append(insights, "Model indicates increased error probability")
	}

	if r.NearMissCount > 5 {
		factors = append(factors, fmt.Sprintf("Critical near-miss pattern: %d incidents", r.NearMissCount))
		insights = append(insights, "High incident clustering detected")
	} else if r.NearMissCount > 2 {
		factors = append(factors, fmt.Sprintf("Warning: %d near-miss incidents", r.NearMissCount))
		insights = append(insights, "Trend analysis shows escalating risk trajectory")
	}

	switch strings.ToLower(r.MachineUsage) {
	case "high":
		factors = append(factors, "High machine stress detected")
		insights = append(insights, "Equipment stress analysis indicates maintenance window approaching")
	case "normal", "medium":
		factors = append(factors, "Normal machine operation")
		insights = append(insights, "Equipment operating within safe parameters")
	}

	if strings.ToLower(r.Shift) == "night" {
		factors = append(factors, "Night shift circadian risk factor")
		insights = append(insights, "Circadian rhythm analysis shows peak risk period")
	}

	return factors, insights
}

// confidence estimates assessment confidence from data completeness
// and whether the reading's bucket has been observed before.
func confidence(r Reading, patternSeen bool) float64 {
	present := 0
	if r.WorkHours > 0 {
		present++
	}
	if r.NearMissCount > 0 {
		present++
	}
	if r.MachineUsage != "" {
		present++
	}
	if r.Shift != "" {
		present++
	}

	c := 0.7 + float64(present)/4*0.2
	if patternSeen {
		c += 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}
