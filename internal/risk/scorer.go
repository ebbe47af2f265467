package risk

import (
	"math"
	"strings"
)

// fullScale spreads the weighted dimension contributions across the
// whole 0-100 score range: a dimension at maximum intensity
// contributes weight*fullScale points, so the four instantaneous
// dimensions top out at 35+30+20+10 and the temporal term supplies
// the last 5.
const fullScale = 100

// BaseScore computes the weighted non-linear risk score for a single
// reading, before pattern smoothing and trend adjustment. The result
// is clamped to [0, 100] and is monotone in work hours and near-miss
// count.
func BaseScore(r Reading, w Weights) float64 {
	score := math.Pow(r.WorkHours/15, 2) * w.WorkHours * fullScale
	score += math.Pow(float64(r.NearMissCount)/8, 1.5) * w.NearMiss * fullScale
	score += machineFrac(r.MachineUsage) * w.MachineUsage * fullScale
	score += shiftFrac(r.Shift) * w.Shift * fullScale

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// machineFrac maps a usage level to its dimension intensity. Free-form
// values come straight from CSV cells; anything unrecognized counts
// as low.
func machineFrac(usage string) float64 {
	switch strings.ToLower(usage) {
	case "high":
		return 1.0
	case "normal", "medium":
		return 0.5
	}
	return 0
}

func shiftFrac(shift string) float64 {
	if strings.ToLower(shift) == "night" {
		return 1.0
	}
	return 0
}
