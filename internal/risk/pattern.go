package risk

import (
	"fmt"
	"math"
	"strings"
)

// patternWeight is the share of the adjusted score taken from the
// remembered score when a reading's bucket has been seen before.
const patternWeight = 0.3

// PatternMemory remembers the latest score observed for each coarse
// reading bucket. It is owned by the Analyzer instance, not shared
// module state, so callers can seed, inspect, and reset it.
//
// PatternMemory is not safe for concurrent use; the Analyzer's owner
// serializes access.
type PatternMemory struct {
	scores map[string]float64
}

// NewPatternMemory creates an empty pattern table.
func NewPatternMemory() *PatternMemory {
	return &PatternMemory{scores: make(map[string]float64)}
}

// Key quantizes a reading into its bucket key.
func (m *PatternMemory) Key(r Reading) string {
	return fmt.Sprintf("%d-%d-%s-%s",
		int(math.Floor(r.WorkHours/4)),
		r.NearMissCount/2,
		strings.ToLower(r.MachineUsage),
		strings.ToLower(r.Shift))
}

// Remember stores the latest score for a bucket, overwriting any
// previous value.
func (m *PatternMemory) Remember(key string, score float64) {
	m.scores[key] = score
}

// Recall returns the remembered score for a bucket, if any.
func (m *PatternMemory) Recall(key string) (float64, bool) {
	score, ok := m.scores[key]
	return score, ok
}

// Adjust blends a base score toward the remembered score for the
// bucket. Unknown buckets leave the score unchanged.
func (m *PatternMemory) Adjust(key string, base float64) float64 {
	remembered, ok := m.scores[key]
	if !ok {
		return base
	}
	return base*(1-patternWeight) + remembered*patternWeight
}

// Len returns the number of remembered buckets.
func (m *PatternMemory) Len() int {
	return len(m.scores)
}

// Reset clears the table. Called when a new data source replaces the
// active one.
func (m *PatternMemory) Reset() {
	m.scores = make(map[string]float64)
}
