package risk

// Level is a coarse risk classification derived from the numeric score.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Reading is one operational observation.
type Reading struct {
	WorkHours     float64 `json:"continuous_work_hours"`
	NearMissCount int     `json:"near_miss_count"`
	MachineUsage  string  `json:"machine_usage_level"`
	Shift         string  `json:"shift_type"`
	Timestamp     string  `json:"timestamp"`
}

// Assessment is the result of scoring one reading.
type Assessment struct {
	Score           int      `json:"riskScore"`
	Level           Level    `json:"riskLevel"`
	Factors         []string `json:"factors"`
	Confidence      float64  `json:"confidence"`
	Insights        []string `json:"aiInsights"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Weights holds the relative weight of each risk dimension.
type Weights struct {
	WorkHours    float64 `yaml:"work_hours"`
	NearMiss     float64 `yaml:"near_miss"`
	MachineUsage float64 `yaml:"machine_usage"`
	Shift        float64 `yaml:"shift"`
	Temporal     float64 `yaml:"temporal"`
}

// Thresholds maps a score to a level: High at or above High,
// Medium at or above Medium, Low below.
type Thresholds struct {
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

// DefaultWeights are the calibrated dimension weights.
func DefaultWeights() Weights {
	return Weights{
		WorkHours:    0.35,
		NearMiss:     0.30,
		MachineUsage: 0.20,
		Shift:        0.10,
		Temporal:     0.05,
	}
}

// DefaultThresholds are the canonical level boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 35, High: 65}
}

// LevelFor maps a score to a level under the given thresholds.
func (t Thresholds) LevelFor(score float64) Level {
	switch {
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ParseLevel sanitizes a free-form level string. Unrecognized values
// default to Low.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelLow, LevelMedium, LevelHigh:
		return Level(s)
	}
	return LevelLow
}
