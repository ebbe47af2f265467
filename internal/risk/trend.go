package risk

// TrendTerm computes the risk acceleration over a short trailing
// window of base scores. baseScores holds the base score of every
// reading up to and including index, in sequence order. Readings
// before index 2 have no usable history and score 0. Falling risk
// velocity is clamped to 0; only rising risk is rewarded.
func TrendTerm(index int, baseScores []float64) float64 {
	if index < 2 || index >= len(baseScores) {
		return 0
	}

	start := index - 2
	window := baseScores[start : index+1]

	var acceleration float64
	for i := 1; i < len(window); i++ {
		acceleration += window[i] - window[i-1]
	}
	acceleration /= float64(len(window))

	if acceleration < 0 {
		return 0
	}
	return acceleration
}
