package epoch

import "math"

// TruthPowerWeights combines accuracy and reputation into normalized merit
// weights: raw_i = mis_i^alpha * rep_i, scaled so the set sums to 1. Raising
// MIS to alpha (default 2) makes the distribution super-linear, rewarding
// accuracy disproportionately. An all-zero raw set yields all-zero weights.
func TruthPowerWeights(mis, reputation []float64, alpha float64) []float64 {
	weights := make([]float64, len(mis))
	total := 0.0
	for i := range mis {
		raw := math.Pow(math.Max(0, mis[i]), alpha) * math.Max(0, reputation[i])
		weights[i] = raw
		total += raw
	}
	if total <= 0 {
		return make([]float64, len(mis))
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}
