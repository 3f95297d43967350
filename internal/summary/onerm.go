package summary

import "math"

// EstimateOneRepMax estimates a one-rep max with the Epley formula
// 1RM = weight * (1 + 0.0333 * reps), rounded to two decimals.
func EstimateOneRepMax(weight float64, reps int) float64 {
	if reps <= 0 || weight <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return math.Round(weight*(1+0.0333*float64(reps))*100) / 100
}
