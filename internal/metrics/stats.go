package metrics

import "math"

// popStd is the population standard deviation (no Bessel correction),
// matching the convention of the statistics the attribute formulas were
// calibrated against.
func popStd(xs []float64) float64 {
	return math.Sqrt(popVar(xs))
}

// popVar is the population variance.
func popVar(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}
