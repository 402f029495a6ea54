package imaging

import "math"

// ZNormalize returns a copy of the plane shifted to zero mean and scaled to
// unit variance. A small epsilon keeps flat planes finite instead of
// dividing by zero.
func ZNormalize(plane [][]float64) [][]float64 {
	n := 0
	sum := 0.0
	for _, row := range plane {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, row := range plane {
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
	}
	std := math.Sqrt(variance/float64(n)) + 1e-6

	out := make([][]float64, len(plane))
	for y, row := range plane {
		out[y] = make([]float64, len(row))
		for x, v := range row {
			out[y][x] = (v - mean) / std
		}
	}
	return out
}

// CosineSimilarity computes the cosine of the angle between two planes of
// identical shape, treating each as a flat vector. The result is in [-1,1];
// mismatched shapes or empty planes return 0.
func CosineSimilarity(a, b [][]float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for y := range a {
		if len(a[y]) != len(b[y]) {
			return 0
		}
		for x := range a[y] {
			dot += a[y][x] * b[y][x]
			na += a[y][x] * a[y][x]
			nb += b[y][x] * b[y][x]
		}
	}
	denom := math.Sqrt(na)*math.Sqrt(nb) + 1e-6
	return dot / denom
}

// MirrorHorizontal returns the plane flipped left-to-right.
func MirrorHorizontal(plane [][]float64) [][]float64 {
	out := make([][]float64, len(plane))
	for y, row := range plane {
		w := len(row)
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			out[y][x] = row[w-1-x]
		}
	}
	return out
}

// MirrorVertical returns the plane flipped top-to-bottom.
func MirrorVertical(plane [][]float64) [][]float64 {
	h := len(plane)
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := plane[h-1-y]
		cp := make([]float64, len(row))
		copy(cp, row)
		out[y] = cp
	}
	return out
}
