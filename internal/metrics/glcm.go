package metrics

import "math"

// glcmOffset is the pixel-pair displacement (row, column) for one
// co-occurrence orientation at unit distance.
type glcmOffset struct {
	dr, dc int
}

// The four canonical GLCM orientations (0, 45, 90, 135 degrees).
var glcmOrientations = []glcmOffset{
	{0, 1},
	{1, 1},
	{1, 0},
	{1, -1},
}

// quantizeGray maps a [0,1] luminance plane onto discrete gray levels by
// 8-bit rounding followed by bucket division, so levels=64 reproduces the
// conventional value/4 quantization.
func quantizeGray(gray [][]float64, levels int) [][]int {
	div := 256 / levels
	out := make([][]int, len(gray))
	for y, row := range gray {
		out[y] = make([]int, len(row))
		for x, v := range row {
			g := int(v*255 + 0.5)
			if g < 0 {
				g = 0
			}
			if g > 255 {
				g = 255
			}
			out[y][x] = g / div
		}
	}
	return out
}

// glcmMatrix accumulates the symmetric, normalized gray-level co-occurrence
// matrix for one orientation at the given distance. Each pixel pair is
// counted in both directions; the matrix sums to 1 unless no pair fits the
// plane, in which case it is all zeros.
func glcmMatrix(quantized [][]int, levels int, o glcmOffset, distance int) [][]float64 {
	m := make([][]float64, levels)
	for i := range m {
		m[i] = make([]float64, levels)
	}

	height := len(quantized)
	if height == 0 {
		return m
	}
	width := len(quantized[0])

	dr, dc := o.dr*distance, o.dc*distance
	total := 0.0
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			r2, c2 := r+dr, c+dc
			if r2 < 0 || r2 >= height || c2 < 0 || c2 >= width {
				continue
			}
			i, j := quantized[r][c], quantized[r2][c2]
			m[i][j]++
			m[j][i]++
			total += 2
		}
	}

	if total > 0 {
		for i := range m {
			for j := range m[i] {
				m[i][j] /= total
			}
		}
	}
	return m
}

// glcmContrast is the intensity-difference moment sum p(i,j)*(i-j)^2.
func glcmContrast(m [][]float64) float64 {
	sum := 0.0
	for i := range m {
		for j, p := range m[i] {
			d := float64(i - j)
			sum += p * d * d
		}
	}
	return sum
}

// glcmHomogeneity is the inverse difference moment sum p(i,j)/(1+(i-j)^2).
func glcmHomogeneity(m [][]float64) float64 {
	sum := 0.0
	for i := range m {
		for j, p := range m[i] {
			d := float64(i - j)
			sum += p / (1 + d*d)
		}
	}
	return sum
}

// glcmEnergy is the angular second moment sum p(i,j)^2.
func glcmEnergy(m [][]float64) float64 {
	sum := 0.0
	for i := range m {
		for _, p := range m[i] {
			sum += p * p
		}
	}
	return sum
}

// glcmEntropy is -sum p*log2(p) over the non-zero cells.
func glcmEntropy(m [][]float64) float64 {
	ent := 0.0
	for i := range m {
		for _, p := range m[i] {
			if p > 0 {
				ent -= p * math.Log2(p)
			}
		}
	}
	return ent
}
