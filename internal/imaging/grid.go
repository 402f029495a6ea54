package imaging

// Rect is a half-open pixel region: (X0,Y0) inclusive, (X1,Y1) exclusive.
type Rect struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Width returns the horizontal extent of the region.
func (r Rect) Width() int { return r.X1 - r.X0 }

// Height returns the vertical extent of the region.
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// GridCells partitions a width x height area into rows x cols cells.
//
// Cell boundaries are computed by integer division so the grid always
// covers the full area; trailing cells absorb the remainder pixels. The
// result is row-major (top-left cell first). Degenerate inputs (zero area
// or zero rows/cols) return nil.
func GridCells(width, height, rows, cols int) []Rect {
	if width <= 0 || height <= 0 || rows <= 0 || cols <= 0 {
		return nil
	}

	cells := make([]Rect, 0, rows*cols)
	for row := 0; row < rows; row++ {
		y0 := row * height / rows
		y1 := (row + 1) * height / rows
		if row == rows-1 {
			y1 = height
		}
		for col := 0; col < cols; col++ {
			x0 := col * width / cols
			x1 := (col + 1) * width / cols
			if col == cols-1 {
				x1 = width
			}
			cells = append(cells, Rect{X0: x0, Y0: y0, X1: x1, Y1: y1})
		}
	}
	return cells
}

// Patches returns the complete size x size windows that fit in a
// width x height area when sliding with the given stride. Windows that
// would extend past the right or bottom border are dropped, so an area
// smaller than one patch returns nil.
func Patches(width, height, size, stride int) []Rect {
	if size <= 0 || stride <= 0 {
		return nil
	}

	var patches []Rect
	for y := 0; y+size <= height; y += stride {
		for x := 0; x+size <= width; x += stride {
			patches = append(patches, Rect{X0: x, Y0: y, X1: x + size, Y1: y + size})
		}
	}
	return patches
}

// CenterRegion returns the central window of a width x height area, with
// half-extents of one sixth of each dimension (a third of the image around
// the midpoint).
func CenterRegion(width, height int) Rect {
	cx, cy := width/2, height/2
	hx, hy := width/6, height/6
	return Rect{
		X0: clampInt(cx-hx, 0, width),
		Y0: clampInt(cy-hy, 0, height),
		X1: clampInt(cx+hx, 0, width),
		Y1: clampInt(cy+hy, 0, height),
	}
}

// BottomBand returns the bottom horizontal band covering frac of the image
// height (e.g. 0.3 for the lowest 30%).
func BottomBand(width, height int, frac float64) Rect {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	y0 := int(float64(height) * (1 - frac))
	return Rect{X0: 0, Y0: clampInt(y0, 0, height), X1: width, Y1: height}
}

// SubPlane copies the region r out of a row-major plane, clipping to the
// plane bounds. An empty intersection returns nil.
func SubPlane(plane [][]float64, r Rect) [][]float64 {
	height := len(plane)
	if height == 0 {
		return nil
	}
	width := len(plane[0])

	y0 := clampInt(r.Y0, 0, height)
	y1 := clampInt(r.Y1, 0, height)
	x0 := clampInt(r.X0, 0, width)
	x1 := clampInt(r.X1, 0, width)
	if y0 >= y1 || x0 >= x1 {
		return nil
	}

	out := make([][]float64, y1-y0)
	for y := y0; y < y1; y++ {
		row := make([]float64, x1-x0)
		copy(row, plane[y][x0:x1])
		out[y-y0] = row
	}
	return out
}
