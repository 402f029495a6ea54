package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// LabColor is one pixel in CIE L*a*b* space at the conventional scale:
// L in [0,100], a and b roughly in [-100,100]. Positive a leans red,
// positive b leans yellow, so a>0 or b>0 reads as a warm pixel.
type LabColor struct {
	L float64
	A float64
	B float64
}

// HSVColor is one pixel in HSV space: H in [0,360) degrees, S and V in [0,1].
type HSVColor struct {
	H float64
	S float64
	V float64
}

// LabImage converts an image to a row-major CIE L*a*b* plane using a D65
// reference white.
func LabImage(img image.Image) [][]LabColor {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	lab := make([][]LabColor, height)
	for y := 0; y < height; y++ {
		lab[y] = make([]LabColor, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			c := colorful.Color{
				R: float64(r>>8) / 255.0,
				G: float64(g>>8) / 255.0,
				B: float64(b>>8) / 255.0,
			}
			// go-colorful returns L in [0,1] and a,b in unit-ish range;
			// scale by 100 to the conventional L*a*b* coordinates.
			l, la, lb := c.Lab()
			lab[y][x] = LabColor{L: l * 100, A: la * 100, B: lb * 100}
		}
	}
	return lab
}

// HSVImage converts an image to a row-major HSV plane.
func HSVImage(img image.Image) [][]HSVColor {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	hsv := make([][]HSVColor, height)
	for y := 0; y < height; y++ {
		hsv[y] = make([]HSVColor, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			c := colorful.Color{
				R: float64(r>>8) / 255.0,
				G: float64(g>>8) / 255.0,
				B: float64(b>>8) / 255.0,
			}
			h, s, v := c.Hsv()
			hsv[y][x] = HSVColor{H: h, S: s, V: v}
		}
	}
	return hsv
}
