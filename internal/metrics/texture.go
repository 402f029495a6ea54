package metrics

import (
	"context"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/science"
)

const (
	textureLevels = 64
	microDistance = 1
	macroDistance = 5
)

// TextureAnalyzer measures co-occurrence texture at two spatial scales:
// distance 1 captures micro-texture (material grain), distance 5 captures
// macro-structure (patterns, repetition). Properties are averaged across
// the four orientations so the result is rotation-tolerant.
type TextureAnalyzer struct{}

var _ science.Analyzer = TextureAnalyzer{}

func (TextureAnalyzer) Name() string { return "texture" }

func (TextureAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (TextureAnalyzer) Requires() []string { return []string{"gray"} }

func (TextureAnalyzer) Provides() []string {
	return []string{
		"texture.micro.contrast",
		"texture.micro.homogeneity",
		"texture.macro.contrast",
		"texture.macro.homogeneity",
	}
}

func (TextureAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	small := imaging.DownscaleGray(f.Gray(), glcmMaxSide)
	quant := quantizeGray(small, textureLevels)

	microContrast, microHomogeneity := textureProps(quant, microDistance)
	macroContrast, macroHomogeneity := textureProps(quant, macroDistance)

	f.AddAttribute("texture.micro.contrast", microContrast, 1.0)
	f.AddAttribute("texture.micro.homogeneity", microHomogeneity, 1.0)
	f.AddAttribute("texture.macro.contrast", macroContrast, 1.0)
	f.AddAttribute("texture.macro.homogeneity", macroHomogeneity, 1.0)
	return nil
}

// textureProps averages contrast and homogeneity over the four
// orientations at one distance. Contrast is divided by its theoretical
// maximum (levels-1)^2 so it lands in [0,1] instead of saturating the
// attribute clamp; homogeneity is already bounded.
func textureProps(quant [][]int, distance int) (contrast, homogeneity float64) {
	maxContrast := float64((textureLevels - 1) * (textureLevels - 1))
	for _, o := range glcmOrientations {
		m := glcmMatrix(quant, textureLevels, o, distance)
		contrast += glcmContrast(m)
		homogeneity += glcmHomogeneity(m)
	}
	n := float64(len(glcmOrientations))
	return contrast / n / maxContrast, homogeneity / n
}
