package chromakey

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxTolerance is the largest RGB Euclidean distance, sqrt(3 * 255²).
var MaxTolerance = math.Sqrt(3 * 255 * 255)

const (
	// GreenHueMin and GreenHueMax bound the green hue band, in turns.
	GreenHueMin = 0.22
	GreenHueMax = 0.44

	// GreenMinSaturation excludes near-grey colours from the green band.
	GreenMinSaturation = 0.15

	// GreenBoostFactor widens the tolerance for greenish pixels during
	// classification.
	GreenBoostFactor = 1.8

	// FringeFactor widens the tolerance for greenish pixels during the
	// residual cleanup pass.
	FringeFactor = 2.0
)

// IsGreenish reports whether c is perceptually green: HSV hue within
// [GreenHueMin, GreenHueMax] turns and saturation above GreenMinSaturation.
func IsGreenish(c RGB) bool {
	h, s, _ := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsv()
	turns := h / 360.0
	return turns >= GreenHueMin && turns <= GreenHueMax && s > GreenMinSaturation
}

// Classifier decides whether a colour belongs to the background.
//
// The zero value has no colours and classifies nothing as background.
type Classifier struct {
	Colors    BackgroundSet
	Tolerance float64

	// GreenBoost enables the widened tolerance for greenish colours.
	GreenBoost bool
}

// NewClassifier returns a Classifier with green boost enabled.
func NewClassifier(colors BackgroundSet, tolerance float64) Classifier {
	return Classifier{Colors: colors, Tolerance: tolerance, GreenBoost: true}
}

// within reports whether c lies within limit of any background colour.
func (cl Classifier) within(c RGB, limit float64) bool {
	if limit < 0 {
		return false
	}
	lim2 := limit * limit
	for _, bg := range cl.Colors {
		if float64(distSq(c, bg)) <= lim2 {
			return true
		}
	}
	return false
}

// IsBackground reports whether c is within Tolerance of any background
// colour, or, for greenish colours with GreenBoost set, within
// Tolerance × GreenBoostFactor.
func (cl Classifier) IsBackground(c RGB) bool {
	if len(cl.Colors) == 0 {
		return false
	}
	if cl.within(c, cl.Tolerance) {
		return true
	}
	return cl.GreenBoost && IsGreenish(c) && cl.within(c, cl.Tolerance*GreenBoostFactor)
}

// IsFringe reports whether c is greenish and within Tolerance × FringeFactor
// of any background colour.
func (cl Classifier) IsFringe(c RGB) bool {
	if len(cl.Colors) == 0 {
		return false
	}
	return IsGreenish(c) && cl.within(c, cl.Tolerance*FringeFactor)
}
