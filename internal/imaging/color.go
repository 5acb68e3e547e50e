package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents a non-premultiplied RGBA color with 8-bit components.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 = fully transparent, 255 = fully opaque
}

// HSVColor is a color in HSV space, the space the background classifier uses
// for its greenness test.
type HSVColor struct {
	H float64 `json:"h"` // Hue: 0-360 degrees (120 = green)
	S float64 `json:"s"` // Saturation: 0-1
	V float64 `json:"v"` // Value: 0-1
}

// ColorResult contains a sampled color in several representations.
type ColorResult struct {
	Hex  string    `json:"hex"` // "#RRGGBB", alpha excluded
	RGB  RGBColor  `json:"rgb"`
	RGBA RGBAColor `json:"rgba"`
	HSV  HSVColor  `json:"hsv"`

	// Greenish reports whether the background classifier treats the color as
	// green (eligible for the widened tolerance and fringe cleanup).
	Greenish bool `json:"greenish"`
}

// NewColorResult describes an 8-bit non-premultiplied color.
func NewColorResult(c RGBAColor) ColorResult {
	h, s, v := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsv()

	return ColorResult{
		Hex:      chromakey.RGB{R: c.R, G: c.G, B: c.B}.Hex(),
		RGB:      RGBColor{R: c.R, G: c.G, B: c.B},
		RGBA:     c,
		HSV:      HSVColor{H: round2(h), S: round2(s), V: round2(v)},
		Greenish: chromakey.IsGreenish(chromakey.RGB{R: c.R, G: c.G, B: c.B}),
	}
}

// SampleColor extracts the color at pixel (x, y). Coordinates are absolute
// image coordinates; an error is returned when they fall outside the image.
//
// The color is reported non-premultiplied, so a transparent pixel keeps the
// RGB values it was stored with.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %v", x, y, img.Bounds())
	}

	c := toNRGBA(img.At(x, y))
	res := NewColorResult(RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A})
	return &res, nil
}

// LabeledPoint is a pixel coordinate with an optional label.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples in input order.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti samples several points in one call. Any point outside
// the image fails the whole call.
func SampleColorsMulti(img image.Image, points []LabeledPoint) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		sample, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *sample,
		})
	}

	return &MultiColorResult{Samples: results}, nil
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
