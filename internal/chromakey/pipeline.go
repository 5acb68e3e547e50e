package chromakey

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid options")

const (
	// DefaultTolerance is the default background distance tolerance.
	DefaultTolerance = 30

	// LowRemovalFraction is the share of removed pixels below which a result
	// is reported as suspicious.
	LowRemovalFraction = 0.001
)

// Options control one run of the background removal pipeline.
type Options struct {
	// Tolerance is the RGB distance within which a pixel matches a background
	// colour. Valid range is [0, MaxTolerance].
	Tolerance float64 `json:"tolerance"`

	// EdgeSize is the thickness of the edge sampling patches in pixels.
	EdgeSize int `json:"edge_size"`

	// SamplePoints is the number of sampling positions per edge.
	SamplePoints int `json:"sample_points"`

	// AutoCrop trims transparent margins after erosion.
	AutoCrop bool `json:"auto_crop"`

	// Padding is kept around the visible region when cropping.
	Padding int `json:"padding"`

	// GreenBoost widens the tolerance for greenish pixels.
	GreenBoost bool `json:"green_boost"`
}

// DefaultOptions returns the standard settings for green-screen frames.
func DefaultOptions() Options {
	return Options{
		Tolerance:    DefaultTolerance,
		EdgeSize:     DefaultEdgeSize,
		SamplePoints: DefaultSamplePoints,
		AutoCrop:     true,
		Padding:      0,
		GreenBoost:   true,
	}
}

// Validate checks that every field is within range.
func (o Options) Validate() error {
	switch {
	case o.Tolerance < 0 || o.Tolerance > MaxTolerance:
		return fmt.Errorf("%w: tolerance %.1f outside [0, %.1f]", ErrInvalidOptions, o.Tolerance, MaxTolerance)
	case o.EdgeSize < 1:
		return fmt.Errorf("%w: edge size must be at least 1, got %d", ErrInvalidOptions, o.EdgeSize)
	case o.SamplePoints < 1:
		return fmt.Errorf("%w: sample points must be at least 1, got %d", ErrInvalidOptions, o.SamplePoints)
	case o.Padding < 0:
		return fmt.Errorf("%w: padding must not be negative, got %d", ErrInvalidOptions, o.Padding)
	}
	return nil
}

// Warning is a non-fatal condition found while processing an image.
type Warning string

const (
	// WarnEmptyBackground means edge sampling found no background colour.
	WarnEmptyBackground Warning = "empty_background_set"

	// WarnNothingRemoved means erosion removed no pixels, or almost none.
	WarnNothingRemoved Warning = "nothing_removed"

	// WarnFullyTransparent means erosion removed every pixel; cropping was
	// skipped.
	WarnFullyTransparent Warning = "fully_transparent"
)

// Result is the outcome of Process.
type Result struct {
	// Image is the keyed (and possibly cropped) image.
	Image *image.NRGBA

	// Background is the detected background colour set.
	Background BackgroundSet

	Stats ErosionStats

	// Crop is the kept region in the input image's coordinates. It equals
	// the full image when cropping is disabled or skipped.
	Crop    image.Rectangle
	Cropped bool

	Warnings []Warning
}

// HasWarning reports whether w was raised.
func (r *Result) HasWarning(w Warning) bool {
	for _, x := range r.Warnings {
		if x == w {
			return true
		}
	}
	return false
}

// Process runs sampling, erosion and optional cropping on img.
func Process(img image.Image, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("nil image")
	}

	r := NewRaster(img)
	res := &Result{
		Background: DetectBackground(r, opts.EdgeSize, opts.SamplePoints),
	}
	if len(res.Background) == 0 {
		res.Warnings = append(res.Warnings, WarnEmptyBackground)
	}

	cls := Classifier{
		Colors:     res.Background,
		Tolerance:  opts.Tolerance,
		GreenBoost: opts.GreenBoost,
	}
	keyed, stats := Erode(r, cls)
	res.Stats = stats
	res.Image = keyed
	res.Crop = keyed.Bounds()

	if stats.Total > 0 && stats.RemovedFraction() < LowRemovalFraction {
		res.Warnings = append(res.Warnings, WarnNothingRemoved)
	}
	if stats.Total > 0 && stats.Transparent() == stats.Total {
		res.Warnings = append(res.Warnings, WarnFullyTransparent)
		return res, nil
	}

	if opts.AutoCrop {
		cropped, rect, ok := AutoCrop(keyed, opts.Padding)
		if ok {
			res.Image = cropped
			res.Crop = rect
			res.Cropped = rect != keyed.Bounds()
		}
	}
	return res, nil
}
