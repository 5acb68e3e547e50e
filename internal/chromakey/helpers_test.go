package chromakey

import (
	"image"
	"image/color"
)

var (
	keyGreen = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	navy     = color.NRGBA{R: 0, G: 0, B: 128, A: 255}
	red      = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	blue     = color.NRGBA{R: 0, G: 0, B: 255, A: 255}

	// fringe is greenish and 58.5 away from pure green: outside the
	// boosted classification limit (54) but inside the cleanup limit (60)
	// for tolerance 30.
	fringe = color.NRGBA{R: 0, G: 200, B: 20, A: 255}

	greenRGB = RGB{R: 0, G: 255, B: 0}
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillRect(img, img.Bounds(), c)
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// strokeRect paints the one-pixel outline of r.
func strokeRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

// ringImage is a size×size image: a border ring of width ring in ringColor
// around an interior of fill.
func ringImage(size, ring int, ringColor, fill color.NRGBA) *image.NRGBA {
	img := solidImage(size, size, ringColor)
	fillRect(img, image.Rect(ring, ring, size-ring, size-ring), fill)
	return img
}

func alphaAt(img *image.NRGBA, x, y int) uint8 {
	return img.NRGBAAt(x, y).A
}
