package chromakey

import (
	"image"

	"github.com/disintegration/imaging"
)

// OpaqueBounds returns the smallest rectangle containing every pixel with
// alpha > 0, relative to img.Bounds().Min. ok is false when no such pixel
// exists.
func OpaqueBounds(img *image.NRGBA) (rect image.Rectangle, ok bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// AutoCrop trims fully transparent margins from img, keeping padding extra
// pixels on each side where the image allows. The returned rectangle is the
// kept region in img's coordinates.
//
// If img has no visible pixel, AutoCrop returns img unchanged, its full
// bounds, and ok=false. A negative padding is treated as zero.
func AutoCrop(img *image.NRGBA, padding int) (out *image.NRGBA, rect image.Rectangle, ok bool) {
	bbox, found := OpaqueBounds(img)
	if !found {
		return img, img.Bounds(), false
	}
	if padding < 0 {
		padding = 0
	}

	b := img.Bounds()
	rect = image.Rect(
		bbox.Min.X-padding, bbox.Min.Y-padding,
		bbox.Max.X+padding, bbox.Max.Y+padding,
	).Add(b.Min).Intersect(b)

	if rect == b {
		return img, rect, true
	}
	return imaging.Crop(img, rect), rect, true
}
