package chromakey

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// RGB is an 8-bit colour without alpha.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// distSq is the squared Euclidean distance between two colours.
func distSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Distance returns the Euclidean distance between two colours in RGB space.
// The largest possible value is MaxTolerance.
func Distance(a, b RGB) float64 {
	return math.Sqrt(float64(distSq(a, b)))
}

// Raster is an owned RGB pixel buffer in row-major order.
//
// Pixel (x, y) occupies Pix[(y*W+x)*3 : (y*W+x)*3+3]. The buffer is never
// modified by the erosion pipeline; transparency lives in a separate alpha
// buffer.
type Raster struct {
	W, H int
	Pix  []uint8
}

// NewRaster copies img into a Raster. The image is first normalised to
// non-premultiplied 8-bit RGBA, then the alpha channel is dropped.
func NewRaster(img image.Image) *Raster {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	r := &Raster{W: w, H: h, Pix: make([]uint8, w*h*3)}
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		dst := r.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3+0] = row[x*4+0]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return r
}

// In reports whether (x, y) lies inside the raster.
func (r *Raster) In(x, y int) bool {
	return x >= 0 && x < r.W && y >= 0 && y < r.H
}

// At returns the colour at (x, y). It panics if the point is out of range.
func (r *Raster) At(x, y int) RGB {
	if !r.In(x, y) {
		panic(fmt.Sprintf("chromakey: pixel (%d,%d) outside %dx%d raster", x, y, r.W, r.H))
	}
	return r.atIndex(y*r.W + x)
}

func (r *Raster) atIndex(i int) RGB {
	p := r.Pix[i*3 : i*3+3 : i*3+3]
	return RGB{R: p[0], G: p[1], B: p[2]}
}

// WithAlpha combines the raster's colour channels with an alpha buffer of
// length W*H into a new NRGBA image.
func (r *Raster) WithAlpha(alpha []uint8) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	for i := 0; i < r.W*r.H; i++ {
		out.Pix[i*4+0] = r.Pix[i*3+0]
		out.Pix[i*4+1] = r.Pix[i*3+1]
		out.Pix[i*4+2] = r.Pix[i*3+2]
		out.Pix[i*4+3] = alpha[i]
	}
	return out
}
