// Package palette extracts the dominant colours of keyed sprites.
//
// Only visible pixels (alpha > 0) are considered, so the removed background
// never shows up in a palette. A greenish swatch in the result usually means
// chroma-key spill that survived fringe cleanup.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ErrNoVisiblePixels is returned for images without a single visible pixel.
var ErrNoVisiblePixels = errors.New("image has no visible pixels")

// Method selects the extraction algorithm.
type Method string

const (
	// MethodDominant uses dominantcolor's weighted clustering.
	MethodDominant Method = "dominant"
	// MethodKMeans runs k-means over (subsampled) visible pixels.
	MethodKMeans Method = "kmeans"
	// MethodHistogram buckets colours into 16-level bins per channel.
	MethodHistogram Method = "histogram"
)

const (
	// DefaultCount is the default palette size.
	DefaultCount = 8
	// MaxCount bounds the palette size.
	MaxCount = 64

	maxKMeansSamples = 12000

	// duplicateLab is the Lab distance under which two candidates are the
	// same swatch.
	duplicateLab = 1e-3
)

// Swatch is one palette entry.
type Swatch struct {
	Hex string        `json:"hex"`
	RGB chromakey.RGB `json:"rgb"`
	// Weight is the share of visible pixels the swatch represents, 0-1.
	Weight   float64 `json:"weight"`
	Greenish bool    `json:"greenish"`
}

// Extract returns up to count swatches ordered by weight, heaviest first.
func Extract(img image.Image, count int, method Method) ([]Swatch, error) {
	if count < 1 || count > MaxCount {
		return nil, fmt.Errorf("count must be between 1 and %d, got %d", MaxCount, count)
	}

	visible := visiblePixels(img)
	if len(visible) == 0 {
		return nil, ErrNoVisiblePixels
	}

	var swatches []Swatch
	switch method {
	case MethodDominant, "":
		swatches = dominant(visible, count)
	case MethodKMeans:
		var err error
		swatches, err = kmeansPalette(visible, count)
		if err != nil {
			return nil, err
		}
	case MethodHistogram:
		swatches = histogram(visible, count)
	default:
		return nil, fmt.Errorf("unknown palette method %q", method)
	}

	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Weight > swatches[j].Weight
	})
	return swatches, nil
}

// visiblePixels returns the colours of every pixel with alpha > 0, in row
// order.
func visiblePixels(img image.Image) []color.NRGBA {
	b := img.Bounds()
	out := make([]color.NRGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

func newSwatch(c colorful.Color, weight float64) Swatch {
	r, g, b := c.Clamped().RGB255()
	rgb := chromakey.RGB{R: r, G: g, B: b}
	return Swatch{
		Hex:      rgb.Hex(),
		RGB:      rgb,
		Weight:   weight,
		Greenish: chromakey.IsGreenish(rgb),
	}
}

// dominant packs the visible pixels into a one-row strip, so dominantcolor
// never sees the transparent background, and keeps the most diverse of its
// candidates.
func dominant(visible []color.NRGBA, count int) []Swatch {
	strip := image.NewNRGBA(image.Rect(0, 0, len(visible), 1))
	for i, c := range visible {
		strip.SetNRGBA(i, 0, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}

	candidates := dominantcolor.FindWeight(strip, max(24, count*8))
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: c.Weight})
	}
	return selectDiverse(weighted, count)
}

// kmeansPalette clusters visible pixels in RGB space. Large sprites are
// subsampled to keep the partition tractable.
func kmeansPalette(visible []color.NRGBA, count int) ([]Swatch, error) {
	step := 1
	if len(visible) > maxKMeansSamples {
		step = len(visible)/maxKMeansSamples + 1
	}

	dataset := make(clusters.Observations, 0, len(visible)/step+1)
	for i := 0; i < len(visible); i += step {
		c := visible[i]
		dataset = append(dataset, clusters.Coordinates{
			float64(c.R) / 255,
			float64(c.G) / 255,
			float64(c.B) / 255,
		})
	}

	k := min(max(count*4, count+2), len(dataset))
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition failed: %w", err)
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{
			col:    col,
			weight: float64(len(c.Observations)) / float64(len(dataset)),
		})
	}
	return selectDiverse(weighted, count), nil
}

// histogram buckets colours by the top four bits of each channel and reports
// each bucket's mean colour.
func histogram(visible []color.NRGBA, count int) []Swatch {
	type bucket struct {
		r, g, b, n int
	}
	buckets := make(map[uint16]*bucket)
	var order []uint16

	for _, c := range visible {
		key := uint16(c.R>>4)<<8 | uint16(c.G>>4)<<4 | uint16(c.B>>4)
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{}
			buckets[key] = bk
			order = append(order, key)
		}
		bk.r += int(c.R)
		bk.g += int(c.G)
		bk.b += int(c.B)
		bk.n++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return buckets[order[i]].n > buckets[order[j]].n
	})
	if len(order) > count {
		order = order[:count]
	}

	out := make([]Swatch, 0, len(order))
	for _, key := range order {
		bk := buckets[key]
		col := colorful.Color{
			R: float64(bk.r/bk.n) / 255,
			G: float64(bk.g/bk.n) / 255,
			B: float64(bk.b/bk.n) / 255,
		}
		out = append(out, newSwatch(col, float64(bk.n)/float64(len(visible))))
	}
	return out
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// selectDiverse picks count colours: the heaviest first, then repeatedly the
// candidate that maximises Lab distance to the picked set, scaled by its
// weight.
func selectDiverse(cands []weightedColor, count int) []Swatch {
	if len(cands) == 0 {
		return nil
	}
	count = min(count, len(cands))

	maxW := 0.0
	seed := 0
	for i, c := range cands {
		if c.weight > maxW {
			maxW = c.weight
			seed = i
		}
	}
	if maxW <= 0 {
		maxW = 1
	}

	picked := []int{seed}
	used := make([]bool, len(cands))
	used[seed] = true

	for len(picked) < count {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, p := range picked {
				minD = math.Min(minD, c.col.DistanceLab(cands[p].col))
			}
			if minD < duplicateLab {
				continue
			}
			score := minD * (0.55 + 0.45*math.Sqrt(c.weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]Swatch, 0, len(picked))
	for _, i := range picked {
		out = append(out, newSwatch(cands[i].col, cands[i].weight))
	}
	return out
}
