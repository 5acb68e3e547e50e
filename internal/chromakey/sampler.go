package chromakey

// ClusterDistance is the RGB distance under which two edge samples are
// considered the same background colour.
const ClusterDistance = 30

const (
	// DefaultEdgeSize is the default sampling patch thickness in pixels.
	DefaultEdgeSize = 10

	// DefaultSamplePoints is the default number of sample positions per edge.
	DefaultSamplePoints = 5
)

// Edge identifies which border of the image a sample was taken from.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "unknown"
	}
}

// ColorSample is the mean colour of one edge patch.
type ColorSample struct {
	Edge  Edge `json:"-"`
	Color RGB  `json:"color"`
	// Count is the number of pixels the mean was taken over.
	Count int `json:"count"`
}

// BackgroundSet is an ordered list of distinct background colours. Members
// are at least ClusterDistance apart. An empty set classifies nothing as
// background.
type BackgroundSet []RGB

// span is a half-open pixel interval.
type span struct{ lo, hi int }

func clip(lo, hi, n int) span {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	return span{lo, hi}
}

// SampleEdges takes samplePoints evenly spaced patches along each of the four
// edges and returns their mean colours in top, bottom, left, right order.
//
// A patch is an edgeSize-wide square centred on the image border at its
// sample position, clipped to the image:
//   - along the edge it covers [p-edgeSize/2, p-edgeSize/2+edgeSize)
//   - across the edge it reaches ceil(edgeSize/2) pixels inward
//
// Positions are floor(n*(i+1)/(samplePoints+1)) for i in [0, samplePoints),
// where n is the edge length. Patches that clip to nothing are skipped.
func SampleEdges(r *Raster, edgeSize, samplePoints int) []ColorSample {
	if r == nil || r.W == 0 || r.H == 0 || edgeSize < 1 || samplePoints < 1 {
		return nil
	}

	samples := make([]ColorSample, 0, 4*samplePoints)
	add := func(e Edge, xs, ys span) {
		if s, ok := patchMean(r, xs, ys); ok {
			s.Edge = e
			samples = append(samples, s)
		}
	}

	half := edgeSize / 2
	depth := (edgeSize + 1) / 2
	along := func(p, n int) span { return clip(p-half, p-half+edgeSize, n) }

	for i := 0; i < samplePoints; i++ {
		x := r.W * (i + 1) / (samplePoints + 1)
		add(EdgeTop, along(x, r.W), clip(0, depth, r.H))
	}
	for i := 0; i < samplePoints; i++ {
		x := r.W * (i + 1) / (samplePoints + 1)
		add(EdgeBottom, along(x, r.W), clip(r.H-depth, r.H, r.H))
	}
	for i := 0; i < samplePoints; i++ {
		y := r.H * (i + 1) / (samplePoints + 1)
		add(EdgeLeft, clip(0, depth, r.W), along(y, r.H))
	}
	for i := 0; i < samplePoints; i++ {
		y := r.H * (i + 1) / (samplePoints + 1)
		add(EdgeRight, clip(r.W-depth, r.W, r.W), along(y, r.H))
	}
	return samples
}

// patchMean averages the pixels in xs × ys. Channel means are truncated.
func patchMean(r *Raster, xs, ys span) (ColorSample, bool) {
	if xs.hi <= xs.lo || ys.hi <= ys.lo {
		return ColorSample{}, false
	}
	var sr, sg, sb, n int
	for y := ys.lo; y < ys.hi; y++ {
		for x := xs.lo; x < xs.hi; x++ {
			c := r.atIndex(y*r.W + x)
			sr += int(c.R)
			sg += int(c.G)
			sb += int(c.B)
			n++
		}
	}
	return ColorSample{
		Color: RGB{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)},
		Count: n,
	}, true
}

// Cluster reduces samples to representatives in first-seen order. A sample
// closer than ClusterDistance to an existing representative is dropped.
func Cluster(samples []ColorSample) BackgroundSet {
	set := make(BackgroundSet, 0, len(samples))
	for _, s := range samples {
		seen := false
		for _, c := range set {
			if distSq(s.Color, c) < ClusterDistance*ClusterDistance {
				seen = true
				break
			}
		}
		if !seen {
			set = append(set, s.Color)
		}
	}
	return set
}

// DetectBackground samples the edges of r and clusters the samples into a
// BackgroundSet.
func DetectBackground(r *Raster, edgeSize, samplePoints int) BackgroundSet {
	return Cluster(SampleEdges(r, edgeSize, samplePoints))
}
