package chromakey

import "image"

// ErosionStats summarises one erosion run.
type ErosionStats struct {
	Total    int `json:"total_pixels"`
	Seeds    int `json:"seed_pixels"`
	Removed  int `json:"removed_pixels"`
	Cleaned  int `json:"fringe_pixels_cleaned"`
	Boundary int `json:"boundary_pixels"`
}

// Transparent is the number of pixels made transparent by both passes.
func (s ErosionStats) Transparent() int {
	return s.Removed + s.Cleaned
}

// RemovedFraction is Transparent divided by Total, or 0 for an empty image.
func (s ErosionStats) RemovedFraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Transparent()) / float64(s.Total)
}

// erosion is the working set of one Erode call.
type erosion struct {
	r   *Raster
	cls Classifier

	alpha    []uint8
	visited  []bool
	boundary []bool
	queue    []int
	stats    ErosionStats
}

// Erode removes background pixels connected to the image border.
//
// Every border pixel that cls classifies as background seeds a FIFO flood
// fill over 4-connected neighbours. A neighbour that fails classification
// is marked as a boundary and is never tested or entered again, so the fill
// cannot reach background-coloured pixels that are enclosed by foreground.
//
// A single cleanup scan then clears opaque 4-neighbours of the removed
// region that are green fringe (see Classifier.IsFringe). Only neighbours
// of pixels removed by the flood fill are examined, so at most one ring is
// cleaned.
//
// The result keeps the raster's RGB values; removed pixels get alpha 0 and
// everything else alpha 255. If no border pixel is background the output is
// fully opaque.
func Erode(r *Raster, cls Classifier) (*image.NRGBA, ErosionStats) {
	n := r.W * r.H
	e := &erosion{
		r:        r,
		cls:      cls,
		alpha:    make([]uint8, n),
		visited:  make([]bool, n),
		boundary: make([]bool, n),
		queue:    make([]int, 0, 2*(r.W+r.H)),
	}
	for i := range e.alpha {
		e.alpha[i] = 255
	}
	e.stats.Total = n

	if n > 0 {
		e.seed()
		e.flood()
		e.cleanFringe()
	}
	return r.WithAlpha(e.alpha), e.stats
}

func (e *erosion) trySeed(x, y int) {
	i := y*e.r.W + x
	if e.visited[i] {
		return
	}
	if e.cls.IsBackground(e.r.atIndex(i)) {
		e.visited[i] = true
		e.queue = append(e.queue, i)
		e.stats.Seeds++
	}
}

// seed scans the top row, bottom row, left column and right column.
func (e *erosion) seed() {
	w, h := e.r.W, e.r.H
	for x := 0; x < w; x++ {
		e.trySeed(x, 0)
	}
	for x := 0; x < w; x++ {
		e.trySeed(x, h-1)
	}
	for y := 0; y < h; y++ {
		e.trySeed(0, y)
	}
	for y := 0; y < h; y++ {
		e.trySeed(w-1, y)
	}
}

// flood drains the queue. Each pixel is popped at most once and classified
// at most once.
func (e *erosion) flood() {
	w, h := e.r.W, e.r.H
	for head := 0; head < len(e.queue); head++ {
		i := e.queue[head]
		e.alpha[i] = 0
		e.stats.Removed++

		x, y := i%w, i/w
		if y > 0 {
			e.visit(i - w)
		}
		if y < h-1 {
			e.visit(i + w)
		}
		if x > 0 {
			e.visit(i - 1)
		}
		if x < w-1 {
			e.visit(i + 1)
		}
	}
	e.queue = nil
}

func (e *erosion) visit(i int) {
	if e.boundary[i] || e.visited[i] {
		return
	}
	if e.cls.IsBackground(e.r.atIndex(i)) {
		e.visited[i] = true
		e.queue = append(e.queue, i)
		return
	}
	e.boundary[i] = true
	e.stats.Boundary++
}

// cleanFringe clears green fringe around the flooded region. visited marks
// exactly the pixels the flood made transparent, so pixels cleared here do
// not extend the scan.
func (e *erosion) cleanFringe() {
	w, h := e.r.W, e.r.H
	for i, flooded := range e.visited {
		if !flooded {
			continue
		}
		x, y := i%w, i/w
		if y > 0 {
			e.clean(i - w)
		}
		if y < h-1 {
			e.clean(i + w)
		}
		if x > 0 {
			e.clean(i - 1)
		}
		if x < w-1 {
			e.clean(i + 1)
		}
	}
}

func (e *erosion) clean(i int) {
	if e.alpha[i] == 0 {
		return
	}
	if e.cls.IsFringe(e.r.atIndex(i)) {
		e.alpha[i] = 0
		e.stats.Cleaned++
	}
}
