package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// MaxSheetScale bounds the preview upscale factor.
const MaxSheetScale = 16

// SheetOptions control sprite sheet layout.
type SheetOptions struct {
	// CellWidth and CellHeight fix the cell size. A zero dimension defaults
	// to the largest frame's size in that dimension.
	CellWidth  int `json:"cell_width"`
	CellHeight int `json:"cell_height"`

	// Columns per row. Zero or negative places every frame in one row.
	Columns int `json:"columns"`

	// Scale upscales the finished sheet by an integer factor with
	// nearest-neighbour sampling. 0 and 1 leave it unscaled.
	Scale int `json:"scale"`
}

// FrameCell records where a frame landed on the sheet.
type FrameCell struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
}

// SheetResult is a composed sprite sheet. Cell and Frames are in the
// coordinates of Image, so they include any Scale.
type SheetResult struct {
	Image   *image.NRGBA `json:"-"`
	Cell    image.Point  `json:"cell"`
	Columns int          `json:"columns"`
	Rows    int          `json:"rows"`
	Frames  []FrameCell  `json:"frames"`
}

// ComposeSheet lays frames out on a transparent canvas in the order given.
//
// Frame i is anchored at the top-left of cell (i%cols, i/cols). A frame
// smaller than its cell leaves the rest of the cell transparent; a frame
// larger than a fixed cell is clipped to the cell.
func ComposeSheet(frames []Frame, o SheetOptions) (*SheetResult, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if o.CellWidth < 0 || o.CellHeight < 0 {
		return nil, fmt.Errorf("cell size must not be negative, got %dx%d", o.CellWidth, o.CellHeight)
	}
	if o.Scale < 0 || o.Scale > MaxSheetScale {
		return nil, fmt.Errorf("scale must be between 0 and %d, got %d", MaxSheetScale, o.Scale)
	}

	cellW, cellH := o.CellWidth, o.CellHeight
	if cellW == 0 || cellH == 0 {
		maxW, maxH := 0, 0
		for _, f := range frames {
			b := f.Image.Bounds()
			maxW = max(maxW, b.Dx())
			maxH = max(maxH, b.Dy())
		}
		if cellW == 0 {
			cellW = maxW
		}
		if cellH == 0 {
			cellH = maxH
		}
	}
	if cellW == 0 || cellH == 0 {
		return nil, fmt.Errorf("frames are empty")
	}

	cols := o.Columns
	if cols <= 0 || cols > len(frames) {
		cols = len(frames)
	}
	rows := (len(frames) + cols - 1) / cols

	canvas := imaging.New(cols*cellW, rows*cellH, color.NRGBA{})
	cells := make([]FrameCell, 0, len(frames))

	for i, f := range frames {
		origin := image.Pt((i%cols)*cellW, (i/cols)*cellH)
		cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(cellW, cellH))}

		src := f.Image.Bounds()
		dst := image.Rectangle{Min: origin, Max: origin.Add(src.Size())}.Intersect(cell)
		draw.Draw(canvas, dst, f.Image, src.Min, draw.Src)

		cells = append(cells, FrameCell{
			Index: i,
			Name:  f.Name,
			X:     dst.Min.X,
			Y:     dst.Min.Y,
			W:     dst.Dx(),
			H:     dst.Dy(),
		})
	}

	res := &SheetResult{
		Image:   canvas,
		Cell:    image.Pt(cellW, cellH),
		Columns: cols,
		Rows:    rows,
		Frames:  cells,
	}
	if o.Scale > 1 {
		scaleSheet(res, o.Scale)
	}
	return res, nil
}

func scaleSheet(res *SheetResult, s int) {
	b := res.Image.Bounds()
	res.Image = imaging.Resize(res.Image, b.Dx()*s, b.Dy()*s, imaging.NearestNeighbor)
	res.Cell = res.Cell.Mul(s)
	for i := range res.Frames {
		c := &res.Frames[i]
		c.X, c.Y, c.W, c.H = c.X*s, c.Y*s, c.W*s, c.H*s
	}
}

// EncodeBase64PNG encodes img as a base64 PNG for inline transport.
func EncodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
