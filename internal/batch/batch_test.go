package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyGreen = color.NRGBA{G: 255, A: 255}
	navy     = color.NRGBA{B: 128, A: 255}
)

// ringFrame is a green-screen frame: a border of width ring around a navy
// sprite filling the rest.
func ringFrame(size, ring int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := keyGreen
			if x >= ring && x < size-ring && y >= ring && y < size-ring {
				c = navy
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// frameDir writes n ring frames named frame_00.png .. into a new directory.
func frameDir(t *testing.T, n int) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "frames")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for i := 0; i < n; i++ {
		writePNG(t, filepath.Join(dir, frameName(i)), ringFrame(32, 5))
	}
	return dir
}

func frameName(i int) string {
	return "frame_0" + string(rune('0'+i)) + ".png"
}

// decodePNG reads a PNG as NRGBA. Fully opaque images are stored without an
// alpha channel and decode to another type, so everything is converted.
func decodePNG(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA))
		}
	}
	return out
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("frames", "walk_01_nobg.png"), DefaultOutputPath(filepath.Join("frames", "walk_01.jpg")))
	assert.Equal(t, "a_nobg.png", DefaultOutputPath("a.png"))
	assert.Equal(t, "noext_nobg.png", DefaultOutputPath("noext"))
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "walk.png")
	writePNG(t, in, ringFrame(64, 5))

	res, err := ProcessFile(in, "", chromakey.DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.OK)

	assert.Equal(t, "walk.png", res.File)
	assert.Equal(t, filepath.Join(dir, "walk_nobg.png"), res.Output)
	assert.True(t, res.Cropped)
	assert.Equal(t, 54, res.Width)
	assert.Equal(t, 54, res.Height)
	assert.Equal(t, 64*64-54*54, res.Stats.Removed)
	assert.InDelta(t, 100*float64(64*64-54*54)/float64(64*64), res.RemovedPercent, 1e-9)
	assert.Empty(t, res.Warnings)
	assert.NoError(t, res.Err())

	out := decodePNG(t, res.Output)
	assert.Equal(t, image.Rect(0, 0, 54, 54), out.Bounds())
	assert.Equal(t, navy, out.NRGBAAt(0, 0))
}

func TestProcessFile_ExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "walk.png")
	writePNG(t, in, ringFrame(32, 5))
	out := filepath.Join(dir, "keyed", "sprite.png")

	res, err := ProcessFile(in, out, chromakey.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)
	assert.FileExists(t, out)
}

func TestProcessFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ProcessFile(filepath.Join(dir, "missing.png"), "", chromakey.DefaultOptions())
	assert.ErrorIs(t, err, ErrInputNotFound)

	_, err = ProcessFile(dir, "", chromakey.DefaultOptions())
	assert.ErrorIs(t, err, ErrInputNotFound)

	bad := chromakey.DefaultOptions()
	bad.Tolerance = -5
	_, err = ProcessFile(filepath.Join(dir, "missing.png"), "", bad)
	assert.ErrorIs(t, err, chromakey.ErrInvalidOptions)
}

func TestProcessFile_CorruptInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.png")
	writeFile(t, in, "definitely not a png")

	res, err := ProcessFile(in, "", chromakey.DefaultOptions())
	require.Error(t, err)
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, err, res.Err())
	assert.NoFileExists(t, DefaultOutputPath(in))
}

func TestProcessFile_FullyTransparentStillWritten(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "blank.png")
	writePNG(t, in, ringFrame(16, 8))

	res, err := ProcessFile(in, "", chromakey.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, chromakey.WarnFullyTransparent)
	assert.Equal(t, 16, res.Width)
	assert.FileExists(t, res.Output)
}

func TestProcessDirectory_MixedBatch(t *testing.T) {
	dir := frameDir(t, 5)
	writeFile(t, filepath.Join(dir, "frame_03.png"), "corrupt")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	summary, err := ProcessDirectory(context.Background(), dir, Options{Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Warned)
	assert.Equal(t, 3, summary.Workers)
	assert.False(t, summary.Cancelled)
	assert.Len(t, summary.RunID, 27)
	assert.Equal(t, dir+OutputSuffix, summary.OutputDir)
	assert.InDelta(t, 100*float64(32*32-22*22)/float64(32*32), summary.MeanRemovedPercent, 1e-9)

	require.Len(t, summary.Results, 5)
	for i, r := range summary.Results {
		assert.Equal(t, frameName(i), r.File)
	}

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "frame_03.png", failures[0].File)
	assert.NotEmpty(t, failures[0].Error)

	for i := 0; i < 5; i++ {
		out := filepath.Join(summary.OutputDir, frameName(i))
		if i == 3 {
			assert.NoFileExists(t, out)
			continue
		}
		assert.FileExists(t, out)
	}
}

func TestProcessDirectory_DeterministicAcrossWorkerCounts(t *testing.T) {
	dir := frameDir(t, 6)

	serial, err := ProcessDirectory(context.Background(), dir, Options{
		OutputDir: filepath.Join(t.TempDir(), "serial"),
		Workers:   1,
	})
	require.NoError(t, err)

	parallel, err := ProcessDirectory(context.Background(), dir, Options{
		OutputDir: filepath.Join(t.TempDir(), "parallel"),
		Workers:   4,
	})
	require.NoError(t, err)

	require.Equal(t, serial.Succeeded, parallel.Succeeded)
	for i := range serial.Results {
		a := decodePNG(t, serial.Results[i].Output)
		b := decodePNG(t, parallel.Results[i].Output)
		assert.Equal(t, a.Pix, b.Pix, "frame %d differs", i)
		assert.Equal(t, serial.Results[i].Stats, parallel.Results[i].Stats)
	}
}

func TestProcessDirectory_Empty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), "no frames here")

	summary, err := ProcessDirectory(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Results)
	assert.Empty(t, summary.Failures())
	assert.DirExists(t, summary.OutputDir)
}

func TestProcessDirectory_InputErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ProcessDirectory(context.Background(), filepath.Join(dir, "missing"), Options{})
	assert.ErrorIs(t, err, ErrInputNotFound)

	file := filepath.Join(dir, "frame.png")
	writePNG(t, file, ringFrame(8, 2))
	_, err = ProcessDirectory(context.Background(), file, Options{})
	assert.ErrorIs(t, err, ErrInputNotFound)

	_, err = ProcessDirectory(context.Background(), dir, Options{OutputDir: dir})
	assert.ErrorIs(t, err, chromakey.ErrInvalidOptions)

	bad := chromakey.DefaultOptions()
	bad.SamplePoints = 0
	_, err = ProcessDirectory(context.Background(), dir, Options{Job: bad})
	assert.ErrorIs(t, err, chromakey.ErrInvalidOptions)
}

func TestProcessDirectory_StemCollision(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "in")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// Decoding sniffs the content, so a PNG payload behind .jpg is fine here.
	writePNG(t, filepath.Join(dir, "walk.jpg"), ringFrame(16, 5))
	writePNG(t, filepath.Join(dir, "walk.png"), ringFrame(16, 5))

	summary, err := ProcessDirectory(context.Background(), dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)

	assert.Equal(t, filepath.Join(summary.OutputDir, "walk.png"), summary.Results[0].Output)
	assert.Equal(t, filepath.Join(summary.OutputDir, "walk.png.png"), summary.Results[1].Output)
}

func TestProcessDirectory_Cancelled(t *testing.T) {
	dir := frameDir(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := ProcessDirectory(ctx, dir, Options{Workers: 2})
	require.NoError(t, err)

	assert.True(t, summary.Cancelled)
	assert.Equal(t, 4, summary.Failed)
	for _, r := range summary.Results {
		assert.True(t, errors.Is(r.Err(), context.Canceled), "%s: %v", r.File, r.Err())
		assert.NoFileExists(t, r.Output)
	}
}

func TestProcessDirectory_CancelMidRun(t *testing.T) {
	dir := frameDir(t, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	summary, err := ProcessDirectory(ctx, dir, Options{
		Workers: 1,
		Progress: func(done, total int, r JobResult) {
			if done == 2 {
				cancel()
			}
		},
	})
	require.NoError(t, err)

	// Every job is accounted for, whether it ran or not.
	assert.Equal(t, 8, summary.Succeeded+summary.Failed)
	assert.Len(t, summary.Results, 8)
	assert.GreaterOrEqual(t, summary.Succeeded, 2)
	for _, r := range summary.Failures() {
		assert.ErrorIs(t, r.Err(), context.Canceled)
	}
}

func TestProcessDirectory_Progress(t *testing.T) {
	dir := frameDir(t, 5)

	var calls atomic.Int32
	lastDone := 0
	summary, err := ProcessDirectory(context.Background(), dir, Options{
		Workers: 2,
		Progress: func(done, total int, r JobResult) {
			calls.Add(1)
			assert.Equal(t, 5, total)
			assert.Equal(t, lastDone+1, done)
			lastDone = done
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, 5, summary.Succeeded)
}

func TestProcessDirectory_WarnedCount(t *testing.T) {
	dir := frameDir(t, 2)
	writePNG(t, filepath.Join(dir, "frame_09.png"), ringFrame(16, 8))

	summary, err := ProcessDirectory(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Warned)
}

func TestPlanJobs(t *testing.T) {
	paths := []string{"in/a.bmp", "in/a.jpg", "in/a.png", "in/b.webp"}

	jobs := planJobs(paths, "out", chromakey.DefaultOptions())
	require.Len(t, jobs, 4)

	want := []string{"a.png", "a.jpg.png", "a.png.png", "b.png"}
	for i, w := range want {
		assert.Equal(t, filepath.Join("out", w), jobs[i].Output)
		assert.Equal(t, paths[i], jobs[i].Input)
	}
}

func TestPlanJobs_NumericFallback(t *testing.T) {
	// Both "a.png" and "a.jpg.png" are taken when "a.jpg" is planned.
	paths := []string{"a.jpg.bmp", "a.bmp", "a.jpg"}

	jobs := planJobs(paths, "out", chromakey.DefaultOptions())

	assert.Equal(t, filepath.Join("out", "a.jpg.png"), jobs[0].Output)
	assert.Equal(t, filepath.Join("out", "a.png"), jobs[1].Output)
	assert.Equal(t, filepath.Join("out", "a_2.png"), jobs[2].Output)
}
