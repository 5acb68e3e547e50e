package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// ErrNoFrames is returned when a frame directory or frame list is empty.
var ErrNoFrames = errors.New("no frames")

// InputExts are the file extensions accepted as animation frames.
var InputExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}

// Frame is one decoded animation frame. Index is its position in the
// filename order.
type Frame struct {
	Index int
	Name  string
	Image image.Image
}

// ListFrames returns the paths of the regular files in dir whose extension
// matches one of exts (case-insensitive), sorted lexicographically by name.
// With no exts, InputExts is used. Subdirectories are not searched.
//
// A directory with no matching files yields an empty list and no error.
func ListFrames(dir string, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		exts = InputExts
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// LoadFrames decodes every frame in dir in filename order.
func LoadFrames(dir string, exts ...string) ([]Frame, error) {
	paths, err := ListFrames(dir, exts...)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	return LoadFrameFiles(paths)
}

// LoadFrameFiles decodes the given files, keeping their order.
func LoadFrameFiles(paths []string) ([]Frame, error) {
	if len(paths) == 0 {
		return nil, ErrNoFrames
	}
	frames := make([]Frame, 0, len(paths))
	for i, p := range paths {
		img, err := LoadImage(p)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames = append(frames, Frame{Index: i, Name: filepath.Base(p), Image: img})
	}
	return frames, nil
}

// SavePNG encodes img as PNG at path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
