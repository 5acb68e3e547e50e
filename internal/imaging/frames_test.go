package imaging

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestListFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_010.png", "frame_002.PNG", "frame_001.jpg", "notes.txt", "clip.gif"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	paths, err := ListFrames(dir)
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}

	want := []string{"frame_001.jpg", "frame_002.PNG", "frame_010.png"}
	if len(paths) != len(want) {
		t.Fatalf("got %d frames (%v), want %d", len(paths), paths, len(want))
	}
	for i, w := range want {
		if filepath.Base(paths[i]) != w {
			t.Errorf("frame %d: got %s, want %s", i, filepath.Base(paths[i]), w)
		}
	}

	pngOnly, err := ListFrames(dir, ".png")
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}
	if len(pngOnly) != 2 {
		t.Errorf("png filter: got %d frames, want 2", len(pngOnly))
	}
}

func TestListFrames_Empty(t *testing.T) {
	paths, err := ListFrames(t.TempDir())
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no frames, got %v", paths)
	}
}

func TestListFrames_MissingDir(t *testing.T) {
	if _, err := ListFrames(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ListFrames should fail for a missing directory")
	}
}

func TestLoadFrames(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "b.png", createInMemoryImage(4, 6, color.RGBA{0, 0, 255, 255}))
	writeTestPNG(t, dir, "a.png", createInMemoryImage(8, 2, color.RGBA{255, 0, 0, 255}))

	frames, err := LoadFrames(dir)
	if err != nil {
		t.Fatalf("LoadFrames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Name != "a.png" || frames[0].Index != 0 || frames[0].Image.Bounds().Dx() != 8 {
		t.Errorf("frame 0: got %s #%d %v", frames[0].Name, frames[0].Index, frames[0].Image.Bounds())
	}
	if frames[1].Name != "b.png" || frames[1].Index != 1 {
		t.Errorf("frame 1: got %s #%d", frames[1].Name, frames[1].Index)
	}
}

func TestLoadFrames_Empty(t *testing.T) {
	_, err := LoadFrames(t.TempDir())
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestLoadFrames_CorruptFrame(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "a.png", createInMemoryImage(2, 2, color.RGBA{255, 0, 0, 255}))
	if err := os.WriteFile(filepath.Join(dir, "b.png"), []byte("broken"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := LoadFrames(dir); err == nil {
		t.Error("LoadFrames should fail on a corrupt frame")
	}
}

func TestSavePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	path := filepath.Join(t.TempDir(), "nested", "out", "sprite.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	loaded, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	got := color.NRGBAModel.Convert(loaded.At(1, 1)).(color.NRGBA)
	if got != (color.NRGBA{R: 10, G: 20, B: 30, A: 128}) {
		t.Errorf("round trip pixel: got %+v", got)
	}
	if a := color.NRGBAModel.Convert(loaded.At(0, 0)).(color.NRGBA).A; a != 0 {
		t.Errorf("transparent pixel came back with alpha %d", a)
	}
}
