package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"sheetwatch/internal/config"
)

// WriteWatchedFile drops a file with the given content into the watched folder.
func WriteWatchedFile(t testing.TB, cfg *config.Config, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.WatchDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write watched file %s: %v", name, err)
	}
	return path
}

// PNGBytes renders a tiny solid PNG usable as a raster datasheet stand-in.
func PNGBytes(t testing.TB) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
