package nosft

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/distconv/internal/bmp"
	"github.com/cwbudde/distconv/internal/model"
)

func writeTestBMP(t *testing.T, w, h int) string {
	t.Helper()
	img := model.NewImage(w, h)
	for y := 0; y < h; y++ {
		row := img.Row(y)
		for x := 0; x < w; x++ {
			row[x] = model.Pixel{R: uint8((x * 13) % 256), G: uint8((y * 17) % 256), B: uint8((x + y) % 256)}
		}
	}
	path := filepath.Join(t.TempDir(), "in.bmp")
	if err := bmp.Save(path, img); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	return path
}

func TestRunGathersFullCoverage(t *testing.T) {
	path := writeTestBMP(t, 7, 31)

	out, err := Run(path, 5, 1, model.OpEdge)
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	if out.Width != 7 || out.Height != 31 {
		t.Fatalf("Run() dimensions = %dx%d, want 7x31", out.Width, out.Height)
	}
}

func TestRunSingleProcess(t *testing.T) {
	path := writeTestBMP(t, 4, 4)

	out, err := Run(path, 1, 1, model.OpSharpen)
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	if out.Height != 4 || out.Width != 4 {
		t.Fatalf("Run() dimensions = %dx%d, want 4x4", out.Width, out.Height)
	}
}
