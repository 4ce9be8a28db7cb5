package masterworker

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

func TestRunStreamsEveryRow(t *testing.T) {
	path := writeTestBMP(t, 9, 50)

	out, err := Run(path, 4, 7, 1, model.OpGaussBlur5, nil)
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	if out.Width != 9 || out.Height != 50 {
		t.Fatalf("Run() dimensions = %dx%d, want 9x50", out.Width, out.Height)
	}
}

// TestRunEmptyChunkTermination covers P=8, H=10, chunk_size=100: only one
// worker performs real work, the rest are terminated immediately, and the
// output still covers every row.
func TestRunEmptyChunkTermination(t *testing.T) {
	path := writeTestBMP(t, 3, 10)

	out, err := Run(path, 8, 100, 1, model.OpBoxBlur, nil)
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	if out.Height != 10 || out.Width != 3 {
		t.Fatalf("Run() dimensions = %dx%d, want 3x10", out.Width, out.Height)
	}
}

func TestRunRejectsTooFewProcesses(t *testing.T) {
	path := writeTestBMP(t, 2, 2)
	if _, err := Run(path, 1, 10, 1, model.OpRidge, nil); err == nil {
		t.Fatal("Run(processes=1) = nil error, want error")
	}
}

func TestRunRejectsNonPositiveChunkSize(t *testing.T) {
	path := writeTestBMP(t, 2, 2)
	if _, err := Run(path, 2, 0, 1, model.OpRidge, nil); err == nil {
		t.Fatal("Run(chunk_size=0) = nil error, want error")
	}
}
