package bmp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/distconv/internal/model"
)

func writeRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func makeTestImage(w, h int) *model.Image {
	img := model.NewImage(w, h)
	for y := 0; y < h; y++ {
		row := img.Row(y)
		for x := 0; x < w; x++ {
			row[x] = model.Pixel{R: uint8(x * 7), G: uint8(y * 11), B: uint8((x + y) * 3)}
		}
	}
	return img
}

func TestSaveOpenReadRoundTrip(t *testing.T) {
	img := makeTestImage(5, 9) // odd width forces row padding
	path := filepath.Join(t.TempDir(), "test.bmp")

	if err := Save(path, img); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	acc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer acc.Close()

	if acc.Width != img.Width || acc.Height != img.Height {
		t.Fatalf("Open() geometry = %dx%d, want %dx%d", acc.Width, acc.Height, img.Width, img.Height)
	}

	got, err := acc.ReadRows(0, acc.Height)
	if err != nil {
		t.Fatalf("ReadRows() err = %v", err)
	}
	for y := 0; y < img.Height; y++ {
		wantRow := img.Row(y)
		gotRow := got.Row(y)
		for x := 0; x < img.Width; x++ {
			if gotRow[x] != wantRow[x] {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, gotRow[x], wantRow[x])
			}
		}
	}
}

func TestReadRowsPartialRange(t *testing.T) {
	img := makeTestImage(4, 10)
	path := filepath.Join(t.TempDir(), "test.bmp")
	if err := Save(path, img); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	acc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer acc.Close()

	band, err := acc.ReadRows(3, 4)
	if err != nil {
		t.Fatalf("ReadRows(3,4) err = %v", err)
	}
	for y := 0; y < 4; y++ {
		wantRow := img.Row(3 + y)
		gotRow := band.Row(y)
		for x := 0; x < img.Width; x++ {
			if gotRow[x] != wantRow[x] {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, gotRow[x], wantRow[x])
			}
		}
	}
}

func TestReadRowsOutOfRange(t *testing.T) {
	img := makeTestImage(2, 2)
	path := filepath.Join(t.TempDir(), "test.bmp")
	if err := Save(path, img); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	acc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer acc.Close()

	if _, err := acc.ReadRows(1, 5); err == nil {
		t.Fatal("ReadRows(out of range) = nil error, want error")
	}
}

func TestOpenRejectsBadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bmp")
	if err := writeRaw(path, append([]byte("XX"), make([]byte, 52)...)); err != nil {
		t.Fatalf("writeRaw() err = %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("Open(bad signature) = nil error, want error")
	}
}
