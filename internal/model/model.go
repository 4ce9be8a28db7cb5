// Package model holds the core data types shared by every strategy: pixels,
// images, row bands with halos, true bounds, and the MW chunk header.
package model

import "fmt"

// Pixel is an unsigned 8-bit RGB triple. No alpha.
type Pixel struct {
	R, G, B uint8
}

// Image is a width x height grid of pixels, stored top-to-bottom,
// left-to-right in row-major order. len(Pixels) must equal Width*Height.
type Image struct {
	Width  int
	Height int
	Pixels []Pixel
}

// NewImage allocates a zeroed image of the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]Pixel, width*height),
	}
}

// RowOffset returns the index of the first pixel of row y.
func (img *Image) RowOffset(y int) int {
	return y * img.Width
}

// Row returns the pixel slice for row y (no copy).
func (img *Image) Row(y int) []Pixel {
	off := img.RowOffset(y)
	return img.Pixels[off : off+img.Width]
}

// Rows returns the pixel slice covering rows [first, first+count).
func (img *Image) Rows(first, count int) []Pixel {
	off := img.RowOffset(first)
	return img.Pixels[off : off+count*img.Width]
}

// Validate checks the |pixels| = W*H invariant.
func (img *Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", img.Width, img.Height)
	}
	if len(img.Pixels) != img.Width*img.Height {
		return fmt.Errorf("pixel count %d does not match %dx%d", len(img.Pixels), img.Width, img.Height)
	}
	return nil
}

// TrueBounds delimits the rows within a band a process is responsible for
// producing as output, inclusive on both ends.
type TrueBounds struct {
	TrueStart int
	TrueEnd   int
}

// TrueRows returns the number of owned rows.
func (b TrueBounds) TrueRows() int {
	return b.TrueEnd - b.TrueStart + 1
}

// Band is a process-local image slice: halo_top rows replicated from the
// predecessor, true_rows owned rows, halo_bottom rows replicated from the
// successor. Halo rows are read-only; they are never the source of outputs.
type Band struct {
	Image     Image
	HaloTop   int
	HaloBottom int
	Bounds    TrueBounds
}

// Validate checks the band-height / halo invariants: halos stay within
// [0, radius], and the true bounds sit at true_start == halo_top.
func (b *Band) Validate(radius int) error {
	if b.HaloTop < 0 || b.HaloTop > radius || b.HaloBottom < 0 || b.HaloBottom > radius {
		return fmt.Errorf("halo out of [0,%d]: top=%d bottom=%d", radius, b.HaloTop, b.HaloBottom)
	}
	if b.Bounds.TrueStart != b.HaloTop {
		return fmt.Errorf("true_start %d must equal halo_top %d", b.Bounds.TrueStart, b.HaloTop)
	}
	if b.Bounds.TrueStart > b.Bounds.TrueEnd || b.Bounds.TrueEnd >= b.Image.Height {
		return fmt.Errorf("true bounds [%d,%d] out of band height %d", b.Bounds.TrueStart, b.Bounds.TrueEnd, b.Image.Height)
	}
	return nil
}

// Operation is the enumerated kernel-catalog selector carried in chunk
// headers and CLI invocations.
type Operation int32

const (
	OpRidge Operation = iota
	OpEdge
	OpSharpen
	OpBoxBlur
	OpGaussBlur3
	OpGaussBlur5
	OpUnsharp5
)

var operationNames = map[Operation]string{
	OpRidge:      "RIDGE",
	OpEdge:       "EDGE",
	OpSharpen:    "SHARPEN",
	OpBoxBlur:    "BOXBLUR",
	OpGaussBlur3: "GAUSSBLUR3",
	OpGaussBlur5: "GAUSSBLUR5",
	OpUnsharp5:   "UNSHARP5",
}

func (o Operation) String() string {
	if s, ok := operationNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Operation(%d)", int32(o))
}

// ParseOperation resolves a kernel catalog name to its Operation tag.
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// ChunkHeader is the fixed six-field record exchanged alongside a payload
// in MW mode. All fields are logically signed 32-bit integers.
type ChunkHeader struct {
	TrueStart  int32
	TrueEnd    int32
	Height     int32
	Width      int32
	NumThreads int32
	Op         Operation
}

// WorkAssignment maps a worker rank to the absolute first row of the chunk
// currently in flight to it. Populated on dispatch, consumed on reply.
type WorkAssignment map[int]int
