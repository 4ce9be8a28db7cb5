// Package bmp implements the BMP Row Accessor: opening a 24-bit bitmap,
// exposing its geometry, and reading/writing contiguous row ranges in
// canonical top-to-bottom order while the on-disk layout stays
// bottom-to-top. Reads are positional (os.File.ReadAt) with no shared file
// cursor, so every rank can read its own band concurrently against one
// open handle.
package bmp

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/cwbudde/distconv/internal/errs"
	"github.com/cwbudde/distconv/internal/model"
)

const (
	headerSize     = 54
	signatureOK0   = 'B'
	signatureOK1   = 'M'
	offsetFileSize = 2
	offsetDataOff  = 10
	offsetWidth    = 18
	offsetHeight   = 22
	offsetPlanes   = 26
	offsetBitDepth = 28
	requiredDepth  = 24
	requiredPlanes = 1
)

// Accessor is an open handle onto a 24-bit bitmap file plus its geometry.
// Reads against it are safe for concurrent use from multiple goroutines
// (and, via distinct Accessors over the same path, multiple ranks).
type Accessor struct {
	f           *os.File
	Width       int
	Height      int
	DataOffset  int64
	RowStride   int // on-disk bytes per row, including padding
	PixelBytes  int // 3*Width, before padding
	PaddingSize int

	mu    sync.Mutex
	pool  []byte // pooled scratch buffer reused across ReadRows calls, grown on demand
}

// Open parses the 54-byte header and validates signature/bit-depth.
func Open(path string) (*Accessor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IO(-1, "bmp.Open", err)
	}

	header := make([]byte, headerSize)
	n, err := f.ReadAt(header, 0)
	if err != nil || n < headerSize {
		f.Close()
		if err == nil {
			err = errShortHeader
		}
		return nil, errs.IO(-1, "bmp.Open: read header", err)
	}

	if header[0] != signatureOK0 || header[1] != signatureOK1 {
		f.Close()
		return nil, errs.Format("bmp.Open: signature", errBadSignature)
	}

	bitDepth := binary.LittleEndian.Uint16(header[offsetBitDepth:])
	if bitDepth != requiredDepth {
		f.Close()
		return nil, errs.Format("bmp.Open: bit depth", errBadBitDepth)
	}

	width := int(int32(binary.LittleEndian.Uint32(header[offsetWidth:])))
	height := int(int32(binary.LittleEndian.Uint32(header[offsetHeight:])))
	dataOffset := int64(binary.LittleEndian.Uint32(header[offsetDataOff:]))

	if width <= 0 || height <= 0 {
		f.Close()
		return nil, errs.Format("bmp.Open: dimensions", errBadDimensions)
	}

	pixelBytes := width * 3
	stride := (pixelBytes + 3) &^ 3

	return &Accessor{
		f:           f,
		Width:       width,
		Height:      height,
		DataOffset:  dataOffset,
		RowStride:   stride,
		PixelBytes:  pixelBytes,
		PaddingSize: stride - pixelBytes,
	}, nil
}

// Close releases the underlying file handle.
func (a *Accessor) Close() error {
	if err := a.f.Close(); err != nil {
		return errs.IO(-1, "bmp.Close", err)
	}
	return nil
}

// ReadRows reads count rows starting at canonical top-to-bottom row index
// firstRow into a freshly-allocated Image, inverting the on-disk
// bottom-to-top order and stripping padding. A single positional read
// sweeps the whole contiguous disk range, even across halo boundaries.
func (a *Accessor) ReadRows(firstRow, count int) (*model.Image, error) {
	if firstRow < 0 || count <= 0 || firstRow+count > a.Height {
		return nil, errs.IO(-1, "bmp.ReadRows", errRowRangeOOB)
	}

	// On disk, row 0 is the bottom row of the canonical image; the
	// requested top-to-bottom range [firstRow, firstRow+count) maps to the
	// on-disk range [diskFirst, diskFirst+count) read bottom-up.
	diskFirst := a.Height - firstRow - count
	byteOff := a.DataOffset + int64(diskFirst)*int64(a.RowStride)
	nbytes := count * a.RowStride

	a.mu.Lock()
	defer a.mu.Unlock()
	raw := a.scratch(nbytes)
	if n, err := a.f.ReadAt(raw, byteOff); err != nil || n < nbytes {
		if err == nil {
			err = errShortRead
		}
		return nil, errs.IO(-1, "bmp.ReadRows: read", err)
	}

	img := model.NewImage(a.Width, count)
	// raw holds `count` on-disk rows in bottom-up order; disk row i
	// (0-indexed within raw) corresponds to canonical row firstRow+count-1-i.
	for i := 0; i < count; i++ {
		rowBytes := raw[i*a.RowStride : i*a.RowStride+a.PixelBytes]
		canonicalRow := count - 1 - i
		dst := img.Row(canonicalRow)
		for x := 0; x < a.Width; x++ {
			b := rowBytes[x*3]
			g := rowBytes[x*3+1]
			r := rowBytes[x*3+2]
			dst[x] = model.Pixel{R: r, G: g, B: b}
		}
	}
	return img, nil
}

// scratch returns a reused byte buffer of at least n bytes, growing it if
// the current one is too small (mirrors the bucketed-pool idea of reusing
// hot-path buffers instead of allocating per call). The caller must hold
// a.mu for as long as it uses the returned buffer.
func (a *Accessor) scratch(n int) []byte {
	if cap(a.pool) < n {
		a.pool = make([]byte, n)
	}
	return a.pool[:n]
}

// Save writes img to path as a 24-bit BMP, reversing row order back to
// bottom-to-top on disk and re-inserting padding.
func Save(path string, img *model.Image) error {
	if err := img.Validate(); err != nil {
		return errs.Format("bmp.Save: validate", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.IO(-1, "bmp.Save: create", err)
	}
	defer f.Close()

	pixelBytes := img.Width * 3
	stride := (pixelBytes + 3) &^ 3
	padding := stride - pixelBytes
	fileSize := headerSize + stride*img.Height

	header := make([]byte, headerSize)
	header[0], header[1] = signatureOK0, signatureOK1
	binary.LittleEndian.PutUint32(header[offsetFileSize:], uint32(fileSize))
	binary.LittleEndian.PutUint32(header[offsetDataOff:], headerSize)
	header[14] = 40 // BITMAPINFOHEADER size
	binary.LittleEndian.PutUint32(header[offsetWidth:], uint32(img.Width))
	binary.LittleEndian.PutUint32(header[offsetHeight:], uint32(img.Height))
	header[offsetPlanes] = requiredPlanes
	binary.LittleEndian.PutUint16(header[offsetBitDepth:], requiredDepth)

	if _, err := f.Write(header); err != nil {
		return errs.IO(-1, "bmp.Save: write header", err)
	}

	row := make([]byte, stride)
	for y := 0; y < img.Height; y++ {
		canonicalRow := img.Height - 1 - y // disk row y is canonical row height-1-y
		src := img.Row(canonicalRow)
		for x := 0; x < img.Width; x++ {
			row[x*3] = src[x].B
			row[x*3+1] = src[x].G
			row[x*3+2] = src[x].R
		}
		for i := 0; i < padding; i++ {
			row[pixelBytes+i] = 0
		}
		if _, err := f.Write(row); err != nil {
			return errs.IO(-1, "bmp.Save: write row", err)
		}
	}
	return nil
}
