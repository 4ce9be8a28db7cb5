// Package kernel implements the convolution kernel catalog and the pure
// row-parallel convolution applier. The applier treats a row band with
// halos as read-only input and produces a fresh output image covering
// only the band's true bounds.
package kernel

import (
	"fmt"

	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/threadpool"
)

// Apply convolves kernel op over band, producing a new image of height
// bounds.TrueRows(). Rows are computed independently and distributed across
// a pool sized by numThreads; columns and kernel taps are serial per row.
// Missing neighbors at the absolute top/bottom of the whole image (i.e.
// where no halo was provisioned) contribute zero to the sum.
func Apply(band *model.Image, bounds model.TrueBounds, op model.Operation, numThreads int) (*model.Image, error) {
	m, ok := Lookup(op)
	if !ok {
		return nil, fmt.Errorf("kernel: unknown operation %v", op)
	}
	if bounds.TrueStart < 0 || bounds.TrueEnd >= band.Height || bounds.TrueStart > bounds.TrueEnd {
		return nil, fmt.Errorf("kernel: true bounds [%d,%d] out of band height %d", bounds.TrueStart, bounds.TrueEnd, band.Height)
	}

	outHeight := bounds.TrueRows()
	out := model.NewImage(band.Width, outHeight)
	pool := threadpool.New(numThreads)
	defer pool.Close()

	pool.ParallelForRows(outHeight, func(start, end int) {
		for localY := start; localY < end; localY++ {
			y := bounds.TrueStart + localY
			convolveRow(band, &m, y, out.Row(localY))
		}
	})

	return out, nil
}

// convolveRow fills outRow (length band.Width) with the convolution result
// for band row y.
func convolveRow(band *model.Image, m *Matrix, y int, outRow []model.Pixel) {
	r := m.Radius
	width := band.Width
	for x := 0; x < width; x++ {
		var sumR, sumG, sumB float64
		for dy := -r; dy <= r; dy++ {
			sy := y + dy
			if sy < 0 || sy >= band.Height {
				continue // zero-weight extension at the absolute image boundary
			}
			for dx := -r; dx <= r; dx++ {
				sx := x + dx
				if sx < 0 || sx >= width {
					continue
				}
				w := m.At(dy, dx)
				p := band.Pixels[sy*width+sx]
				sumR += w * float64(p.R)
				sumG += w * float64(p.G)
				sumB += w * float64(p.B)
			}
		}
		outRow[x] = model.Pixel{
			R: clamp(sumR),
			G: clamp(sumG),
			B: clamp(sumB),
		}
	}
}

// clamp truncates toward zero after clamping to [0, 255].
func clamp(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v) // int conversion of a float64 truncates toward zero
}
