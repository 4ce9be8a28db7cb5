// Package partition implements the deterministic row-partitioning math
// shared by SFT and NoSFT, plus the MW streaming chunk reader.
package partition

import "github.com/cwbudde/distconv/internal/model"

// Static is the static-split geometry for rank i of P processes over an
// image of height H with halo radius r.
type Static struct {
	TrueStart  int // absolute first owned row
	TrueEnd    int // absolute last owned row (inclusive)
	HaloTop    int
	HaloBottom int
}

// TrueRows returns the number of rows rank i owns.
func (s Static) TrueRows() int { return s.TrueEnd - s.TrueStart + 1 }

// BandFirstRow returns the absolute first row of rank i's band (including
// its top halo).
func (s Static) BandFirstRow() int { return s.TrueStart - s.HaloTop }

// BandHeight returns the total row count of rank i's band (halos plus
// owned rows).
func (s Static) BandHeight() int { return s.TrueRows() + s.HaloTop + s.HaloBottom }

// Bounds converts the absolute geometry into band-local true bounds:
// true_start always equals halo_top.
func (s Static) Bounds() model.TrueBounds {
	return model.TrueBounds{TrueStart: s.HaloTop, TrueEnd: s.HaloTop + s.TrueRows() - 1}
}

// Plan computes the static partition for rank i of P ranks over an image
// of height H with halo radius r.
//
//	q = H / P, m = H % P
//	true_rows(i) = q + (1 if i < m else 0)
//	skip(i) = q*i + min(i, m)
func Plan(height, processes, radius, rank int) Static {
	q := height / processes
	m := height % processes

	trueRows := q
	if rank < m {
		trueRows++
	}
	skip := q*rank + min(rank, m)

	haloTop := 0
	if rank > 0 {
		haloTop = radius
	}
	haloBottom := 0
	if rank < processes-1 {
		haloBottom = radius
	}

	return Static{
		TrueStart:  skip,
		TrueEnd:    skip + trueRows - 1,
		HaloTop:    haloTop,
		HaloBottom: haloBottom,
	}
}

// VirtualRank implements the SFT reader's "virtual rank" convention: a
// rank reads as if it were rank P-1-myRank, so that after an on-disk
// bottom-up read, bottom-of-image rows land in rank 0's local memory in
// top-to-bottom order once gathered. The invariant that must hold
// regardless of how this virtualization is implemented: the image
// composed on rank 0 after gather equals the canonical top-to-bottom
// image.
func VirtualRank(processes, rank int) int {
	return processes - 1 - rank
}

// Chunk is the streaming MW variant of Static: a chunk is structurally
// identical to a band but sized by chunk_size rather than the static
// partition, and chunks progress by a persistent row offset rather than
// a fixed rank assignment.
type Chunk struct {
	TrueStart  int // absolute first owned row
	TrueEnd    int // absolute last owned row (inclusive)
	HaloTop    int
	HaloBottom int
}

func (c Chunk) TrueRows() int     { return c.TrueEnd - c.TrueStart + 1 }
func (c Chunk) BandFirstRow() int { return c.TrueStart - c.HaloTop }
func (c Chunk) BandHeight() int   { return c.TrueRows() + c.HaloTop + c.HaloBottom }
func (c Chunk) Bounds() model.TrueBounds {
	return model.TrueBounds{TrueStart: c.HaloTop, TrueEnd: c.HaloTop + c.TrueRows() - 1}
}

// NextChunk determines the next chunk to stream starting at absolute row
// offset, given a target chunkSize and image height. It distinguishes
// four cases: first chunk (no top halo), middle chunks (both halos), the
// second-to-last chunk (may have a partial bottom halo if fewer than
// `radius` rows remain after it), and the last chunk (no bottom halo). ok
// is false once offset >= height (no more chunks).
func NextChunk(offset, height, chunkSize, radius int) (c Chunk, ok bool) {
	if offset >= height {
		return Chunk{}, false
	}

	trueRows := min(chunkSize, height-offset)
	trueStart := offset
	trueEnd := offset + trueRows - 1

	haloTop := 0
	if offset > 0 {
		haloTop = min(radius, offset)
	}

	haloBottom := 0
	remaining := height - (trueEnd + 1)
	if remaining > 0 {
		haloBottom = min(radius, remaining)
	}

	return Chunk{
		TrueStart:  trueStart,
		TrueEnd:    trueEnd,
		HaloTop:    haloTop,
		HaloBottom: haloBottom,
	}, true
}
