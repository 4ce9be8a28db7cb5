// Package sft implements the shared-filesystem static strategy: every rank
// independently computes its band geometry and reads its band+halos
// directly from the file at agreed byte offsets, with no scatter/gather
// step.
package sft

import (
	"fmt"

	"github.com/cwbudde/distconv/internal/bmp"
	"github.com/cwbudde/distconv/internal/kernel"
	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/partition"
)

// ReadBand opens path independently and reads exactly rank i's band
// (owned rows plus halos) in one contiguous positional read, using the
// virtual-rank convention: rank i reads the geometry of canonical rank
// P-1-i, so that after Run composes every rank's output at its
// Static.TrueStart, the result matches the canonical top-to-bottom image
// regardless of how many processes are involved.
func ReadBand(path string, processes, radius, rank int) (*model.Image, partition.Static, error) {
	acc, err := bmp.Open(path)
	if err != nil {
		return nil, partition.Static{}, err
	}
	defer acc.Close()

	vrank := partition.VirtualRank(processes, rank)
	geom := partition.Plan(acc.Height, processes, radius, vrank)

	band, err := acc.ReadRows(geom.BandFirstRow(), geom.BandHeight())
	if err != nil {
		return nil, partition.Static{}, err
	}
	return band, geom, nil
}

type rankResult struct {
	out  *model.Image
	geom partition.Static
}

// Run executes the full SFT strategy for all `processes` ranks against one
// input file and returns the composed output image. Each rank's read and
// convolution is independent; this function runs them in separate
// goroutines purely to mirror the cross-process parallelism the real
// strategy exploits, since all ranks share the one filesystem here.
func Run(path string, processes, numThreads int, op model.Operation) (*model.Image, error) {
	radius, ok := kernel.Radius(op)
	if !ok {
		return nil, fmt.Errorf("sft: unknown operation %v", op)
	}

	type indexed struct {
		rank int
		res  rankResult
		err  error
	}

	results := make(chan indexed, processes)
	for i := 0; i < processes; i++ {
		go func(rank int) {
			band, geom, err := ReadBand(path, processes, radius, rank)
			if err != nil {
				results <- indexed{rank: rank, err: err}
				return
			}
			out, err := kernel.Apply(band, geom.Bounds(), op, numThreads)
			if err != nil {
				results <- indexed{rank: rank, err: err}
				return
			}
			results <- indexed{rank: rank, res: rankResult{out: out, geom: geom}}
		}(i)
	}

	parts := make([]rankResult, processes)
	for i := 0; i < processes; i++ {
		r := <-results
		if r.err != nil {
			return nil, r.err
		}
		parts[r.rank] = r.res
	}

	return compose(parts)
}

// compose splices each rank's owned-row output into its geometry's
// absolute TrueStart, which already accounts for the virtual-rank
// convention ReadBand applied — no re-derivation needed.
func compose(parts []rankResult) (*model.Image, error) {
	var width, height int
	for _, p := range parts {
		width = p.out.Width
		height += p.out.Height
	}

	out := model.NewImage(width, height)
	for _, p := range parts {
		copy(out.Rows(p.geom.TrueStart, p.out.Height), p.out.Pixels)
	}
	return out, nil
}
