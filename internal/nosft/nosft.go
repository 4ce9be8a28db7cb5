// Package nosft implements the non-shared-filesystem static strategy: rank
// 0 reads the whole image, scatters row bands (with halos) to every rank
// over the message-passing world, and gathers the convolved owned-row
// outputs back.
package nosft

import (
	"fmt"

	"github.com/cwbudde/distconv/internal/bmp"
	"github.com/cwbudde/distconv/internal/kernel"
	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/partition"
	"github.com/cwbudde/distconv/internal/rank"
	"github.com/cwbudde/distconv/internal/transport"
)

// Scatter sends rank 0's loaded image out to every rank as a band+halo
// slice, and broadcasts image width/band-height implicitly via the header:
// width first, then per-rank band height, so each rank can size its own
// buffer — folded here into one header+payload send per rank since the
// in-process world has no separate broadcast primitive to pay for.
func Scatter(world *rank.World, full *model.Image, processes, radius int) {
	for i := 0; i < processes; i++ {
		geom := partition.Plan(full.Height, processes, radius, i)
		band := &model.Image{
			Width:  full.Width,
			Height: geom.BandHeight(),
			Pixels: append([]model.Pixel(nil), full.Rows(geom.BandFirstRow(), geom.BandHeight())...),
		}
		bounds := geom.Bounds()
		world.Send(0, i, rank.Message{
			Tag: transport.TagWorkDataSend,
			Header: model.ChunkHeader{
				TrueStart: int32(bounds.TrueStart),
				TrueEnd:   int32(bounds.TrueEnd),
				Height:    int32(band.Height),
				Width:     int32(band.Width),
			},
			Payload: transport.EncodePayload(band),
		})
	}
}

// RunRank consumes the band rank `me` was scattered, convolves it, and
// sends the owned-row result back to rank 0 tagged for gather.
func RunRank(world *rank.World, me, numThreads int, op model.Operation) error {
	msg := world.Recv(me)
	band, err := transport.DecodePayload(msg.Payload, int(msg.Header.Width), int(msg.Header.Height))
	if err != nil {
		return err
	}
	bounds := model.TrueBounds{TrueStart: int(msg.Header.TrueStart), TrueEnd: int(msg.Header.TrueEnd)}

	out, err := kernel.Apply(band, bounds, op, numThreads)
	if err != nil {
		return err
	}

	// Rank 0 gathers from itself too, via the same Send, so the gather
	// step is uniform across every rank.
	return world.Send(me, 0, rank.Message{
		Tag:    transport.TagWorkHeaderReply,
		Header: model.ChunkHeader{Height: int32(out.Height), Width: int32(out.Width)},
		Payload: transport.EncodePayload(out),
	})
}

// Gather receives every rank's owned-row output (in arbitrary arrival
// order, since each rank's displacement already tiles [0,H*W) without
// overlap) and splices each into its absolute row position.
func Gather(world *rank.World, processes, height, width int) (*model.Image, error) {
	out := model.NewImage(width, height)
	absFirst := make([]int, processes)
	offset := 0
	for i := 0; i < processes; i++ {
		geom := partition.Plan(height, processes, 0, i)
		absFirst[i] = geom.TrueStart
		offset += geom.TrueRows()
	}
	if offset != height {
		return nil, fmt.Errorf("nosft: gather coverage %d != height %d", offset, height)
	}

	for i := 0; i < processes; i++ {
		msg := world.Recv(0)
		chunk, err := transport.DecodePayload(msg.Payload, int(msg.Header.Width), int(msg.Header.Height))
		if err != nil {
			return nil, err
		}
		first := absFirst[msg.From]
		copy(out.Rows(first, chunk.Height), chunk.Pixels)
	}
	return out, nil
}

// Run drives the full NoSFT strategy in-process: it spawns one goroutine
// per rank (each calling RunRank against the shared world) and performs
// the scatter/gather from the calling goroutine as rank 0 would.
func Run(path string, processes, numThreads int, op model.Operation) (*model.Image, error) {
	radius, ok := kernel.Radius(op)
	if !ok {
		return nil, fmt.Errorf("nosft: unknown operation %v", op)
	}

	acc, err := bmp.Open(path)
	if err != nil {
		return nil, err
	}
	full, err := acc.ReadRows(0, acc.Height)
	acc.Close()
	if err != nil {
		return nil, err
	}

	world := rank.NewWorld(processes)
	defer world.Close()

	errc := make(chan error, processes)
	for i := 0; i < processes; i++ {
		go func(me int) {
			errc <- RunRank(world, me, numThreads, op)
		}(i)
	}

	Scatter(world, full, processes, radius)

	out, err := Gather(world, processes, full.Height, full.Width)
	for i := 0; i < processes; i++ {
		if e := <-errc; e != nil && err == nil {
			err = e
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
