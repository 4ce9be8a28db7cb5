// Package masterworker implements the dynamic master/worker strategy: the
// master streams row-chunks out to idle workers on demand, splices returned
// chunks back into the composite output at their absolute row offset, and
// terminates each worker exactly once.
//
// Design note on framing: a reply is naturally two separate transfers — a
// WORK_HEADER_REPLY header, then a WORK_DATA_REPLY payload — matched on the
// master side by tag pair *and* source rank, because two workers' replies
// can be in flight at once. A Go channel that fans every worker's replies
// into one shared rank-0 inbox does not preserve that per-source adjacency
// across two independent Send calls from different goroutines. Rather than
// add a second per-worker reply channel just to recover an ordering
// guarantee raw sockets happen to need and channels don't, each reply (and
// each dispatch) is sent as a single rank.Message carrying both the header
// and the payload — the five-tag namespace is still defined and exercised
// byte-for-byte in internal/transport's framing tests; here it labels one
// bundled transfer instead of two.
package masterworker

import (
	"fmt"

	"github.com/cwbudde/distconv/internal/bmp"
	"github.com/cwbudde/distconv/internal/diagnostics"
	"github.com/cwbudde/distconv/internal/kernel"
	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/partition"
	"github.com/cwbudde/distconv/internal/rank"
	"github.com/cwbudde/distconv/internal/transport"
)

// Run drives the full master/worker strategy against path with `processes`
// total ranks (1 master + processes-1 workers), streaming chunk_size rows
// (plus halos) at a time. trace may be nil; a nil Trace's methods are all
// no-ops, so the dispatch loop below never branches on whether tracing is
// enabled.
func Run(path string, processes, chunkSize, numThreads int, op model.Operation, trace *diagnostics.Trace) (*model.Image, error) {
	if processes < 2 {
		return nil, fmt.Errorf("masterworker: need at least 2 processes, got %d", processes)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("masterworker: chunk_size must be positive, got %d", chunkSize)
	}
	radius, ok := kernel.Radius(op)
	if !ok {
		return nil, fmt.Errorf("masterworker: unknown operation %v", op)
	}

	acc, err := bmp.Open(path)
	if err != nil {
		return nil, err
	}
	defer acc.Close()

	world := rank.NewWorld(processes)
	defer world.Close()

	errc := make(chan error, processes-1)
	for w := 1; w < processes; w++ {
		go func(me int) {
			errc <- workerLoop(world, me, numThreads)
		}(w)
	}

	out, masterErr := masterLoop(world, acc, processes, chunkSize, radius, numThreads, op, trace)
	if masterErr != nil {
		trace.Error(-1, masterErr)
	}

	var workerErr error
	for w := 1; w < processes; w++ {
		if e := <-errc; e != nil && workerErr == nil {
			workerErr = e
		}
	}

	if masterErr != nil {
		return nil, masterErr
	}
	if workerErr != nil {
		return nil, workerErr
	}
	return out, nil
}

// masterLoop primes every worker with its first chunk (or an immediate
// TERMINATE if the image is already exhausted), then drains replies and
// keeps re-dispatching until no chunks remain and every worker has
// terminated.
func masterLoop(world *rank.World, acc *bmp.Accessor, processes, chunkSize, radius, numThreads int, op model.Operation, trace *diagnostics.Trace) (*model.Image, error) {
	height, width := acc.Height, acc.Width
	out := model.NewImage(width, height)

	nextOffset := 0
	workDone := false
	active := 0
	assigned := make(model.WorkAssignment, processes)

	dispatch := func(w int) error {
		if workDone {
			trace.Terminate(w)
			return world.Send(0, w, rank.Message{Tag: transport.TagTerminate})
		}
		chunk, ok := partition.NextChunk(nextOffset, height, chunkSize, radius)
		if !ok {
			workDone = true
			trace.Terminate(w)
			return world.Send(0, w, rank.Message{Tag: transport.TagTerminate})
		}

		band, err := acc.ReadRows(chunk.BandFirstRow(), chunk.BandHeight())
		if err != nil {
			return err
		}
		assigned[w] = chunk.TrueStart
		bounds := chunk.Bounds()
		trace.Dispatch(w, bounds.TrueStart, bounds.TrueEnd)
		if err := world.Send(0, w, rank.Message{
			Tag: transport.TagWorkHeaderSend,
			Header: model.ChunkHeader{
				TrueStart:  int32(bounds.TrueStart),
				TrueEnd:    int32(bounds.TrueEnd),
				Height:     int32(band.Height),
				Width:      int32(band.Width),
				NumThreads: int32(numThreads),
				Op:         op,
			},
			Payload: transport.EncodePayload(band),
		}); err != nil {
			return err
		}
		nextOffset += chunk.TrueRows()
		return nil
	}

	for w := 1; w < processes; w++ {
		wasDone := workDone
		if err := dispatch(w); err != nil {
			return nil, err
		}
		if !wasDone && !workDone {
			active++
		}
	}

	for active > 0 || !workDone {
		msg := world.Recv(0)
		if msg.Tag != transport.TagWorkHeaderReply {
			return nil, fmt.Errorf("masterworker: unexpected reply tag %v from rank %d", msg.Tag, msg.From)
		}

		absRow, ok := assigned[msg.From]
		if !ok {
			return nil, fmt.Errorf("masterworker: reply from rank %d with no assignment", msg.From)
		}
		chunkOut, err := transport.DecodePayload(msg.Payload, int(msg.Header.Width), int(msg.Header.Height))
		if err != nil {
			return nil, err
		}
		copy(out.Rows(absRow, chunkOut.Height), chunkOut.Pixels)
		trace.Reply(msg.From, absRow, absRow+chunkOut.Height-1)
		delete(assigned, msg.From)

		wasDone := workDone
		if err := dispatch(msg.From); err != nil {
			return nil, err
		}
		if wasDone || workDone {
			active--
		}
	}

	return out, nil
}

// workerLoop receives a chunk, convolves it, replies with the full output
// buffer spanning 0..height-1, and repeats until TERMINATE.
func workerLoop(world *rank.World, me, fallbackThreads int) error {
	for {
		msg := world.Recv(me)
		if msg.Tag == transport.TagTerminate {
			return nil
		}
		if msg.Tag != transport.TagWorkHeaderSend {
			return fmt.Errorf("masterworker: rank %d got unexpected tag %v", me, msg.Tag)
		}

		band, err := transport.DecodePayload(msg.Payload, int(msg.Header.Width), int(msg.Header.Height))
		if err != nil {
			return err
		}
		bounds := model.TrueBounds{TrueStart: int(msg.Header.TrueStart), TrueEnd: int(msg.Header.TrueEnd)}
		numThreads := int(msg.Header.NumThreads)
		if numThreads <= 0 {
			numThreads = fallbackThreads
		}

		out, err := kernel.Apply(band, bounds, msg.Header.Op, numThreads)
		if err != nil {
			return err
		}

		if err := world.Send(me, 0, rank.Message{
			Tag: transport.TagWorkHeaderReply,
			Header: model.ChunkHeader{
				TrueStart: 0,
				TrueEnd:   int32(out.Height - 1),
				Height:    int32(out.Height),
				Width:     int32(out.Width),
			},
			Payload: transport.EncodePayload(out),
		}); err != nil {
			return err
		}
	}
}
