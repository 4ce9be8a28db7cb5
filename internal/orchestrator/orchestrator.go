// Package orchestrator ties the BMP accessor, partitioner, kernel applier,
// and the three execution strategies together behind one uniform entry
// contract. Its flow is INIT -> EXECUTE -> FINALIZE; any subcomponent
// error short-circuits straight to FINALIZE-with-error, which is the
// single place a failure becomes a collective abort.
package orchestrator

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/distconv/internal/bmp"
	"github.com/cwbudde/distconv/internal/diagnostics"
	"github.com/cwbudde/distconv/internal/kernel"
	"github.com/cwbudde/distconv/internal/masterworker"
	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/nosft"
	"github.com/cwbudde/distconv/internal/sft"
)

// Topology carries the cluster shape every strategy needs to size its
// thread pools.
type Topology struct {
	Processes    int
	CoresPerNode int
	Nodes        int
}

// ThreadsPerProcessSFT computes max(1, C/P) for SFT.
func (t Topology) ThreadsPerProcessSFT() int {
	return max(1, t.CoresPerNode/t.Processes)
}

// ThreadsPerProcessDistributed computes max(1, C/(P/N)) for NoSFT/MW.
func (t Topology) ThreadsPerProcessDistributed() int {
	processesPerNode := t.Processes / t.Nodes
	if processesPerNode <= 0 {
		processesPerNode = 1
	}
	return max(1, t.CoresPerNode/processesPerNode)
}

// RunSerial is the zero-partition baseline: convolve the whole image in
// one process with no halos, the reference every distributed strategy's
// output must match exactly. This is the INIT -> EXECUTE path; any error
// below short-circuits to finalize, the single FINALIZE transition every
// strategy funnels through.
func RunSerial(path string, numThreads int, op model.Operation) (*model.Image, error) {
	slog.Debug("orchestrator: starting serial run", "path", path, "op", op)

	acc, err := bmp.Open(path)
	if err != nil {
		return finalize(nil, err)
	}
	defer acc.Close()

	full, err := acc.ReadRows(0, acc.Height)
	if err != nil {
		return finalize(nil, err)
	}

	bounds := model.TrueBounds{TrueStart: 0, TrueEnd: full.Height - 1}
	out, err := kernel.Apply(full, bounds, op, numThreads)
	return finalize(out, err)
}

// RunSFT executes the shared-filesystem static strategy.
func RunSFT(path string, topo Topology, op model.Operation) (*model.Image, error) {
	slog.Debug("orchestrator: starting SFT run", "path", path, "op", op, "processes", topo.Processes)

	if topo.Processes < 1 {
		return finalize(nil, fmt.Errorf("orchestrator: processes must be >= 1"))
	}

	out, err := sft.Run(path, topo.Processes, topo.ThreadsPerProcessSFT(), op)
	return finalize(out, err)
}

// RunNoSFT executes the non-shared-filesystem static strategy.
func RunNoSFT(path string, topo Topology, op model.Operation) (*model.Image, error) {
	slog.Debug("orchestrator: starting NoSFT run", "path", path, "op", op, "processes", topo.Processes)

	if topo.Processes < 1 {
		return finalize(nil, fmt.Errorf("orchestrator: processes must be >= 1"))
	}

	out, err := nosft.Run(path, topo.Processes, topo.ThreadsPerProcessDistributed(), op)
	return finalize(out, err)
}

// RunMasterWorker executes the dynamic master/worker strategy, streaming
// chunkSize rows at a time. traceDir, if non-empty, gets a
// <run_id>.jsonl dispatch/reply/terminate trace for this run; pass "" to
// skip tracing.
func RunMasterWorker(path string, topo Topology, chunkSize int, op model.Operation, traceDir string) (*model.Image, error) {
	slog.Debug("orchestrator: starting master/worker run", "path", path, "op", op, "processes", topo.Processes, "chunk_size", chunkSize)

	if topo.Processes < 2 {
		return finalize(nil, fmt.Errorf("orchestrator: master/worker needs >= 2 processes"))
	}

	trace, err := diagnostics.New(traceDir)
	if err != nil {
		return finalize(nil, err)
	}
	defer trace.Close()
	if traceDir != "" {
		slog.Debug("orchestrator: tracing run", "run_id", trace.RunID(), "path", trace.Path())
	}

	out, err := masterworker.Run(path, topo.Processes, chunkSize, topo.ThreadsPerProcessDistributed(), op, trace)
	return finalize(out, err)
}

// finalize is the single FINALIZE transition every strategy funnels
// through: on error it logs the collective-abort diagnostic and returns
// the error to the caller; on success it hands back the image.
func finalize(out *model.Image, err error) (*model.Image, error) {
	if err != nil {
		slog.Error("orchestrator: aborting", "error", err)
		return nil, err
	}
	return out, nil
}
