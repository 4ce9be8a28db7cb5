// Package threadpool adapts go-highway's persistent worker pool
// (github.com/ajroetker/go-highway/hwy/contrib/workerpool) to the row-band
// convolution applier: a pool is created once per Apply call and reused
// across every output row range that call submits, the same
// eliminate-per-call-spawn-overhead motivation the upstream package was
// built for transformer inference matrix multiplies.
package threadpool

import "github.com/ajroetker/go-highway/hwy/contrib/workerpool"

// Pool parallelizes work over a contiguous row range. It is a thin
// convolution-flavored name for workerpool.Pool: ParallelForRows is
// workerpool.ParallelFor under the name this package's callers expect.
type Pool struct {
	inner *workerpool.Pool
}

// New creates a pool with the given thread budget. A budget <= 0 falls back
// to GOMAXPROCS (workerpool.New's own default).
func New(numThreads int) *Pool {
	return &Pool{inner: workerpool.New(numThreads)}
}

// NumThreads reports the configured thread budget.
func (p *Pool) NumThreads() int { return p.inner.NumWorkers() }

// Close shuts down the pool's workers. Safe to call more than once.
func (p *Pool) Close() { p.inner.Close() }

// ParallelForRows partitions [0, n) output rows into contiguous blocks, one
// per worker, and blocks until every block completes. fn receives the
// [start, end) row range to produce.
func (p *Pool) ParallelForRows(n int, fn func(start, end int)) {
	p.inner.ParallelFor(n, fn)
}
