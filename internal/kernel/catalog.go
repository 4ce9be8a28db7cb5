package kernel

import "github.com/cwbudde/distconv/internal/model"

// Matrix is a K x K kernel of double-precision weights, row-major.
type Matrix struct {
	Side    int
	Radius  int
	Weights []float64
}

// At returns the weight at (dy+r, dx+r) for dy,dx in [-r, r].
func (m Matrix) At(dy, dx int) float64 {
	return m.Weights[(dy+m.Radius)*m.Side+(dx+m.Radius)]
}

func newMatrix(side int, weights []float64) Matrix {
	if len(weights) != side*side {
		panic("kernel: weight count does not match side*side")
	}
	return Matrix{Side: side, Radius: side / 2, Weights: weights}
}

// catalog is the immutable, process-wide table of kernel weights. Values
// match the convolution.h variants in the original source across its
// evolution stages.
var catalog = map[model.Operation]Matrix{
	model.OpRidge: newMatrix(3, []float64{
		0, -1, 0,
		-1, 4, -1,
		0, -1, 0,
	}),
	model.OpEdge: newMatrix(3, []float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}),
	model.OpSharpen: newMatrix(3, []float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	}),
	model.OpBoxBlur: newMatrix(3, []float64{
		1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9,
	}),
	model.OpGaussBlur3: newMatrix(3, []float64{
		1.0 / 16, 2.0 / 16, 1.0 / 16,
		2.0 / 16, 4.0 / 16, 2.0 / 16,
		1.0 / 16, 2.0 / 16, 1.0 / 16,
	}),
	model.OpGaussBlur5: newMatrix(5, []float64{
		1.0 / 256, 4.0 / 256, 6.0 / 256, 4.0 / 256, 1.0 / 256,
		4.0 / 256, 16.0 / 256, 24.0 / 256, 16.0 / 256, 4.0 / 256,
		6.0 / 256, 24.0 / 256, 36.0 / 256, 24.0 / 256, 6.0 / 256,
		4.0 / 256, 16.0 / 256, 24.0 / 256, 16.0 / 256, 4.0 / 256,
		1.0 / 256, 4.0 / 256, 6.0 / 256, 4.0 / 256, 1.0 / 256,
	}),
	model.OpUnsharp5: newMatrix(5, []float64{
		-1.0 / 256, -4.0 / 256, -6.0 / 256, -4.0 / 256, -1.0 / 256,
		-4.0 / 256, -16.0 / 256, -24.0 / 256, -16.0 / 256, -4.0 / 256,
		-6.0 / 256, -24.0 / 256, 476.0 / 256, -24.0 / 256, -6.0 / 256,
		-4.0 / 256, -16.0 / 256, -24.0 / 256, -16.0 / 256, -4.0 / 256,
		-1.0 / 256, -4.0 / 256, -6.0 / 256, -4.0 / 256, -1.0 / 256,
	}),
}

// Lookup returns the kernel matrix for an operation tag.
func Lookup(op model.Operation) (Matrix, bool) {
	m, ok := catalog[op]
	return m, ok
}

// Radius returns r = floor(K/2) for an operation tag.
func Radius(op model.Operation) (int, bool) {
	m, ok := catalog[op]
	if !ok {
		return 0, false
	}
	return m.Radius, true
}
