package wiener

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wiener/dsp/toeplitz"
	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// Equations carries the normal-equations components built from one observed
// trace: the whitened shift columns X[:, q] = C^-1 * d[i0-q : i0-q+Nd] and
// the system matrix A[q][k] = d[i0-k : i0-k+Nd] . X[:, q].
//
// The same Equations value can serve several right-hand sides through
// CrossCorrelate, which is how one reference segment is reused across a
// batch.
type Equations struct {
	i0   int
	nd   int
	n    int
	cols [][]float64
	a    *mat.Dense
}

// NormalEquations builds the filter system for trace d with origin i0,
// window length nd, and filter length n. The window length must match the
// covariance dimension of the solver, and the shifted windows
// [i0-q, i0-q+nd) must stay inside the trace for every q in [0, n).
//
// Filter lengths approaching the window length yield rank-deficient or
// ill-conditioned systems; those are not rejected here but surface as
// ErrSingularSystem when solved.
func NormalEquations(solver *toeplitz.Solver, d []float64, i0, nd, n int) (*Equations, error) {
	if solver == nil {
		return nil, fmt.Errorf("wiener: nil covariance solver")
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: filter length %d must be >= 1", trace.ErrInvalidWindow, n)
	}
	if nd < 1 {
		return nil, fmt.Errorf("%w: window length %d must be >= 1", trace.ErrInvalidWindow, nd)
	}
	if nd != solver.Dim() {
		return nil, fmt.Errorf("%w: window length %d does not match covariance dimension %d", trace.ErrDimensionMismatch, nd, solver.Dim())
	}
	if i0-(n-1) < 0 {
		return nil, fmt.Errorf("%w: origin %d leaves no room for filter length %d", trace.ErrIndexOutOfRange, i0, n)
	}
	if i0+nd+(n-1) > len(d) {
		return nil, fmt.Errorf("%w: window [%d, %d) with filter length %d exceeds trace length %d", trace.ErrIndexOutOfRange, i0, i0+nd, n, len(d))
	}

	eq := &Equations{
		i0:   i0,
		nd:   nd,
		n:    n,
		cols: make([][]float64, n),
		a:    mat.NewDense(n, n, nil),
	}
	for q := 0; q < n; q++ {
		eq.cols[q] = make([]float64, nd)
		if err := solver.Solve(eq.cols[q], d[i0-q:i0-q+nd]); err != nil {
			return nil, err
		}
	}
	for k := 0; k < n; k++ {
		seg := d[i0-k : i0-k+nd]
		for q := 0; q < n; q++ {
			eq.a.Set(q, k, floats.Dot(seg, eq.cols[q]))
		}
	}
	return eq, nil
}

// Origin returns the filter origin i0.
func (eq *Equations) Origin() int {
	return eq.i0
}

// WindowLen returns the prediction window length Nd.
func (eq *Equations) WindowLen() int {
	return eq.nd
}

// FilterLen returns the filter length n.
func (eq *Equations) FilterLen() int {
	return eq.n
}

// A returns a copy of the n x n system matrix.
func (eq *Equations) A() *mat.Dense {
	return mat.DenseCopyOf(eq.a)
}

// X returns a copy of the Nd x n whitened shift matrix.
func (eq *Equations) X() *mat.Dense {
	x := mat.NewDense(eq.nd, eq.n, nil)
	for q, col := range eq.cols {
		x.SetCol(q, col)
	}
	return x
}

// CrossCorrelate computes the right-hand side b[q] = x[i0 : i0+Nd] . X[:, q]
// against a reference trace x, which must cover the prediction window.
func (eq *Equations) CrossCorrelate(x []float64) ([]float64, error) {
	if eq.i0+eq.nd > len(x) {
		return nil, fmt.Errorf("%w: reference length %d does not cover window [%d, %d)", trace.ErrIndexOutOfRange, len(x), eq.i0, eq.i0+eq.nd)
	}

	seg := x[eq.i0 : eq.i0+eq.nd]
	b := make([]float64, eq.n)
	for q, col := range eq.cols {
		b[q] = floats.Dot(seg, col)
	}
	return b, nil
}
