package wiener

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wiener/dsp/trace"
)

type solveConfig struct {
	maxCond   float64
	ridge     float64
	leastNorm bool
}

// SolveOption configures the linear solve of the filter system.
type SolveOption func(*solveConfig)

// WithMaxCond sets the condition number limit above which the system is
// rejected as singular.
func WithMaxCond(maxCond float64) SolveOption {
	return func(c *solveConfig) {
		c.maxCond = maxCond
	}
}

// WithRidge adds lambda to the diagonal of the system matrix before
// solving. This is the explicit opt-in for regularized solves of
// near-singular systems.
func WithRidge(lambda float64) SolveOption {
	return func(c *solveConfig) {
		c.ridge = lambda
	}
}

// WithLeastNorm solves rank-deficient systems through the SVD
// pseudoinverse, returning the minimum-norm solution instead of failing.
func WithLeastNorm() SolveOption {
	return func(c *solveConfig) {
		c.leastNorm = true
	}
}

// SolveFilter solves the normal equations A*p = b for the filter
// coefficients. The right-hand side must have the filter length of eq.
// Ill-conditioned systems fail with ErrSingularSystem unless WithRidge or
// WithLeastNorm is given.
func SolveFilter(eq *Equations, b []float64, opts ...SolveOption) ([]float64, error) {
	if eq == nil {
		return nil, fmt.Errorf("wiener: nil equations")
	}
	if len(b) != eq.n {
		return nil, fmt.Errorf("%w: right-hand side length %d, filter length %d", trace.ErrDimensionMismatch, len(b), eq.n)
	}
	return solveSquare(eq.a, b, opts)
}

// SolveSystem solves a general square system A*p = b under the same
// conditioning policy as SolveFilter.
func SolveSystem(a *mat.Dense, b []float64, opts ...SolveOption) ([]float64, error) {
	if a == nil {
		return nil, fmt.Errorf("wiener: nil system matrix")
	}
	rows, cols := a.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: system matrix %dx%d is not square", trace.ErrDimensionMismatch, rows, cols)
	}
	if len(b) != rows {
		return nil, fmt.Errorf("%w: right-hand side length %d, system size %d", trace.ErrDimensionMismatch, len(b), rows)
	}
	return solveSquare(a, b, opts)
}

func solveSquare(a *mat.Dense, b []float64, opts []SolveOption) ([]float64, error) {
	cfg := solveConfig{maxCond: DefaultMaxCond}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxCond <= 0 {
		return nil, fmt.Errorf("wiener: condition limit must be > 0: %v", cfg.maxCond)
	}
	if cfg.ridge < 0 {
		return nil, fmt.Errorf("wiener: ridge parameter must be >= 0: %v", cfg.ridge)
	}

	n := len(b)
	work := a
	if cfg.ridge > 0 {
		ridged := mat.DenseCopyOf(a)
		for i := 0; i < n; i++ {
			ridged.Set(i, i, ridged.At(i, i)+cfg.ridge)
		}
		work = ridged
	}

	if cfg.leastNorm {
		return solveLeastNorm(work, b)
	}

	cond := mat.Cond(work, 1)
	if math.IsNaN(cond) || cond > cfg.maxCond {
		return nil, fmt.Errorf("%w: condition number %.3g exceeds limit %.3g", ErrSingularSystem, cond, cfg.maxCond)
	}

	var lu mat.LU
	lu.Factorize(work)

	p := make([]float64, n)
	dst := mat.NewVecDense(n, p)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, b)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	return p, nil
}

// solveLeastNorm returns the minimum-norm solution through a thin SVD,
// dropping singular values below the numerical rank threshold.
func solveLeastNorm(a *mat.Dense, b []float64) ([]float64, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("%w: SVD did not converge", ErrSingularSystem)
	}

	vals := svd.Values(nil)
	if len(vals) == 0 || vals[0] <= 0 {
		return nil, fmt.Errorf("%w: system matrix is zero", ErrSingularSystem)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	n := len(b)
	eps := math.Nextafter(1, 2) - 1
	tol := float64(n) * eps * vals[0]

	p := make([]float64, n)
	for i, s := range vals {
		if s <= tol {
			break
		}
		coef := floats.Dot(mat.Col(nil, i, &u), b) / s
		floats.AddScaled(p, coef, mat.Col(nil, i, &v))
	}
	return p, nil
}
