// Package toeplitz models stationary noise covariance as a symmetric
// Toeplitz matrix built from an autocorrelation vector.
//
// Under the stationary noise assumption the covariance between samples i
// and j depends only on |i-j|, so the full matrix is determined by the lag
// vector r: M[i][j] = r[|i-j|]. The package factorizes the matrix once via
// Cholesky and serves the repeated solves the normal equations need. A
// covariance that is not positive definite, or whose condition number
// exceeds the configured limit, is rejected loudly rather than silently
// regularized.
package toeplitz

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// ErrSingularCovariance reports a covariance matrix that cannot be
// factorized or whose condition number exceeds the configured limit.
var ErrSingularCovariance = errors.New("toeplitz: singular covariance")

// DefaultMaxCond is the condition number limit above which a covariance
// matrix is treated as singular.
const DefaultMaxCond = 1e12

type config struct {
	maxCond float64
}

// Option configures a Solver.
type Option func(*config)

// WithMaxCond sets the condition number limit for the factorized
// covariance.
func WithMaxCond(maxCond float64) Option {
	return func(c *config) {
		c.maxCond = maxCond
	}
}

// Matrix builds the dense symmetric Toeplitz matrix M[i][j] = r[|i-j|]
// from the lag vector r. Panics if r is empty.
func Matrix(r []float64) *mat.SymDense {
	n := len(r)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, r[j-i])
		}
	}
	return m
}

// Solver holds the Cholesky factorization of a Toeplitz covariance matrix
// and answers solve and inverse requests against it. A Solver is safe for
// concurrent use once constructed.
type Solver struct {
	chol mat.Cholesky
	dim  int
	cond float64
}

// NewSolver factorizes the covariance matrix defined by the lag vector r.
// It fails with ErrSingularCovariance when the matrix is not positive
// definite or its condition number exceeds the limit.
func NewSolver(r []float64, opts ...Option) (*Solver, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("%w: autocorrelation vector is empty", trace.ErrDimensionMismatch)
	}

	cfg := config{maxCond: DefaultMaxCond}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxCond <= 0 {
		return nil, fmt.Errorf("toeplitz: condition limit must be > 0: %v", cfg.maxCond)
	}

	s := &Solver{dim: len(r)}
	if ok := s.chol.Factorize(Matrix(r)); !ok {
		return nil, fmt.Errorf("%w: covariance matrix is not positive definite", ErrSingularCovariance)
	}

	s.cond = s.chol.Cond()
	if math.IsNaN(s.cond) || s.cond > cfg.maxCond {
		return nil, fmt.Errorf("%w: condition number %.3g exceeds limit %.3g", ErrSingularCovariance, s.cond, cfg.maxCond)
	}
	return s, nil
}

// Dim returns the covariance dimension L.
func (s *Solver) Dim() int {
	return s.dim
}

// Cond returns the condition number of the factorized matrix.
func (s *Solver) Cond() float64 {
	return s.cond
}

// Solve writes the solution of M*x = v to dst. dst and v must both have
// length Dim and must not overlap.
func (s *Solver) Solve(dst, v []float64) error {
	if len(v) != s.dim {
		return fmt.Errorf("%w: vector length %d, covariance dimension %d", trace.ErrDimensionMismatch, len(v), s.dim)
	}
	if len(dst) != s.dim {
		return fmt.Errorf("%w: dst length %d, covariance dimension %d", trace.ErrDimensionMismatch, len(dst), s.dim)
	}

	out := mat.NewVecDense(s.dim, dst)
	if err := s.chol.SolveVecTo(out, mat.NewVecDense(s.dim, v)); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularCovariance, err)
	}
	return nil
}

// SolveVecTo writes the solution of M*x = v to dst using gonum vectors.
func (s *Solver) SolveVecTo(dst *mat.VecDense, v mat.Vector) error {
	if v.Len() != s.dim {
		return fmt.Errorf("%w: vector length %d, covariance dimension %d", trace.ErrDimensionMismatch, v.Len(), s.dim)
	}
	if err := s.chol.SolveVecTo(dst, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularCovariance, err)
	}
	return nil
}

// Inverse returns the explicit covariance inverse. Most callers should
// prefer Solve, which is cheaper and more accurate for single systems.
func (s *Solver) Inverse() (*mat.SymDense, error) {
	var inv mat.SymDense
	if err := s.chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularCovariance, err)
	}
	return &inv, nil
}
