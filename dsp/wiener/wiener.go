package wiener

import (
	"errors"

	"github.com/cwbudde/algo-wiener/dsp/correlation"
	"github.com/cwbudde/algo-wiener/dsp/toeplitz"
	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// ErrSingularSystem reports a normal-equations matrix that cannot be solved
// reliably. Regularized or least-norm treatment happens only on explicit
// request, never silently.
var ErrSingularSystem = errors.New("wiener: singular system")

// DefaultMaxCond is the condition number limit above which the normal
// system is treated as singular.
const DefaultMaxCond = 1e12

// EstimateCovariance estimates the noise autocorrelation of tr over win for
// the given lag count and factorizes the implied Toeplitz covariance in one
// step. It returns both the lag vector and the solver handle.
func EstimateCovariance(tr []float64, win trace.Window, lags int, opts ...correlation.Option) ([]float64, *toeplitz.Solver, error) {
	r, err := correlation.Estimate(tr, win, lags, opts...)
	if err != nil {
		return nil, nil, err
	}
	solver, err := toeplitz.NewSolver(r)
	if err != nil {
		return nil, nil, err
	}
	return r, solver, nil
}
