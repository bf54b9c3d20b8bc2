// Package wiener implements discrete Wiener filtering of multi-trace
// sections against an empirical stationary noise model.
//
// The pipeline treats filtering as noise-covariance-weighted least squares.
// For a trace d, a filter origin i0, a prediction window of Nd samples, and
// a filter length n, it forms the whitened shift matrix
//
//	X[:, q] = C^-1 * d[i0-q : i0-q+Nd]    for q = 0..n-1
//
// where C is the Toeplitz noise covariance, then solves the normal
// equations A*p = b with A[q][k] = d[i0-k : i0-k+Nd] . X[:, q] and
// b[q] = x[i0 : i0+Nd] . X[:, q] for a reference trace x. The coefficient
// vector p is applied as a causal FIR filter over the window.
//
// # Usage
//
// Estimate the noise model from a noise-only window, build the shared
// cross-correlation vector from a reference trace, then run the batch:
//
//	r, solver, err := wiener.EstimateCovariance(noisy, noiseWin, nd)
//	eq, err := wiener.NormalEquations(solver, noisy, i0, nd, n)
//	ref, err := wiener.Reference(noisy, keepWin, 1, 4)
//	b, err := eq.CrossCorrelate(ref)
//
//	runner, err := wiener.NewRunner(solver, b, i0, nd, n)
//	filtered, report, err := runner.Run(section)
//
// Singular systems fail loudly: a covariance that is not positive definite
// returns toeplitz.ErrSingularCovariance and an ill-conditioned normal
// system returns ErrSingularSystem. Regularized or least-norm solves run
// only when explicitly requested through WithRidge or WithLeastNorm.
//
// RunOrthogonal repeats the identical pipeline across traces instead of
// along them, by transposing the section and zero-padding each cross-trace
// series with the filter length at both ends.
package wiener
