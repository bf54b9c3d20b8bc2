// Package correlation estimates empirical noise autocorrelation from
// noise-dominated regions of a trace.
//
// The estimate at lag i is the windowed product sum
//
//	r[i] = (1/W) * sum_{j=imin}^{imax-1} t[j] * t[j+i]
//
// where W is the window length and t is the trace with the window mean
// removed. Lag reads extend beyond the window end, so the trace must carry
// at least lags samples past it (plus one per extra reference offset). The
// resulting vector orders lags 0..L-1 and feeds the Toeplitz covariance
// model downstream.
//
// For long windows the estimator switches to a frequency-domain path based
// on the Wiener-Khinchin theorem; both paths agree to numerical precision.
package correlation

import (
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// defaultFFTMin is the window-times-lags product above which the FFT path
// is used.
const defaultFFTMin = 1 << 14

type config struct {
	nref         int
	smoothPasses int
	fftMin       int
}

func defaultConfig() config {
	return config{
		nref:         1,
		smoothPasses: 0,
		fftMin:       defaultFFTMin,
	}
}

// Option configures the autocorrelation estimate.
type Option func(*config)

// WithReferenceOffsets averages the estimate over nref copies of the window,
// each shifted one sample further along the trace. Values below 1 are
// rejected by Estimate.
func WithReferenceOffsets(nref int) Option {
	return func(c *config) {
		c.nref = nref
	}
}

// WithSmoothing applies the given number of three-point smoothing passes to
// the finished estimate. Zero passes leave it untouched.
func WithSmoothing(passes int) Option {
	return func(c *config) {
		c.smoothPasses = passes
	}
}

// WithFFTThreshold sets the window-times-lags product above which the
// frequency-domain path runs. Pass 1 to force the FFT path or a very large
// value to force direct accumulation.
func WithFFTThreshold(minProduct int) Option {
	return func(c *config) {
		c.fftMin = minProduct
	}
}

// Estimate computes the autocorrelation of tr for lags 0..lags-1 over the
// given noise window. The window mean is removed from a working copy first;
// tr itself is never modified.
//
// Estimate fails with trace.ErrIndexOutOfRange when the window, the lag
// reads, or the reference offsets would leave the trace.
func Estimate(tr []float64, win trace.Window, lags int, opts ...Option) ([]float64, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if lags < 1 {
		return nil, fmt.Errorf("%w: lag count %d must be >= 1", trace.ErrInvalidWindow, lags)
	}
	if cfg.nref < 1 {
		return nil, fmt.Errorf("%w: reference offsets %d must be >= 1", trace.ErrInvalidWindow, cfg.nref)
	}
	if cfg.smoothPasses < 0 {
		return nil, fmt.Errorf("%w: smoothing passes %d must be >= 0", trace.ErrInvalidWindow, cfg.smoothPasses)
	}
	if err := win.Validate(len(tr)); err != nil {
		return nil, err
	}
	if win.End+lags+cfg.nref-1 > len(tr) {
		return nil, fmt.Errorf("%w: window end %d with %d lags and %d reference offsets exceeds trace length %d",
			trace.ErrIndexOutOfRange, win.End, lags, cfg.nref, len(tr))
	}

	work := make([]float64, len(tr))
	if err := trace.RemoveMean(work, tr, win); err != nil {
		return nil, err
	}

	var r []float64
	var err error
	if cfg.nref == 1 && win.Len()*lags >= cfg.fftMin {
		r, err = estimateFFT(work, win, lags)
		if err != nil {
			return nil, err
		}
	} else {
		r = estimateDirect(work, win, lags, cfg.nref)
	}

	if cfg.smoothPasses > 0 {
		SmoothInPlace(r, cfg.smoothPasses)
	}
	return r, nil
}

// EstimateSection averages the autocorrelation estimate over the given rows
// of a section, using the same window and lag count for each. Smoothing, if
// requested, is applied to the averaged vector.
func EstimateSection(sec *trace.Section, rows []int, win trace.Window, lags int, opts ...Option) ([]float64, error) {
	if sec == nil || len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to estimate from", trace.ErrInvalidWindow)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	perRow := []Option{
		WithReferenceOffsets(cfg.nref),
		WithFFTThreshold(cfg.fftMin),
	}

	sum := make([]float64, lags)
	for _, i := range rows {
		if i < 0 || i >= sec.NumTraces() {
			return nil, fmt.Errorf("%w: row %d outside section with %d traces", trace.ErrIndexOutOfRange, i, sec.NumTraces())
		}
		r, err := Estimate(sec.Row(i), win, lags, perRow...)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		floats.Add(sum, r)
	}
	floats.Scale(1/float64(len(rows)), sum)

	if cfg.smoothPasses > 0 {
		SmoothInPlace(sum, cfg.smoothPasses)
	}
	return sum, nil
}

// Normalize returns a copy of r scaled so the zero-lag value is 1. A zero
// or empty zero-lag leaves the copy unscaled.
func Normalize(r []float64) []float64 {
	out := make([]float64, len(r))
	copy(out, r)
	if len(out) == 0 || out[0] == 0 {
		return out
	}
	floats.Scale(1/out[0], out)
	return out
}

func estimateDirect(work []float64, win trace.Window, lags, nref int) []float64 {
	w := win.Len()
	r := make([]float64, lags)
	for off := 0; off < nref; off++ {
		base := work[win.Start+off:]
		for i := 0; i < lags; i++ {
			r[i] += floats.Dot(base[:w], base[i:i+w])
		}
	}
	floats.Scale(1/float64(w*nref), r)
	return r
}

// estimateFFT computes the windowed autocorrelation as a linear
// cross-correlation of the window against its lag-extended segment. Both
// segments are zero-padded far enough that the circular correlation has no
// wraparound over the first lags bins.
func estimateFFT(work []float64, win trace.Window, lags int) ([]float64, error) {
	w := win.Len()
	extLen := w + lags - 1
	fftSize := nextPowerOf2(extLen)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("correlation: failed to create FFT plan: %w", err)
	}

	winPad := make([]complex128, fftSize)
	extPad := make([]complex128, fftSize)
	for i := 0; i < w; i++ {
		winPad[i] = complex(work[win.Start+i], 0)
	}
	for i := 0; i < extLen; i++ {
		extPad[i] = complex(work[win.Start+i], 0)
	}

	if err := plan.Forward(winPad, winPad); err != nil {
		return nil, fmt.Errorf("correlation: forward FFT failed: %w", err)
	}
	if err := plan.Forward(extPad, extPad); err != nil {
		return nil, fmt.Errorf("correlation: forward FFT failed: %w", err)
	}

	for i := range extPad {
		extPad[i] *= cmplx.Conj(winPad[i])
	}

	if err := plan.Inverse(extPad, extPad); err != nil {
		return nil, fmt.Errorf("correlation: inverse FFT failed: %w", err)
	}

	r := make([]float64, lags)
	scale := 1 / float64(w)
	for i := range r {
		r[i] = real(extPad[i]) * scale
	}
	return r, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
