package wiener

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// Apply convolves the filter p causally with tr over the prediction window,
// returning predicted[j] = sum_i p[i] * tr[i0+j-i] for j in [0, Nd). Sample
// j of the result corresponds to trace index i0+j. The trace must carry
// len(p)-1 samples before i0 and the window must end inside it.
func Apply(tr, p []float64, i0, nd int) ([]float64, error) {
	n := len(p)
	if n < 1 {
		return nil, fmt.Errorf("%w: empty filter", trace.ErrInvalidWindow)
	}
	if nd < 1 {
		return nil, fmt.Errorf("%w: window length %d must be >= 1", trace.ErrInvalidWindow, nd)
	}
	if i0-(n-1) < 0 {
		return nil, fmt.Errorf("%w: origin %d leaves no room for filter length %d", trace.ErrIndexOutOfRange, i0, n)
	}
	if i0+nd > len(tr) {
		return nil, fmt.Errorf("%w: window [%d, %d) exceeds trace length %d", trace.ErrIndexOutOfRange, i0, i0+nd, len(tr))
	}

	// With the taps reversed each output sample is a single dot product
	// against a sliding trace window.
	rev := make([]float64, n)
	for i, c := range p {
		rev[n-1-i] = c
	}

	out := make([]float64, nd)
	start := i0 - n + 1
	for j := range out {
		out[j] = floats.Dot(rev, tr[start+j:start+j+n])
	}
	return out, nil
}
