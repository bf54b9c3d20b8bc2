package wiener

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-wiener/dsp/correlation"
	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// Reference extracts a clean reference trace from tr: samples outside keep
// are zeroed and the kept segment is optionally smoothed and edge-tapered.
// smoothPasses three-point passes run first, then a raised-cosine taper of
// taperWidth samples ramps each end of the kept segment toward zero. Zero
// disables either step. tr itself is never modified.
func Reference(tr []float64, keep trace.Window, smoothPasses, taperWidth int) ([]float64, error) {
	if err := keep.Validate(len(tr)); err != nil {
		return nil, err
	}
	if smoothPasses < 0 {
		return nil, fmt.Errorf("%w: smoothing passes %d must be >= 0", trace.ErrInvalidWindow, smoothPasses)
	}
	if taperWidth < 0 {
		return nil, fmt.Errorf("%w: taper width %d must be >= 0", trace.ErrInvalidWindow, taperWidth)
	}

	out := make([]float64, len(tr))
	seg := out[keep.Start:keep.End]
	copy(seg, tr[keep.Start:keep.End])

	if smoothPasses > 0 {
		correlation.SmoothInPlace(seg, smoothPasses)
	}
	if taperWidth > 0 {
		taperSegment(seg, taperWidth)
	}
	return out, nil
}

// taperSegment applies a raised-cosine ramp of the given width to both ends
// of seg. Widths beyond half the segment clamp so the ramps cannot overlap.
func taperSegment(seg []float64, width int) {
	w := width
	if 2*w > len(seg) {
		w = len(seg) / 2
	}
	if w < 1 {
		return
	}

	ramp := make([]float64, w)
	for i := range ramp {
		ramp[i] = 0.5 - 0.5*math.Cos(math.Pi*float64(i+1)/float64(w+1))
	}

	vecmath.MulBlockInPlace(seg[:w], ramp)
	floats.Reverse(ramp)
	vecmath.MulBlockInPlace(seg[len(seg)-w:], ramp)
}
