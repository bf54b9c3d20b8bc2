// Package trace provides the sample containers shared by the filtering
// pipeline: half-open index windows over a single trace and dense 2-D
// sections holding one trace per row.
//
// All indices are zero-based sample positions. Windows are half-open
// [Start, End) so that Len is always End-Start and adjacent windows tile
// without overlap.
package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow reports an empty, inverted, or negative window.
	ErrInvalidWindow = errors.New("trace: invalid window")

	// ErrIndexOutOfRange reports indices or windows that leave the valid
	// sample range.
	ErrIndexOutOfRange = errors.New("trace: index out of range")

	// ErrDimensionMismatch reports slices or sections whose lengths do not
	// agree with each other or with the requested operation.
	ErrDimensionMismatch = errors.New("trace: dimension mismatch")
)

// Window selects the half-open sample range [Start, End) of a trace.
type Window struct {
	Start int
	End   int
}

// NewWindow creates the half-open window [start, end).
func NewWindow(start, end int) Window {
	return Window{Start: start, End: end}
}

// Len returns the number of samples selected by the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Shift returns the window moved by offset samples.
func (w Window) Shift(offset int) Window {
	return Window{Start: w.Start + offset, End: w.End + offset}
}

// Validate checks that the window is non-empty and lies within a trace of
// the given length. It returns ErrInvalidWindow for degenerate windows and
// ErrIndexOutOfRange for windows that leave [0, length).
func (w Window) Validate(length int) error {
	if w.Start < 0 || w.End <= w.Start {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidWindow, w.Start, w.End)
	}
	if w.End > length {
		return fmt.Errorf("%w: window [%d, %d) exceeds trace length %d", ErrIndexOutOfRange, w.Start, w.End, length)
	}
	return nil
}

// Mean returns the arithmetic mean of the samples selected by win.
func Mean(data []float64, win Window) (float64, error) {
	if err := win.Validate(len(data)); err != nil {
		return 0, err
	}

	sum := 0.0
	for _, v := range data[win.Start:win.End] {
		sum += v
	}
	return sum / float64(win.Len()), nil
}

// RemoveMean subtracts the mean of src over win from every sample of src and
// writes the result to dst. dst and src must have the same length and may
// refer to the same slice.
func RemoveMean(dst, src []float64, win Window) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst length %d, src length %d", ErrDimensionMismatch, len(dst), len(src))
	}

	mean, err := Mean(src, win)
	if err != nil {
		return err
	}

	for i, v := range src {
		dst[i] = v - mean
	}
	return nil
}
