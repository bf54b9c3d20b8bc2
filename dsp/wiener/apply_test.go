package wiener

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-wiener/dsp/trace"
	"github.com/cwbudde/algo-wiener/internal/testutil"
)

func TestApplyIdentityFilter(t *testing.T) {
	tr := []float64{5, 4, 3, 2, 1}
	out, err := Apply(tr, []float64{1}, 1, 3)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out, []float64{4, 3, 2}, 0)
}

func TestApplyDelayFilter(t *testing.T) {
	// p = [0 1] picks the previous sample.
	tr := []float64{5, 4, 3, 2, 1}
	out, err := Apply(tr, []float64{0, 1}, 1, 3)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out, []float64{5, 4, 3}, 0)
}

func TestApplyDifferenceFilter(t *testing.T) {
	// Closes the identity covariance hand case: p = [1 -1] applied to
	// 1..5 yields consecutive differences.
	tr := []float64{1, 2, 3, 4, 5}
	out, err := Apply(tr, []float64{1, -1}, 1, 3)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out, []float64{1, 1, 1}, 1e-12)
}

func TestApplyAveragingFilter(t *testing.T) {
	tr := []float64{2, 4, 6, 8}
	out, err := Apply(tr, []float64{0.5, 0.5}, 1, 3)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out, []float64{3, 5, 7}, 1e-12)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tr := []float64{1, 2, 3, 4, 5}
	want := append([]float64(nil), tr...)
	if _, err := Apply(tr, []float64{2, -1}, 1, 3); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, tr, want, 0)
}

func TestApplyErrors(t *testing.T) {
	tr := make([]float64, 5)

	tests := []struct {
		name    string
		taps    []float64
		i0      int
		nd      int
		wantErr error
	}{
		{name: "empty taps", taps: nil, i0: 1, nd: 3, wantErr: trace.ErrInvalidWindow},
		{name: "zero window", taps: []float64{1}, i0: 1, nd: 0, wantErr: trace.ErrInvalidWindow},
		{name: "origin before history", taps: []float64{1, 1}, i0: 0, nd: 3, wantErr: trace.ErrIndexOutOfRange},
		{name: "window past end", taps: []float64{1}, i0: 3, nd: 3, wantErr: trace.ErrIndexOutOfRange},
		{name: "boundary ok", taps: []float64{1, 1}, i0: 1, nd: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tr, tt.taps, tt.i0, tt.nd)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Apply returned %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Apply returned %v, want %v", err, tt.wantErr)
			}
		})
	}
}
