package correlation_test

import (
	"fmt"

	"github.com/cwbudde/algo-wiener/dsp/correlation"
	"github.com/cwbudde/algo-wiener/dsp/trace"
)

func ExampleEstimate() {
	// Estimate two lags from a short noise-only window.
	tr := []float64{1, 2, 3, 4, 5, 0}
	win := trace.NewWindow(0, 3)

	r, _ := correlation.Estimate(tr, win, 2)

	fmt.Printf("lags: %d\n", len(r))
	fmt.Printf("r[0] = %.4f\n", r[0])
	fmt.Printf("r[1] = %.4f\n", r[1])

	// Output:
	// lags: 2
	// r[0] = 0.6667
	// r[1] = 0.6667
}

func ExampleSmooth() {
	// One pass of the three-point kernel flattens an alternating vector.
	r := []float64{0, 4, 0, 4, 0}

	smoothed := correlation.Smooth(r, 1)

	fmt.Printf("%.1f\n", smoothed)

	// Output:
	// [0.0 2.0 2.0 2.0 0.0]
}

func ExampleEstimateSection() {
	// Average the estimate over several noise-dominated traces.
	rows := [][]float64{
		{1, 2, 3, 4, 5, 0},
		{1, 2, 3, 4, 5, 0},
	}
	sec, _ := trace.SectionFromRows(rows)

	r, _ := correlation.EstimateSection(sec, []int{0, 1}, trace.NewWindow(0, 3), 2)

	fmt.Printf("r[0] = %.4f\n", r[0])

	// Output:
	// r[0] = 0.6667
}
