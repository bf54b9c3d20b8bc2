package wiener_test

import (
	"fmt"

	"github.com/cwbudde/algo-wiener/dsp/toeplitz"
	"github.com/cwbudde/algo-wiener/dsp/trace"
	"github.com/cwbudde/algo-wiener/dsp/wiener"
)

func ExampleSolveFilter() {
	// With a white covariance the normal equations are plain least
	// squares on the shift windows of d.
	d := []float64{1, 2, 3, 4, 5}
	solver, _ := toeplitz.NewSolver([]float64{1, 0, 0})

	eq, _ := wiener.NormalEquations(solver, d, 1, 3, 2)
	b, _ := eq.CrossCorrelate([]float64{0, 1, 1, 1, 0})
	p, _ := wiener.SolveFilter(eq, b)
	fmt.Printf("p = [%.1f %.1f]\n", p[0], p[1])

	predicted, _ := wiener.Apply(d, p, 1, 3)
	fmt.Printf("predicted = [%.1f %.1f %.1f]\n", predicted[0], predicted[1], predicted[2])
	// Output:
	// p = [1.0 -1.0]
	// predicted = [1.0 1.0 1.0]
}

func ExampleRunner() {
	sec, _ := trace.SectionFromRows([][]float64{
		{1, 2, 3, 4, 5},
		{2, 3, 4, 5, 6},
	})
	solver, _ := toeplitz.NewSolver([]float64{1, 0, 0})

	runner, _ := wiener.NewRunner(solver, []float64{9, 6}, 1, 3, 2)
	out, report, _ := runner.Run(sec)
	fmt.Println("ok:", report.Ok())
	fmt.Printf("row 0 = [%.1f %.1f %.1f]\n", out.At(0, 0), out.At(0, 1), out.At(0, 2))
	// Output:
	// ok: true
	// row 0 = [1.0 1.0 1.0]
}

func ExampleReference() {
	tr := []float64{5, 1, 1, 1, 1, 5}
	keep := trace.NewWindow(1, 5)

	ref, _ := wiener.Reference(tr, keep, 0, 1)
	fmt.Printf("[%.1f %.1f %.1f %.1f %.1f %.1f]\n", ref[0], ref[1], ref[2], ref[3], ref[4], ref[5])
	// Output:
	// [0.0 0.5 1.0 1.0 0.5 0.0]
}

func ExampleEstimateCovariance() {
	// Period-eight interference with zero mean over the window, so the
	// lag values come out exact.
	tr := make([]float64, 96)
	for i := range tr {
		tr[i] = -0.5
		if i%8 == 0 {
			tr[i] = 3.5
		}
	}
	win := trace.NewWindow(0, 64)

	r, solver, _ := wiener.EstimateCovariance(tr, win, 4)
	fmt.Printf("r = [%.2f %.2f %.2f %.2f]\n", r[0], r[1], r[2], r[3])
	fmt.Println("dim:", solver.Dim())
	// Output:
	// r = [1.75 -0.25 -0.25 -0.25]
	// dim: 4
}
