package wiener

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/cwbudde/algo-wiener/dsp/toeplitz"
	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// Mode selects how filter coefficients are derived across a batch.
type Mode int

const (
	// ModePerTrace solves a fresh system for every trace, sharing only the
	// right-hand side.
	ModePerTrace Mode = iota

	// ModeSharedFilter solves once on a designated trace and applies the
	// resulting coefficients everywhere.
	ModeSharedFilter
)

type runConfig struct {
	workers     int
	mode        Mode
	failFast    bool
	filterTrace int
	solveOpts   []SolveOption
}

// RunOption configures a batch run.
type RunOption func(*runConfig)

// WithWorkers sets the number of traces filtered concurrently. Values
// below 1 select runtime.NumCPU.
func WithWorkers(n int) RunOption {
	return func(c *runConfig) {
		c.workers = n
	}
}

// WithMode selects the coefficient reuse mode.
func WithMode(m Mode) RunOption {
	return func(c *runConfig) {
		c.mode = m
	}
}

// WithFailFast aborts the batch on the first per-trace failure instead of
// recording it and continuing.
func WithFailFast() RunOption {
	return func(c *runConfig) {
		c.failFast = true
	}
}

// WithFilterTrace designates the trace whose system is solved in
// ModeSharedFilter. Defaults to trace 0.
func WithFilterTrace(idx int) RunOption {
	return func(c *runConfig) {
		c.filterTrace = idx
	}
}

// WithSolveOptions forwards options to every per-trace solve.
func WithSolveOptions(opts ...SolveOption) RunOption {
	return func(c *runConfig) {
		c.solveOpts = opts
	}
}

// RunReport records per-trace outcomes of a batch run. TraceErrors holds
// one entry per input trace; nil marks success.
type RunReport struct {
	TraceErrors []error
}

// Failed returns the number of traces that could not be filtered.
func (r *RunReport) Failed() int {
	failed := 0
	for _, err := range r.TraceErrors {
		if err != nil {
			failed++
		}
	}
	return failed
}

// Ok reports whether every trace was filtered.
func (r *RunReport) Ok() bool {
	return r.Failed() == 0
}

// FirstError returns the lowest failed trace index and its error, or
// (-1, nil) when the batch was clean.
func (r *RunReport) FirstError() (int, error) {
	for i, err := range r.TraceErrors {
		if err != nil {
			return i, err
		}
	}
	return -1, nil
}

// Runner filters every trace of a section with shared geometry: one noise
// covariance, one right-hand side b, and a common origin, window, and
// filter length. A Runner is safe for concurrent use.
type Runner struct {
	solver *toeplitz.Solver
	b      []float64
	i0     int
	nd     int
	n      int
	cfg    runConfig
}

// NewRunner validates the shared geometry and returns a batch runner. The
// right-hand side b must have length n and the window length must match the
// covariance dimension of the solver.
func NewRunner(solver *toeplitz.Solver, b []float64, i0, nd, n int, opts ...RunOption) (*Runner, error) {
	if solver == nil {
		return nil, fmt.Errorf("wiener: nil covariance solver")
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: filter length %d must be >= 1", trace.ErrInvalidWindow, n)
	}
	if nd < 1 {
		return nil, fmt.Errorf("%w: window length %d must be >= 1", trace.ErrInvalidWindow, nd)
	}
	if nd != solver.Dim() {
		return nil, fmt.Errorf("%w: window length %d does not match covariance dimension %d", trace.ErrDimensionMismatch, nd, solver.Dim())
	}
	if len(b) != n {
		return nil, fmt.Errorf("%w: right-hand side length %d, filter length %d", trace.ErrDimensionMismatch, len(b), n)
	}
	if i0-(n-1) < 0 {
		return nil, fmt.Errorf("%w: origin %d leaves no room for filter length %d", trace.ErrIndexOutOfRange, i0, n)
	}

	cfg := runConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.mode != ModePerTrace && cfg.mode != ModeSharedFilter {
		return nil, fmt.Errorf("wiener: unknown mode %d", cfg.mode)
	}

	r := &Runner{
		solver: solver,
		b:      append([]float64(nil), b...),
		i0:     i0,
		nd:     nd,
		n:      n,
		cfg:    cfg,
	}
	return r, nil
}

// Run filters every trace of sec and returns a section of shape
// (NumTraces, Nd) whose row j holds the prediction for window sample
// i0+j of trace j.
//
// Per-trace failures are recorded in the report and leave the affected
// output row zeroed; the batch continues unless WithFailFast was given.
// The report is also returned alongside a non-nil error so partial
// outcomes stay visible.
func (r *Runner) Run(sec *trace.Section) (*trace.Section, *RunReport, error) {
	return r.RunContext(context.Background(), sec)
}

// RunContext is Run with cooperative cancellation. Traces not yet started
// when ctx is cancelled are skipped and the context error is returned.
func (r *Runner) RunContext(ctx context.Context, sec *trace.Section) (*trace.Section, *RunReport, error) {
	if sec == nil {
		return nil, nil, fmt.Errorf("wiener: nil section")
	}

	report := &RunReport{TraceErrors: make([]error, sec.NumTraces())}

	// In shared mode the designated trace's system is solved up front;
	// a failure there fails the whole batch.
	var shared []float64
	if r.cfg.mode == ModeSharedFilter {
		idx := r.cfg.filterTrace
		if idx < 0 || idx >= sec.NumTraces() {
			return nil, nil, fmt.Errorf("%w: filter trace %d outside section with %d traces", trace.ErrIndexOutOfRange, idx, sec.NumTraces())
		}
		p, err := r.solveRow(sec.Row(idx))
		if err != nil {
			return nil, nil, fmt.Errorf("filter trace %d: %w", idx, err)
		}
		shared = p
	}

	out, err := trace.NewSection(sec.NumTraces(), r.nd)
	if err != nil {
		return nil, nil, err
	}

	workers := r.cfg.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > sec.NumTraces() {
		workers = sec.NumTraces()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		once    sync.Once
		failErr error
	)
	abort := func(i int, err error) {
		once.Do(func() {
			failErr = fmt.Errorf("trace %d: %w", i, err)
			cancel()
		})
	}

	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				pred, err := r.filterRow(sec.Row(i), shared)
				if err != nil {
					report.TraceErrors[i] = err
					if r.cfg.failFast {
						abort(i, err)
					}
					continue
				}
				copy(out.Row(i), pred)
			}
		}()
	}

feed:
	for i := 0; i < sec.NumTraces(); i++ {
		select {
		case <-runCtx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if failErr != nil {
		return nil, report, failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}
	return out, report, nil
}

func (r *Runner) solveRow(row []float64) ([]float64, error) {
	eq, err := NormalEquations(r.solver, row, r.i0, r.nd, r.n)
	if err != nil {
		return nil, err
	}
	return SolveFilter(eq, r.b, r.cfg.solveOpts...)
}

func (r *Runner) filterRow(row, shared []float64) ([]float64, error) {
	p := shared
	if p == nil {
		solved, err := r.solveRow(row)
		if err != nil {
			return nil, err
		}
		p = solved
	}
	return Apply(row, p, r.i0, r.nd)
}
