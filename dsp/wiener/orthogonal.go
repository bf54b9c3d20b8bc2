package wiener

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-wiener/dsp/correlation"
	"github.com/cwbudde/algo-wiener/dsp/toeplitz"
	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// OrthogonalConfig parametrizes the cross-trace pass. All windows and
// indices along the trace axis are given in unpadded trace coordinates;
// the pass shifts them internally after zero-padding.
//
// The covariance dimension of the pass equals the trace count, so the
// noise window is necessarily short: NoiseWin.End plus the reference
// offsets must not exceed FilterLen+1. Averaging over several NoiseRows
// and RefOffsets is how the estimate gains stability.
type OrthogonalConfig struct {
	// FilterLen is the filter length n along the trace axis and also the
	// zero padding added to each end of every cross-trace series.
	FilterLen int

	// NoiseRows lists the time-sample indices whose cross-trace series are
	// treated as noise-dominated, typically a small range of early times.
	NoiseRows []int

	// NoiseWin is the accumulation window along the trace axis.
	NoiseWin trace.Window

	// RefOffsets averages the covariance estimate over this many rolling
	// window offsets. Zero means one.
	RefOffsets int

	// CorrSmooth smooths the averaged autocorrelation with this many
	// three-point passes.
	CorrSmooth int

	// MaxCond overrides the covariance condition limit. Zero keeps
	// toeplitz.DefaultMaxCond.
	MaxCond float64

	// RefRow is the time-sample index whose cross-trace series provides
	// the reference segment.
	RefRow int

	// RefKeep is the kept region along the trace axis for the reference.
	RefKeep trace.Window

	// RefSmooth and RefTaper shape the kept reference segment.
	RefSmooth int
	RefTaper  int

	// RunOptions are forwarded to the per-column batch run.
	RunOptions []RunOption
}

// RunOrthogonal runs the filtering pipeline across traces instead of along
// them: the section is transposed so each time sample becomes a series over
// traces, every series is zero-padded by the filter length at both ends,
// and the identical estimate/solve/apply chain runs per series. The result
// is transposed back, so it has the shape of sec.
//
// Rows of the returned report correspond to time samples, not traces.
func RunOrthogonal(sec *trace.Section, cfg OrthogonalConfig) (*trace.Section, *RunReport, error) {
	return RunOrthogonalContext(context.Background(), sec, cfg)
}

// RunOrthogonalContext is RunOrthogonal with cooperative cancellation.
func RunOrthogonalContext(ctx context.Context, sec *trace.Section, cfg OrthogonalConfig) (*trace.Section, *RunReport, error) {
	if sec == nil {
		return nil, nil, fmt.Errorf("wiener: nil section")
	}
	if cfg.FilterLen < 1 {
		return nil, nil, fmt.Errorf("%w: filter length %d must be >= 1", trace.ErrInvalidWindow, cfg.FilterLen)
	}
	if len(cfg.NoiseRows) == 0 {
		return nil, nil, fmt.Errorf("%w: orthogonal pass needs noise rows", trace.ErrInvalidWindow)
	}

	pad := cfg.FilterLen
	nd := sec.NumTraces()
	i0 := pad
	columns := sec.Transpose().PadRows(pad)

	var corrOpts []correlation.Option
	if cfg.RefOffsets > 0 {
		corrOpts = append(corrOpts, correlation.WithReferenceOffsets(cfg.RefOffsets))
	}
	if cfg.CorrSmooth > 0 {
		corrOpts = append(corrOpts, correlation.WithSmoothing(cfg.CorrSmooth))
	}
	r, err := correlation.EstimateSection(columns, cfg.NoiseRows, cfg.NoiseWin.Shift(pad), nd, corrOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("cross-trace covariance: %w", err)
	}

	var covOpts []toeplitz.Option
	if cfg.MaxCond > 0 {
		covOpts = append(covOpts, toeplitz.WithMaxCond(cfg.MaxCond))
	}
	solver, err := toeplitz.NewSolver(r, covOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("cross-trace covariance: %w", err)
	}

	if cfg.RefRow < 0 || cfg.RefRow >= columns.NumTraces() {
		return nil, nil, fmt.Errorf("%w: reference row %d outside %d time samples", trace.ErrIndexOutOfRange, cfg.RefRow, columns.NumTraces())
	}
	refSeries := columns.Row(cfg.RefRow)
	ref, err := Reference(refSeries, cfg.RefKeep.Shift(pad), cfg.RefSmooth, cfg.RefTaper)
	if err != nil {
		return nil, nil, fmt.Errorf("cross-trace reference: %w", err)
	}

	eq, err := NormalEquations(solver, refSeries, i0, nd, cfg.FilterLen)
	if err != nil {
		return nil, nil, fmt.Errorf("reference row %d: %w", cfg.RefRow, err)
	}
	b, err := eq.CrossCorrelate(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("reference row %d: %w", cfg.RefRow, err)
	}

	runner, err := NewRunner(solver, b, i0, nd, cfg.FilterLen, cfg.RunOptions...)
	if err != nil {
		return nil, nil, err
	}

	filtered, report, err := runner.RunContext(ctx, columns)
	if err != nil {
		return nil, report, err
	}
	return filtered.Transpose(), report, nil
}
