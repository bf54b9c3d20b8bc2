// Command wienerfilt runs the Wiener noise filter over a trace section.
//
// Usage:
//
//	wienerfilt [flags]
//
// Without -in it generates a synthetic noisy section, filters it, and
// reports how far the filtered windows moved toward the clean event.
// With -in it reads a CSV section (one trace per line) and filters that.
//
// Examples:
//
//	wienerfilt
//	wienerfilt -traces 16 -noise-amp 0.4 -out filtered.csv
//	wienerfilt -in section.csv -noise 8:128 -i0 128 -nd 16 -n 5
//	wienerfilt -mode shared -filter-trace 2
//	wienerfilt -orth -n 3 -noise 0:3 -noise-rows 0:8 -ref-trace 140 -ref 2:6
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-wiener/dsp/correlation"
	"github.com/cwbudde/algo-wiener/dsp/signal"
	"github.com/cwbudde/algo-wiener/dsp/toeplitz"
	"github.com/cwbudde/algo-wiener/dsp/trace"
	"github.com/cwbudde/algo-wiener/dsp/wiener"
)

type cliOptions struct {
	in  string
	out string

	orth bool

	i0 int
	nd int
	n  int

	noiseWin  string
	noiseRows string
	nref      int
	smooth    int
	maxCond   float64

	refTrace  int
	refWin    string
	refSmooth int
	taper     int

	mode        string
	filterTrace int
	workers     int
	failFast    bool

	traces    int
	samples   int
	seed      int64
	center    int
	moveout   int
	halfWidth int
	amp       float64
	noiseAmp  float64
}

func main() {
	var opts cliOptions

	flag.StringVar(&opts.in, "in", "", "input CSV section, one trace per line (default: synthetic demo)")
	flag.StringVar(&opts.out, "out", "", "output CSV for the filtered section")

	flag.BoolVar(&opts.orth, "orth", false, "filter across traces instead of along them")

	flag.IntVar(&opts.i0, "i0", 128, "prediction window origin")
	flag.IntVar(&opts.nd, "nd", 16, "prediction window length (also the covariance lag count)")
	flag.IntVar(&opts.n, "n", 5, "filter length")

	flag.StringVar(&opts.noiseWin, "noise", "8:128", "noise window start:end (trace axis in -orth mode)")
	flag.StringVar(&opts.noiseRows, "noise-rows", "0:1", "time rows start:end averaged for the cross-trace covariance (-orth only)")
	flag.IntVar(&opts.nref, "nref", 1, "rolling window offsets averaged into the covariance estimate")
	flag.IntVar(&opts.smooth, "smooth", 0, "three-point smoothing passes on the covariance estimate")
	flag.Float64Var(&opts.maxCond, "max-cond", 0, "condition number limit for the solves (0: default)")

	flag.IntVar(&opts.refTrace, "ref-trace", 0, "reference trace index (time row in -orth mode)")
	flag.StringVar(&opts.refWin, "ref", "", "reference keep window start:end (default: the prediction window)")
	flag.IntVar(&opts.refSmooth, "ref-smooth", 0, "three-point smoothing passes on the kept reference segment")
	flag.IntVar(&opts.taper, "taper", 0, "raised-cosine taper width on the kept reference segment")

	flag.StringVar(&opts.mode, "mode", "per-trace", "coefficient mode: per-trace or shared")
	flag.IntVar(&opts.filterTrace, "filter-trace", 0, "designated trace for shared mode")
	flag.IntVar(&opts.workers, "workers", 0, "concurrent workers (0: all CPUs)")
	flag.BoolVar(&opts.failFast, "fail-fast", false, "abort the batch on the first trace failure")

	flag.IntVar(&opts.traces, "traces", 8, "synthetic section trace count")
	flag.IntVar(&opts.samples, "samples", 256, "synthetic section samples per trace")
	flag.Int64Var(&opts.seed, "seed", 1, "synthetic noise seed")
	flag.IntVar(&opts.center, "center", 140, "synthetic event center on trace 0")
	flag.IntVar(&opts.moveout, "moveout", 2, "synthetic event shift per trace")
	flag.IntVar(&opts.halfWidth, "half-width", 10, "synthetic event half width")
	flag.Float64Var(&opts.amp, "amp", 1, "synthetic event amplitude")
	flag.Float64Var(&opts.noiseAmp, "noise-amp", 0.25, "synthetic noise amplitude")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wienerfilt [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the Wiener noise filter over a trace section.\n")
		fmt.Fprintf(os.Stderr, "Without -in, a synthetic noisy section is generated and filtered.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wienerfilt\n")
		fmt.Fprintf(os.Stderr, "  wienerfilt -traces 16 -noise-amp 0.4 -out filtered.csv\n")
		fmt.Fprintf(os.Stderr, "  wienerfilt -in section.csv -noise 8:128 -i0 128 -nd 16 -n 5\n")
		fmt.Fprintf(os.Stderr, "  wienerfilt -orth -n 3 -noise 0:3 -noise-rows 0:8 -ref-trace 140 -ref 2:6\n")
	}
	flag.Parse()

	if err := run(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *cliOptions) error {
	sec, clean, err := loadOrSynthesize(opts)
	if err != nil {
		return err
	}

	var (
		filtered *trace.Section
		report   *wiener.RunReport
		rowLabel string
	)
	if opts.orth {
		filtered, report, err = runOrthogonal(opts, sec)
		rowLabel = "time samples"
	} else {
		filtered, report, err = runAlongTraces(opts, sec)
		rowLabel = "traces"
	}
	if err != nil {
		return err
	}

	if !report.Ok() {
		idx, first := report.FirstError()
		fmt.Fprintf(os.Stderr, "warning: %d of %d %s failed, first at %d: %v\n",
			report.Failed(), len(report.TraceErrors), rowLabel, idx, first)
	}

	if err := printSummary(opts, sec, clean, filtered); err != nil {
		return err
	}

	if opts.out != "" {
		if err := writeSection(opts.out, filtered); err != nil {
			return err
		}
		fmt.Printf("filtered section written to %s\n", opts.out)
	}
	return nil
}

func loadOrSynthesize(opts *cliOptions) (sec, clean *trace.Section, err error) {
	if opts.in != "" {
		sec, err = loadSection(opts.in)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("section %s: %d traces x %d samples\n", opts.in, sec.NumTraces(), sec.NumSamples())
		return sec, nil, nil
	}

	g := signal.NewGenerator(signal.WithSeed(opts.seed))
	clean, sec, err = g.PulseSection(signal.SectionConfig{
		Traces:    opts.traces,
		Samples:   opts.samples,
		Center:    opts.center,
		Moveout:   opts.moveout,
		HalfWidth: opts.halfWidth,
		Amplitude: opts.amp,
		NoiseAmp:  opts.noiseAmp,
	})
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("synthetic section: %d traces x %d samples (seed %d)\n",
		sec.NumTraces(), sec.NumSamples(), opts.seed)
	return sec, clean, nil
}

func runAlongTraces(opts *cliOptions, sec *trace.Section) (*trace.Section, *wiener.RunReport, error) {
	predWin := trace.NewWindow(opts.i0, opts.i0+opts.nd)
	if err := predWin.Validate(sec.NumSamples()); err != nil {
		return nil, nil, fmt.Errorf("prediction window: %w", err)
	}

	noiseWin, err := parseWindow(opts.noiseWin)
	if err != nil {
		return nil, nil, fmt.Errorf("-noise: %w", err)
	}
	refKeep, err := refWindow(opts)
	if err != nil {
		return nil, nil, err
	}

	corrOpts := []correlation.Option{
		correlation.WithReferenceOffsets(opts.nref),
		correlation.WithSmoothing(opts.smooth),
	}
	rows := make([]int, sec.NumTraces())
	for i := range rows {
		rows[i] = i
	}
	r, err := correlation.EstimateSection(sec, rows, noiseWin, opts.nd, corrOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("covariance estimate: %w", err)
	}

	var covOpts []toeplitz.Option
	if opts.maxCond > 0 {
		covOpts = append(covOpts, toeplitz.WithMaxCond(opts.maxCond))
	}
	solver, err := toeplitz.NewSolver(r, covOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("covariance solver: %w", err)
	}
	fmt.Printf("covariance: dim %d, cond %.3g\n", solver.Dim(), solver.Cond())

	if opts.refTrace < 0 || opts.refTrace >= sec.NumTraces() {
		return nil, nil, fmt.Errorf("-ref-trace %d outside section with %d traces", opts.refTrace, sec.NumTraces())
	}
	refRow := sec.Row(opts.refTrace)
	ref, err := wiener.Reference(refRow, refKeep, opts.refSmooth, opts.taper)
	if err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}

	eq, err := wiener.NormalEquations(solver, refRow, opts.i0, opts.nd, opts.n)
	if err != nil {
		return nil, nil, fmt.Errorf("normal equations: %w", err)
	}
	b, err := eq.CrossCorrelate(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("normal equations: %w", err)
	}

	runOpts, err := runOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	runner, err := wiener.NewRunner(solver, b, opts.i0, opts.nd, opts.n, runOpts...)
	if err != nil {
		return nil, nil, err
	}
	return runner.Run(sec)
}

func runOrthogonal(opts *cliOptions, sec *trace.Section) (*trace.Section, *wiener.RunReport, error) {
	noiseWin, err := parseWindow(opts.noiseWin)
	if err != nil {
		return nil, nil, fmt.Errorf("-noise: %w", err)
	}
	noiseRows, err := parseRows(opts.noiseRows)
	if err != nil {
		return nil, nil, fmt.Errorf("-noise-rows: %w", err)
	}
	refKeep, err := refWindow(opts)
	if err != nil {
		return nil, nil, err
	}
	runOpts, err := runOptions(opts)
	if err != nil {
		return nil, nil, err
	}

	cfg := wiener.OrthogonalConfig{
		FilterLen:  opts.n,
		NoiseRows:  noiseRows,
		NoiseWin:   noiseWin,
		RefOffsets: opts.nref,
		CorrSmooth: opts.smooth,
		MaxCond:    opts.maxCond,
		RefRow:     opts.refTrace,
		RefKeep:    refKeep,
		RefSmooth:  opts.refSmooth,
		RefTaper:   opts.taper,
		RunOptions: runOpts,
	}
	return wiener.RunOrthogonal(sec, cfg)
}

func runOptions(opts *cliOptions) ([]wiener.RunOption, error) {
	runOpts := []wiener.RunOption{
		wiener.WithWorkers(opts.workers),
		wiener.WithFilterTrace(opts.filterTrace),
	}
	switch opts.mode {
	case "per-trace":
		runOpts = append(runOpts, wiener.WithMode(wiener.ModePerTrace))
	case "shared":
		runOpts = append(runOpts, wiener.WithMode(wiener.ModeSharedFilter))
	default:
		return nil, fmt.Errorf("-mode %q: want per-trace or shared", opts.mode)
	}
	if opts.failFast {
		runOpts = append(runOpts, wiener.WithFailFast())
	}
	if opts.maxCond > 0 {
		runOpts = append(runOpts, wiener.WithSolveOptions(wiener.WithMaxCond(opts.maxCond)))
	}
	return runOpts, nil
}

func refWindow(opts *cliOptions) (trace.Window, error) {
	if opts.refWin == "" {
		if opts.orth {
			return trace.Window{}, fmt.Errorf("-ref is required in -orth mode")
		}
		return trace.NewWindow(opts.i0, opts.i0+opts.nd), nil
	}
	win, err := parseWindow(opts.refWin)
	if err != nil {
		return trace.Window{}, fmt.Errorf("-ref: %w", err)
	}
	return win, nil
}

// printSummary tabulates the input region against the filtered output and,
// when the clean section is known, the distance each moved from it.
func printSummary(opts *cliOptions, sec, clean, filtered *trace.Section) error {
	var before, after []float64
	var cleanRef []float64
	if opts.orth {
		before = append(before, sec.Data()...)
		after = append(after, filtered.Data()...)
		if clean != nil {
			cleanRef = clean.Data()
		}
	} else {
		for i := 0; i < sec.NumTraces(); i++ {
			before = append(before, sec.Row(i)[opts.i0:opts.i0+opts.nd]...)
			after = append(after, filtered.Row(i)...)
			if clean != nil {
				cleanRef = append(cleanRef, clean.Row(i)[opts.i0:opts.i0+opts.nd]...)
			}
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Stage\tMean\tStd\tMin\tMax\n")
	fmt.Fprintf(tw, "-----\t----\t---\t---\t---\n")
	if err := printStatsRow(tw, "input", before); err != nil {
		return err
	}
	if err := printStatsRow(tw, "filtered", after); err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	if cleanRef != nil {
		fmt.Printf("mse vs clean: input %.6g, filtered %.6g\n", mse(before, cleanRef), mse(after, cleanRef))
	}
	return nil
}

func printStatsRow(tw *tabwriter.Writer, label string, data []float64) error {
	mean, err := stats.Mean(data)
	if err != nil {
		return fmt.Errorf("%s stats: %w", label, err)
	}
	std, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return fmt.Errorf("%s stats: %w", label, err)
	}
	lo, err := stats.Min(data)
	if err != nil {
		return fmt.Errorf("%s stats: %w", label, err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return fmt.Errorf("%s stats: %w", label, err)
	}
	fmt.Fprintf(tw, "%s\t%.5f\t%.5f\t%.5f\t%.5f\n", label, mean, std, lo, hi)
	return nil
}

func mse(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	d := floats.Distance(a, b, 2)
	return d * d / float64(len(a))
}

func loadSection(path string) (*trace.Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: line %d, field %d: %w", path, i+1, j+1, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return trace.SectionFromRows(rows)
}

func writeSection(path string, sec *trace.Section) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := make([]string, sec.NumSamples())
	for i := 0; i < sec.NumTraces(); i++ {
		row := sec.Row(i)
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// parseWindow parses "start:end" into a half-open window.
func parseWindow(s string) (trace.Window, error) {
	start, end, err := parsePair(s)
	if err != nil {
		return trace.Window{}, err
	}
	return trace.NewWindow(start, end), nil
}

// parseRows expands "start:end" into the row indices start..end-1.
func parseRows(s string) ([]int, error) {
	start, end, err := parsePair(s)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("empty row range %q", s)
	}
	rows := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, i)
	}
	return rows, nil
}

func parsePair(s string) (int, int, error) {
	first, second, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("want start:end, got %q", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("bad start in %q: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return 0, 0, fmt.Errorf("bad end in %q: %w", s, err)
	}
	return start, end, nil
}
