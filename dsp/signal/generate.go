// Package signal generates synthetic traces and sections: sampled
// waveforms, triangular events, and noisy pulse sections with linear
// moveout. It backs the command-line demo mode and makes reproducible
// inputs for experiments.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-wiener/dsp/trace"
)

// Generator creates deterministic random signals. The generator state
// advances across calls, so consecutive calls produce fresh noise while a
// fixed seed keeps whole runs reproducible. A Generator is not safe for
// concurrent use.
type Generator struct {
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Noise generates white noise in [-amplitude, amplitude].
func (g *Generator) Noise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = (g.rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Sine generates a sinusoid with the given period in samples.
func Sine(period, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if period <= 0 {
		return nil, fmt.Errorf("sine period must be > 0: %f", period)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi / period
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// Triangular generates a triangular event peaking at center and reaching
// zero halfWidth samples to each side. A halfWidth of zero degenerates to
// a single spike. Parts of the event outside the trace are clipped.
func Triangular(samples, center, halfWidth int, amplitude float64) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("triangular samples must be > 0: %d", samples)
	}
	if halfWidth < 0 {
		return nil, fmt.Errorf("triangular half width must be >= 0: %d", halfWidth)
	}
	out := make([]float64, samples)
	addTriangle(out, center, halfWidth, amplitude)
	return out, nil
}

// SectionConfig describes a synthetic section: a triangular event with
// linear moveout across traces, buried in white noise.
type SectionConfig struct {
	Traces    int
	Samples   int
	Center    int // event center on trace 0
	Moveout   int // center shift per trace
	HalfWidth int
	Amplitude float64
	NoiseAmp  float64
}

// PulseSection builds the clean and the noisy version of the section
// described by cfg. Both have shape (Traces, Samples); the noisy one adds
// fresh noise per trace.
func (g *Generator) PulseSection(cfg SectionConfig) (clean, noisy *trace.Section, err error) {
	if cfg.Traces < 1 || cfg.Samples < 1 {
		return nil, nil, fmt.Errorf("section dimensions must be positive: %dx%d", cfg.Traces, cfg.Samples)
	}
	if cfg.HalfWidth < 0 {
		return nil, nil, fmt.Errorf("section half width must be >= 0: %d", cfg.HalfWidth)
	}
	if cfg.NoiseAmp < 0 {
		return nil, nil, fmt.Errorf("section noise amplitude must be >= 0: %f", cfg.NoiseAmp)
	}

	clean, err = trace.NewSection(cfg.Traces, cfg.Samples)
	if err != nil {
		return nil, nil, err
	}
	noisy, err = trace.NewSection(cfg.Traces, cfg.Samples)
	if err != nil {
		return nil, nil, err
	}

	for i := 0; i < cfg.Traces; i++ {
		center := cfg.Center + i*cfg.Moveout
		addTriangle(clean.Row(i), center, cfg.HalfWidth, cfg.Amplitude)

		row := noisy.Row(i)
		copy(row, clean.Row(i))
		for j := range row {
			row[j] += (g.rng.Float64()*2 - 1) * cfg.NoiseAmp
		}
	}
	return clean, noisy, nil
}

// Normalize scales data to the target peak amplitude and returns a new
// slice. All-zero input stays zero.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	out := make([]float64, len(data))
	maxAbs := floats.Norm(data, math.Inf(1))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}
	copy(out, data)
	floats.Scale(targetPeak/maxAbs, out)
	return out, nil
}

func addTriangle(row []float64, center, halfWidth int, amplitude float64) {
	if halfWidth < 1 {
		if center >= 0 && center < len(row) {
			row[center] += amplitude
		}
		return
	}
	for j := center - halfWidth; j <= center+halfWidth; j++ {
		if j < 0 || j >= len(row) {
			continue
		}
		frac := 1 - math.Abs(float64(j-center))/float64(halfWidth)
		row[j] += amplitude * frac
	}
}
