package testutil

import "math/rand"

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a scaled impulse at the given position.
func Impulse(length, pos int, amplitude float64) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = amplitude
	}
	return out
}

// TriangularPulse generates a triangular pulse peaking at center with the
// given amplitude and dropping to zero halfWidth samples to either side.
func TriangularPulse(length, center, halfWidth int, amplitude float64) []float64 {
	out := make([]float64, length)
	if halfWidth <= 0 {
		if center >= 0 && center < length {
			out[center] = amplitude
		}
		return out
	}
	for i := range out {
		d := i - center
		if d < 0 {
			d = -d
		}
		if d < halfWidth {
			out[i] = amplitude * (1 - float64(d)/float64(halfWidth))
		}
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
