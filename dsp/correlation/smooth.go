package correlation

// Smooth returns a copy of v with the given number of three-point
// [1, 2, 1]/4 smoothing passes applied. Endpoints are carried over
// unchanged, so the vector length and its boundary values are preserved.
// Zero or negative passes return a plain copy.
func Smooth(v []float64, passes int) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	SmoothInPlace(out, passes)
	return out
}

// SmoothInPlace applies the given number of three-point smoothing passes to
// v. Vectors shorter than three samples are left untouched.
func SmoothInPlace(v []float64, passes int) {
	if len(v) < 3 || passes <= 0 {
		return
	}

	prev := make([]float64, len(v))
	for p := 0; p < passes; p++ {
		copy(prev, v)
		for i := 1; i < len(v)-1; i++ {
			v[i] = 0.25*prev[i-1] + 0.5*prev[i] + 0.25*prev[i+1]
		}
	}
}
