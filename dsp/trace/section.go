package trace

import "fmt"

// Section is a dense 2-D block of samples laid out row-major, one trace per
// row. Rows share a common length, so every trace can be processed with the
// same window geometry.
type Section struct {
	data    []float64
	traces  int
	samples int
}

// NewSection allocates a zeroed section of traces rows by samples columns.
func NewSection(traces, samples int) (*Section, error) {
	if traces <= 0 || samples <= 0 {
		return nil, fmt.Errorf("%w: section dimensions %dx%d must be positive", ErrDimensionMismatch, traces, samples)
	}
	return &Section{
		data:    make([]float64, traces*samples),
		traces:  traces,
		samples: samples,
	}, nil
}

// SectionFromRows copies rows into a new section. All rows must share the
// same non-zero length.
func SectionFromRows(rows [][]float64) (*Section, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: section needs at least one trace and one sample", ErrDimensionMismatch)
	}

	samples := len(rows[0])
	s := &Section{
		data:    make([]float64, len(rows)*samples),
		traces:  len(rows),
		samples: samples,
	}
	for i, row := range rows {
		if len(row) != samples {
			return nil, fmt.Errorf("%w: trace %d has %d samples, want %d", ErrDimensionMismatch, i, len(row), samples)
		}
		copy(s.data[i*samples:(i+1)*samples], row)
	}
	return s, nil
}

// NumTraces returns the number of rows.
func (s *Section) NumTraces() int {
	return s.traces
}

// NumSamples returns the number of samples per trace.
func (s *Section) NumSamples() int {
	return s.samples
}

// Row returns trace i as a slice view into the section. Writes through the
// returned slice modify the section. Panics if i is out of range.
func (s *Section) Row(i int) []float64 {
	if i < 0 || i >= s.traces {
		panic("trace: row index out of range")
	}
	return s.data[i*s.samples : (i+1)*s.samples]
}

// Col copies sample column j into dst and returns it. If dst is nil a new
// slice is allocated; otherwise dst must have length NumTraces. Panics if j
// is out of range.
func (s *Section) Col(dst []float64, j int) []float64 {
	if j < 0 || j >= s.samples {
		panic("trace: column index out of range")
	}
	if dst == nil {
		dst = make([]float64, s.traces)
	}
	if len(dst) != s.traces {
		panic("trace: column destination length mismatch")
	}
	for i := range dst {
		dst[i] = s.data[i*s.samples+j]
	}
	return dst
}

// At returns the sample of trace i at position j. Panics if out of range.
func (s *Section) At(i, j int) float64 {
	if i < 0 || i >= s.traces || j < 0 || j >= s.samples {
		panic("trace: index out of range")
	}
	return s.data[i*s.samples+j]
}

// Set stores v as the sample of trace i at position j. Panics if out of
// range.
func (s *Section) Set(i, j int, v float64) {
	if i < 0 || i >= s.traces || j < 0 || j >= s.samples {
		panic("trace: index out of range")
	}
	s.data[i*s.samples+j] = v
}

// Data returns the backing row-major slice. Writes through it modify the
// section.
func (s *Section) Data() []float64 {
	return s.data
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	out := &Section{
		data:    make([]float64, len(s.data)),
		traces:  s.traces,
		samples: s.samples,
	}
	copy(out.data, s.data)
	return out
}

// Transpose returns a new section with traces and samples swapped, so that
// former sample columns become rows.
func (s *Section) Transpose() *Section {
	out := &Section{
		data:    make([]float64, len(s.data)),
		traces:  s.samples,
		samples: s.traces,
	}
	for i := 0; i < s.traces; i++ {
		row := s.data[i*s.samples : (i+1)*s.samples]
		for j, v := range row {
			out.data[j*out.samples+i] = v
		}
	}
	return out
}

// PadRows returns a new section whose rows carry pad zero samples on both
// ends, so windows anchored near a row boundary stay in range. A pad of
// zero or less returns a plain clone.
func (s *Section) PadRows(pad int) *Section {
	if pad <= 0 {
		return s.Clone()
	}

	samples := s.samples + 2*pad
	out := &Section{
		data:    make([]float64, s.traces*samples),
		traces:  s.traces,
		samples: samples,
	}
	for i := 0; i < s.traces; i++ {
		copy(out.data[i*samples+pad:i*samples+pad+s.samples], s.data[i*s.samples:(i+1)*s.samples])
	}
	return out
}
