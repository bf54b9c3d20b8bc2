package trace

import (
	"errors"
	"testing"
)

func TestNewSection(t *testing.T) {
	s, err := NewSection(3, 5)
	if err != nil {
		t.Fatalf("NewSection error: %v", err)
	}
	if s.NumTraces() != 3 || s.NumSamples() != 5 {
		t.Fatalf("dims = %dx%d, want 3x5", s.NumTraces(), s.NumSamples())
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			if s.At(i, j) != 0 {
				t.Fatalf("At(%d, %d) = %v, want 0", i, j, s.At(i, j))
			}
		}
	}
}

func TestNewSectionInvalidDims(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {3, 0}, {-1, 5}, {3, -2}} {
		if _, err := NewSection(dims[0], dims[1]); !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("NewSection(%d, %d) error = %v, want ErrDimensionMismatch", dims[0], dims[1], err)
		}
	}
}

func TestSectionFromRows(t *testing.T) {
	s, err := SectionFromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	if err != nil {
		t.Fatalf("SectionFromRows error: %v", err)
	}
	if s.At(0, 2) != 3 || s.At(1, 0) != 4 {
		t.Fatalf("unexpected contents: %v", s.Data())
	}
}

func TestSectionFromRowsRagged(t *testing.T) {
	_, err := SectionFromRows([][]float64{
		{1, 2, 3},
		{4, 5},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestSectionFromRowsEmpty(t *testing.T) {
	for _, rows := range [][][]float64{nil, {}, {{}}} {
		if _, err := SectionFromRows(rows); !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("error = %v, want ErrDimensionMismatch", err)
		}
	}
}

func TestSectionRowIsView(t *testing.T) {
	s, _ := NewSection(2, 3)
	row := s.Row(1)
	row[2] = 7

	if s.At(1, 2) != 7 {
		t.Fatal("Row did not return a live view")
	}
}

func TestSectionCol(t *testing.T) {
	s, _ := SectionFromRows([][]float64{
		{1, 2},
		{3, 4},
		{5, 6},
	})

	col := s.Col(nil, 1)
	want := []float64{2, 4, 6}
	for i := range want {
		if col[i] != want[i] {
			t.Fatalf("col[%d] = %v, want %v", i, col[i], want[i])
		}
	}

	// Reuse a destination slice.
	dst := make([]float64, 3)
	got := s.Col(dst, 0)
	if &got[0] != &dst[0] {
		t.Fatal("Col did not reuse dst")
	}
	if dst[0] != 1 || dst[1] != 3 || dst[2] != 5 {
		t.Fatalf("dst = %v, want [1 3 5]", dst)
	}
}

func TestSectionClone(t *testing.T) {
	s, _ := SectionFromRows([][]float64{{1, 2}, {3, 4}})
	c := s.Clone()
	c.Set(0, 0, 9)

	if s.At(0, 0) != 1 {
		t.Fatal("Clone shares backing storage with original")
	}
	if c.At(0, 0) != 9 || c.At(1, 1) != 4 {
		t.Fatalf("unexpected clone contents: %v", c.Data())
	}
}

func TestSectionTranspose(t *testing.T) {
	s, _ := SectionFromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})

	tr := s.Transpose()
	if tr.NumTraces() != 3 || tr.NumSamples() != 2 {
		t.Fatalf("dims = %dx%d, want 3x2", tr.NumTraces(), tr.NumSamples())
	}
	for i := 0; i < s.NumTraces(); i++ {
		for j := 0; j < s.NumSamples(); j++ {
			if tr.At(j, i) != s.At(i, j) {
				t.Fatalf("transpose mismatch at (%d, %d)", i, j)
			}
		}
	}
}

func TestSectionTransposeRoundTrip(t *testing.T) {
	s, _ := SectionFromRows([][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	})

	rt := s.Transpose().Transpose()
	if rt.NumTraces() != s.NumTraces() || rt.NumSamples() != s.NumSamples() {
		t.Fatal("round-trip changed dimensions")
	}
	for i, v := range rt.Data() {
		if v != s.Data()[i] {
			t.Fatalf("round-trip mismatch at flat index %d", i)
		}
	}
}

func TestSectionPadRows(t *testing.T) {
	s, _ := SectionFromRows([][]float64{
		{1, 2},
		{3, 4},
	})

	p := s.PadRows(2)
	if p.NumTraces() != 2 || p.NumSamples() != 6 {
		t.Fatalf("dims = %dx%d, want 2x6", p.NumTraces(), p.NumSamples())
	}
	wantRow0 := []float64{0, 0, 1, 2, 0, 0}
	for j, v := range wantRow0 {
		if p.At(0, j) != v {
			t.Fatalf("padded row 0 sample %d = %v, want %v", j, p.At(0, j), v)
		}
	}
	if p.At(1, 2) != 3 || p.At(1, 3) != 4 {
		t.Fatalf("padded row 1 = %v", p.Row(1))
	}
}

func TestSectionPadRowsNonPositive(t *testing.T) {
	s, _ := SectionFromRows([][]float64{{1, 2}})
	p := s.PadRows(0)
	if p.NumSamples() != 2 || p.At(0, 1) != 2 {
		t.Fatal("PadRows(0) should clone unchanged")
	}
	p.Set(0, 0, 9)
	if s.At(0, 0) != 1 {
		t.Fatal("PadRows(0) shares storage with original")
	}
}

func TestSectionAccessPanics(t *testing.T) {
	s, _ := NewSection(2, 2)
	for name, fn := range map[string]func(){
		"row":     func() { s.Row(2) },
		"col":     func() { s.Col(nil, -1) },
		"at":      func() { s.At(0, 2) },
		"set":     func() { s.Set(-1, 0, 1) },
		"col dst": func() { s.Col(make([]float64, 1), 0) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}
