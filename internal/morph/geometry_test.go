package morph

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDerive(t *testing.T) {
	tbl := NewTable([]Sample{
		{ID: 1, Type: Soma, Pos: Point{0, 0, 0}, Radius: 1, Parent: NoParent},
		{ID: 2, Type: Soma, Pos: Point{3, 4, 0}, Radius: 2, Parent: 1},
		{ID: 3, Type: Soma, Pos: Point{3, 4, 12}, Radius: 0.5, Parent: 2},
	})
	sec := &Section{Name: "soma_1", Type: Soma, SampleIDs: []int{1, 2, 3}, Parent: -1}

	g, err := Derive(tbl, sec)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if math.Abs(g.Length-17) > 1e-12 {
		t.Errorf("expected length 17, got %f", g.Length)
	}

	want := []float64{2, 4, 1}
	for i, d := range want {
		if g.Diameters[i] != d {
			t.Errorf("diameter[%d] = %f, want %f", i, g.Diameters[i], d)
		}
	}
	if math.Abs(g.MeanDiameter()-7.0/3.0) > 1e-12 {
		t.Errorf("unexpected mean diameter %f", g.MeanDiameter())
	}
	if g.EngineLength() != 17 {
		t.Errorf("engine length should not clamp, got %f", g.EngineLength())
	}
}

func TestDerive_SingleSample(t *testing.T) {
	tbl := NewTable([]Sample{{ID: 1, Type: Axon, Pos: Point{1, 1, 1}, Radius: 0.25, Parent: NoParent}})
	sec := &Section{Name: "axon_1", Type: Axon, SampleIDs: []int{1}, Parent: -1}

	g, err := Derive(tbl, sec)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if g.Length != 0 {
		t.Errorf("expected zero length, got %f", g.Length)
	}
	if g.EngineLength() != MinLength {
		t.Errorf("expected clamp to %f, got %f", MinLength, g.EngineLength())
	}
}

func TestDerive_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
	}{
		{"nan coordinate", Sample{ID: 1, Type: Soma, Pos: Point{math.NaN(), 0, 0}, Radius: 1, Parent: NoParent}},
		{"inf coordinate", Sample{ID: 1, Type: Soma, Pos: Point{0, math.Inf(1), 0}, Radius: 1, Parent: NoParent}},
		{"zero radius", Sample{ID: 1, Type: Soma, Pos: Point{0, 0, 0}, Radius: 0, Parent: NoParent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable([]Sample{tt.sample})
			sec := &Section{Name: "soma_1", SampleIDs: []int{1}, Parent: -1}

			_, err := Derive(tbl, sec)
			var ge *GeometryError
			if !errors.As(err, &ge) {
				t.Fatalf("expected GeometryError, got %v", err)
			}
			if ge.Section != "soma_1" || ge.SampleID != 1 {
				t.Errorf("missing context in %v", ge)
			}
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Error("GeometryError should wrap ErrDegenerateGeometry")
			}
		})
	}
}

func TestDerive_ZeroLength(t *testing.T) {
	tbl, err := Parse(strings.NewReader("1 3 0 0 0 1 -1\n2 3 0 0 0 1 1\n"), ParseOptions{})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	sec := &Section{Name: "basal_dendrite_1", Type: BasalDendrite, SampleIDs: []int{1, 2}, Parent: -1}

	_, err = Derive(tbl, sec)
	var ge *GeometryError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GeometryError, got %v", err)
	}
	if ge.Section != "basal_dendrite_1" || ge.SampleID != 2 {
		t.Errorf("missing context in %v", ge)
	}
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Error("GeometryError should wrap ErrDegenerateGeometry")
	}
}

func TestDerive_EmptySection(t *testing.T) {
	_, err := Derive(NewTable(nil), &Section{Name: "soma_1"})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}
