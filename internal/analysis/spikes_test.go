package analysis

import (
	"context"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/engine"
	"github.com/san-kum/neuroanim/internal/morph"
)

const neuron = `1 1 0 0 0 5 -1
2 3 0 100 0 1 1
3 3 0 200 0 1 2
4 2 0 -400 0 0.5 1
`

func model(t *testing.T) *cell.Model {
	t.Helper()
	tbl, err := morph.Parse(strings.NewReader(neuron), morph.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := morph.Build(tbl, morph.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	m, err := cell.Assemble(tbl, f)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCrossings(t *testing.T) {
	tests := []struct {
		name   string
		trace  []float64
		expect []int
	}{
		{"empty", nil, nil},
		{"flat", []float64{-70, -70, -70}, nil},
		{"single spike", []float64{-70, -10, 20, -30, -70}, []int{2}},
		{"two spikes", []float64{-70, 5, -70, 0, -70}, []int{1, 3}},
		{"starts above", []float64{10, 20, -70}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Crossings(tt.trace, DefaultThreshold)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	m := model(t)
	rec := cell.NewRecording([]float64{0, 1, 2, 3})
	rec.Traces[0] = []float64{-70, 30, -75, -70}
	rec.Traces[1] = []float64{-70, -68, -66, -64, 99}

	stats := Summarize(m, rec, DefaultThreshold)
	if len(stats) != 2 {
		t.Fatalf("expected 2 traced sections, got %d", len(stats))
	}

	soma := stats[0]
	if soma.Name != "soma_1" || soma.Peak != 30 || soma.PeakTime != 1 || soma.Trough != -75 {
		t.Errorf("unexpected soma stats %+v", soma)
	}
	if soma.Spikes != 1 || soma.FirstSpike != 1 {
		t.Errorf("expected one spike at t=1, got %d at %f", soma.Spikes, soma.FirstSpike)
	}

	dend := stats[1]
	if dend.Peak != -64 {
		t.Errorf("expected samples past the time vector to be ignored, peak %f", dend.Peak)
	}
	if dend.Spiked() || !math.IsNaN(dend.FirstSpike) {
		t.Errorf("expected no spike, got %+v", dend)
	}

	if Summarize(m, nil, 0) != nil {
		t.Error("expected nil stats without a recording")
	}
}

func TestPropagation(t *testing.T) {
	m := model(t)
	if err := m.AttachStimulus(cell.DefaultStimulus(m)); err != nil {
		t.Fatal(err)
	}
	rec, err := cell.Simulate(context.Background(), m, engine.NewAnalytic(), cell.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	order := Propagation(Summarize(m, rec, DefaultThreshold))
	if len(order) == 0 {
		t.Fatal("expected spiking sections")
	}
	if order[0].Name != "soma_1" {
		t.Errorf("expected soma to spike first, got %s", order[0].Name)
	}
	for i := 1; i < len(order); i++ {
		if order[i].FirstSpike < order[i-1].FirstSpike {
			t.Errorf("propagation out of order at %d", i)
		}
	}
}
