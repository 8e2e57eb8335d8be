package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/morph"
)

const neuron = `1 1 0 0 0 5 -1
2 1 0 10 0 5 1
3 3 5 15 0 1 2
4 3 10 20 0 0.5 3
5 4 -5 15 0 1 2
6 2 0 -5 0 0.5 1
`

func buildModel(t *testing.T, swc string) *cell.Model {
	t.Helper()
	tbl, err := morph.Parse(strings.NewReader(swc), morph.ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f, err := morph.Build(tbl, morph.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	m, err := cell.Assemble(tbl, f)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return m
}

func stimulated(t *testing.T, swc string, amp float64) *cell.Model {
	t.Helper()
	m := buildModel(t, swc)
	st := cell.DefaultStimulus(m)
	st.Amp = amp
	if err := m.AttachStimulus(st); err != nil {
		t.Fatalf("attach stimulus: %v", err)
	}
	return m
}

func peak(trace []float64) (int, float64) {
	idx, v := 0, math.Inf(-1)
	for i, x := range trace {
		if x > v {
			idx, v = i, x
		}
	}
	return idx, v
}

func TestAnalyticResting(t *testing.T) {
	m := buildModel(t, neuron)
	cfg := cell.DefaultEngineConfig()

	rec, err := NewAnalytic().Run(context.Background(), m, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(rec.Time) != cfg.Steps() {
		t.Errorf("expected %d timepoints, got %d", cfg.Steps(), len(rec.Time))
	}
	if len(rec.Traces) != m.Len() {
		t.Errorf("expected a trace per section, got %d", len(rec.Traces))
	}
	for id, trace := range rec.Traces {
		for i, v := range trace {
			if v != cfg.VInit {
				t.Fatalf("section %d sample %d: expected rest %f, got %f", id, i, cfg.VInit, v)
			}
		}
	}
}

func TestAnalyticSpike(t *testing.T) {
	m := stimulated(t, neuron, 0.5)
	cfg := cell.DefaultEngineConfig()

	rec, err := NewAnalytic().Run(context.Background(), m, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	idx, somaPeak := peak(rec.Traces[0])
	if math.Abs(somaPeak-40) > 1e-3 {
		t.Errorf("expected soma peak near 40 mV, got %f", somaPeak)
	}
	if math.Abs(rec.Time[idx]-6) > cfg.Dt {
		t.Errorf("expected soma peak at 6 ms, got %f", rec.Time[idx])
	}
	if rec.Traces[0][0] != cfg.VInit {
		t.Errorf("expected rest before stimulus, got %f", rec.Traces[0][0])
	}

	_, axonPeak := peak(rec.Traces[4])
	if axonPeak <= 0 {
		t.Errorf("expected axon to carry the spike, peak %f", axonPeak)
	}

	_, dendPeak := peak(rec.Traces[2])
	if dendPeak >= somaPeak || dendPeak <= cfg.VInit {
		t.Errorf("expected attenuated dendrite peak, got %f", dendPeak)
	}
}

func TestAnalyticSubthreshold(t *testing.T) {
	m := stimulated(t, neuron, 0.05)

	rec, err := NewAnalytic().Run(context.Background(), m, cell.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	_, v := peak(rec.Traces[0])
	if math.Abs(v-(-69)) > 1e-3 {
		t.Errorf("expected 1 mV depolarization, got peak %f", v)
	}
}

func TestAnalyticDeterministic(t *testing.T) {
	cfg := cell.DefaultEngineConfig()
	a, err := NewAnalytic().Run(context.Background(), stimulated(t, neuron, 0.5), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := NewAnalytic().Run(context.Background(), stimulated(t, neuron, 0.5), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical recordings for identical inputs")
	}
}

func TestAnalyticTemperature(t *testing.T) {
	m := stimulated(t, neuron, 0.5)
	warm := cell.DefaultEngineConfig()
	cold := warm
	cold.Celsius = 27

	rw, err := NewAnalytic().Run(context.Background(), m, warm)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	rc, err := NewAnalytic().Run(context.Background(), m, cold)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	iw, _ := peak(rw.Traces[0])
	ic, _ := peak(rc.Traces[0])
	if ic <= iw {
		t.Errorf("expected colder cell to peak later: %d vs %d", ic, iw)
	}
}

func TestAnalyticProbes(t *testing.T) {
	m := stimulated(t, neuron, 0.5)
	if err := m.AttachProbe(2, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := m.AttachProbe(2, 0.0); err != nil {
		t.Fatal(err)
	}

	rec, err := NewAnalytic().Run(context.Background(), m, cell.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(rec.Traces) != 1 {
		t.Fatalf("expected only the probed section, got %d traces", len(rec.Traces))
	}
	if _, ok := rec.Traces[2]; !ok {
		t.Error("expected trace for section 2")
	}
}

func TestAnalyticDisconnectedTree(t *testing.T) {
	swc := neuron + "10 3 100 0 0 1 -1\n11 3 110 0 0 1 10\n"
	m := stimulated(t, swc, 0.5)
	cfg := cell.DefaultEngineConfig()

	rec, err := NewAnalytic().Run(context.Background(), m, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	s, ok := m.SectionByName("basal_dendrite_2")
	if !ok {
		t.Fatal("expected second tree section")
	}
	if _, v := peak(rec.Traces[s.ID]); v != cfg.VInit {
		t.Errorf("expected unreached tree at rest, peak %f", v)
	}
}

func TestAnalyticCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalytic().Run(ctx, buildModel(t, neuron), cell.DefaultEngineConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var re *RunError
	if !errors.As(err, &re) {
		t.Errorf("expected *RunError, got %T", err)
	}
}

func TestAnalyticInvalidConfig(t *testing.T) {
	cfg := cell.DefaultEngineConfig()
	cfg.Dt = 0

	_, err := NewAnalytic().Run(context.Background(), buildModel(t, neuron), cfg)
	if !errors.Is(err, cell.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestTreeDistance(t *testing.T) {
	m := buildModel(t, neuron)
	dend := math.Sqrt(50)

	tests := []struct {
		name   string
		a      int
		pa     float64
		b      int
		pb     float64
		expect float64
	}{
		{"same point", 0, 0.5, 0, 0.5, 0},
		{"within section", 2, 0, 2, 1, dend},
		{"parent to child", 0, 0.5, 4, 0.5, 1},
		{"child to parent", 4, 0.5, 0, 0.5, 1},
		{"siblings", 2, 0.5, 3, 0.5, dend/2 + 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := treeDistance(m, tt.a, tt.pa, tt.b, tt.pb)
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expect, got)
			}
		})
	}
}
