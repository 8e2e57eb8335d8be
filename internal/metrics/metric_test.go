package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/neuroanim/internal/cell"
)

func recording() *cell.Recording {
	rec := cell.NewRecording([]float64{0, 1, 2, 3})
	rec.Traces[0] = []float64{-70, 10, -60, -70}
	rec.Traces[2] = []float64{-70, -65, -62}
	return rec
}

func TestEvaluate(t *testing.T) {
	got := Evaluate(recording(), Defaults()...)

	if got["peak_voltage"] != 10 {
		t.Errorf("expected peak 10, got %f", got["peak_voltage"])
	}
	if got["time_to_peak"] != 1 {
		t.Errorf("expected peak at t=1, got %f", got["time_to_peak"])
	}
	if got["spiking_fraction"] != 0.5 {
		t.Errorf("expected half the sections to spike, got %f", got["spiking_fraction"])
	}

	mean := (-70 + 10 - 60 - 70 - 70 - 65 - 62) / 7.0
	if math.Abs(got["mean_voltage"]-mean) > 1e-12 {
		t.Errorf("expected mean %f over present samples, got %f", mean, got["mean_voltage"])
	}
}

func TestEvaluateResets(t *testing.T) {
	ms := Defaults()
	first := Evaluate(recording(), ms...)
	second := Evaluate(recording(), ms...)
	for name, v := range first {
		if second[name] != v {
			t.Errorf("%s: expected %f on re-evaluation, got %f", name, v, second[name])
		}
	}
}

func TestEmpty(t *testing.T) {
	if got := Evaluate(nil, Defaults()...); len(got) != 0 {
		t.Errorf("expected no values without a recording, got %v", got)
	}

	got := Evaluate(cell.NewRecording([]float64{0, 1}), Defaults()...)
	if !math.IsNaN(got["peak_voltage"]) || !math.IsNaN(got["mean_voltage"]) || !math.IsNaN(got["time_to_peak"]) {
		t.Errorf("expected NaN without traces, got %v", got)
	}
	if got["spiking_fraction"] != 0 {
		t.Errorf("expected zero spiking fraction, got %f", got["spiking_fraction"])
	}
}

func TestSpikingFractionThreshold(t *testing.T) {
	s := NewSpikingFraction(-65)
	s.Observe([]float64{-70}, 0)
	s.Observe([]float64{-64}, 1)
	if s.Value() != 1 {
		t.Errorf("expected crossing at custom threshold, got %f", s.Value())
	}
	s.Reset()
	if s.Value() != 0 {
		t.Error("expected reset")
	}
}
