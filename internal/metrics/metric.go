// Package metrics reduces a voltage recording to named scalars stored with
// each run.
package metrics

import (
	"math"
	"sort"

	"github.com/san-kum/neuroanim/internal/cell"
)

// Metric observes the voltage of every traced section at each recorded
// time. v is indexed consistently across calls; NaN marks a section whose
// trace has already ended.
type Metric interface {
	Name() string
	Observe(v []float64, t float64)
	Value() float64
	Reset()
}

// Defaults is the metric set recorded for every converted run.
func Defaults() []Metric {
	return []Metric{
		NewPeakVoltage(),
		NewMeanVoltage(),
		NewSpikingFraction(0),
		NewTimeToPeak(),
	}
}

// Evaluate resets each metric, replays the recording through it and
// returns the values by name.
func Evaluate(rec *cell.Recording, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	if rec == nil {
		return out
	}

	ids := make([]int, 0, len(rec.Traces))
	for id := range rec.Traces {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, m := range ms {
		m.Reset()
	}
	v := make([]float64, len(ids))
	for i, t := range rec.Time {
		for j, id := range ids {
			tr := rec.Traces[id]
			if i < len(tr) {
				v[j] = tr[i]
			} else {
				v[j] = math.NaN()
			}
		}
		for _, m := range ms {
			m.Observe(v, t)
		}
	}

	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
