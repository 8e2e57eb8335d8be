package analysis

import (
	"math"
	"sort"

	"github.com/san-kum/neuroanim/internal/cell"
)

// DefaultThreshold is the spike detection level in mV.
const DefaultThreshold = 0.0

// SectionStats summarizes one section's trace.
type SectionStats struct {
	ID       int
	Name     string
	Peak     float64
	PeakTime float64
	Trough   float64
	Spikes   int
	// FirstSpike is the time of the first upward crossing, NaN without spikes.
	FirstSpike float64
}

func (s SectionStats) Spiked() bool { return s.Spikes > 0 }

// Crossings returns the sample indices where trace rises through threshold.
func Crossings(trace []float64, threshold float64) []int {
	var out []int
	for i := 1; i < len(trace); i++ {
		if trace[i-1] < threshold && trace[i] >= threshold {
			out = append(out, i)
		}
	}
	return out
}

// Summarize returns stats for every section with a trace, in section order.
// Trace samples beyond the time vector are ignored.
func Summarize(m *cell.Model, rec *cell.Recording, threshold float64) []SectionStats {
	if rec == nil {
		return nil
	}

	out := make([]SectionStats, 0, len(rec.Traces))
	for _, s := range m.Sections() {
		trace, ok := rec.Traces[s.ID]
		if !ok {
			continue
		}
		n := min(len(trace), len(rec.Time))
		if n == 0 {
			continue
		}
		trace = trace[:n]

		st := SectionStats{
			ID:         s.ID,
			Name:       s.Name,
			Peak:       math.Inf(-1),
			Trough:     math.Inf(1),
			FirstSpike: math.NaN(),
		}
		for i, v := range trace {
			if v > st.Peak {
				st.Peak = v
				st.PeakTime = rec.Time[i]
			}
			st.Trough = math.Min(st.Trough, v)
		}

		crossings := Crossings(trace, threshold)
		st.Spikes = len(crossings)
		if len(crossings) > 0 {
			st.FirstSpike = rec.Time[crossings[0]]
		}
		out = append(out, st)
	}
	return out
}

// Propagation returns the spiking sections ordered by first spike time,
// ties broken by section ID.
func Propagation(stats []SectionStats) []SectionStats {
	out := make([]SectionStats, 0, len(stats))
	for _, s := range stats {
		if s.Spiked() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FirstSpike != out[j].FirstSpike {
			return out[i].FirstSpike < out[j].FirstSpike
		}
		return out[i].ID < out[j].ID
	})
	return out
}
