package metrics

import "math"

type PeakVoltage struct {
	name string
	peak float64
}

func NewPeakVoltage() *PeakVoltage {
	return &PeakVoltage{name: "peak_voltage", peak: math.Inf(-1)}
}

func (p *PeakVoltage) Name() string { return p.name }

func (p *PeakVoltage) Observe(v []float64, t float64) {
	for _, x := range v {
		if !math.IsNaN(x) && x > p.peak {
			p.peak = x
		}
	}
}

// Value is NaN when nothing was observed.
func (p *PeakVoltage) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return math.NaN()
	}
	return p.peak
}

func (p *PeakVoltage) Reset() { p.peak = math.Inf(-1) }

type MeanVoltage struct {
	name    string
	sum     float64
	samples int
}

func NewMeanVoltage() *MeanVoltage {
	return &MeanVoltage{name: "mean_voltage"}
}

func (m *MeanVoltage) Name() string { return m.name }

func (m *MeanVoltage) Observe(v []float64, t float64) {
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		m.sum += x
		m.samples++
	}
}

func (m *MeanVoltage) Value() float64 {
	if m.samples == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.samples)
}

func (m *MeanVoltage) Reset() {
	m.sum = 0
	m.samples = 0
}

// SpikingFraction is the share of traced sections that crossed threshold
// upwards at least once.
type SpikingFraction struct {
	name      string
	threshold float64
	prev      []float64
	spiked    []bool
}

func NewSpikingFraction(threshold float64) *SpikingFraction {
	return &SpikingFraction{name: "spiking_fraction", threshold: threshold}
}

func (s *SpikingFraction) Name() string { return s.name }

func (s *SpikingFraction) Observe(v []float64, t float64) {
	if s.prev == nil {
		s.prev = make([]float64, len(v))
		s.spiked = make([]bool, len(v))
		copy(s.prev, v)
		return
	}
	for i, x := range v {
		if i >= len(s.prev) {
			break
		}
		if !math.IsNaN(x) && !math.IsNaN(s.prev[i]) && s.prev[i] < s.threshold && x >= s.threshold {
			s.spiked[i] = true
		}
		s.prev[i] = x
	}
}

func (s *SpikingFraction) Value() float64 {
	if len(s.spiked) == 0 {
		return 0
	}
	n := 0
	for _, ok := range s.spiked {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(s.spiked))
}

func (s *SpikingFraction) Reset() {
	s.prev = nil
	s.spiked = nil
}

// TimeToPeak is the time of the highest voltage seen in any section.
type TimeToPeak struct {
	name string
	peak float64
	at   float64
}

func NewTimeToPeak() *TimeToPeak {
	return &TimeToPeak{name: "time_to_peak", peak: math.Inf(-1), at: math.NaN()}
}

func (p *TimeToPeak) Name() string { return p.name }

func (p *TimeToPeak) Observe(v []float64, t float64) {
	for _, x := range v {
		if !math.IsNaN(x) && x > p.peak {
			p.peak = x
			p.at = t
		}
	}
}

func (p *TimeToPeak) Value() float64 { return p.at }

func (p *TimeToPeak) Reset() {
	p.peak = math.Inf(-1)
	p.at = math.NaN()
}
