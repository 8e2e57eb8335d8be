package codec

import (
	"errors"
	"fmt"

	"github.com/san-kum/neuroanim/internal/morph"
)

// FormatVersion is written into every payload. Readers accept any minor
// version of the same major.
const FormatVersion = "1.1"

const (
	DefaultFrames      = 400
	DefaultDuration    = 50.0
	DefaultTimeStep    = 0.025
	DefaultDescription = "voltage animation data with material configuration"
)

var (
	ErrInvalidFrameCount  = errors.New("codec: frame count must be positive")
	ErrNonFiniteVoltage   = errors.New("codec: non-finite voltage")
	ErrInvalidMaterial    = errors.New("codec: invalid material config")
	ErrUnsupportedVersion = errors.New("codec: unsupported payload version")
	ErrMalformedPayload   = errors.New("codec: malformed payload")
)

type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

type Metadata struct {
	FormatVersion      string  `json:"format_version"`
	Description        string  `json:"description,omitempty"`
	FrameCount         int     `json:"frame_count"`
	Duration           float64 `json:"duration"`
	TimeStep           float64 `json:"time_step"`
	GlobalVoltageRange *Range  `json:"global_voltage_range,omitempty"`
}

// MaterialConfig is the presentation block consumed by the renderer.
type MaterialConfig struct {
	EmissionStrength float64 `json:"emission_strength" yaml:"emission_strength"`
	ColormapSteps    int     `json:"colormap_steps" yaml:"colormap_steps"`
	CmapStart        float64 `json:"cmap_start" yaml:"cmap_start"`
	CmapEnd          float64 `json:"cmap_end" yaml:"cmap_end"`
	ColormapName     string  `json:"colormap_name" yaml:"colormap_name"`
	VoltageRange     Range   `json:"voltage_range" yaml:"voltage_range"`
}

func DefaultMaterial() MaterialConfig {
	return MaterialConfig{
		EmissionStrength: 2.0,
		ColormapSteps:    10,
		CmapStart:        0.0,
		CmapEnd:          1.0,
		ColormapName:     "plasma",
		VoltageRange:     Range{Min: -70, Max: 20},
	}
}

func (c MaterialConfig) Validate() error {
	if c.CmapStart < 0 || c.CmapStart > 1 || c.CmapEnd < 0 || c.CmapEnd > 1 {
		return fmt.Errorf("%w: cmap range %g..%g outside [0,1]", ErrInvalidMaterial, c.CmapStart, c.CmapEnd)
	}
	if c.CmapStart > c.CmapEnd {
		return fmt.Errorf("%w: cmap_start %g after cmap_end %g", ErrInvalidMaterial, c.CmapStart, c.CmapEnd)
	}
	if c.ColormapSteps < 1 {
		return fmt.Errorf("%w: colormap_steps must be >= 1", ErrInvalidMaterial)
	}
	if c.VoltageRange.Min >= c.VoltageRange.Max {
		return fmt.Errorf("%w: voltage range %g..%g is empty", ErrInvalidMaterial, c.VoltageRange.Min, c.VoltageRange.Max)
	}
	if c.ColormapName == "" {
		return fmt.Errorf("%w: colormap_name is empty", ErrInvalidMaterial)
	}
	return nil
}

// SectionFrames is one section's resampled voltage.
type SectionFrames struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	VoltageFrames []float64 `json:"voltage_frames"`
	VoltageRange  Range     `json:"voltage_range"`
}

// Payload is the animation artifact. It is never modified after encoding.
type Payload struct {
	Metadata       Metadata        `json:"metadata"`
	MaterialConfig MaterialConfig  `json:"material_config"`
	Timepoints     []float64       `json:"timepoints"`
	Sections       []SectionFrames `json:"sections"`
}

// Frames maps section name to voltage frames.
func (p *Payload) Frames() map[string][]float64 {
	out := make(map[string][]float64, len(p.Sections))
	for _, s := range p.Sections {
		out[s.Name] = s.VoltageFrames
	}
	return out
}

func (p *Payload) Section(name string) (*SectionFrames, bool) {
	for i := range p.Sections {
		if p.Sections[i].Name == name {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

// SectionKind is the payload type label of a section.
func SectionKind(t morph.SampleType) string {
	switch t {
	case morph.Soma:
		return "soma"
	case morph.Axon:
		return "axon"
	case morph.ApicalDendrite:
		return "apical"
	default:
		return "dendrite"
	}
}

// RecordKind is the short label used by legacy records.
func RecordKind(t morph.SampleType) string {
	switch t {
	case morph.Soma:
		return "soma"
	case morph.Axon:
		return "axon"
	case morph.ApicalDendrite:
		return "apic"
	default:
		return "dend"
	}
}
