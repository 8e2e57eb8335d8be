package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/neuroanim/internal/cell"
)

type Options struct {
	FrameCount  int
	Material    MaterialConfig
	Description string
	// Sections restricts the payload to these section IDs, in this order.
	// Nil means every model section in ID order.
	Sections []int
}

func DefaultOptions() Options {
	return Options{
		FrameCount:  DefaultFrames,
		Material:    DefaultMaterial(),
		Description: DefaultDescription,
	}
}

// Encode resamples every recorded section onto FrameCount frames and
// assembles the payload. Per-section ranges come from the raw traces, the
// global range from the resampled frames. Sections without samples are
// left out.
func Encode(m *cell.Model, rec *cell.Recording, opts Options) (*Payload, error) {
	if opts.FrameCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFrameCount, opts.FrameCount)
	}
	if err := opts.Material.Validate(); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = cell.NewRecording(nil)
	}

	p := &Payload{
		Metadata: Metadata{
			FormatVersion: FormatVersion,
			Description:   opts.Description,
			FrameCount:    opts.FrameCount,
			Duration:      duration(rec.Time),
			TimeStep:      timeStep(rec.Time),
		},
		MaterialConfig: opts.Material,
		Timepoints:     timepoints(rec.Time, opts.FrameCount),
		Sections:       make([]SectionFrames, 0, m.Len()),
	}

	ids := opts.Sections
	if ids == nil {
		ids = make([]int, 0, m.Len())
		for _, s := range m.Sections() {
			ids = append(ids, s.ID)
		}
	}

	var global *Range
	for _, id := range ids {
		sec, ok := m.Section(id)
		if !ok {
			return nil, fmt.Errorf("codec: unknown section %d", id)
		}
		trace := rec.Traces[id]
		if len(trace) == 0 {
			continue
		}
		for i, v := range trace {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: section %s sample %d", ErrNonFiniteVoltage, sec.Name, i)
			}
		}

		lo, hi, _ := Span(trace)
		frames := Resample(trace, opts.FrameCount)
		p.Sections = append(p.Sections, SectionFrames{
			ID:            sec.ID,
			Name:          sec.Name,
			Type:          SectionKind(sec.Type),
			VoltageFrames: frames,
			VoltageRange:  Range{Min: lo, Max: hi},
		})

		flo, fhi, _ := Span(frames)
		if global == nil {
			global = &Range{Min: flo, Max: fhi}
			continue
		}
		global.Min = math.Min(global.Min, flo)
		global.Max = math.Max(global.Max, fhi)
	}
	p.Metadata.GlobalVoltageRange = global

	return p, nil
}

// duration is the last raw timepoint, not last minus first.
func duration(time []float64) float64 {
	if len(time) == 0 {
		return DefaultDuration
	}
	return time[len(time)-1]
}

func timeStep(time []float64) float64 {
	if len(time) < 2 {
		return DefaultTimeStep
	}
	return time[1] - time[0]
}

func timepoints(time []float64, frames int) []float64 {
	if len(time) > 0 {
		return Resample(time, frames)
	}
	out := make([]float64, frames)
	if frames == 1 {
		return out
	}
	for i := range out {
		out[i] = DefaultDuration * float64(i) / float64(frames-1)
	}
	return out
}

// Write serializes the payload as indented JSON.
func Write(w io.Writer, p *Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func WriteFile(path string, p *Payload) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := Write(file, p); err != nil {
		return err
	}
	return file.Close()
}

// Decode reads a payload. Unknown fields are ignored so newer minor
// versions stay readable, and material options left out of the file keep
// their DefaultMaterial values.
func Decode(r io.Reader) (*Payload, error) {
	p := Payload{MaterialConfig: DefaultMaterial()}
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func ReadFile(path string) (*Payload, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file)
}

// Validate checks version compatibility and frame counts.
func (p *Payload) Validate() error {
	major, _, _ := strings.Cut(p.Metadata.FormatVersion, ".")
	wantMajor, _, _ := strings.Cut(FormatVersion, ".")
	if major != wantMajor {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, p.Metadata.FormatVersion)
	}
	if p.Metadata.FrameCount <= 0 {
		return fmt.Errorf("%w: frame_count %d", ErrMalformedPayload, p.Metadata.FrameCount)
	}
	if len(p.Timepoints) != p.Metadata.FrameCount {
		return fmt.Errorf("%w: %d timepoints for %d frames", ErrMalformedPayload, len(p.Timepoints), p.Metadata.FrameCount)
	}
	for _, s := range p.Sections {
		if len(s.VoltageFrames) != p.Metadata.FrameCount {
			return fmt.Errorf("%w: section %s has %d frames, want %d", ErrMalformedPayload, s.Name, len(s.VoltageFrames), p.Metadata.FrameCount)
		}
	}
	return nil
}
