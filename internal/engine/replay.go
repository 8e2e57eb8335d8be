package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/neuroanim/internal/cell"
)

// Replay plays back traces recorded elsewhere, keyed by section name.
type Replay struct {
	Time   []float64
	Traces map[string][]float64
}

// Run maps named traces onto model sections. The engine config is only
// validated; replayed samples are returned as recorded.
func (r *Replay) Run(ctx context.Context, m *cell.Model, cfg cell.EngineConfig) (*cell.Recording, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := cell.NewRecording(append([]float64(nil), r.Time...))
	for name, trace := range r.Traces {
		sec, ok := m.SectionByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
		rec.Traces[sec.ID] = append([]float64(nil), trace...)
	}
	return rec, nil
}

// WriteTraces writes a recording as CSV with header time,<section name>...
// in section order. Shorter traces leave trailing cells empty.
func WriteTraces(w io.Writer, m *cell.Model, rec *cell.Recording) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	var ids []int
	for _, s := range m.Sections() {
		if _, ok := rec.Traces[s.ID]; ok {
			header = append(header, s.Name)
			ids = append(ids, s.ID)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, t := range rec.Time {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for _, id := range ids {
			trace := rec.Traces[id]
			if i < len(trace) {
				row = append(row, strconv.FormatFloat(trace[i], 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTraces parses the CSV layout written by WriteTraces.
func ReadTraces(r io.Reader) (*Replay, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTraces, err)
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != "time" {
		return nil, fmt.Errorf("%w: missing time header", ErrMalformedTraces)
	}

	names := records[0][1:]
	rp := &Replay{
		Time:   make([]float64, 0, len(records)-1),
		Traces: make(map[string][]float64, len(names)),
	}
	ended := make([]bool, len(names))

	for i, row := range records[1:] {
		line := i + 2
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad time %q", ErrMalformedTraces, line, row[0])
		}
		rp.Time = append(rp.Time, t)

		for j, name := range names {
			field := ""
			if j+1 < len(row) {
				field = row[j+1]
			}
			if field == "" {
				ended[j] = true
				continue
			}
			if ended[j] {
				return nil, fmt.Errorf("%w: line %d: gap in trace %s", ErrMalformedTraces, line, name)
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad value %q", ErrMalformedTraces, line, field)
			}
			rp.Traces[name] = append(rp.Traces[name], v)
		}
	}
	return rp, nil
}

func ReadTracesFile(path string) (*Replay, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTraces(file)
}
