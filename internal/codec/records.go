package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/neuroanim/internal/cell"
)

// Record is the legacy per-section structure read by the renderer and the
// record verifier. Voltage holds, per frame, one value per 3D point.
type Record struct {
	Name    string            `msgpack:"name,omitempty"`
	Type    string            `msgpack:"type"`
	X       []float64         `msgpack:"X"`
	Y       []float64         `msgpack:"Y"`
	Z       []float64         `msgpack:"Z"`
	DIAM    []float64         `msgpack:"DIAM"`
	Voltage map[int][]float64 `msgpack:"Voltage"`
}

// BuildRecords emits one record per section in ids (nil means all sections)
// with the payload's frames spread over the section's points. Sections the
// payload skipped get an empty Voltage map.
func BuildRecords(m *cell.Model, p *Payload, ids []int) ([]Record, error) {
	frames := make(map[int][]float64, len(p.Sections))
	for _, s := range p.Sections {
		frames[s.ID] = s.VoltageFrames
	}

	if ids == nil {
		ids = make([]int, 0, m.Len())
		for _, s := range m.Sections() {
			ids = append(ids, s.ID)
		}
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		sec, ok := m.Section(id)
		if !ok {
			return nil, fmt.Errorf("codec: unknown section %d", id)
		}
		g := sec.Geometry
		rec := Record{
			Name:    sec.Name,
			Type:    RecordKind(sec.Type),
			X:       make([]float64, len(g.Points)),
			Y:       make([]float64, len(g.Points)),
			Z:       make([]float64, len(g.Points)),
			DIAM:    append([]float64(nil), g.Diameters...),
			Voltage: make(map[int][]float64),
		}
		for i, pt := range g.Points {
			rec.X[i], rec.Y[i], rec.Z[i] = pt.X, pt.Y, pt.Z
		}
		for f, v := range frames[id] {
			values := make([]float64, len(g.Points))
			for i := range values {
				values[i] = v
			}
			rec.Voltage[f] = values
		}
		records = append(records, rec)
	}
	return records, nil
}

func WriteRecords(w io.Writer, records []Record) error {
	return msgpack.NewEncoder(w).Encode(records)
}

func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := msgpack.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func WriteRecordsFile(path string, records []Record) error {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func ReadRecordsFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadRecords(file)
}
