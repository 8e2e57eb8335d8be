package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/san-kum/neuroanim/internal/codec"
)

// MinSectionLength is the arc length below which a multi-point section
// counts as zero length.
const MinSectionLength = 1e-6

// Report summarizes a legacy record set for the renderer.
type Report struct {
	Sections    int
	TypeCounts  map[string]int
	Points      int
	TotalLength float64
	MeanLength  float64

	WithVoltage int
	Frames      int
	Voltage     *codec.Range
	Spiking     []int

	Short      []int
	ZeroLength []int
	X, Y, Z    codec.Range
	Diameter   codec.Range
}

// OK reports whether no connectivity problems were found.
func (r *Report) OK() bool {
	return len(r.Short) == 0 && len(r.ZeroLength) == 0
}

// Verify inspects records for short or zero-length sections, voltage
// coverage and action potentials (any value above 0 mV).
func Verify(records []codec.Record) (*Report, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	r := &Report{
		Sections:   len(records),
		TypeCounts: make(map[string]int),
	}
	x := newSpan()
	y := newSpan()
	z := newSpan()
	diam := newSpan()
	var measured int

	for i, rec := range records {
		r.TypeCounts[rec.Type]++
		r.Points += len(rec.X)

		if len(rec.X) < 2 {
			r.Short = append(r.Short, i)
		} else {
			l := arcLength(rec)
			r.TotalLength += l
			measured++
			if l < MinSectionLength {
				r.ZeroLength = append(r.ZeroLength, i)
			}
		}

		x.add(rec.X...)
		y.add(rec.Y...)
		z.add(rec.Z...)
		diam.add(rec.DIAM...)

		if len(rec.Voltage) == 0 {
			continue
		}
		r.WithVoltage++
		v := newSpan()
		for frame, values := range rec.Voltage {
			r.Frames = max(r.Frames, frame+1)
			v.add(values...)
		}
		if !v.ok() {
			continue
		}
		if r.Voltage == nil {
			r.Voltage = &codec.Range{Min: v.lo, Max: v.hi}
		} else {
			r.Voltage.Min = math.Min(r.Voltage.Min, v.lo)
			r.Voltage.Max = math.Max(r.Voltage.Max, v.hi)
		}
		if v.hi > 0 {
			r.Spiking = append(r.Spiking, i)
		}
	}

	if measured > 0 {
		r.MeanLength = r.TotalLength / float64(measured)
	}
	r.X, r.Y, r.Z, r.Diameter = x.rng(), y.rng(), z.rng(), diam.rng()
	return r, nil
}

func arcLength(rec codec.Record) float64 {
	n := min(len(rec.X), len(rec.Y), len(rec.Z))
	total := 0.0
	for i := 1; i < n; i++ {
		dx := rec.X[i] - rec.X[i-1]
		dy := rec.Y[i] - rec.Y[i-1]
		dz := rec.Z[i] - rec.Z[i-1]
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

type span struct {
	lo, hi float64
}

func newSpan() *span {
	return &span{lo: math.Inf(1), hi: math.Inf(-1)}
}

func (s *span) add(values ...float64) {
	for _, v := range values {
		s.lo = math.Min(s.lo, v)
		s.hi = math.Max(s.hi, v)
	}
}

func (s *span) ok() bool { return s.lo <= s.hi }

func (s *span) rng() codec.Range {
	if !s.ok() {
		return codec.Range{}
	}
	return codec.Range{Min: s.lo, Max: s.hi}
}

// Print writes the report in plain text.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "sections: %d\n", r.Sections)
	types := make([]string, 0, len(r.TypeCounts))
	for t := range r.TypeCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-6s %d\n", t, r.TypeCounts[t])
	}
	fmt.Fprintf(w, "points: %d\n", r.Points)
	fmt.Fprintf(w, "length: total %.2f, mean %.2f\n", r.TotalLength, r.MeanLength)
	fmt.Fprintf(w, "voltage: %d/%d sections, %d frames\n", r.WithVoltage, r.Sections, r.Frames)
	if r.Voltage != nil {
		fmt.Fprintf(w, "  range %.1f to %.1f mV, %d sections above 0 mV\n", r.Voltage.Min, r.Voltage.Max, len(r.Spiking))
	}
	fmt.Fprintf(w, "x: %.1f to %.1f\n", r.X.Min, r.X.Max)
	fmt.Fprintf(w, "y: %.1f to %.1f\n", r.Y.Min, r.Y.Max)
	fmt.Fprintf(w, "z: %.1f to %.1f\n", r.Z.Min, r.Z.Max)
	fmt.Fprintf(w, "diameter: %.2f to %.2f\n", r.Diameter.Min, r.Diameter.Max)
	if len(r.Short) > 0 {
		fmt.Fprintf(w, "sections with <2 points: %d %v\n", len(r.Short), r.Short)
	}
	if len(r.ZeroLength) > 0 {
		fmt.Fprintf(w, "zero-length sections: %d %v\n", len(r.ZeroLength), r.ZeroLength)
	}
	if r.OK() {
		fmt.Fprintln(w, "connectivity ok")
	}
}
