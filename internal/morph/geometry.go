package morph

import (
	"math"
)

// MinLength is the shortest compartment handed to a simulation engine.
const MinLength = 1.0

// Geometry is the physical shape of one section.
type Geometry struct {
	Points    []Point
	Diameters []float64
	Length    float64
}

// EngineLength is Length clamped to MinLength.
func (g Geometry) EngineLength() float64 {
	return math.Max(g.Length, MinLength)
}

// MeanDiameter is the single representative diameter for engines that take
// one value per section.
func (g Geometry) MeanDiameter() float64 {
	if len(g.Diameters) == 0 {
		return 1
	}
	sum := 0.0
	for _, d := range g.Diameters {
		sum += d
	}
	return sum / float64(len(g.Diameters))
}

// Derive computes the arc length and diameter profile of a section.
func Derive(t *Table, s *Section) (Geometry, error) {
	if len(s.SampleIDs) == 0 {
		return Geometry{}, &GeometryError{Section: s.Name, Reason: "section has no samples"}
	}

	g := Geometry{
		Points:    make([]Point, 0, len(s.SampleIDs)),
		Diameters: make([]float64, 0, len(s.SampleIDs)),
	}
	for i, id := range s.SampleIDs {
		sample, ok := t.Get(id)
		if !ok {
			return Geometry{}, &GeometryError{Section: s.Name, SampleID: id, Reason: "sample not in table"}
		}
		if !sample.Pos.IsFinite() {
			return Geometry{}, &GeometryError{Section: s.Name, SampleID: id, Reason: "non-finite coordinates"}
		}
		if math.IsNaN(sample.Radius) || math.IsInf(sample.Radius, 0) || sample.Radius <= 0 {
			return Geometry{}, &GeometryError{Section: s.Name, SampleID: id, Reason: "invalid radius"}
		}
		if i > 0 {
			g.Length += g.Points[i-1].Dist(sample.Pos)
		}
		g.Points = append(g.Points, sample.Pos)
		g.Diameters = append(g.Diameters, sample.Diameter())
	}
	// only a single sample may have zero length
	if len(g.Points) > 1 && g.Length == 0 {
		return Geometry{}, &GeometryError{Section: s.Name, SampleID: s.SampleIDs[len(s.SampleIDs)-1], Reason: "zero length"}
	}
	return g, nil
}
