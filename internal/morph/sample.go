package morph

import (
	"fmt"
	"math"
)

// SampleType is the SWC structure identifier of a sample.
type SampleType int

const (
	Soma SampleType = iota + 1
	Axon
	BasalDendrite
	ApicalDendrite
	Custom
	Unspecified
	Glia
)

var typeNames = map[SampleType]string{
	Soma:           "soma",
	Axon:           "axon",
	BasalDendrite:  "basal_dendrite",
	ApicalDendrite: "apical_dendrite",
	Custom:         "custom",
	Unspecified:    "unspecified",
	Glia:           "glia",
}

func (t SampleType) Valid() bool {
	return t >= Soma && t <= Glia
}

func (t SampleType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Point is a position in morphology space (micrometres).
type Point struct {
	X, Y, Z float64
}

func (p Point) Dist(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (p Point) IsFinite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NoParent marks a root sample.
const NoParent = -1

// Sample is one parsed SWC point. Samples are never mutated after parsing.
type Sample struct {
	ID     int
	Type   SampleType
	Pos    Point
	Radius float64
	Parent int
}

func (s Sample) IsRoot() bool { return s.Parent == NoParent }

func (s Sample) Diameter() float64 { return 2 * s.Radius }
