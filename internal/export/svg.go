package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/morph"
)

// Plane selects the two axes a morphology is projected onto.
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
)

func ParsePlane(s string) (Plane, error) {
	switch p := Plane(strings.ToLower(s)); p {
	case PlaneXY, PlaneXZ:
		return p, nil
	}
	return "", fmt.Errorf("unknown projection plane %q (use xy or xz)", s)
}

var typeColors = map[morph.SampleType]string{
	morph.Soma:           "#ff4d4d",
	morph.Axon:           "#4d79ff",
	morph.BasalDendrite:  "#4dff88",
	morph.ApicalDendrite: "#b84dff",
}

const defaultColor = "#999999"

func project(p morph.Point, plane Plane) (float64, float64) {
	if plane == PlaneXZ {
		return p.X, p.Z
	}
	return p.X, p.Y
}

// MorphologyToSVG draws every section as a polyline in the given plane,
// colored by type. Child sections start at their parent's last point.
func MorphologyToSVG(m *cell.Model, plane Plane, width, height int) string {
	if m == nil || m.Len() == 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range m.Sections() {
		for _, p := range s.Geometry.Points {
			x, y := project(p, plane)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	toCanvas := func(p morph.Point) (float64, float64) {
		x, y := project(p, plane)
		return (x - minX) / rangeX * float64(width), float64(height) - (y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range m.Sections() {
		points := s.Geometry.Points
		if parent, ok := m.Section(s.Parent); ok && len(parent.Geometry.Points) > 0 {
			last := parent.Geometry.Points[len(parent.Geometry.Points)-1]
			points = append([]morph.Point{last}, points...)
		}

		color, ok := typeColors[s.Type]
		if !ok {
			color = defaultColor
		}
		strokeWidth := math.Max(0.5, math.Min(s.Geometry.MeanDiameter(), 8))

		if len(points) == 1 {
			cx, cy := toCanvas(points[0])
			sb.WriteString(fmt.Sprintf(`<circle id="%s" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, s.Name, cx, cy, strokeWidth, color))
			continue
		}

		sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="%.1f" d="M`, s.Name, color, strokeWidth))
		for i, p := range points {
			x, y := toCanvas(p)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
