package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/neuroanim/internal/codec"
)

// Colormap is a named gradient sampled at evenly spaced stops.
type Colormap struct {
	Name  string
	Stops []lipgloss.Color
}

var (
	ColormapPlasma = Colormap{
		Name:  "plasma",
		Stops: []lipgloss.Color{"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"},
	}

	ColormapViridis = Colormap{
		Name:  "viridis",
		Stops: []lipgloss.Color{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	}

	ColormapInferno = Colormap{
		Name:  "inferno",
		Stops: []lipgloss.Color{"#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"},
	}

	ColormapCoolwarm = Colormap{
		Name:  "coolwarm",
		Stops: []lipgloss.Color{"#3b4cc0", "#8db0fe", "#dddddd", "#f49a7b", "#b40426"},
	}

	Colormaps = []Colormap{
		ColormapPlasma,
		ColormapViridis,
		ColormapInferno,
		ColormapCoolwarm,
	}
)

// GetColormap returns a colormap by name, plasma when unknown.
func GetColormap(name string) Colormap {
	for _, c := range Colormaps {
		if c.Name == name {
			return c
		}
	}
	return ColormapPlasma
}

func ColormapNames() []string {
	names := make([]string, len(Colormaps))
	for i, c := range Colormaps {
		names[i] = c.Name
	}
	return names
}

// At interpolates the colormap at t in [0,1].
func (c Colormap) At(t float64) lipgloss.Color {
	t = math.Max(0, math.Min(1, t))
	if len(c.Stops) == 1 {
		return c.Stops[0]
	}
	pos := t * float64(len(c.Stops)-1)
	i := int(pos)
	if i >= len(c.Stops)-1 {
		return c.Stops[len(c.Stops)-1]
	}
	f := pos - float64(i)

	sr, sg, sb := parseHex(string(c.Stops[i]))
	er, eg, eb := parseHex(string(c.Stops[i+1]))
	r := int(math.Round(float64(sr) + f*float64(er-sr)))
	g := int(math.Round(float64(sg) + f*float64(eg-sg)))
	b := int(math.Round(float64(sb) + f*float64(eb-sb)))
	return lipgloss.Color(hexColor(r, g, b))
}

// Ramp is a quantized voltage-to-color mapping built from a material config.
type Ramp struct {
	Colors []lipgloss.Color
	Range  codec.Range
}

// NewRamp samples ColormapSteps colors between CmapStart and CmapEnd of the
// material's colormap, the same quantization the renderer applies.
func NewRamp(mat codec.MaterialConfig) Ramp {
	cm := GetColormap(mat.ColormapName)
	steps := max(1, mat.ColormapSteps)
	colors := make([]lipgloss.Color, steps)
	for i := range colors {
		t := mat.CmapStart
		if steps > 1 {
			t += (mat.CmapEnd - mat.CmapStart) * float64(i) / float64(steps-1)
		}
		colors[i] = cm.At(t)
	}
	return Ramp{Colors: colors, Range: mat.VoltageRange}
}

// Level normalizes a voltage into [0,1] over the ramp's range.
func (r Ramp) Level(v float64) float64 {
	span := r.Range.Max - r.Range.Min
	if span <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, (v-r.Range.Min)/span))
}

func (r Ramp) AtLevel(level float64) lipgloss.Color {
	if len(r.Colors) == 0 {
		return lipgloss.Color("#ffffff")
	}
	level = math.Max(0, math.Min(1, level))
	i := int(level * float64(len(r.Colors)))
	if i >= len(r.Colors) {
		i = len(r.Colors) - 1
	}
	return r.Colors[i]
}

func (r Ramp) Color(v float64) lipgloss.Color {
	return r.AtLevel(r.Level(v))
}
