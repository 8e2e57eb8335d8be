package config

import (
	"sort"

	"github.com/san-kum/neuroanim/internal/codec"
)

type Preset struct {
	Description string
	Material    codec.MaterialConfig
}

var Presets = map[string]*Preset{
	"plasma": {
		Description: "default renderer look",
		Material:    codec.DefaultMaterial(),
	},
	"viridis": {
		Description: "perceptually uniform, colorblind safe",
		Material: codec.MaterialConfig{
			EmissionStrength: 1.5, ColormapSteps: 12, CmapStart: 0.0, CmapEnd: 1.0,
			ColormapName: "viridis", VoltageRange: codec.Range{Min: -70, Max: 20},
		},
	},
	"inferno": {
		Description: "bright spikes on dark rest",
		Material: codec.MaterialConfig{
			EmissionStrength: 3.0, ColormapSteps: 16, CmapStart: 0.1, CmapEnd: 1.0,
			ColormapName: "inferno", VoltageRange: codec.Range{Min: -75, Max: 30},
		},
	},
	"coolwarm": {
		Description: "diverging around rest",
		Material: codec.MaterialConfig{
			EmissionStrength: 1.0, ColormapSteps: 10, CmapStart: 0.0, CmapEnd: 1.0,
			ColormapName: "coolwarm", VoltageRange: codec.Range{Min: -90, Max: 40},
		},
	},
	"subthreshold": {
		Description: "narrow range for passive responses",
		Material: codec.MaterialConfig{
			EmissionStrength: 2.0, ColormapSteps: 20, CmapStart: 0.0, CmapEnd: 0.8,
			ColormapName: "plasma", VoltageRange: codec.Range{Min: -72, Max: -60},
		},
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
