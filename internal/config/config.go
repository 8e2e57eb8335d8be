package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/codec"
	"github.com/san-kum/neuroanim/internal/export"
)

const (
	DefaultDataDir  = ".neuroanim"
	DefaultLogLevel = "info"
	DefaultPlane    = "xy"
)

type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Parse     ParseConfig     `yaml:"parse"`
	Engine    EngineConfig    `yaml:"engine"`
	Stimulus  StimulusConfig  `yaml:"stimulus"`
	Animation AnimationConfig `yaml:"animation"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ParseConfig struct {
	Strict bool `yaml:"strict"`
}

type EngineConfig struct {
	Dt      float64 `yaml:"dt"`
	TStop   float64 `yaml:"tstop"`
	Celsius float64 `yaml:"celsius"`
	VInit   float64 `yaml:"v_init"`
}

type StimulusConfig struct {
	Amp   float64 `yaml:"amp"`
	Delay float64 `yaml:"delay"`
	Dur   float64 `yaml:"dur"`
	Pos   float64 `yaml:"pos"`
}

type AnimationConfig struct {
	Frames      int                  `yaml:"frames"`
	Description string               `yaml:"description"`
	Material    codec.MaterialConfig `yaml:"material"`
}

type ExportConfig struct {
	OutDir          string `yaml:"out_dir"`
	MaxFrames       int    `yaml:"max_frames"`
	MaxSections     int    `yaml:"max_sections"`
	ReducedFrames   int    `yaml:"reduced_frames"`
	ReducedSections int    `yaml:"reduced_sections"`
	Plane           string `yaml:"plane"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	eng := cell.DefaultEngineConfig()
	return &Config{
		DataDir: DefaultDataDir,
		Engine: EngineConfig{
			Dt:      eng.Dt,
			TStop:   eng.TStop,
			Celsius: eng.Celsius,
			VInit:   eng.VInit,
		},
		Stimulus: StimulusConfig{Amp: 0.5, Delay: 5, Dur: 2, Pos: 0.5},
		Animation: AnimationConfig{
			Frames:      codec.DefaultFrames,
			Description: codec.DefaultDescription,
			Material:    codec.DefaultMaterial(),
		},
		Export: ExportConfig{
			OutDir:          ".",
			ReducedFrames:   export.ReducedFrames,
			ReducedSections: export.ReducedSections,
			Plane:           DefaultPlane,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	if c.Animation.Frames <= 0 {
		return fmt.Errorf("%w: got %d", codec.ErrInvalidFrameCount, c.Animation.Frames)
	}
	if err := c.Animation.Material.Validate(); err != nil {
		return err
	}
	if c.Export.ReducedFrames <= 0 || c.Export.ReducedSections <= 0 {
		return fmt.Errorf("export: reduced frames and sections must be positive")
	}
	return nil
}

func (c *Config) EngineConfig() cell.EngineConfig {
	return cell.EngineConfig{
		Dt:      c.Engine.Dt,
		TStop:   c.Engine.TStop,
		Celsius: c.Engine.Celsius,
		VInit:   c.Engine.VInit,
	}
}

// StimulusOn builds the configured current clamp for a section.
func (c *Config) StimulusOn(section int) cell.Stimulus {
	return cell.Stimulus{
		Section: section,
		Pos:     c.Stimulus.Pos,
		Amp:     c.Stimulus.Amp,
		Delay:   c.Stimulus.Delay,
		Dur:     c.Stimulus.Dur,
	}
}

func (c *Config) CodecOptions() codec.Options {
	return codec.Options{
		FrameCount:  c.Animation.Frames,
		Material:    c.Animation.Material,
		Description: c.Animation.Description,
	}
}

// ExportSteps is the ladder configured by the export section.
func (c *Config) ExportSteps() []export.Step {
	return []export.Step{
		export.Full(),
		export.ReduceFrames(c.Export.ReducedFrames),
		export.ReduceSections(c.Export.ReducedSections),
	}
}

// ApplyPreset replaces the material block with a named preset.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown preset %q (available: %v)", name, ListPresets())
	}
	c.Animation.Material = p.Material
	return nil
}
