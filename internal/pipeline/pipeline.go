// Package pipeline turns an SWC file into a stored animation run: parse,
// build sections, assemble the model, simulate, export through the ladder
// and summarize.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/config"
	"github.com/san-kum/neuroanim/internal/export"
	"github.com/san-kum/neuroanim/internal/metrics"
	"github.com/san-kum/neuroanim/internal/morph"
	"github.com/san-kum/neuroanim/internal/storage"
)

// ProbePos is where every section is recorded.
const ProbePos = 0.5

// Job is one morphology to convert.
type Job struct {
	Source string
	// Name is the output base name. Empty means the source file stem.
	Name string
	// Engine selects a registered engine. Empty means replay when Traces is
	// set, analytic otherwise.
	Engine string
	Traces string
}

func (j Job) name() string {
	if j.Name != "" {
		return j.Name
	}
	base := filepath.Base(j.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (j Job) engine() string {
	switch {
	case j.Engine != "":
		return j.Engine
	case j.Traces != "":
		return EngineReplay
	default:
		return EngineAnalytic
	}
}

type Pipeline struct {
	cfg      *config.Config
	registry *Registry
	sink     export.Sink
	logger   *slog.Logger
}

// New builds a pipeline writing exports through sink. A nil logger
// discards.
func New(cfg *config.Config, sink export.Sink, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{cfg: cfg, registry: NewRegistry(), sink: sink, logger: logger}
}

func (p *Pipeline) Registry() *Registry { return p.registry }

// Load parses and assembles a morphology without simulating it.
func (p *Pipeline) Load(path string) (*cell.Model, error) {
	mode := morph.Lenient
	if p.cfg.Parse.Strict {
		mode = morph.Strict
	}
	tbl, err := morph.ParseFile(path, morph.ParseOptions{Mode: mode, Logger: p.logger})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	forest, err := morph.Build(tbl, morph.BuildOptions{Logger: p.logger})
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}
	m, err := cell.Assemble(tbl, forest)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", path, err)
	}
	return m, nil
}

// Run converts one job. The returned run is ready for storage.Save.
func (p *Pipeline) Run(ctx context.Context, job Job) (*storage.Run, error) {
	name := job.name()
	logger := p.logger.With("run", name)

	m, err := p.Load(job.Source)
	if err != nil {
		return nil, err
	}
	logger.Debug("model assembled", "sections", m.Len(), "length", m.TotalLength())

	target := cell.DefaultStimulus(m).Section
	if err := m.AttachStimulus(p.cfg.StimulusOn(target)); err != nil {
		return nil, err
	}
	m.ProbeAll(ProbePos)

	engineName := job.engine()
	eng, err := p.registry.GetEngine(engineName, job)
	if err != nil {
		return nil, err
	}
	engCfg := p.cfg.EngineConfig()
	rec, err := cell.Simulate(ctx, m, eng, engCfg)
	if errors.Is(err, cell.ErrInvalidConfig) {
		return nil, err
	}
	if err != nil {
		// engine failures and mismatched recordings count as failed exports
		return nil, &export.ExportError{Attempts: []export.Attempt{{Step: "simulate", Err: err}}}
	}
	logger.Debug("simulation finished", "engine", engineName, "samples", len(rec.Time), "traces", len(rec.Traces))

	ladder := &export.Ladder{Steps: p.cfg.ExportSteps(), Sink: p.sink, Logger: logger}
	res, err := ladder.Run(export.Request{
		Name:      name,
		Model:     m,
		Recording: rec,
		Options:   p.cfg.CodecOptions(),
	})
	if err != nil {
		return nil, err
	}

	return &storage.Run{
		Meta: storage.RunMetadata{
			Name:    name,
			Source:  job.Source,
			Engine:  engineName,
			Step:    res.Step,
			Config:  engCfg,
			Stimuli: m.Stimuli(),
			Metrics: summarize(m, rec),
		},
		Model:     m,
		Recording: rec,
		Payload:   res.Payload,
		Records:   res.Records,
	}, nil
}

// summarize keeps only finite values so the metadata stays valid JSON.
func summarize(m *cell.Model, rec *cell.Recording) map[string]float64 {
	out := map[string]float64{
		"total_length": m.TotalLength(),
	}
	for name, v := range metrics.Evaluate(rec, metrics.Defaults()...) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[name] = v
		}
	}
	return out
}
