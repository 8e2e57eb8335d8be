package pipeline

import (
	"context"
	"fmt"

	"github.com/san-kum/neuroanim/internal/storage"
)

// Sweep converts one morphology at evenly spaced stimulus amplitudes.
type Sweep struct {
	AmpMin, AmpMax float64
	Steps          int
}

// SweepResult is one amplitude's outcome.
type SweepResult struct {
	Amp             float64
	Peak            float64
	SpikingFraction float64
	Run             *storage.Run
}

// RunSweep runs job once per amplitude, exporting each as <name>_amp<i>.
// The pipeline's own config is left untouched.
func (p *Pipeline) RunSweep(ctx context.Context, job Job, sw Sweep) ([]SweepResult, error) {
	if sw.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sw.Steps)
	}
	if sw.AmpMax < sw.AmpMin {
		return nil, fmt.Errorf("sweep range %g..%g is empty", sw.AmpMin, sw.AmpMax)
	}

	step := 0.0
	if sw.Steps > 1 {
		step = (sw.AmpMax - sw.AmpMin) / float64(sw.Steps-1)
	}

	results := make([]SweepResult, 0, sw.Steps)
	for i := 0; i < sw.Steps; i++ {
		amp := sw.AmpMin + float64(i)*step

		cfg := *p.cfg
		cfg.Stimulus.Amp = amp
		sub := &Pipeline{cfg: &cfg, registry: p.registry, sink: p.sink, logger: p.logger}

		j := job
		j.Name = fmt.Sprintf("%s_amp%d", job.name(), i)
		run, err := sub.Run(ctx, j)
		if err != nil {
			return results, fmt.Errorf("amp %g: %w", amp, err)
		}

		results = append(results, SweepResult{
			Amp:             amp,
			Peak:            run.Meta.Metrics["peak_voltage"],
			SpikingFraction: run.Meta.Metrics["spiking_fraction"],
			Run:             run,
		})
		p.logger.Info("sweep step done", "step", i+1, "of", sw.Steps, "amp", amp)
	}
	return results, nil
}

// Threshold is the smallest swept amplitude that made any section spike,
// false when none did.
func Threshold(results []SweepResult) (float64, bool) {
	for _, r := range results {
		if r.SpikingFraction > 0 {
			return r.Amp, true
		}
	}
	return 0, false
}
