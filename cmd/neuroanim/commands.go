package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/neuroanim/internal/analysis"
	"github.com/san-kum/neuroanim/internal/codec"
	"github.com/san-kum/neuroanim/internal/export"
	"github.com/san-kum/neuroanim/internal/pipeline"
	"github.com/san-kum/neuroanim/internal/storage"
	"github.com/san-kum/neuroanim/internal/viz"
)

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sink export.Sink = export.FileSink{Dir: cfg.Export.OutDir}
	if cfg.Export.MaxFrames > 0 || cfg.Export.MaxSections > 0 {
		sink = export.LimitSink{Next: sink, MaxFrames: cfg.Export.MaxFrames, MaxSections: cfg.Export.MaxSections}
	}
	p := pipeline.New(cfg, sink, logger)

	jobs := make([]pipeline.Job, 0, len(args))
	if manifest != "" {
		mf, err := pipeline.LoadManifest(manifest)
		if err != nil {
			return err
		}
		jobs = append(jobs, mf.ToJobs()...)
	}
	for _, src := range args {
		jobs = append(jobs, pipeline.Job{Source: src, Engine: engineName, Traces: traces})
	}

	var st *storage.Store
	if !noStore {
		st = storage.New(cfg.DataDir)
		if err := st.Init(ctx); err != nil {
			return err
		}
		defer st.Close()
	}

	start := time.Now()
	runs, runErr := p.RunAll(ctx, jobs, workers)
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSTEP\tFRAMES\tSECTIONS\tPEAK\tRUN ID")
	for _, run := range runs {
		if run == nil {
			continue
		}
		id := "-"
		if st != nil {
			id, err = st.Save(ctx, *run)
			if err != nil {
				return err
			}
		}
		peak := "-"
		if v, ok := run.Meta.Metrics["peak_voltage"]; ok {
			peak = fmt.Sprintf("%.1f mV", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			run.Meta.Source,
			run.Meta.Step,
			run.Payload.Metadata.FrameCount,
			len(run.Payload.Sections),
			peak,
			id,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v, output in %s\n", elapsed.Round(time.Millisecond), cfg.Export.OutDir)

	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := pipeline.New(cfg, export.FileSink{Dir: cfg.Export.OutDir}, newLogger(cfg))

	results, err := p.RunSweep(cmd.Context(), pipeline.Job{Source: args[0]}, pipeline.Sweep{
		AmpMin: ampMin,
		AmpMax: ampMax,
		Steps:  sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AMP\tPEAK\tSPIKING\tOUTPUT")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f nA\t%.1f mV\t%.0f%%\t%s\n", r.Amp, r.Peak, 100*r.SpikingFraction, r.Run.Meta.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if amp, ok := pipeline.Threshold(results); ok {
		fmt.Printf("\nthreshold: %.3f nA\n", amp)
	} else {
		fmt.Println("\nno spikes in range")
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := pipeline.New(cfg, nil, newLogger(cfg)).Load(args[0])
	if err != nil {
		return err
	}

	fmt.Print(viz.RenderTree(m))
	fmt.Printf("\nsections: %d\n", m.Len())
	fmt.Printf("connections: %d\n", len(m.Connections()))
	fmt.Printf("total length: %.2f µm\n", m.TotalLength())
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	p, err := codec.ReadFile(args[0])
	if err != nil {
		return err
	}
	if len(p.Sections) == 0 {
		return fmt.Errorf("no sections to plot")
	}

	selected := make([]codec.SectionFrames, 0, 3)
	if len(sections) == 0 {
		selected = append(selected, p.Sections[:min(3, len(p.Sections))]...)
	}
	for _, name := range sections {
		s, ok := p.Section(name)
		if !ok {
			return fmt.Errorf("unknown section: %s", name)
		}
		selected = append(selected, *s)
	}

	fmt.Printf("frames: %d\n", p.Metadata.FrameCount)
	fmt.Printf("duration: %.2f ms\n\n", p.Metadata.Duration)
	for _, s := range selected {
		if len(s.VoltageFrames) == 0 {
			continue
		}
		graph := asciigraph.Plot(s.VoltageFrames,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s (%s) mV", s.Name, s.Type)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// loadAnimation reads a payload and its records, defaulting the records
// path to the payload path with a .msgpack extension.
func loadAnimation(payloadPath string) (*codec.Payload, []codec.Record, error) {
	p, err := codec.ReadFile(payloadPath)
	if err != nil {
		return nil, nil, err
	}
	path := recordsPath
	if path == "" {
		path = strings.TrimSuffix(payloadPath, filepath.Ext(payloadPath)) + ".msgpack"
	}
	records, err := codec.ReadRecordsFile(path)
	if err != nil {
		return nil, nil, err
	}
	return p, records, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	p, records, err := loadAnimation(args[0])
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	return viz.RunPlayer(title, p, records)
}

func runGIF(cmd *cobra.Command, args []string) error {
	p, records, err := loadAnimation(args[0])
	if err != nil {
		return err
	}
	opts := viz.DefaultGIFOptions()
	opts.Width, opts.Height, opts.Every = width, height, gifEvery

	ramp := viz.NewRamp(p.MaterialConfig)
	if err := viz.WriteGIFFile(args[1], viz.NewScene(records), viz.NewCamera(), ramp, len(p.Timepoints), opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	records, err := codec.ReadRecordsFile(args[0])
	if err != nil {
		return err
	}
	report, err := export.Verify(records)
	if err != nil {
		return err
	}
	report.Print(os.Stdout)
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pl, err := export.ParsePlane(cfg.Export.Plane)
	if err != nil {
		return err
	}
	m, err := pipeline.New(cfg, nil, newLogger(cfg)).Load(args[0])
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], []byte(export.MorphologyToSVG(m, pl, width, height)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(cmd.Context()); err != nil {
		return nil, err
	}
	return st, nil
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tENGINE\tSTEP\tFRAMES\tSECTIONS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Engine,
			run.Step,
			run.Frames,
			run.Sections,
		)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// runAnalyze rebuilds the model from the run's source and replays the
// stored traces through it.
func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	replay, err := st.LoadTraces(meta.ID)
	if err != nil {
		return err
	}
	m, err := pipeline.New(cfg, nil, newLogger(cfg)).Load(meta.Source)
	if err != nil {
		return fmt.Errorf("reload source: %w", err)
	}
	rec, err := replay.Run(cmd.Context(), m, meta.Config)
	if err != nil {
		return err
	}

	stats := analysis.Summarize(m, rec, analysis.DefaultThreshold)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tPEAK\tAT\tTROUGH\tSPIKES")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\n", s.Name, s.Peak, s.PeakTime, s.Trough, s.Spikes)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	order := analysis.Propagation(stats)
	if len(order) == 0 {
		fmt.Println("\nno spikes")
		return nil
	}
	fmt.Println("\npropagation:")
	for _, s := range order {
		fmt.Printf("  %8.3f ms  %s\n", s.FirstSpike, s.Name)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
