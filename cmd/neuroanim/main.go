package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/neuroanim/internal/config"
	"github.com/san-kum/neuroanim/internal/logging"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	preset     string
	// engine
	dt    float64
	tstop float64
	// stimulus
	amp float64
	// animation
	frames           int
	emissionStrength float64
	colormapSteps    int
	cmapStart        float64
	cmapEnd          float64
	colormapName     string
	minVoltage       float64
	maxVoltage       float64
	// parse
	strict bool
	// export
	outDir      string
	traces      string
	engineName  string
	maxFrames   int
	maxSections int
	workers     int
	noStore     bool
	manifest    string
	// sweep
	ampMin     float64
	ampMax     float64
	sweepSteps int
	// views
	plane       string
	width       int
	height      int
	sections    []string
	recordsPath string
	gifEvery    int
)

// main registers the commands and exits 1 when the selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "neuroanim",
		Short:         "neuron morphology to voltage animation converter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run store directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	convertCmd := &cobra.Command{
		Use:   "convert [swc...]",
		Short: "simulate morphologies and export animation payloads",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && manifest == "" {
				return fmt.Errorf("requires at least one swc file or --manifest")
			}
			return nil
		},
		RunE: runConvert,
	}
	mat := config.DefaultConfig().Animation.Material
	convertCmd.Flags().IntVar(&frames, "frames", 400, "animation frame count")
	convertCmd.Flags().Float64Var(&tstop, "tstop", 50, "simulation stop time (ms)")
	convertCmd.Flags().Float64Var(&dt, "dt", 0.025, "simulation timestep (ms)")
	convertCmd.Flags().Float64Var(&amp, "amp", 0.5, "stimulus amplitude (nA)")
	convertCmd.Flags().Float64Var(&emissionStrength, "emission-strength", mat.EmissionStrength, "material emission strength")
	convertCmd.Flags().IntVar(&colormapSteps, "colormap-steps", mat.ColormapSteps, "colormap quantization steps")
	convertCmd.Flags().Float64Var(&cmapStart, "cmap-start", mat.CmapStart, "colormap start in [0,1]")
	convertCmd.Flags().Float64Var(&cmapEnd, "cmap-end", mat.CmapEnd, "colormap end in [0,1]")
	convertCmd.Flags().StringVar(&colormapName, "colormap-name", mat.ColormapName, "colormap name")
	convertCmd.Flags().Float64Var(&minVoltage, "min-voltage", mat.VoltageRange.Min, "colormap minimum voltage (mV)")
	convertCmd.Flags().Float64Var(&maxVoltage, "max-voltage", mat.VoltageRange.Max, "colormap maximum voltage (mV)")
	convertCmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed swc lines")
	convertCmd.Flags().StringVar(&preset, "preset", "", "material preset")
	convertCmd.Flags().StringVar(&outDir, "out", ".", "output directory for payload and records")
	convertCmd.Flags().StringVar(&traces, "traces", "", "replay voltage traces from csv instead of simulating")
	convertCmd.Flags().StringVar(&engineName, "engine", "", "engine name (default analytic, replay with --traces)")
	convertCmd.Flags().IntVar(&maxFrames, "max-frames", 0, "reject exports above this many frames (0 = no limit)")
	convertCmd.Flags().IntVar(&maxSections, "max-sections", 0, "reject exports above this many sections (0 = no limit)")
	convertCmd.Flags().IntVar(&workers, "workers", 4, "concurrent conversions")
	convertCmd.Flags().BoolVar(&noStore, "no-store", false, "skip the run store")
	convertCmd.Flags().StringVar(&manifest, "manifest", "", "yaml batch manifest of jobs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [swc]",
		Short: "convert at a range of stimulus amplitudes",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&ampMin, "amp-min", 0, "first amplitude (nA)")
	sweepCmd.Flags().Float64Var(&ampMax, "amp-max", 1, "last amplitude (nA)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of amplitudes")
	sweepCmd.Flags().IntVar(&frames, "frames", 400, "animation frame count")
	sweepCmd.Flags().StringVar(&outDir, "out", ".", "output directory for payload and records")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "material preset")

	inspectCmd := &cobra.Command{
		Use:   "inspect [swc]",
		Short: "show the section tree of a morphology",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed swc lines")

	plotCmd := &cobra.Command{
		Use:   "plot [payload.json]",
		Short: "plot section voltage frames",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().StringSliceVar(&sections, "section", nil, "section names to plot (default first 3)")

	playCmd := &cobra.Command{
		Use:   "play [payload.json]",
		Short: "play an animation in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	playCmd.Flags().StringVar(&recordsPath, "records", "", "records file (default payload path with .msgpack)")

	gifCmd := &cobra.Command{
		Use:   "gif [payload.json] [out.gif]",
		Short: "render an animation to gif",
		Args:  cobra.ExactArgs(2),
		RunE:  runGIF,
	}
	gifCmd.Flags().StringVar(&recordsPath, "records", "", "records file (default payload path with .msgpack)")
	gifCmd.Flags().IntVar(&width, "width", 320, "image width")
	gifCmd.Flags().IntVar(&height, "height", 320, "image height")
	gifCmd.Flags().IntVar(&gifEvery, "every", 1, "render every nth frame")

	verifyCmd := &cobra.Command{
		Use:   "verify [records.msgpack]",
		Short: "check exported records",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [swc] [out.svg]",
		Short: "project a morphology to svg",
		Args:  cobra.ExactArgs(2),
		RunE:  runSVG,
	}
	svgCmd.Flags().StringVar(&plane, "plane", config.DefaultPlane, "projection plane (xy, xz)")
	svgCmd.Flags().IntVar(&width, "width", 800, "image width")
	svgCmd.Flags().IntVar(&height, "height", 800, "image height")
	svgCmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed swc lines")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  runList,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spike timing per section of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list material presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-14s %-9s %s\n", name, p.Material.ColormapName, p.Description)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(convertCmd, sweepCmd, inspectCmd, plotCmd, playCmd, gifCmd, verifyCmd, svgCmd, listCmd, showCmd, analyzeCmd, deleteCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file, the preset and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("strict") {
		cfg.Parse.Strict = strict
	}
	if flags.Changed("dt") {
		cfg.Engine.Dt = dt
	}
	if flags.Changed("tstop") {
		cfg.Engine.TStop = tstop
	}
	if flags.Changed("amp") {
		cfg.Stimulus.Amp = amp
	}
	if flags.Changed("frames") {
		cfg.Animation.Frames = frames
	}
	mat := &cfg.Animation.Material
	if flags.Changed("emission-strength") {
		mat.EmissionStrength = emissionStrength
	}
	if flags.Changed("colormap-steps") {
		mat.ColormapSteps = colormapSteps
	}
	if flags.Changed("cmap-start") {
		mat.CmapStart = cmapStart
	}
	if flags.Changed("cmap-end") {
		mat.CmapEnd = cmapEnd
	}
	if flags.Changed("colormap-name") {
		mat.ColormapName = colormapName
	}
	if flags.Changed("min-voltage") {
		mat.VoltageRange.Min = minVoltage
	}
	if flags.Changed("max-voltage") {
		mat.VoltageRange.Max = maxVoltage
	}
	if flags.Changed("out") {
		cfg.Export.OutDir = outDir
	}
	if flags.Changed("max-frames") {
		cfg.Export.MaxFrames = maxFrames
	}
	if flags.Changed("max-sections") {
		cfg.Export.MaxSections = maxSections
	}
	if flags.Changed("plane") {
		cfg.Export.Plane = plane
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}
