package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/tui"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile   string
	preset       string
	integrator   string
	tAdd         float64
	adjNatural   float64
	adjForced    float64
	start        float64
	end          float64
	dt           float64
	rtol         float64
	atol         float64
	jacketMode   string
	window       int
	workers      int
	timeout      time.Duration
	showProgress bool

	outFile  string
	pressure float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "reactorsim",
		Short:         "semi-batch emulsion polymerization reactor simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".reactorsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	defaults := config.DefaultConfig()

	runCmd := &cobra.Command{
		Use:   "run [dataset...]",
		Short: "simulate one or more measured batches",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd, defaults)
	runCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per CPU)")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress view (single dataset only)")

	compareCmd := &cobra.Command{
		Use:   "compare [dataset] [integrator...]",
		Short: "compare integrators on the same batch",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd, defaults)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a configuration file (.yaml or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "laboratory", "preset to write")

	propsCmd := &cobra.Command{
		Use:   "props [temperature...]",
		Short: "print water properties at the given temperatures (K)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  printProperties,
	}
	propsCmd.Flags().Float64Var(&pressure, "pressure", defaults.Jacket.Pressure, "pressure, Pa")

	synthCmd := &cobra.Command{
		Use:   "synth [path]",
		Short: "write a synthetic laboratory dataset (.txt, .csv or .xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE:  writeSynthetic,
	}

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, presetsCmd, initCmd, propsCmd, synthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.StatusFailed.Render("error:"), err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command, d *config.Config) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", d.Integrator, "integrator (bdf, rk45)")
	f.Float64Var(&tAdd, "t-add", d.Reactor.Feed.Switch, "feed composition switch time, s")
	f.Float64Var(&adjNatural, "adj-natural", d.Jacket.Adjustment.Natural, "natural convection adjustment factor")
	f.Float64Var(&adjForced, "adj-forced", d.Jacket.Adjustment.Forced, "forced convection adjustment factor")
	f.Float64Var(&start, "start", d.Solver.Start, "start time, s")
	f.Float64Var(&end, "end", d.Solver.End, "end time, s")
	f.Float64Var(&dt, "dt", d.Solver.Dt, "output interval, s")
	f.Float64Var(&rtol, "rtol", d.Solver.RelTol, "relative tolerance")
	f.Float64Var(&atol, "atol", d.Solver.AbsTol, "absolute tolerance")
	f.StringVar(&jacketMode, "jacket-mode", d.Jacket.Mode, "jacket property mode (mean, film)")
	f.IntVar(&window, "window", d.Window, "smoothing window length")
	f.DurationVar(&timeout, "timeout", 0, "abort runs after this duration (0 = no limit)")
}

func newLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	switch strings.ToLower(logFormat) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format: %s", logFormat)
	}
	return log, nil
}

// loadConfig resolves the run configuration: preset, then config file, then
// any flag given explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("t-add") {
		cfg.Reactor.Feed.Switch = tAdd
	}
	if flags.Changed("adj-natural") {
		cfg.Jacket.Adjustment.Natural = adjNatural
	}
	if flags.Changed("adj-forced") {
		cfg.Jacket.Adjustment.Forced = adjForced
	}
	if flags.Changed("start") {
		cfg.Solver.Start = start
	}
	if flags.Changed("end") {
		cfg.Solver.End = end
	}
	if flags.Changed("dt") {
		cfg.Solver.Dt = dt
	}
	if flags.Changed("rtol") {
		cfg.Solver.RelTol = rtol
	}
	if flags.Changed("atol") {
		cfg.Solver.AbsTol = atol
	}
	if flags.Changed("jacket-mode") {
		cfg.Jacket.Mode = jacketMode
	}
	if flags.Changed("window") {
		cfg.Window = window
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
