package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/dataset"
	"github.com/san-kum/reactorsim/internal/experiment"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/storage"
	"github.com/san-kum/reactorsim/internal/tui"
)

func runContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func readTables(paths []string) ([]*dataset.Table, error) {
	tabs := make([]*dataset.Table, len(paths))
	for i, path := range paths {
		tab, err := dataset.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		tabs[i] = tab
	}
	return tabs, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tabs, err := readTables(args)
	if err != nil {
		return err
	}
	for i, tab := range tabs {
		if tab.Clamped > 0 {
			log.WithField("dataset", args[i]).Warnf("replaced %d negative flow samples", tab.Clamped)
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()

	runner := experiment.NewRunner(cfg.Experiment(), log.WithField("run", cfg.Name))

	var outs []*experiment.Outcome
	var errs []error
	switch {
	case len(tabs) == 1 && showProgress:
		p := tui.NewProgress(cfg.Solver.Start, cfg.Solver.End)
		runner.Observers = append(runner.Observers, p)
		out, err := tui.Run(ctx, fmt.Sprintf("%s · %s", cfg.Name, filepath.Base(args[0])), p, func(ctx context.Context) (*experiment.Outcome, error) {
			return runner.Run(ctx, tabs[0])
		})
		outs, errs = []*experiment.Outcome{out}, []error{err}
	case len(tabs) == 1:
		fmt.Printf("running %s on %s...\n", cfg.Name, args[0])
		out, err := runner.Run(ctx, tabs[0])
		outs, errs = []*experiment.Outcome{out}, []error{err}
	default:
		fmt.Printf("running %s on %d datasets...\n", cfg.Name, len(tabs))
		outs, errs = runner.RunAll(ctx, tabs, workers)
	}

	failed := 0
	for i, out := range outs {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[i], errs[i])
			continue
		}
		runID, err := st.Save(cfg.Name, args[i], cfg, out)
		if err != nil {
			return err
		}
		if !out.Converged() {
			failed++
		}
		printOutcome(runID, args[i], out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(outs))
	}
	return nil
}

func printOutcome(runID, path string, out *experiment.Outcome) {
	fmt.Println()
	fmt.Println(tui.Title.Render(filepath.Base(path)))
	pairs := [][2]string{
		{"run id", runID},
		{"status", tui.Status(out.Status.String())},
		{"integrator", out.Integrator},
		{"elapsed", out.Elapsed.Round(time.Millisecond).String()},
		{"steps", fmt.Sprintf("%d (%d rejected)", out.Stats.Steps, out.Stats.Rejected)},
		{"evaluations", fmt.Sprintf("%d", out.Stats.Evaluations)},
		{"regimes", fmt.Sprintf("natural %d, forced %d", out.Diagnostics.Natural, out.Diagnostics.Forced)},
		{"wall fallbacks", fmt.Sprintf("%d", out.Diagnostics.Fallbacks)},
	}
	if !out.Converged() {
		pairs = append(pairs, [2]string{"message", out.Message})
	}
	fmt.Println(tui.KeyValues(pairs))

	if len(out.Metrics) > 0 {
		fmt.Println()
		fmt.Println(metricsTable(out.Metrics))
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tab, err := dataset.Read(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	names := args[1:]
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	ctx, cancel := runContext()
	defer cancel()

	runner := experiment.NewRunner(cfg.Experiment(), log.WithField("run", cfg.Name))
	outs, err := runner.Compare(ctx, tab, names)
	if err != nil {
		return err
	}

	rows := make([][]string, len(outs))
	for i, out := range outs {
		final := "-"
		if out.Converged() {
			if t1, ok := out.Trajectory.Get(reactor.SeriesNames[reactor.ReactorTemp]); ok {
				final = fmt.Sprintf("%.3f", t1[len(t1)-1])
			}
		}
		rows[i] = []string{
			out.Integrator,
			out.Status.String(),
			fmt.Sprintf("%d", out.Stats.Steps),
			fmt.Sprintf("%d", out.Stats.Rejected),
			fmt.Sprintf("%d", out.Stats.Evaluations),
			fmt.Sprintf("%d", out.Stats.Jacobians),
			out.Elapsed.Round(time.Millisecond).String(),
			final,
		}
	}

	fmt.Println(tui.Title.Render("integrator comparison · " + filepath.Base(args[0])))
	fmt.Println(tui.Table([]string{"INTEGRATOR", "STATUS", "STEPS", "REJECTED", "EVALS", "JACOBIANS", "ELAPSED", "FINAL T1 [K]"}, rows))
	return nil
}

func metricsTable(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, fmt.Sprintf("%.6g", m[name])}
	}
	return tui.Table([]string{"METRIC", "VALUE"}, rows)
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s preset to %s\n", preset, args[0])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	var rows [][]string
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		rows = append(rows, []string{
			name,
			cfg.Integrator,
			fmt.Sprintf("%g..%g s", cfg.Solver.Start, cfg.Solver.End),
			fmt.Sprintf("%g", cfg.Solver.Dt),
			strings.ToLower(cfg.Jacket.Mode),
			fmt.Sprintf("%g", cfg.Jacket.Threshold),
		})
	}
	fmt.Println(tui.Table([]string{"PRESET", "INTEGRATOR", "SPAN", "DT", "JACKET", "FORCED FROM [m³/s]"}, rows))
	return nil
}
