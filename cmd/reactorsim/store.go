package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/reactorsim/internal/dataset"
	"github.com/san-kum/reactorsim/internal/storage"
	"github.com/san-kum/reactorsim/internal/thermo"
	"github.com/san-kum/reactorsim/internal/tui"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println(tui.Subtle.Render("no runs found"))
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			tui.Status(r.Status.String()),
			r.Integrator,
			strconv.Itoa(r.Samples),
			strconv.Itoa(r.Stats.Steps),
			r.Elapsed.Round(time.Millisecond).String(),
		}
	}
	fmt.Println(tui.Table([]string{"ID", "TIMESTAMP", "STATUS", "INTEGRATOR", "SAMPLES", "STEPS", "ELAPSED"}, rows))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(tui.Title.Render(meta.ID))
	pairs := [][2]string{
		{"name", meta.Name},
		{"dataset", meta.Dataset},
		{"timestamp", meta.Timestamp.Format(time.RFC3339)},
		{"status", tui.Status(meta.Status.String())},
		{"integrator", meta.Integrator},
		{"samples", strconv.Itoa(meta.Samples)},
		{"elapsed", meta.Elapsed.Round(time.Millisecond).String()},
		{"steps", fmt.Sprintf("%d (%d rejected)", meta.Stats.Steps, meta.Stats.Rejected)},
		{"evaluations", strconv.Itoa(meta.Stats.Evaluations)},
		{"jacobians", strconv.Itoa(meta.Stats.Jacobians)},
		{"regimes", fmt.Sprintf("natural %d, forced %d", meta.Diagnostics.Natural, meta.Diagnostics.Forced)},
		{"wall fallbacks", strconv.Itoa(meta.Diagnostics.Fallbacks)},
		{"property errors", strconv.Itoa(meta.Diagnostics.PropertyErrors)},
	}
	if meta.Message != "" {
		pairs = append(pairs, [2]string{"message", meta.Message})
	}
	fmt.Println(tui.KeyValues(pairs))

	if len(meta.Metrics) > 0 {
		fmt.Println()
		fmt.Println(metricsTable(meta.Metrics))
	}
	return nil
}

// output returns the writer for --out and a function closing it.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, tr); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, tr); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func printProperties(cmd *cobra.Command, args []string) error {
	water := thermo.NewWater()
	rows := make([][]string, 0, len(args))
	for _, arg := range args {
		T, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q: %w", arg, err)
		}
		p, err := water.Properties(T, pressure)
		if err != nil {
			return fmt.Errorf("%g K: %w", T, err)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%.2f", T),
			fmt.Sprintf("%.2f", p.Density),
			fmt.Sprintf("%.1f", p.HeatCapacity),
			fmt.Sprintf("%.4e", p.Viscosity),
			fmt.Sprintf("%.4f", p.Conductivity),
			fmt.Sprintf("%.3e", p.Expansion),
			fmt.Sprintf("%.3f", p.Prandtl()),
		})
	}
	fmt.Println(tui.Table([]string{"T [K]", "RHO [kg/m³]", "CP [J/kg/K]", "MU [Pa·s]", "K [W/m/K]", "BETA [1/K]", "PR"}, rows))
	return nil
}

func writeSynthetic(cmd *cobra.Command, args []string) error {
	tab := dataset.Synthetic(dataset.LaboratoryRecipe())
	if err := tab.Write(args[0]); err != nil {
		return err
	}
	t0, t1 := tab.Span()
	fmt.Printf("wrote %d samples (%g..%g s) to %s\n", tab.Len(), t0, t1, args[0])
	return nil
}
