package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/reactorsim/internal/experiment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "bdf" {
		t.Errorf("expected integrator bdf, got %s", cfg.Integrator)
	}
	if cfg.Solver.End != 13100 || cfg.Solver.Dt != 1 {
		t.Errorf("unexpected span %+v", cfg.Solver)
	}
	if cfg.Reactor.Feed.Switch != 7380 {
		t.Errorf("expected addition time 7380, got %g", cfg.Reactor.Feed.Switch)
	}
	if cfg.Jacket.Adjustment.Natural != 0.05 || cfg.Jacket.Adjustment.Forced != 10 {
		t.Errorf("unexpected adjustment %+v", cfg.Jacket.Adjustment)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestExperiment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver.MaxStep = 0
	cfg.Jacket.Threshold = 2e-5
	cfg.Initial = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	e := cfg.Experiment()
	if !math.IsInf(e.Solver.MaxStep, 1) {
		t.Error("zero max step means unbounded")
	}
	if e.Heat.Correlations.RegimeThreshold != 2e-5 {
		t.Error("threshold not applied")
	}
	if e.Solver.T1 != 13100 || e.JacketMode != experiment.JacketMean {
		t.Errorf("unexpected conversion %+v", e.Solver)
	}
	cfg.Initial[0] = 99
	if e.Initial[0] != 1 {
		t.Error("initial state must be copied")
	}
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"run.yaml", "run.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Name = "trial"
			cfg.Reactor.Feed.Switch = 7000
			cfg.Jacket.Mode = "film"
			cfg.Kinetics.RatioA = 0.04
			cfg.Initial = []float64{0.03, 0, 0, 0, 0, 0, 0, 0, 300, 299}

			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}

			if got.Name != "trial" || got.Reactor.Feed.Switch != 7000 || got.Jacket.Mode != "film" {
				t.Errorf("round trip lost values: %+v", got)
			}
			if got.Kinetics.RatioA != 0.04 || got.Kinetics.Avogadro != cfg.Kinetics.Avogadro {
				t.Errorf("kinetics not preserved: %+v", got.Kinetics)
			}
			if got.Reactor.Streams.Monomer != cfg.Reactor.Streams.Monomer {
				t.Error("streams not preserved")
			}
			if len(got.Initial) != 10 || got.Initial[8] != 300 {
				t.Errorf("initial state not preserved: %v", got.Initial)
			}
		})
	}
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "partial.yaml")
	os.WriteFile(yml, []byte("integrator: rk45\nsolver:\n  end: 600\n"), 0644)
	cfg, err := Load(yml)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Integrator != "rk45" || cfg.Solver.End != 600 || cfg.Solver.Dt != DefaultDt {
		t.Errorf("partial file should keep defaults: %+v", cfg.Solver)
	}

	tml := filepath.Join(dir, "partial.toml")
	os.WriteFile(tml, []byte("window = 30\n[jacket.adjustment]\nforced = 8.0\n"), 0644)
	cfg, err = Load(tml)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window != 30 || cfg.Jacket.Adjustment.Forced != 8 || cfg.Jacket.Adjustment.Natural != 0.05 {
		t.Errorf("unexpected %+v", cfg.Jacket)
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, nil, 0644)
	if _, err := Load(empty); err != nil {
		t.Errorf("empty file should load defaults: %v", err)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	dir := t.TempDir()

	tml := filepath.Join(dir, "typo.toml")
	os.WriteFile(tml, []byte("integrater = \"bdf\"\n"), 0644)
	if _, err := Load(tml); !errors.Is(err, ErrUnknownKeys) {
		t.Errorf("expected ErrUnknownKeys, got %v", err)
	}

	yml := filepath.Join(dir, "typo.yaml")
	os.WriteFile(yml, []byte("integrater: bdf\n"), 0644)
	if _, err := Load(yml); err == nil {
		t.Error("expected an error for an unknown yaml key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dt", func(c *Config) { c.Solver.Dt = 0 }},
		{"mode", func(c *Config) { c.Jacket.Mode = "bulk" }},
		{"geometry", func(c *Config) { c.Geometry.JacketOuter = 0.1 }},
		{"threshold", func(c *Config) { c.Jacket.Threshold = -1 }},
		{"initial", func(c *Config) { c.Initial = []float64{1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("quick")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Solver.End != 1800 {
		t.Errorf("expected end 1800, got %g", cfg.Solver.End)
	}

	cfg.Solver.End = 1
	if GetPreset("quick").Solver.End != 1800 {
		t.Error("presets must be fresh copies")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}
