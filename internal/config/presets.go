package config

import (
	"sort"

	"github.com/san-kum/reactorsim/internal/experiment"
)

var Presets = map[string]func() *Config{
	// The published laboratory batch.
	"laboratory": DefaultConfig,

	// Any measurable coolant flow is treated as forced convection.
	"forced-cooling": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "forced-cooling"
		cfg.Jacket.Threshold = 1e-6
		return cfg
	},

	// Jacket properties follow the film temperature.
	"film": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "film"
		cfg.Jacket.Mode = string(experiment.JacketFilm)
		return cfg
	},

	// Heat-up only, coarse output.
	"quick": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "quick"
		cfg.Solver.End = 1800
		cfg.Solver.Dt = 10
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
