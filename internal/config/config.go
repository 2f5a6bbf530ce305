// Package config loads run configurations from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/experiment"
	"github.com/san-kum/reactorsim/internal/forcing"
	"github.com/san-kum/reactorsim/internal/geometry"
	"github.com/san-kum/reactorsim/internal/heattransfer"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/thermo"
)

const (
	DefaultStart  = 0.0
	DefaultEnd    = 13100.0
	DefaultDt     = 1.0
	DefaultRelTol = 1e-3
	DefaultAbsTol = 1e-6
)

var ErrUnknownKeys = errors.New("config: unknown keys")

type Config struct {
	Name       string          `yaml:"name" toml:"name"`
	Integrator string          `yaml:"integrator" toml:"integrator"`
	Window     int             `yaml:"window" toml:"window"`
	Solver     SolverConfig    `yaml:"solver" toml:"solver"`
	Jacket     JacketConfig    `yaml:"jacket" toml:"jacket"`
	Geometry   geometry.Spec   `yaml:"geometry" toml:"geometry"`
	Reactor    reactor.Params  `yaml:"reactor" toml:"reactor"`
	Charge     reactor.Charge  `yaml:"charge" toml:"charge"`
	Kinetics   kinetics.Params `yaml:"kinetics" toml:"kinetics"`

	// Initial replaces the state derived from the charge when set.
	Initial []float64 `yaml:"initial,omitempty" toml:"initial,omitempty"`
}

type SolverConfig struct {
	Start    float64 `yaml:"start" toml:"start"`
	End      float64 `yaml:"end" toml:"end"`
	Dt       float64 `yaml:"dt" toml:"dt"`
	RelTol   float64 `yaml:"rtol" toml:"rtol"`
	AbsTol   float64 `yaml:"atol" toml:"atol"`
	MaxStep  float64 `yaml:"max_step" toml:"max_step"` // 0 means unbounded
	MaxSteps int     `yaml:"max_steps" toml:"max_steps"`
}

type JacketConfig struct {
	Mode       string                  `yaml:"mode" toml:"mode"`
	Pressure   float64                 `yaml:"pressure" toml:"pressure"`   // Pa
	Threshold  float64                 `yaml:"threshold" toml:"threshold"` // forced convection from this flow on, m³/s
	Adjustment heattransfer.Adjustment `yaml:"adjustment" toml:"adjustment"`
}

func DefaultConfig() *Config {
	sol := dynamo.DefaultConfig()
	return &Config{
		Name:       "laboratory",
		Integrator: "bdf",
		Window:     forcing.DefaultWindowLength,
		Solver: SolverConfig{
			Start:    DefaultStart,
			End:      DefaultEnd,
			Dt:       DefaultDt,
			RelTol:   DefaultRelTol,
			AbsTol:   DefaultAbsTol,
			MaxSteps: sol.MaxSteps,
		},
		Jacket: JacketConfig{
			Mode:       string(experiment.JacketMean),
			Pressure:   thermo.Atmospheric,
			Threshold:  heattransfer.Laboratory().RegimeThreshold,
			Adjustment: heattransfer.DefaultAdjustment(),
		},
		Geometry: geometry.Laboratory(),
		Reactor:  reactor.DefaultParams(),
		Charge:   reactor.LaboratoryCharge(),
		Kinetics: kinetics.Default(),
	}
}

// Load reads path as TOML when it has a .toml extension and as YAML
// otherwise. Keys missing from the file keep their defaults; unknown keys
// are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	if isTOML(path) {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, err
		}
		if und := md.Undecoded(); len(und) > 0 {
			keys := make([]string, len(und))
			for i, k := range und {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
		}
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	} else {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Experiment converts the file layout into a run configuration.
func (c *Config) Experiment() experiment.Config {
	cfg := experiment.DefaultConfig()
	cfg.Integrator = c.Integrator
	cfg.Window = c.Window

	cfg.Solver.T0 = c.Solver.Start
	cfg.Solver.T1 = c.Solver.End
	cfg.Solver.Dt = c.Solver.Dt
	cfg.Solver.RelTol = c.Solver.RelTol
	cfg.Solver.AbsTol = c.Solver.AbsTol
	cfg.Solver.MaxSteps = c.Solver.MaxSteps
	cfg.Solver.MaxStep = math.Inf(1)
	if c.Solver.MaxStep > 0 {
		cfg.Solver.MaxStep = c.Solver.MaxStep
	}

	cfg.JacketMode = experiment.JacketMode(c.Jacket.Mode)
	cfg.JacketPressure = c.Jacket.Pressure
	cfg.Heat.Adjustment = c.Jacket.Adjustment
	cfg.Heat.Correlations.RegimeThreshold = c.Jacket.Threshold

	cfg.Geometry = c.Geometry
	cfg.Kinetics = c.Kinetics
	cfg.Reactor = c.Reactor
	cfg.Reactor.VolumeFloor = reactor.Epsilon
	cfg.Charge = c.Charge
	if len(c.Initial) > 0 {
		cfg.Initial = dynamo.State(append([]float64(nil), c.Initial...))
	}
	return cfg
}

func (c *Config) Validate() error {
	if err := c.Experiment().Validate(); err != nil {
		return err
	}
	if _, err := geometry.New(c.Geometry); err != nil {
		return err
	}
	if c.Jacket.Threshold < 0 {
		return fmt.Errorf("%w: negative regime threshold %g", experiment.ErrInvalidConfig, c.Jacket.Threshold)
	}
	return nil
}
