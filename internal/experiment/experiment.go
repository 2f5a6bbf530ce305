// Package experiment runs the reactor model against a measured dataset.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/reactorsim/internal/dataset"
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/forcing"
	"github.com/san-kum/reactorsim/internal/geometry"
	"github.com/san-kum/reactorsim/internal/heattransfer"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/thermo"
)

var ErrInvalidConfig = errors.New("experiment: invalid configuration")

// JacketMode selects where the jacket coolant properties are evaluated.
type JacketMode string

const (
	// JacketMean uses fixed properties at the dataset mean temperatures.
	JacketMean JacketMode = "mean"
	// JacketFilm queries the provider at the film temperature on every
	// evaluation.
	JacketFilm JacketMode = "film"
)

type Config struct {
	Integrator string
	Solver     dynamo.Config
	Window     int

	Geometry geometry.Spec
	Heat     heattransfer.Config
	Kinetics kinetics.Params
	Reactor  reactor.Params
	Charge   reactor.Charge

	// Initial overrides the state derived from Charge and the first row.
	Initial dynamo.State

	JacketMode     JacketMode
	JacketPressure float64 // Pa

	// Wall solves for the jacket wall temperature in natural convection.
	// Nil selects the secant solver. It is shared by concurrent runs.
	Wall heattransfer.WallSolver
}

func DefaultConfig() Config {
	return Config{
		Integrator:     "bdf",
		Solver:         dynamo.DefaultConfig(),
		Window:         forcing.DefaultWindowLength,
		Geometry:       geometry.Laboratory(),
		Heat:           heattransfer.DefaultConfig(),
		Kinetics:       kinetics.Default(),
		Reactor:        reactor.DefaultParams(),
		Charge:         reactor.LaboratoryCharge(),
		JacketMode:     JacketMean,
		JacketPressure: thermo.Atmospheric,
	}
}

func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	switch {
	case c.Window < 1:
		return fmt.Errorf("%w: smoothing window must hold at least one sample, got %d", ErrInvalidConfig, c.Window)
	case c.JacketMode != JacketMean && c.JacketMode != JacketFilm:
		return fmt.Errorf("%w: jacket mode %q", ErrInvalidConfig, c.JacketMode)
	case c.Initial != nil && len(c.Initial) != reactor.Dim:
		return fmt.Errorf("%w: initial state has %d components, want %d", ErrInvalidConfig, len(c.Initial), reactor.Dim)
	}
	return nil
}

// Runner executes runs with a shared property provider. Every run gets its
// own solver, forcing and diagnostics, so one Runner may serve concurrent
// runs as long as Observers are safe for concurrent use.
type Runner struct {
	Config    Config
	Provider  thermo.Provider
	Log       logrus.FieldLogger
	Observers []dynamo.Observer
	Registry  *Registry
}

func NewRunner(cfg Config, log logrus.FieldLogger) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Runner{
		Config:   cfg,
		Provider: thermo.NewCached(thermo.NewWater(), 0),
		Log:      log,
		Registry: NewRegistry(),
	}
}

// defaults fills unset collaborators with the defaults of NewRunner.
func (r *Runner) defaults() {
	if r.Registry != nil && r.Provider != nil && r.Log != nil {
		return
	}
	d := NewRunner(r.Config, r.Log)
	if r.Registry == nil {
		r.Registry = d.Registry
	}
	if r.Provider == nil {
		r.Provider = d.Provider
	}
	r.Log = d.Log
}

// Run integrates the model over the configured span. Defects in the
// configuration or the dataset are returned as errors before integration
// starts; a solver failure yields a Failed outcome.
func (r *Runner) Run(ctx context.Context, tab *dataset.Table) (*Outcome, error) {
	return r.run(ctx, tab, r.Config.Integrator)
}

func (r *Runner) run(ctx context.Context, tab *dataset.Table, integrator string) (*Outcome, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r.defaults()
	solver, err := r.Registry.GetIntegrator(integrator)
	if err != nil {
		return nil, err
	}
	for _, obs := range r.Observers {
		solver.AddObserver(obs)
	}

	model, x0, err := r.build(tab)
	if err != nil {
		return nil, err
	}

	log := r.Log.WithField("integrator", integrator)
	diag := reactor.NewDiagnostics()
	asm := reactor.NewAssembler(model, diag, log)

	log.WithFields(logrus.Fields{
		"rows": tab.Len(),
		"t0":   cfg.Solver.T0,
		"t1":   cfg.Solver.T1,
		"mode": cfg.JacketMode,
	}).Info("run started")

	start := time.Now()
	res, err := solver.Solve(ctx, asm, x0, cfg.Solver)
	out := &Outcome{
		Integrator:  integrator,
		Elapsed:     time.Since(start),
		Diagnostics: summarize(diag),
	}
	if res != nil {
		out.Stats = res.Stats
	}

	if err != nil {
		var se *dynamo.SimulationError
		if !errors.As(err, &se) {
			return nil, err
		}
		out.Status = Failed
		out.Message = err.Error()
		out.Err = err
		log.WithFields(logrus.Fields{
			"steps":     out.Stats.Steps,
			"fallbacks": out.Diagnostics.Fallbacks,
			"t":         se.Time,
		}).WithError(err).Warn("run failed")
		return out, nil
	}

	out.Status = Converged
	out.Message = res.Message
	out.Trajectory = trajectory(asm, res, log)
	out.Metrics = evaluate(metrics.Default(asm, cfg.Kinetics), res)

	log.WithFields(logrus.Fields{
		"steps":     out.Stats.Steps,
		"rejected":  out.Stats.Rejected,
		"fallbacks": out.Diagnostics.Fallbacks,
		"elapsed":   out.Elapsed,
	}).Info("run converged")
	if out.Diagnostics.Fallbacks > 0 {
		log.WithField("fallbacks", out.Diagnostics.Fallbacks).Warn("wall temperature solver fell back to the midpoint")
	}
	return out, nil
}

func (r *Runner) build(tab *dataset.Table) (reactor.Model, dynamo.State, error) {
	cfg := r.Config

	vessel, err := geometry.New(cfg.Geometry)
	if err != nil {
		return reactor.Model{}, nil, err
	}
	in, err := forcing.Build(tab.Raw(), forcing.HannWindow(cfg.Window))
	if err != nil {
		return reactor.Model{}, nil, err
	}

	t2, t3 := dataset.Mean(tab.T2), dataset.Mean(tab.T3)
	p := cfg.JacketPressure
	inlet, err := r.Provider.Properties(t2, p)
	if err != nil {
		return reactor.Model{}, nil, fmt.Errorf("jacket inlet properties: %w", err)
	}
	bulk, err := r.Provider.Properties(t3, p)
	if err != nil {
		return reactor.Model{}, nil, fmt.Errorf("jacket bulk properties: %w", err)
	}

	var fluid heattransfer.FluidSource
	switch cfg.JacketMode {
	case JacketFilm:
		fluid = heattransfer.FilmFluid{Provider: r.Provider, Pressure: p}
	default:
		film, err := r.Provider.Properties((t2+t3)/2, p)
		if err != nil {
			return reactor.Model{}, nil, fmt.Errorf("jacket film properties: %w", err)
		}
		fluid = heattransfer.FixedFluid{Props: film}
	}

	// The reaction mixture in the film model is the reactor contents.
	heat := cfg.Heat
	heat.Reactor = heattransfer.ReactorFluid{
		Density:      cfg.Reactor.Streams.Contents.Density,
		HeatCapacity: cfg.Reactor.Streams.Contents.HeatCapacity,
	}

	model := reactor.Model{
		Vessel:   vessel,
		Engine:   heattransfer.NewEngine(vessel, heat, fluid, cfg.Wall),
		Kinetics: cfg.Kinetics,
		Params:   cfg.Reactor,
		Jacket: reactor.JacketStreams{
			InletDensity:      inlet.Density,
			InletHeatCapacity: inlet.HeatCapacity,
			BulkDensity:       bulk.Density,
			BulkHeatCapacity:  bulk.HeatCapacity,
		},
		Inputs: in,
	}

	if cfg.Initial != nil {
		return model, cfg.Initial.Clone(), nil
	}
	water, err := r.Provider.Properties(cfg.Reactor.Ambient, thermo.Atmospheric)
	if err != nil {
		return reactor.Model{}, nil, fmt.Errorf("charge water properties: %w", err)
	}
	x0 := reactor.InitialState(vessel, cfg.Charge, water.Density, tab.T1[0], tab.T3[0])
	return model, x0, nil
}

// trajectory recomputes the derived series at every output sample.
func trajectory(asm *reactor.Assembler, res *dynamo.Result, log logrus.FieldLogger) *Trajectory {
	n := len(res.Times)
	tr := &Trajectory{
		Time:   append([]float64(nil), res.Times...),
		Series: make([]Series, 0, reactor.Dim+3),
	}
	for i, name := range reactor.SeriesNames {
		v := make([]float64, n)
		for k, x := range res.States {
			v[k] = x[i]
		}
		tr.Series = append(tr.Series, Series{Name: name, Values: v})
	}

	mu := make([]float64, n)
	q := make([]float64, n)
	ua := make([]float64, n)
	for k, x := range res.States {
		s, err := asm.Snapshot(x, res.Times[k])
		if err != nil {
			log.WithField("t", res.Times[k]).WithError(err).Warn("derived quantities unavailable")
			mu[k], q[k], ua[k] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		mu[k], q[k], ua[k] = s.Viscosity, s.Duty, s.Conductance
	}
	tr.Series = append(tr.Series,
		Series{Name: SeriesViscosity, Values: mu},
		Series{Name: SeriesDuty, Values: q},
		Series{Name: SeriesUA, Values: ua},
	)
	return tr
}

func evaluate(ms []dynamo.Metric, res *dynamo.Result) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for k, x := range res.States {
			m.Observe(res.Times[k], x)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
