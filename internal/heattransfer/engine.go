package heattransfer

import (
	"fmt"
	"math"

	"github.com/san-kum/reactorsim/internal/geometry"
	"github.com/san-kum/reactorsim/internal/thermo"
)

// Adjustment holds the empirical multipliers applied to UA in each regime.
type Adjustment struct {
	Natural float64 `yaml:"natural" toml:"natural" json:"natural"`
	Forced  float64 `yaml:"forced" toml:"forced" json:"forced"`
}

func DefaultAdjustment() Adjustment {
	return Adjustment{Natural: 0.05, Forced: 10}
}

func (a Adjustment) For(r Regime) float64 {
	if _, ok := r.(Natural); ok {
		return a.Natural
	}
	return a.Forced
}

// FluidSource returns jacket coolant properties for a temperature.
type FluidSource interface {
	At(T float64) (thermo.Properties, error)
}

// FixedFluid ignores the temperature and always returns Props.
type FixedFluid struct {
	Props thermo.Properties
}

func (f FixedFluid) At(float64) (thermo.Properties, error) {
	return f.Props, nil
}

// FilmFluid queries a Provider at the requested temperature.
type FilmFluid struct {
	Provider thermo.Provider
	Pressure float64
}

func (f FilmFluid) At(T float64) (thermo.Properties, error) {
	return f.Provider.Properties(T, f.Pressure)
}

// ReactorFluid holds the bulk properties of the reaction mixture.
type ReactorFluid struct {
	Density      float64
	HeatCapacity float64
}

type Config struct {
	Correlations Correlations
	Viscosity    ViscosityLaw
	Reactor      ReactorFluid
	Adjustment   Adjustment
}

func DefaultConfig() Config {
	return Config{
		Correlations: Laboratory(),
		Viscosity:    DefaultViscosity(),
		Reactor:      ReactorFluid{Density: 1056.688211, HeatCapacity: 1720 * 0.85},
		Adjustment:   DefaultAdjustment(),
	}
}

// Conditions are the instantaneous inputs of one evaluation.
type Conditions struct {
	Level      float64 // liquid height, m
	RPS        float64 // impeller speed, 1/s
	JacketFlow float64 // coolant flow, m³/s
	Polymer    float64 // polymer concentration, kg/m³
	Reactor    float64 // T1, K
	Jacket     float64 // T3, K
}

type Result struct {
	Regime Regime

	UA          float64 // reactor to jacket, W/K
	ReactorLoss float64 // reactor to ambient, W/K
	JacketLoss  float64 // jacket to ambient, W/K

	ReactorFilm     float64 // W/(m²K)
	JacketFilm      float64 // W/(m²K)
	Viscosity       float64 // apparent viscosity of the contents, Pa·s
	WallTemperature float64 // NaN in forced convection

	// Wall is set only in natural convection.
	Wall *WallSolution
}

type Engine struct {
	vessel geometry.Vessel
	cfg    Config
	fluid  FluidSource
	wall   WallSolver
}

// NewEngine wires an engine. A nil wall solver selects NewSecantWall.
func NewEngine(v geometry.Vessel, cfg Config, fluid FluidSource, wall WallSolver) *Engine {
	if wall == nil {
		wall = NewSecantWall()
	}
	return &Engine{vessel: v, cfg: cfg, fluid: fluid, wall: wall}
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Evaluate(c Conditions) (Result, error) {
	v := e.vessel
	k := e.cfg.Correlations
	area := v.Surfaces(c.Level)

	mu := e.cfg.Viscosity.Apparent(c.Reactor, c.Polymer)
	nuI, _, _ := k.ReactorNusselt(c.RPS, mu, e.cfg.Reactor.Density, e.cfg.Reactor.HeatCapacity)
	hI := nuI * k.ReactorConductivity / v.InnerDiameter

	rI := 1 / (hI * area.ReactorInner)
	rFoulI := k.ReactorFouling / area.ReactorInner
	rWall := math.Log(v.ReactorOuter/v.InnerDiameter) / (2 * math.Pi * c.Level * k.WallConductivity)
	rFoulII := k.JacketFouling / area.JacketInner
	reactorSide := rI + rFoulI + rWall

	res := Result{
		Regime:          SelectRegime(c.JacketFlow, k.RegimeThreshold),
		ReactorFilm:     hI,
		Viscosity:       mu,
		WallTemperature: math.NaN(),
	}

	switch r := res.Regime.(type) {
	case Natural:
		annulus := Annulus{Level: c.Level, Gap: v.Gap, Inner: v.InnerRadius, Outer: v.OuterRadius}
		film := func(tw float64) (float64, error) {
			p, err := e.fluid.At((tw + c.Jacket) / 2)
			if err != nil {
				return math.NaN(), err
			}
			ra := k.Rayleigh(tw-c.Jacket, v.Gap, p)
			return k.Natural.NaturalNusselt(ra, annulus) * p.Conductivity / v.Gap, nil
		}

		sol := e.wall.Solve(WallProblem{
			Reactor: c.Reactor,
			Jacket:  c.Jacket,
			Residual: func(tw float64) float64 {
				h, err := film(tw)
				if err != nil {
					return math.NaN()
				}
				rII := 1 / (h * area.JacketInner)
				return (rFoulII+rII)/reactorSide*(c.Reactor-tw) + c.Jacket - tw
			},
		})
		res.Wall = &sol
		res.WallTemperature = sol.Temperature

		h, err := film(sol.Temperature)
		if err != nil {
			return res, fmt.Errorf("jacket film at wall temperature %.3f K: %w", sol.Temperature, err)
		}
		res.JacketFilm = h

	case Forced:
		p, err := e.fluid.At(c.Jacket)
		if err != nil {
			return res, fmt.Errorf("jacket film at %.3f K: %w", c.Jacket, err)
		}
		dg := v.HydraulicDiameter()
		nu, _ := k.ForcedNusselt(r.Flow, c.Level, v.Gap, dg, p)
		res.JacketFilm = nu * p.Conductivity / dg
	}

	rII := 1 / (res.JacketFilm * area.JacketInner)
	res.UA = e.cfg.Adjustment.For(res.Regime) / (reactorSide + rFoulII + rII)

	cross := v.CrossSection
	res.ReactorLoss = 1 / (1/(hI*cross) +
		k.ReactorFouling/cross +
		v.WallThickness/(v.Bottom*k.BottomConductivity) +
		1/(k.AmbientFilm*cross))
	res.JacketLoss = 1 / (rII +
		k.JacketFouling/area.JacketOuter +
		math.Log(v.JacketOuter/v.JacketWallIn)/(2*math.Pi*c.Level*k.JacketWallConductivity) +
		1/(k.AmbientFilm*area.JacketExternal))

	return res, nil
}
