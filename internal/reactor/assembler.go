package reactor

import (
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/forcing"
	"github.com/san-kum/reactorsim/internal/geometry"
	"github.com/san-kum/reactorsim/internal/heattransfer"
	"github.com/san-kum/reactorsim/internal/kinetics"
)

// Model bundles the immutable inputs of one run.
type Model struct {
	Vessel   geometry.Vessel
	Engine   *heattransfer.Engine
	Kinetics kinetics.Params
	Params   Params
	Jacket   JacketStreams
	Inputs   *forcing.Inputs
}

// Assembler evaluates the ten state derivatives.
type Assembler struct {
	m    Model
	diag *Diagnostics
	log  logrus.FieldLogger
}

func NewAssembler(m Model, diag *Diagnostics, log logrus.FieldLogger) *Assembler {
	if diag == nil {
		diag = NewDiagnostics()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Assembler{m: m, diag: diag, log: log}
}

func (a *Assembler) StateDim() int { return Dim }

func (a *Assembler) Diagnostics() *Diagnostics { return a.diag }

// Derive returns dx/dt. A failed heat-transfer evaluation yields a NaN
// derivative so the integrator rejects the step.
func (a *Assembler) Derive(x dynamo.State, t float64) dynamo.State {
	dx, q, ht, err := a.evaluate(x, t)
	if err != nil {
		a.diag.PropertyErrors++
		a.log.WithFields(logrus.Fields{"t": t, "err": err}).Debug("heat transfer evaluation failed")
		for i := range dx {
			dx[i] = math.NaN()
		}
		return dx
	}

	a.diag.record(t, q, ht)
	if ht.Wall != nil && ht.Wall.FellBack {
		a.log.WithFields(logrus.Fields{
			"t":      t,
			"regime": ht.Regime.Name(),
			"tw":     ht.Wall.Temperature,
			"err":    ht.Wall.Err,
		}).Debug("wall temperature solver fell back to midpoint")
	}
	return dx
}

// Snapshot holds the derived output quantities at one state.
type Snapshot struct {
	Viscosity   float64
	Duty        float64
	Conductance float64
	Regime      string
}

// Snapshot evaluates the derived quantities at x without touching the
// diagnostics.
func (a *Assembler) Snapshot(x dynamo.State, t float64) (Snapshot, error) {
	_, q, ht, err := a.evaluate(x, t)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Viscosity:   ht.Viscosity,
		Duty:        q,
		Conductance: ht.UA,
		Regime:      ht.Regime.Name(),
	}, nil
}

func (a *Assembler) evaluate(x dynamo.State, t float64) (dynamo.State, float64, heattransfer.Result, error) {
	m := &a.m
	p := &m.Params
	f := Decompose(x)
	in := m.Inputs.At(t)
	dx := make(dynamo.State, Dim)

	vol := math.Max(m.Vessel.ReactorVolume(f.Level), p.VolumeFloor)
	tank := p.Feed.At(t)

	rates := m.Kinetics.Evaluate(f.Reactor, kinetics.Feed{A: tank.VAM, B: tank.BA}, kinetics.Species{
		A:         f.VAM,
		B:         f.BA,
		NaPS:      f.NaPS,
		TBHP:      f.TBHP,
		CRD:       f.CRD,
		Particles: f.Particles,
	})

	inflow := in.F7 + in.F8 + in.F9
	dx[Level] = inflow / m.Vessel.CrossSection
	dilution := m.Vessel.CrossSection * dx[Level] / vol

	if t < p.Nucleation {
		dx[Particles] = (rates.Redox + 2*rates.Thermal) * vol * m.Kinetics.Avogadro * 1e3
	}
	dx[NaPS] = in.F8*p.Feed.Initiator.NaPS/vol - rates.Thermal - f.NaPS*dilution
	dx[TBHP] = in.F8*p.Feed.Initiator.TBHP/vol - rates.Redox - f.TBHP*dilution
	dx[CRD] = in.F9*p.Feed.Reductant/vol - rates.Redox - f.CRD*dilution
	dx[VAM] = in.F7*tank.VAM/vol - rates.A/vol - f.VAM*dilution
	dx[BA] = in.F7*tank.BA/vol - rates.B/vol - f.BA*dilution
	dx[Polymer] = m.Kinetics.PolymerRate(rates)/vol - f.Polymer*dilution

	ht, err := m.Engine.Evaluate(heattransfer.Conditions{
		Level:      f.Level,
		RPS:        in.RPS,
		JacketFlow: in.F2,
		Polymer:    f.Polymer,
		Reactor:    f.Reactor,
		Jacket:     f.Jacket,
	})
	if err != nil {
		return dx, 0, ht, err
	}

	q := ht.UA * (f.Reactor - f.Jacket)
	lossI := ht.ReactorLoss * (f.Reactor - p.Ambient)

	s := &p.Streams
	sensible := s.Monomer.HeatCapacity*in.F7*s.Monomer.Density*(s.Monomer.Temperature-f.Reactor) +
		s.Initiator.HeatCapacity*in.F8*s.Initiator.Density*(s.Initiator.Temperature-f.Reactor) +
		s.Reductant.HeatCapacity*in.F9*s.Reductant.Density*(s.Reductant.Temperature-f.Reactor)
	reaction := rates.A*p.HeatA + rates.B*p.HeatB
	dx[ReactorTemp] = (sensible - reaction - q - lossI) /
		(s.Contents.HeatCapacity * s.Contents.Density * vol)

	j := &m.Jacket
	volJ := math.Max(m.Vessel.JacketVolume(f.Level), p.VolumeFloor)
	lossII := ht.JacketLoss * (f.Jacket - p.Ambient)
	dx[JacketTemp] = (in.F2*j.InletDensity*j.InletHeatCapacity*(in.T2-f.Jacket) + q - lossII) /
		(j.BulkDensity * j.BulkHeatCapacity * volJ)

	return dx, q, ht, nil
}
