// Package metrics summarizes a reactor trajectory in scalar figures.
package metrics

import (
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Peak tracks the maximum of one state component.
type Peak struct {
	name  string
	index int
	max   float64
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index, max: math.Inf(-1)}
}

func NewPeakTemperature() *Peak { return NewPeak("peak_reactor_temperature", reactor.ReactorTemp) }

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(t float64, x dynamo.State) {
	p.max = math.Max(p.max, x[p.index])
}

func (p *Peak) Value() float64 {
	if math.IsInf(p.max, -1) {
		return 0
	}
	return p.max
}

func (p *Peak) Reset() { p.max = math.Inf(-1) }

// Final keeps the last observed value of one state component.
type Final struct {
	name  string
	index int
	last  float64
}

func NewFinal(name string, index int) *Final {
	return &Final{name: name, index: index}
}

func NewFinalPolymer() *Final { return NewFinal("final_polymer", reactor.Polymer) }

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(t float64, x dynamo.State) { f.last = x[f.index] }

func (f *Final) Value() float64 { return f.last }

func (f *Final) Reset() { f.last = 0 }

// Conversion is the mass fraction of fed monomer that has become polymer at
// the last observed sample.
type Conversion struct {
	name       string
	molarMassA float64
	molarMassB float64
	last       float64
}

func NewConversion(k kinetics.Params) *Conversion {
	return &Conversion{name: "conversion", molarMassA: k.MolarMassA, molarMassB: k.MolarMassB}
}

func (c *Conversion) Name() string { return c.name }

func (c *Conversion) Observe(t float64, x dynamo.State) {
	monomer := x[reactor.VAM]*c.molarMassA + x[reactor.BA]*c.molarMassB
	total := x[reactor.Polymer] + monomer
	if total <= 0 {
		c.last = 0
		return
	}
	c.last = x[reactor.Polymer] / total
}

func (c *Conversion) Value() float64 { return c.last }

func (c *Conversion) Reset() { c.last = 0 }

// Default returns the metrics reported for every run.
func Default(src Snapshotter, k kinetics.Params) []dynamo.Metric {
	return []dynamo.Metric{
		NewPeakTemperature(),
		NewFinalPolymer(),
		NewConversion(k),
		NewMeanConductance(src),
		NewHeatRemoved(src),
		NewStability(DefaultTemperatureLimit),
	}
}
