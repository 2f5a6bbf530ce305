package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/reactor"
)

type fixedSnapshot struct {
	duty, ua float64
	failAt   float64
}

func (f fixedSnapshot) Snapshot(x dynamo.State, t float64) (reactor.Snapshot, error) {
	if t == f.failAt {
		return reactor.Snapshot{}, errors.New("no properties")
	}
	return reactor.Snapshot{Duty: f.duty * t, Conductance: f.ua}, nil
}

func state(t1, vam, ba, pol float64) dynamo.State {
	return reactor.Fields{VAM: vam, BA: ba, Polymer: pol, Reactor: t1}.State()
}

func TestPeakAndFinal(t *testing.T) {
	p := NewPeakTemperature()
	f := NewFinalPolymer()
	if p.Value() != 0 {
		t.Error("peak of nothing should be zero")
	}

	for i, tc := range []float64{300, 330, 320} {
		x := state(tc, 0, 0, float64(i))
		p.Observe(float64(i), x)
		f.Observe(float64(i), x)
	}
	if p.Value() != 330 {
		t.Errorf("peak = %g", p.Value())
	}
	if f.Value() != 2 {
		t.Errorf("final = %g", f.Value())
	}

	p.Reset()
	f.Reset()
	if p.Value() != 0 || f.Value() != 0 {
		t.Error("reset should clear the metrics")
	}
}

func TestConversion(t *testing.T) {
	k := kinetics.Default()
	c := NewConversion(k)

	c.Observe(0, state(300, 0, 0, 0))
	if c.Value() != 0 {
		t.Errorf("empty reactor conversion = %g", c.Value())
	}

	c.Observe(1, state(300, 1, 0, k.MolarMassA))
	if math.Abs(c.Value()-0.5) > 1e-12 {
		t.Errorf("conversion = %g, want 0.5", c.Value())
	}
}

func TestHeatRemoved(t *testing.T) {
	h := NewHeatRemoved(fixedSnapshot{duty: 2, failAt: -1})
	for _, ts := range []float64{0, 1, 2} {
		h.Observe(ts, state(300, 0, 0, 0))
	}
	// ∫ 2t dt over [0, 2]
	if math.Abs(h.Value()-4) > 1e-12 {
		t.Errorf("heat = %g, want 4", h.Value())
	}
}

func TestMeanConductanceSkipsErrors(t *testing.T) {
	m := NewMeanConductance(fixedSnapshot{ua: 3, failAt: 1})
	for _, ts := range []float64{0, 1, 2} {
		m.Observe(ts, state(300, 0, 0, 0))
	}
	if m.Value() != 3 || m.samples != 2 {
		t.Errorf("mean = %g over %d samples", m.Value(), m.samples)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(350)
	if s.Value() != 1 {
		t.Error("no samples means stable")
	}
	s.Observe(0, state(340, 0, 0, 0))
	s.Observe(1, state(360, 0, 0, 0))
	if s.Value() != 0.5 {
		t.Errorf("stability = %g", s.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default(fixedSnapshot{}, kinetics.Default()) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}
