package metrics

import (
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Snapshotter evaluates the derived heat-transfer quantities at a state.
type Snapshotter interface {
	Snapshot(x dynamo.State, t float64) (reactor.Snapshot, error)
}

// HeatRemoved integrates the duty through the jacket wall with the
// trapezoidal rule, in J.
type HeatRemoved struct {
	name  string
	src   Snapshotter
	total float64
	lastT float64
	lastQ float64
	seen  bool
}

func NewHeatRemoved(src Snapshotter) *HeatRemoved {
	return &HeatRemoved{name: "heat_removed", src: src}
}

func (h *HeatRemoved) Name() string { return h.name }

func (h *HeatRemoved) Observe(t float64, x dynamo.State) {
	s, err := h.src.Snapshot(x, t)
	if err != nil {
		return
	}
	if h.seen {
		h.total += 0.5 * (s.Duty + h.lastQ) * (t - h.lastT)
	}
	h.lastT, h.lastQ, h.seen = t, s.Duty, true
}

func (h *HeatRemoved) Value() float64 { return h.total }

func (h *HeatRemoved) Reset() {
	h.total, h.lastT, h.lastQ, h.seen = 0, 0, 0, false
}

// MeanConductance averages UA over the observed samples, in W/K.
type MeanConductance struct {
	name    string
	src     Snapshotter
	sum     float64
	samples int
}

func NewMeanConductance(src Snapshotter) *MeanConductance {
	return &MeanConductance{name: "mean_conductance", src: src}
}

func (m *MeanConductance) Name() string { return m.name }

func (m *MeanConductance) Observe(t float64, x dynamo.State) {
	s, err := m.src.Snapshot(x, t)
	if err != nil {
		return
	}
	m.sum += s.Conductance
	m.samples++
}

func (m *MeanConductance) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanConductance) Reset() {
	m.sum = 0
	m.samples = 0
}
