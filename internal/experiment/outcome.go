package experiment

import (
	"fmt"
	"time"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Derived output series, appended after the state variables.
const (
	SeriesViscosity = "viscosity"
	SeriesDuty      = "heat_transfer_rate"
	SeriesUA        = "heat_transfer_coeff"
)

type Status int

const (
	Converged Status = iota
	Failed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "converged":
		*s = Converged
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("experiment: unknown status %q", b)
	}
	return nil
}

type Series struct {
	Name   string
	Values []float64
}

// Trajectory is the sampled output of a converged run. Every series has the
// length of Time.
type Trajectory struct {
	Time   []float64
	Series []Series
}

func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Time)
}

// Get returns the named series. A nil trajectory, as carried by a failed
// outcome, has no series.
func (t *Trajectory) Get(name string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	for _, s := range t.Series {
		if s.Name == name {
			return s.Values, true
		}
	}
	return nil, false
}

func (t *Trajectory) Names() []string {
	names := make([]string, len(t.Series))
	for i, s := range t.Series {
		names[i] = s.Name
	}
	return names
}

// States reassembles the state vectors from the state series.
func (t *Trajectory) States() ([]dynamo.State, error) {
	cols := make([][]float64, reactor.Dim)
	for i, name := range reactor.SeriesNames {
		v, ok := t.Get(name)
		if !ok {
			return nil, fmt.Errorf("experiment: trajectory has no %s series", name)
		}
		cols[i] = v
	}
	out := make([]dynamo.State, t.Len())
	for k := range out {
		x := make(dynamo.State, reactor.Dim)
		for i := range cols {
			x[i] = cols[i][k]
		}
		out[k] = x
	}
	return out, nil
}

// Summary is the per-run diagnostic digest.
type Summary struct {
	Evaluations    int `json:"evaluations" yaml:"evaluations"`
	Natural        int `json:"natural" yaml:"natural"`
	Forced         int `json:"forced" yaml:"forced"`
	Fallbacks      int `json:"fallbacks" yaml:"fallbacks"`
	WallIterations int `json:"wall_iterations" yaml:"wall_iterations"`
	PropertyErrors int `json:"property_errors" yaml:"property_errors"`
}

func summarize(d *reactor.Diagnostics) Summary {
	return Summary{
		Evaluations:    d.Evaluations,
		Natural:        d.Natural,
		Forced:         d.Forced,
		Fallbacks:      d.Fallbacks,
		WallIterations: d.WallIterations,
		PropertyErrors: d.PropertyErrors,
	}
}

// Outcome is the result of one run: a complete trajectory when Converged,
// and only the failure message when Failed.
type Outcome struct {
	Status      Status
	Message     string
	Integrator  string
	Trajectory  *Trajectory
	Stats       dynamo.Stats
	Diagnostics Summary
	Metrics     map[string]float64
	Elapsed     time.Duration

	// Err is the solver error of a failed run.
	Err error
}

func (o *Outcome) Converged() bool { return o.Status == Converged }
