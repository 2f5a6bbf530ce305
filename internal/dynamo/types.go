package dynamo

import (
	"context"
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RMS returns the root-mean-square of s weighted elementwise by 1/scale.
func (s State) RMS(scale []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for i, v := range s {
		r := v / scale[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(s)))
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Solver interface {
	Solve(ctx context.Context, sys System, x0 State, cfg Config) (*Result, error)
}

type Observer interface {
	OnStep(t float64, x State)
}

type Metric interface {
	Name() string
	Observe(t float64, x State)
	Value() float64
	Reset()
}

type Config struct {
	T0        float64
	T1        float64
	Dt        float64
	RelTol    float64
	AbsTol    float64
	MaxStep   float64
	FirstStep float64
	MaxSteps  int

	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		T0:            0,
		T1:            13100,
		Dt:            1.0,
		RelTol:        1e-3,
		AbsTol:        1e-6,
		MaxStep:       math.Inf(1),
		MaxSteps:      500000,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case c.T1 <= c.T0:
		return fmt.Errorf("%w: end time %g must exceed start time %g", ErrInvalidConfig, c.T1, c.T0)
	case c.RelTol <= 0 || c.AbsTol <= 0:
		return fmt.Errorf("%w: tolerances must be positive", ErrInvalidConfig)
	case c.MaxStep <= 0:
		return fmt.Errorf("%w: max step must be positive", ErrInvalidConfig)
	}
	return nil
}

// Grid returns the output sample times t0, t0+dt, ... strictly below t1.
func (c Config) Grid() []float64 {
	n := int(math.Ceil((c.T1 - c.T0) / c.Dt))
	if n < 0 {
		n = 0
	}
	g := make([]float64, n)
	for i := range g {
		g[i] = c.T0 + float64(i)*c.Dt
	}
	return g
}

type Stats struct {
	Steps          int `json:"steps" yaml:"steps"`
	Rejected       int `json:"rejected" yaml:"rejected"`
	Evaluations    int `json:"evaluations" yaml:"evaluations"`
	Jacobians      int `json:"jacobians" yaml:"jacobians"`
	Factorizations int `json:"factorizations" yaml:"factorizations"`
}

type Result struct {
	Times   []float64
	States  []State
	Stats   Stats
	Message string
}
