package heattransfer

import (
	"math"

	"github.com/san-kum/reactorsim/internal/rootfind"
)

// WallProblem asks for the jacket-side wall temperature Tw that zeroes
// Residual, given the reactor (T1) and jacket bulk (T3) temperatures.
type WallProblem struct {
	Reactor  float64
	Jacket   float64
	Residual func(tw float64) float64
}

// Midpoint is the fallback wall temperature (T1 + T3)/2.
func (p WallProblem) Midpoint() float64 {
	return (p.Reactor + p.Jacket) / 2
}

type WallSolution struct {
	Temperature float64
	Iterations  int
	FellBack    bool  // the root-finder failed and Temperature is the midpoint
	Err         error // why it failed, when FellBack
}

type WallSolver interface {
	Solve(p WallProblem) WallSolution
}

// SecantWall starts a secant search half a kelvin below the reactor
// temperature and falls back to the midpoint on any failure.
type SecantWall struct {
	Method rootfind.Secant
}

func NewSecantWall() SecantWall {
	return SecantWall{Method: rootfind.DefaultSecant()}
}

func (s SecantWall) Solve(p WallProblem) WallSolution {
	out, err := s.Method.Solve(p.Residual, p.Reactor-0.5)
	if err == nil && (math.IsNaN(out.Root) || math.IsInf(out.Root, 0)) {
		err = rootfind.ErrNonFinite
	}
	if err != nil {
		return WallSolution{
			Temperature: p.Midpoint(),
			Iterations:  out.Iterations,
			FellBack:    true,
			Err:         err,
		}
	}
	return WallSolution{Temperature: out.Root, Iterations: out.Iterations}
}
