// Package rootfind solves scalar equations f(x) = 0 without derivatives.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoConvergence = errors.New("rootfind: iteration limit reached")
	ErrNonFinite     = errors.New("rootfind: residual is not finite")
	ErrStalled       = errors.New("rootfind: secant slope vanished before convergence")
)

// Secant is the derivative-free secant method. The second starting point is
// placed a relative 1e-4 away from the first.
type Secant struct {
	Tol     float64 // absolute step tolerance
	RelTol  float64 // relative step tolerance, added to Tol
	MaxIter int
}

func DefaultSecant() Secant {
	return Secant{Tol: 1e-5, MaxIter: 200}
}

type Outcome struct {
	Root        float64
	Iterations  int
	Evaluations int
}

// Solve searches for a root near x0. It stops when successive iterates differ
// by at most Tol + RelTol*|x|.
func (s Secant) Solve(f func(float64) float64, x0 float64) (Outcome, error) {
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 50
	}

	var out Outcome
	eval := func(x float64) (float64, error) {
		out.Evaluations++
		q := f(x)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return q, fmt.Errorf("%w: f(%g) = %g", ErrNonFinite, x, q)
		}
		return q, nil
	}

	p0 := x0
	p1 := x0*(1+1e-4) + 1e-4
	if x0 < 0 {
		p1 = x0*(1+1e-4) - 1e-4
	}

	q0, err := eval(p0)
	if err != nil {
		return out, err
	}
	q1, err := eval(p1)
	if err != nil {
		return out, err
	}
	if math.Abs(q1) < math.Abs(q0) {
		p0, p1, q0, q1 = p1, p0, q1, q0
	}

	for itr := 0; itr < maxIter; itr++ {
		out.Iterations = itr + 1

		var p float64
		if q1 == q0 {
			if p1 != p0 {
				return out, fmt.Errorf("%w: |x1-x0| = %g", ErrStalled, math.Abs(p1-p0))
			}
			out.Root = (p1 + p0) / 2
			return out, nil
		}
		if math.Abs(q1) > math.Abs(q0) {
			p = (-q0/q1*p1 + p0) / (1 - q0/q1)
		} else {
			p = (-q1/q0*p0 + p1) / (1 - q1/q0)
		}

		if math.Abs(p-p1) <= s.Tol+s.RelTol*math.Abs(p1) {
			out.Root = p
			return out, nil
		}

		p0, q0 = p1, q1
		p1 = p
		if q1, err = eval(p1); err != nil {
			return out, err
		}
	}

	out.Root = p1
	return out, fmt.Errorf("%w after %d iterations, last x = %g", ErrNoConvergence, maxIter, p1)
}
