package integrators

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// jacobian estimates df/dy at (t, y) by forward differences. Each column is
// perturbed relative to max(|y_j|, atol/rtol) so that components spanning
// many orders of magnitude get a usable step. f0, when non-nil, is f(t, y).
func (s *bdfStepper) jacobian(t float64, y, f0 []float64) *mat.Dense {
	n := s.n
	if f0 == nil {
		f0 = s.eval(t, y)
	}

	floor := s.atol / s.rtol
	colScale := make([]float64, n)
	x := make([]float64, n)
	for j, v := range y {
		colScale[j] = math.Max(math.Abs(v), floor)
		x[j] = v / colScale[j]
	}

	probe := make([]float64, n)
	g := func(dst, xs []float64) {
		for j := range xs {
			probe[j] = xs[j] * colScale[j]
		}
		copy(dst, s.eval(t, probe))
	}

	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, g, x, &fd.JacobianSettings{
		Formula:     fd.Forward,
		OriginValue: f0,
		Step:        math.Sqrt(eps),
	})

	for j := 0; j < n; j++ {
		inv := 1 / colScale[j]
		for i := 0; i < n; i++ {
			jac.Set(i, j, jac.At(i, j)*inv)
		}
	}
	s.st.Jacobians++

	// A poisoned estimate would stall every later Newton iteration.
	if s.j != nil && !finiteMatrix(jac) {
		return s.j
	}
	return jac
}

func finiteMatrix(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
