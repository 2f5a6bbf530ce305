package integrators

import "github.com/san-kum/reactorsim/internal/dynamo"

// bdfDense evaluates the backward-difference polynomial of the last step.
type bdfDense struct {
	t     float64
	h     float64
	order int
	d     [][]float64
}

func (b *bdfDense) At(t float64) dynamo.State {
	y := make(dynamo.State, len(b.d[0]))
	copy(y, b.d[0])

	p := 1.0
	for k := 0; k < b.order; k++ {
		shift := b.t - b.h*float64(k)
		denom := b.h * float64(k+1)
		p *= (t - shift) / denom
		for i := range y {
			y[i] += b.d[k+1][i] * p
		}
	}
	return y
}

// hermite is the cubic Hermite interpolant between two accepted states.
type hermite struct {
	t0, t1 float64
	y0, y1 dynamo.State
	f0, f1 dynamo.State
}

func (h *hermite) At(t float64) dynamo.State {
	dt := h.t1 - h.t0
	s := (t - h.t0) / dt
	s2, s3 := s*s, s*s*s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	y := make(dynamo.State, len(h.y0))
	for i := range y {
		y[i] = h00*h.y0[i] + h10*dt*h.f0[i] + h01*h.y1[i] + h11*dt*h.f1[i]
	}
	return y
}
