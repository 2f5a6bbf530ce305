package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the explicit Dormand-Prince 5(4) pair with error control. It is
// cheap per step but needs tiny steps on stiff problems.
type RK45 struct {
	observed

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes a single fixed step of size dt.
func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(sys, x, sys.Derive(x, t), t, dt, 1e-3, 1e-6)
	return newX
}

// StepAdaptive advances x by dt given k1 = f(t, x). It returns the new state,
// the derivative there and the RMS error norm scaled by atol + rtol*|x|. A norm
// above one means the step should be rejected.
func (r *RK45) StepAdaptive(sys dynamo.System, x, k1 dynamo.State, t, dt, rtol, atol float64) (dynamo.State, dynamo.State, float64) {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := sys.Derive(x2, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(x3, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(x4, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(x5, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(x6, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := sys.Derive(xNew, t+dt)

	errEst := make(dynamo.State, n)
	scale := make([]float64, n)
	for i := 0; i < n; i++ {
		errEst[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale[i] = atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
	}

	return xNew, k7, errEst.RMS(scale)
}

func (r *RK45) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := checkProblem(sys, x0, cfg); err != nil {
		return nil, err
	}

	s := &rkStepper{
		rk:      r,
		sys:     sys,
		rtol:    math.Max(cfg.RelTol, 100*eps),
		atol:    cfg.AbsTol,
		maxStep: cfg.MaxStep,
		tBound:  cfg.T1,
		t:       cfg.T0,
		y:       x0.Clone(),
	}
	s.f = s.eval(s.t, s.y)
	if !s.f.IsValid() {
		return nil, fmt.Errorf("%w: derivative at t=%g is not finite", dynamo.ErrInvalidState, s.t)
	}
	if cfg.FirstStep > 0 {
		s.hAbs = math.Min(cfg.FirstStep, cfg.T1-cfg.T0)
	} else {
		s.hAbs = selectInitialStep(s.eval, s.t, s.y, s.f, s.tBound, s.maxStep, 4, s.rtol, s.atol)
	}
	return integrate(ctx, s, x0, cfg, &r.observed)
}

type rkStepper struct {
	rk      *RK45
	sys     dynamo.System
	rtol    float64
	atol    float64
	maxStep float64
	tBound  float64

	t, tOld float64
	y, yOld dynamo.State
	f, fOld dynamo.State
	hAbs    float64

	st dynamo.Stats
}

func (s *rkStepper) time() float64       { return s.t }
func (s *rkStepper) state() dynamo.State { return s.y }
func (s *rkStepper) stats() dynamo.Stats { return s.st }

func (s *rkStepper) eval(t float64, y []float64) []float64 {
	s.st.Evaluations++
	return s.sys.Derive(dynamo.State(y), t)
}

func (s *rkStepper) advance() error {
	t := s.t
	minStep := 10 * math.Abs(math.Nextafter(t, math.Inf(1))-t)
	hAbs := math.Min(math.Max(s.hAbs, minStep), s.maxStep)

	rejected := false
	for {
		if hAbs < minStep {
			return dynamo.ErrStepTooSmall
		}
		tNew := math.Min(t+hAbs, s.tBound)
		h := tNew - t
		hAbs = math.Abs(h)

		yNew, fNew, errNorm := s.rk.StepAdaptive(s.sys, s.y, s.f, t, h, s.rtol, s.atol)
		s.st.Evaluations += 6

		if errNorm < 1 && !math.IsNaN(errNorm) {
			factor := s.rk.maxScale
			if errNorm > 0 {
				factor = math.Min(s.rk.maxScale, s.rk.safety*math.Pow(errNorm, -0.2))
			}
			if rejected {
				factor = math.Min(1, factor)
			}
			s.tOld, s.yOld, s.fOld = t, s.y, s.f
			s.t, s.y, s.f = tNew, yNew, fNew
			s.hAbs = hAbs * factor
			s.st.Steps++
			return nil
		}

		factor := s.rk.minScale
		if !math.IsNaN(errNorm) {
			factor = math.Max(s.rk.minScale, s.rk.safety*math.Pow(errNorm, -0.2))
		}
		hAbs *= factor
		rejected = true
		s.st.Rejected++
	}
}

func (s *rkStepper) interpolant() interpolant {
	return &hermite{t0: s.tOld, t1: s.t, y0: s.yOld, y1: s.y, f0: s.fOld, f1: s.f}
}
