package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

const eps = 2.220446049250313e-16

const successMessage = "The solver successfully reached the end of the integration interval."

// stepper advances an integration one accepted step at a time and exposes an
// interpolant valid over the last step.
type stepper interface {
	advance() error
	time() float64
	state() dynamo.State
	interpolant() interpolant
	stats() dynamo.Stats
}

type interpolant interface {
	At(t float64) dynamo.State
}

type observed struct {
	observers []dynamo.Observer
}

// AddObserver registers an observer called after every accepted step.
func (o *observed) AddObserver(obs dynamo.Observer) {
	o.observers = append(o.observers, obs)
}

func (o *observed) notify(t float64, x dynamo.State) {
	for _, obs := range o.observers {
		obs.OnStep(t, x)
	}
}

func checkProblem(sys dynamo.System, x0 dynamo.State, cfg dynamo.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(x0) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return dynamo.ErrInvalidState
	}
	return nil
}

// integrate drives s from cfg.T0 to cfg.T1 and samples the dense output on
// the uniform grid. On failure the samples collected so far are returned
// together with the error.
func integrate(ctx context.Context, s stepper, x0 dynamo.State, cfg dynamo.Config, o *observed) (*dynamo.Result, error) {
	grid := cfg.Grid()
	res := &dynamo.Result{
		Times:  make([]float64, 0, len(grid)),
		States: make([]dynamo.State, 0, len(grid)),
	}
	res.Times = append(res.Times, grid[0])
	res.States = append(res.States, x0.Clone())
	o.notify(cfg.T0, x0)
	next := 1

	fail := func(step int, err error) (*dynamo.Result, error) {
		simErr := &dynamo.SimulationError{
			Step:    step,
			Time:    s.time(),
			State:   s.state().Clone(),
			Wrapped: err,
		}
		res.Stats = s.stats()
		res.Message = simErr.Error()
		return res, simErr
	}

	for step := 0; s.time() < cfg.T1; step++ {
		if err := ctx.Err(); err != nil {
			return fail(step, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err))
		}
		if cfg.MaxSteps > 0 && step >= cfg.MaxSteps {
			return fail(step, dynamo.ErrTooManySteps)
		}
		if err := s.advance(); err != nil {
			return fail(step, err)
		}

		x := s.state()
		if cfg.ValidateState && !x.IsValid() {
			return fail(step, dynamo.ErrInvalidState)
		}

		if next < len(grid) && grid[next] <= s.time() {
			dense := s.interpolant()
			for next < len(grid) && grid[next] <= s.time() {
				res.Times = append(res.Times, grid[next])
				res.States = append(res.States, dense.At(grid[next]))
				next++
			}
		}
		o.notify(s.time(), x)
	}

	res.Stats = s.stats()
	res.Message = successMessage
	return res, nil
}

// selectInitialStep picks the first step from the local behavior of the
// right-hand side, following Hairer, Norsett and Wanner.
func selectInitialStep(eval func(t float64, y []float64) []float64, t0 float64, y0, f0 []float64,
	tBound, maxStep float64, order int, rtol, atol float64) float64 {
	n := len(y0)
	if n == 0 {
		return math.Inf(1)
	}
	interval := math.Abs(tBound - t0)
	if interval == 0 {
		return 0
	}

	scale := make([]float64, n)
	for i, v := range y0 {
		scale[i] = atol + math.Abs(v)*rtol
	}
	d0 := dynamo.State(y0).RMS(scale)
	d1 := dynamo.State(f0).RMS(scale)

	h0 := 0.01 * d0 / d1
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	}
	h0 = math.Min(h0, interval)

	y1 := make([]float64, n)
	for i := range y0 {
		y1[i] = y0[i] + h0*f0[i]
	}
	f1 := eval(t0+h0, y1)

	diff := make(dynamo.State, n)
	for i := range diff {
		diff[i] = f1[i] - f0[i]
	}
	d2 := diff.RMS(scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1/float64(order+1))
	}

	return math.Min(math.Min(100*h0, h1), math.Min(interval, maxStep))
}
