package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

type decay struct{ k float64 }

func (d *decay) StateDim() int { return 1 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.k * x[0]}
}

// robertson is the classic stiff chemical kinetics benchmark.
type robertson struct{}

func (r *robertson) StateDim() int { return 3 }

func (r *robertson) Derive(x dynamo.State, t float64) dynamo.State {
	y1, y2, y3 := x[0], x[1], x[2]
	return dynamo.State{
		-0.04*y1 + 1e4*y2*y3,
		0.04*y1 - 1e4*y2*y3 - 3e7*y2*y2,
		3e7 * y2 * y2,
	}
}

type blowup struct{ after float64 }

func (b *blowup) StateDim() int { return 1 }

func (b *blowup) Derive(x dynamo.State, t float64) dynamo.State {
	if t > b.after {
		return dynamo.State{math.NaN()}
	}
	return dynamo.State{-x[0]}
}

type countingObserver struct{ calls int }

func (c *countingObserver) OnStep(t float64, x dynamo.State) { c.calls++ }

func TestBDF_ExponentialDecay(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.T1 = 5
	cfg.Dt = 0.5
	cfg.RelTol = 1e-6
	cfg.AbsTol = 1e-9

	res, err := NewBDF().Solve(context.Background(), &decay{k: 1}, dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(res.Times) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(res.Times))
	}
	for i, tm := range res.Times {
		if d := math.Abs(res.States[i][0] - math.Exp(-tm)); d > 1e-4 {
			t.Errorf("y(%g) = %g, want %g", tm, res.States[i][0], math.Exp(-tm))
		}
	}
	if res.Message != successMessage {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestBDF_Robertson(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.T1 = 41
	cfg.Dt = 1
	cfg.RelTol = 1e-4
	cfg.AbsTol = 1e-8

	res, err := NewBDF().Solve(context.Background(), &robertson{}, dynamo.State{1, 0, 0}, cfg)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	last := res.States[len(res.States)-1]
	if res.Times[len(res.Times)-1] != 40 {
		t.Fatalf("last sample at %g, want 40", res.Times[len(res.Times)-1])
	}
	if math.Abs(last[0]-0.7158) > 1e-2 {
		t.Errorf("y1(40) = %g, want about 0.7158", last[0])
	}
	for i, x := range res.States {
		if sum := x[0] + x[1] + x[2]; math.Abs(sum-1) > 1e-3 {
			t.Fatalf("mass not conserved at t=%g: %g", res.Times[i], sum)
		}
	}
	if res.Stats.Steps > 2000 {
		t.Errorf("stiff problem took %d steps", res.Stats.Steps)
	}
	if res.Stats.Jacobians == 0 || res.Stats.Factorizations == 0 {
		t.Errorf("expected Jacobian and LU work, got %+v", res.Stats)
	}
}

func TestBDF_Observer(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.T1 = 3

	obs := &countingObserver{}
	solver := NewBDF()
	solver.AddObserver(obs)

	res, err := solver.Solve(context.Background(), &decay{k: 0.5}, dynamo.State{2}, cfg)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if obs.calls != res.Stats.Steps+1 {
		t.Errorf("observer called %d times for %d steps", obs.calls, res.Stats.Steps)
	}
}

func TestBDF_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewBDF().Solve(ctx, &decay{k: 1}, dynamo.State{1}, dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if res == nil || len(res.Times) != 1 {
		t.Errorf("expected only the initial sample on cancellation")
	}
}

func TestBDF_DimensionMismatch(t *testing.T) {
	_, err := NewBDF().Solve(context.Background(), &robertson{}, dynamo.State{1}, dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBDF_FailureKeepsPartialResult(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.T1 = 5
	cfg.Dt = 0.5

	res, err := NewBDF().Solve(context.Background(), &blowup{after: 1}, dynamo.State{1}, cfg)
	if err == nil {
		t.Fatal("expected failure once the derivative turns NaN")
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %T", err)
	}
	if simErr.Time > 1 {
		t.Errorf("failure reported at t=%g, past the last good time", simErr.Time)
	}
	if res == nil || len(res.Times) == 0 || res.Times[len(res.Times)-1] > 1 {
		t.Errorf("unexpected partial result")
	}
	if res.Message == successMessage {
		t.Error("failure must not report success")
	}
}

func TestChangeDIdentity(t *testing.T) {
	d := [][]float64{{1, 2}, {0.5, -1}, {0.1, 0.2}, {0, 0}}
	want := [][]float64{{1, 2}, {0.5, -1}, {0.1, 0.2}}

	changeD(d, 2, 1)
	for k := range want {
		for i := range want[k] {
			if math.Abs(d[k][i]-want[k][i]) > 1e-12 {
				t.Errorf("d[%d][%d] = %g, want %g", k, i, d[k][i], want[k][i])
			}
		}
	}
}

func TestComputeR(t *testing.T) {
	r := computeR(1, 0.5)
	want := mat.NewDense(2, 2, []float64{1, 1, 0, -0.5})
	if !mat.EqualApprox(r, want, 1e-12) {
		t.Errorf("computeR(1, 0.5) = %v", mat.Formatted(r))
	}
}

func TestBDFCoefficients(t *testing.T) {
	if math.Abs(bdfGamma[2]-1.5) > 1e-15 {
		t.Errorf("gamma[2] = %g", bdfGamma[2])
	}

	// Order one is the NDF of Shampine and Reichelt, not backward Euler.
	if math.Abs(bdfAlpha[1]-1.185) > 1e-12 {
		t.Errorf("alpha[1] = %g, want 1.185", bdfAlpha[1])
	}
	if math.Abs(bdfErrorConst[1]-0.315) > 1e-12 {
		t.Errorf("error constant of order one = %g, want 0.315", bdfErrorConst[1])
	}

	// Order five has kappa = 0 and is classical BDF5.
	if bdfKappa[bdfMaxOrder] != 0 {
		t.Fatalf("kappa[5] = %g", bdfKappa[bdfMaxOrder])
	}
	if math.Abs(bdfGamma[5]-137.0/60) > 1e-14 || bdfAlpha[5] != bdfGamma[5] {
		t.Errorf("order five: alpha %g gamma %g, want 137/60", bdfAlpha[5], bdfGamma[5])
	}
	if math.Abs(bdfErrorConst[5]-1.0/6) > 1e-15 {
		t.Errorf("error constant of order five = %g, want 1/6", bdfErrorConst[5])
	}
}
