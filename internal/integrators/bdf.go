package integrators

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

const (
	bdfMaxOrder   = 5
	newtonMaxIter = 4
	minFactor     = 0.2
	maxFactor     = 10.0
)

// Coefficients of the numerical differentiation formulas of Shampine and
// Reichelt. kappa = 0 reduces them to classical BDF.
var (
	bdfKappa      = [bdfMaxOrder + 1]float64{0, -0.1850, -1.0 / 9.0, -0.0823, -0.0415, 0}
	bdfGamma      [bdfMaxOrder + 1]float64
	bdfAlpha      [bdfMaxOrder + 1]float64
	bdfErrorConst [bdfMaxOrder + 1]float64
)

func init() {
	for k := 1; k <= bdfMaxOrder; k++ {
		bdfGamma[k] = bdfGamma[k-1] + 1/float64(k)
	}
	for k := 0; k <= bdfMaxOrder; k++ {
		bdfAlpha[k] = (1 - bdfKappa[k]) * bdfGamma[k]
		bdfErrorConst[k] = bdfKappa[k]*bdfGamma[k] + 1/float64(k+1)
	}
}

// BDF is an implicit, variable-order (1 to 5) multistep solver for stiff
// systems. The Jacobian is estimated by finite differences and reused until
// the Newton iteration stops converging.
type BDF struct {
	observed
}

func NewBDF() *BDF {
	return &BDF{}
}

func (b *BDF) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := checkProblem(sys, x0, cfg); err != nil {
		return nil, err
	}
	s, err := newBDFStepper(sys, x0, cfg)
	if err != nil {
		return nil, err
	}
	return integrate(ctx, s, x0, cfg, &b.observed)
}

type bdfStepper struct {
	sys     dynamo.System
	n       int
	rtol    float64
	atol    float64
	maxStep float64
	tBound  float64

	t           float64
	y           []float64
	hAbs        float64
	order       int
	nEqualSteps int
	newtonTol   float64

	// d holds the modified divided differences, one row per order.
	d  [][]float64
	j  *mat.Dense
	lu *mat.LU

	st dynamo.Stats
}

func newBDFStepper(sys dynamo.System, x0 dynamo.State, cfg dynamo.Config) (*bdfStepper, error) {
	n := len(x0)
	s := &bdfStepper{
		sys:     sys,
		n:       n,
		rtol:    math.Max(cfg.RelTol, 100*eps),
		atol:    cfg.AbsTol,
		maxStep: cfg.MaxStep,
		tBound:  cfg.T1,
		t:       cfg.T0,
		y:       x0.Clone(),
		order:   1,
	}

	f := s.eval(s.t, s.y)
	if !dynamo.State(f).IsValid() {
		return nil, fmt.Errorf("%w: derivative at t=%g is not finite", dynamo.ErrInvalidState, s.t)
	}

	if cfg.FirstStep > 0 {
		s.hAbs = math.Min(cfg.FirstStep, cfg.T1-cfg.T0)
	} else {
		s.hAbs = selectInitialStep(s.eval, s.t, s.y, f, s.tBound, s.maxStep, 1, s.rtol, s.atol)
	}
	s.newtonTol = math.Max(10*eps/s.rtol, math.Min(0.03, math.Sqrt(s.rtol)))
	s.j = s.jacobian(s.t, s.y, f)

	s.d = make([][]float64, bdfMaxOrder+3)
	for i := range s.d {
		s.d[i] = make([]float64, n)
	}
	copy(s.d[0], s.y)
	for i := range f {
		s.d[1][i] = f[i] * s.hAbs
	}
	return s, nil
}

func (s *bdfStepper) time() float64       { return s.t }
func (s *bdfStepper) state() dynamo.State { return dynamo.State(s.y) }
func (s *bdfStepper) stats() dynamo.Stats { return s.st }

func (s *bdfStepper) eval(t float64, y []float64) []float64 {
	s.st.Evaluations++
	return s.sys.Derive(dynamo.State(y), t)
}

func (s *bdfStepper) advance() error {
	t := s.t
	d := s.d
	minStep := 10 * math.Abs(math.Nextafter(t, math.Inf(1))-t)

	var hAbs float64
	switch {
	case s.hAbs > s.maxStep:
		hAbs = s.maxStep
		changeD(d, s.order, s.maxStep/s.hAbs)
		s.nEqualSteps = 0
	case s.hAbs < minStep:
		hAbs = minStep
		changeD(d, s.order, minStep/s.hAbs)
		s.nEqualSteps = 0
	default:
		hAbs = s.hAbs
	}

	n := s.n
	order := s.order
	currentJac := false

	yPredict := make([]float64, n)
	psi := make([]float64, n)
	scale := make([]float64, n)
	errVec := make(dynamo.State, n)

	var (
		tNew     float64
		yNew     []float64
		corr     []float64
		nIter    int
		errNorm  float64
		safety   float64
		accepted bool
	)

	for !accepted {
		if hAbs < minStep {
			return dynamo.ErrStepTooSmall
		}

		tNew = t + hAbs
		if tNew > s.tBound {
			tNew = s.tBound
			changeD(d, order, math.Abs(tNew-t)/hAbs)
			s.nEqualSteps = 0
			s.lu = nil
		}
		h := tNew - t
		hAbs = math.Abs(h)

		for i := 0; i < n; i++ {
			sum := 0.0
			for k := 0; k <= order; k++ {
				sum += d[k][i]
			}
			yPredict[i] = sum
			scale[i] = s.atol + s.rtol*math.Abs(sum)

			p := 0.0
			for k := 1; k <= order; k++ {
				p += d[k][i] * bdfGamma[k]
			}
			psi[i] = p / bdfAlpha[order]
		}

		c := h / bdfAlpha[order]
		converged := false
		for !converged {
			if s.lu == nil {
				s.factorize(c)
			}
			converged, nIter, yNew, corr = s.newton(tNew, yPredict, c, psi, scale)
			if !converged {
				if currentJac {
					break
				}
				s.j = s.jacobian(tNew, yPredict, nil)
				s.lu = nil
				currentJac = true
			}
		}

		if !converged {
			hAbs *= 0.5
			changeD(d, order, 0.5)
			s.nEqualSteps = 0
			s.lu = nil
			s.st.Rejected++
			continue
		}

		safety = 0.9 * float64(2*newtonMaxIter+1) / float64(2*newtonMaxIter+nIter)
		for i := 0; i < n; i++ {
			scale[i] = s.atol + s.rtol*math.Abs(yNew[i])
			errVec[i] = bdfErrorConst[order] * corr[i]
		}
		errNorm = errVec.RMS(scale)

		if errNorm > 1 {
			factor := math.Max(minFactor, safety*math.Pow(errNorm, -1/float64(order+1)))
			hAbs *= factor
			changeD(d, order, factor)
			s.nEqualSteps = 0
			s.st.Rejected++
		} else {
			accepted = true
		}
	}

	s.st.Steps++
	s.nEqualSteps++
	s.t = tNew
	s.y = yNew
	s.hAbs = hAbs

	for i := 0; i < n; i++ {
		d[order+2][i] = corr[i] - d[order+1][i]
		d[order+1][i] = corr[i]
		for k := order; k >= 0; k-- {
			d[k][i] += d[k+1][i]
		}
	}

	if s.nEqualSteps < order+1 {
		return nil
	}

	errMNorm := math.Inf(1)
	if order > 1 {
		for i := 0; i < n; i++ {
			errVec[i] = bdfErrorConst[order-1] * d[order][i]
		}
		errMNorm = errVec.RMS(scale)
	}
	errPNorm := math.Inf(1)
	if order < bdfMaxOrder {
		for i := 0; i < n; i++ {
			errVec[i] = bdfErrorConst[order+1] * d[order+2][i]
		}
		errPNorm = errVec.RMS(scale)
	}

	norms := [3]float64{errMNorm, errNorm, errPNorm}
	best, bestFactor := 0, math.Inf(-1)
	for i, nrm := range norms {
		f := math.Pow(nrm, -1/float64(order+i))
		if f > bestFactor {
			best, bestFactor = i, f
		}
	}

	order += best - 1
	s.order = order

	factor := math.Min(maxFactor, safety*bestFactor)
	s.hAbs *= factor
	changeD(d, order, factor)
	s.nEqualSteps = 0
	s.lu = nil
	return nil
}

// newton solves the implicit corrector equation starting from yPredict. It
// returns whether the iteration converged, the number of iterations used, the
// corrected state and the accumulated correction.
func (s *bdfStepper) newton(tNew float64, yPredict []float64, c float64, psi, scale []float64) (bool, int, []float64, []float64) {
	n := s.n
	y := make([]float64, n)
	copy(y, yPredict)
	corr := make([]float64, n)

	rhs := mat.NewVecDense(n, nil)
	dy := mat.NewVecDense(n, nil)
	step := make(dynamo.State, n)

	var (
		dyNormOld float64
		haveOld   bool
		iters     int
	)
	for k := 0; k < newtonMaxIter; k++ {
		iters = k + 1

		f := s.eval(tNew, y)
		if !dynamo.State(f).IsValid() {
			break
		}
		for i := 0; i < n; i++ {
			rhs.SetVec(i, c*f[i]-psi[i]-corr[i])
		}
		if err := s.solve(dy, rhs); err != nil {
			break
		}
		for i := 0; i < n; i++ {
			step[i] = dy.AtVec(i)
		}
		dyNorm := step.RMS(scale)

		var rate float64
		if haveOld {
			rate = dyNorm / dyNormOld
			if rate >= 1 || math.Pow(rate, float64(newtonMaxIter-k))/(1-rate)*dyNorm > s.newtonTol {
				break
			}
		}

		floats.Add(y, step)
		floats.Add(corr, step)

		if dyNorm == 0 || haveOld && rate/(1-rate)*dyNorm < s.newtonTol {
			return true, iters, y, corr
		}
		dyNormOld, haveOld = dyNorm, true
	}
	return false, iters, y, corr
}

// factorize computes the LU decomposition of I - c*J.
func (s *bdfStepper) factorize(c float64) {
	a := mat.NewDense(s.n, s.n, nil)
	a.Scale(-c, s.j)
	for i := 0; i < s.n; i++ {
		a.Set(i, i, a.At(i, i)+1)
	}
	var lu mat.LU
	lu.Factorize(a)
	s.lu = &lu
	s.st.Factorizations++
}

func (s *bdfStepper) solve(dst, b *mat.VecDense) error {
	err := s.lu.SolveVecTo(dst, false, b)
	var cond mat.Condition
	if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
		// Ill-conditioned but solvable; the Newton iteration decides.
		err = nil
	}
	return err
}

func (s *bdfStepper) interpolant() interpolant {
	rows := make([][]float64, s.order+1)
	for k := range rows {
		rows[k] = append([]float64(nil), s.d[k]...)
	}
	return &bdfDense{t: s.t, h: s.hAbs, order: s.order, d: rows}
}

// computeR returns the matrix that rescales the difference array when the
// step size changes by factor.
func computeR(order int, factor float64) *mat.Dense {
	m := mat.NewDense(order+1, order+1, nil)
	for j := 0; j <= order; j++ {
		m.Set(0, j, 1)
	}
	for i := 1; i <= order; i++ {
		for j := 1; j <= order; j++ {
			m.Set(i, j, (float64(i-1)-factor*float64(j))/float64(i))
		}
	}
	for i := 1; i <= order; i++ {
		for j := 0; j <= order; j++ {
			m.Set(i, j, m.At(i, j)*m.At(i-1, j))
		}
	}
	return m
}

// changeD rescales the first order+1 rows of d in place for a step size
// multiplied by factor.
func changeD(d [][]float64, order int, factor float64) {
	var ru mat.Dense
	ru.Mul(computeR(order, factor), computeR(order, 1))

	n := len(d[0])
	rows := mat.NewDense(order+1, n, nil)
	for k := 0; k <= order; k++ {
		rows.SetRow(k, d[k])
	}

	var out mat.Dense
	out.Mul(ru.T(), rows)
	for k := 0; k <= order; k++ {
		mat.Row(d[k], k, &out)
	}
}
