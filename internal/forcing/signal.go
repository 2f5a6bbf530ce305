package forcing

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewSamples  = errors.New("forcing: at least two samples are required")
	ErrNotIncreasing  = errors.New("forcing: sample times must be strictly increasing")
	ErrLengthMismatch = errors.New("forcing: times and values differ in length")
)

// Signal is a piecewise-linear function of time. Outside the sampled range it
// continues the first or last segment.
type Signal struct {
	pl     interp.PiecewiseLinear
	ts, vs []float64
}

func NewSignal(ts, vs []float64) (*Signal, error) {
	if len(ts) != len(vs) {
		return nil, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(ts), len(vs))
	}
	if len(ts) < 2 {
		return nil, ErrTooFewSamples
	}
	for i := 1; i < len(ts); i++ {
		if !(ts[i] > ts[i-1]) {
			return nil, fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrNotIncreasing, i, ts[i], i-1, ts[i-1])
		}
	}

	s := &Signal{
		ts: append([]float64(nil), ts...),
		vs: append([]float64(nil), vs...),
	}
	if err := s.pl.Fit(s.ts, s.vs); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Signal) At(t float64) float64 {
	n := len(s.ts)
	switch {
	case t < s.ts[0]:
		return extrapolate(s.ts[0], s.vs[0], s.ts[1], s.vs[1], t)
	case t > s.ts[n-1]:
		return extrapolate(s.ts[n-2], s.vs[n-2], s.ts[n-1], s.vs[n-1], t)
	}
	return s.pl.Predict(t)
}

// Span returns the first and last sample times.
func (s *Signal) Span() (float64, float64) {
	return s.ts[0], s.ts[len(s.ts)-1]
}

func extrapolate(t0, v0, t1, v1, t float64) float64 {
	return v0 + (v1-v0)/(t1-t0)*(t-t0)
}
