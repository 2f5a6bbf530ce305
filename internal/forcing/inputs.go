package forcing

import "fmt"

// Raw holds the unsmoothed columns of an input dataset on a shared time axis.
type Raw struct {
	Time []float64
	F2   []float64
	F7   []float64
	F8   []float64
	F9   []float64
	RPS  []float64
	T2   []float64
}

// Inputs are the smoothed forcing signals of one run.
type Inputs struct {
	F2  *Signal // jacket flow, m³/s
	F7  *Signal // monomer feed, m³/s
	F8  *Signal // initiator feed, m³/s
	F9  *Signal // reductant feed, m³/s
	RPS *Signal // impeller speed, 1/s
	T2  *Signal // jacket inlet temperature, K
}

// Sample is the value of every forcing signal at one instant.
type Sample struct {
	F2, F7, F8, F9 float64
	RPS            float64
	T2             float64
}

// Build smooths each raw column with w and wraps it in a Signal.
func Build(raw Raw, w []float64) (*Inputs, error) {
	in := &Inputs{}
	cols := []struct {
		name string
		vals []float64
		dst  **Signal
	}{
		{"F2", raw.F2, &in.F2},
		{"F7", raw.F7, &in.F7},
		{"F8", raw.F8, &in.F8},
		{"F9", raw.F9, &in.F9},
		{"RPS", raw.RPS, &in.RPS},
		{"T2", raw.T2, &in.T2},
	}

	for _, c := range cols {
		sig, err := NewSignal(raw.Time, Smooth(c.vals, w))
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", c.name, err)
		}
		*c.dst = sig
	}
	return in, nil
}

// Constant returns inputs that hold every signal at a fixed value over
// [t0, t1], extrapolated flat outside it. t1 must exceed t0.
func Constant(t0, t1 float64, s Sample) (*Inputs, error) {
	ts := []float64{t0, t1}
	vals := [...]float64{s.F2, s.F7, s.F8, s.F9, s.RPS, s.T2}
	var sigs [len(vals)]*Signal
	for i, v := range vals {
		sig, err := NewSignal(ts, []float64{v, v})
		if err != nil {
			return nil, fmt.Errorf("constant inputs: %w", err)
		}
		sigs[i] = sig
	}
	return &Inputs{
		F2:  sigs[0],
		F7:  sigs[1],
		F8:  sigs[2],
		F9:  sigs[3],
		RPS: sigs[4],
		T2:  sigs[5],
	}, nil
}

func (in *Inputs) At(t float64) Sample {
	return Sample{
		F2:  in.F2.At(t),
		F7:  in.F7.At(t),
		F8:  in.F8.At(t),
		F9:  in.F9.At(t),
		RPS: in.RPS.At(t),
		T2:  in.T2.At(t),
	}
}
