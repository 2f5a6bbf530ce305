package reactor

import "github.com/san-kum/reactorsim/internal/heattransfer"

// Diagnostics accumulates side-channel data of one run.
type Diagnostics struct {
	Times       []float64 // time of every right-hand-side evaluation
	Duty        []float64 // Q = UA·(T1 − T3), W
	Conductance []float64 // UA, W/K

	Evaluations    int
	Natural        int
	Forced         int
	Fallbacks      int
	WallIterations int
	PropertyErrors int
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) record(t, q float64, ht heattransfer.Result) {
	d.Evaluations++
	d.Times = append(d.Times, t)
	d.Duty = append(d.Duty, q)
	d.Conductance = append(d.Conductance, ht.UA)

	switch ht.Regime.(type) {
	case heattransfer.Natural:
		d.Natural++
	case heattransfer.Forced:
		d.Forced++
	}
	if ht.Wall != nil {
		d.WallIterations += ht.Wall.Iterations
		if ht.Wall.FellBack {
			d.Fallbacks++
		}
	}
}

// Reset clears the accumulator for reuse.
func (d *Diagnostics) Reset() {
	*d = Diagnostics{
		Times:       d.Times[:0],
		Duty:        d.Duty[:0],
		Conductance: d.Conductance[:0],
	}
}
