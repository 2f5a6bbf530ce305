package dataset

import "math"

// Recipe describes a laboratory-shaped batch: a heat-up period with the
// jacket in natural convection, a feed period with forced cooling and a
// cool-down at the end.
type Recipe struct {
	Step     float64 // sampling interval, s
	End      float64 // last sample, s
	FeedFrom float64 // start of the feeds and of jacket flow, s
	FeedTo   float64 // end of the monomer feed, s
	CoolFrom float64 // inlet temperature drops from here, s

	JacketFlow float64 // m³/s
	Monomer    float64 // F7, m³/s
	Initiator  float64 // F8, m³/s
	Reductant  float64 // F9, m³/s
	RPS        float64

	Initial  float64 // T1 and T3 at t = 0, K
	Setpoint float64 // jacket inlet during reaction, K
	Cooling  float64 // jacket inlet during cool-down, K
}

func LaboratoryRecipe() Recipe {
	return Recipe{
		Step:       5,
		End:        13200,
		FeedFrom:   900,
		FeedTo:     11700,
		CoolFrom:   12300,
		JacketFlow: 1.2e-4,
		Monomer:    6.5e-8,
		Initiator:  1.0e-8,
		Reductant:  1.0e-8,
		RPS:        3,
		Initial:    296.15,
		Setpoint:   333.15,
		Cooling:    298.15,
	}
}

// Synthetic generates a table following r. T1 and T3 relax towards the
// inlet temperature with a fixed time constant; only their first samples
// enter a run.
func Synthetic(r Recipe) *Table {
	n := int(math.Floor(r.End/r.Step)) + 1
	t := &Table{}
	for _, name := range Required {
		*t.column(name) = make([]float64, n)
	}

	const tau = 900.0
	t1, t3 := r.Initial, r.Initial
	for i := 0; i < n; i++ {
		ts := float64(i) * r.Step
		t.Time[i] = ts
		t.RPS[i] = r.RPS

		inlet := r.Setpoint
		if ts >= r.CoolFrom {
			inlet = r.Cooling
		}
		t.T2[i] = inlet

		if ts >= r.FeedFrom {
			t.F2[i] = r.JacketFlow
			t.F8[i] = r.Initiator
			t.F9[i] = r.Reductant
			if ts < r.FeedTo {
				t.F7[i] = r.Monomer
			}
		}

		if i > 0 {
			k := 1 - math.Exp(-r.Step/tau)
			t3 += (inlet - t3) * k
			t1 += (t3 - t1) * k
		}
		t.T1[i] = t1
		t.T3[i] = t3
	}
	return t
}
