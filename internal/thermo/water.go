package thermo

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Saturated-liquid water at about one atmosphere. Columns: temperature °C,
// density, heat capacity, dynamic viscosity, conductivity, expansion.
var waterTable = [][6]float64{
	{0.01, 999.84, 4219.9, 1.7914e-3, 0.5610, -6.8e-5},
	{5, 999.97, 4205.0, 1.5182e-3, 0.5705, 1.6e-5},
	{10, 999.70, 4195.5, 1.3063e-3, 0.5800, 8.8e-5},
	{15, 999.10, 4189.0, 1.1378e-3, 0.5893, 1.51e-4},
	{20, 998.21, 4184.1, 1.0016e-3, 0.5984, 2.07e-4},
	{25, 997.05, 4181.4, 0.8900e-3, 0.6071, 2.57e-4},
	{30, 995.65, 4180.1, 0.7972e-3, 0.6154, 3.03e-4},
	{35, 994.03, 4179.6, 0.7191e-3, 0.6233, 3.45e-4},
	{40, 992.22, 4179.6, 0.6527e-3, 0.6305, 3.85e-4},
	{45, 990.21, 4180.0, 0.5958e-3, 0.6371, 4.22e-4},
	{50, 988.04, 4180.7, 0.5465e-3, 0.6435, 4.57e-4},
	{55, 985.69, 4181.8, 0.5036e-3, 0.6490, 4.91e-4},
	{60, 983.20, 4183.3, 0.4660e-3, 0.6543, 5.23e-4},
	{65, 980.55, 4185.1, 0.4329e-3, 0.6590, 5.54e-4},
	{70, 977.76, 4187.3, 0.4035e-3, 0.6631, 5.84e-4},
	{75, 974.84, 4189.8, 0.3774e-3, 0.6668, 6.13e-4},
	{80, 971.79, 4192.7, 0.3540e-3, 0.6700, 6.41e-4},
	{85, 968.61, 4196.0, 0.3331e-3, 0.6728, 6.69e-4},
	{90, 965.31, 4199.7, 0.3142e-3, 0.6753, 6.96e-4},
	{95, 961.89, 4203.9, 0.2972e-3, 0.6773, 7.23e-4},
	{99.6, 958.7, 4208.0, 0.2830e-3, 0.6790, 7.5e-4},
}

const (
	celsius = 273.15

	minPressure = 80e3
	maxPressure = 500e3
)

// Water interpolates the liquid-water table with Akima splines. Pressure is
// only range-checked; liquid properties are nearly incompressible over it.
type Water struct {
	tMin, tMax float64
	density    interp.AkimaSpline
	cp         interp.AkimaSpline
	viscosity  interp.AkimaSpline
	k          interp.AkimaSpline
	beta       interp.AkimaSpline
}

// NewWater builds the splines. It panics if the built-in table is unusable.
func NewWater() *Water {
	n := len(waterTable)
	xs := make([]float64, n)
	cols := make([][]float64, 5)
	for c := range cols {
		cols[c] = make([]float64, n)
	}
	for i, row := range waterTable {
		xs[i] = row[0] + celsius
		for c := range cols {
			cols[c][i] = row[c+1]
		}
	}

	w := &Water{tMin: xs[0], tMax: xs[n-1]}
	splines := []*interp.AkimaSpline{&w.density, &w.cp, &w.viscosity, &w.k, &w.beta}
	for c, s := range splines {
		if err := s.Fit(xs, cols[c]); err != nil {
			panic(fmt.Sprintf("thermo: water table column %d: %v", c, err))
		}
	}
	return w
}

// Range returns the valid temperature interval in K.
func (w *Water) Range() (float64, float64) {
	return w.tMin, w.tMax
}

func (w *Water) Properties(T, P float64) (Properties, error) {
	if !(T >= w.tMin && T <= w.tMax) {
		return Properties{}, fmt.Errorf("%w: T=%.3f K not in [%.2f, %.2f]", ErrOutOfRange, T, w.tMin, w.tMax)
	}
	if !(P >= minPressure && P <= maxPressure) {
		return Properties{}, fmt.Errorf("%w: P=%.0f Pa not in [%.0f, %.0f]", ErrOutOfRange, P, minPressure, maxPressure)
	}
	return Properties{
		Density:      w.density.Predict(T),
		HeatCapacity: w.cp.Predict(T),
		Viscosity:    w.viscosity.Predict(T),
		Conductivity: w.k.Predict(T),
		Expansion:    w.beta.Predict(T),
	}, nil
}
