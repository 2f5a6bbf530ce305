// Package heattransfer computes film coefficients and overall conductances
// between the reactor contents, the jacket coolant and the surroundings.
//
// The jacket side has two regimes. Above a flow threshold the coolant is in
// forced convection and every quantity is explicit. Below it the coolant is
// in natural convection, whose Rayleigh number depends on the unknown wall
// temperature; Engine then asks a WallSolver for that temperature once per
// evaluation.
package heattransfer

import "math"

// Correlations are the empirical constants of the film and wall models.
type Correlations struct {
	ReactorConductivity    float64 // k of the reaction mixture, W/(m·K)
	WallConductivity       float64 // reactor wall between contents and jacket
	BottomConductivity     float64 // reactor bottom to ambient
	JacketWallConductivity float64 // outer jacket wall to ambient

	ImpellerConstant   float64
	ImpellerDiameter   float64 // m
	NozzleDiameter     float64 // jacket inlet nozzle, m
	WallViscosityRatio float64 // μ_wall/μ_bulk

	ReactorFouling float64 // m²K/W
	JacketFouling  float64 // m²K/W
	AmbientFilm    float64 // W/(m²K)

	RegimeThreshold float64 // m³/s
	Gravity         float64 // m/s²

	Natural BranchTable
}

func Laboratory() Correlations {
	return Correlations{
		ReactorConductivity:    0.4,
		WallConductivity:       1.2,
		BottomConductivity:     1.2,
		JacketWallConductivity: 1.2,
		ImpellerConstant:       0.46,
		ImpellerDiameter:       0.11,
		NozzleDiameter:         0.005,
		WallViscosityRatio:     1.05,
		ReactorFouling:         0.0005,
		JacketFouling:          0.0002,
		AmbientFilm:            20,
		RegimeThreshold:        7.35e-5,
		Gravity:                9.81,
		Natural:                DefaultBranches(),
	}
}

// wallCorrection is the Sieder-Tate factor (μ/μw)^0.14.
func (c Correlations) wallCorrection() float64 {
	return math.Pow(1/c.WallViscosityRatio, 0.14)
}
