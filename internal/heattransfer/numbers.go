package heattransfer

import (
	"math"

	"github.com/san-kum/reactorsim/internal/thermo"
)

// ReactorNusselt evaluates the stirred-tank correlation
// Nu = A·Re^(2/3)·Pr^(1/3)·(μ/μw)^0.14 for impeller speed rps (1/s).
func (c Correlations) ReactorNusselt(rps, mu, rho, cp float64) (nu, re, pr float64) {
	re = rps * c.ImpellerDiameter * c.ImpellerDiameter * rho / mu
	pr = mu * cp / c.ReactorConductivity
	nu = c.ImpellerConstant * math.Pow(re, 2.0/3.0) * math.Pow(pr, 1.0/3.0) * c.wallCorrection()
	return nu, re, pr
}

// ForcedNusselt evaluates the annular-jacket correlation for coolant flow
// (m³/s) at liquid height level. The velocity is the geometric mean of the
// nozzle and annulus velocities.
func (c Correlations) ForcedNusselt(flow, level, gap, hydraulic float64, p thermo.Properties) (nu, re float64) {
	nozzle := flow / (math.Pi / 4 * c.NozzleDiameter * c.NozzleDiameter)
	annulus := flow / (level * gap)
	u := math.Sqrt(annulus * nozzle)

	pr := p.Prandtl()
	re = p.Density * u * hydraulic / p.Viscosity
	nu = 0.03 * math.Pow(re, 0.75) * pr / (1 + 1.74*(pr-1)/math.Pow(re, 0.125)) * c.wallCorrection()
	return nu, re
}

// MinExpansion bounds β from below in the Rayleigh number. Water contracts
// on heating below about 4 °C, where the tabulated β is zero or negative.
const MinExpansion = 1e-6 // 1/K

// Rayleigh returns g·β·|ΔT|·Lc³/ν²·Pr with β at least MinExpansion.
func (c Correlations) Rayleigh(dT, lc float64, p thermo.Properties) float64 {
	nu := p.KinematicViscosity()
	beta := math.Max(p.Expansion, MinExpansion)
	gr := c.Gravity * beta * math.Abs(dT) * lc * lc * lc / (nu * nu)
	return gr * p.Prandtl()
}
