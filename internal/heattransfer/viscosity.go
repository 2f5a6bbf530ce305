package heattransfer

import "math"

// ViscosityLaw is the apparent viscosity of the latex as a function of
// temperature and polymer content:
//
//	μ = C0 · exp(C1·Cpol/ρ) · 10^(C2·(A0/T − C3))
type ViscosityLaw struct {
	A0      float64 `yaml:"a0" toml:"a0"`
	C0      float64 `yaml:"c0" toml:"c0"`
	C1      float64 `yaml:"c1" toml:"c1"`
	C2      float64 `yaml:"c2" toml:"c2"`
	C3      float64 `yaml:"c3" toml:"c3"`
	Density float64 `yaml:"density" toml:"density"`
}

func DefaultViscosity() ViscosityLaw {
	return ViscosityLaw{
		A0:      555.556,
		C0:      1e-4,
		C1:      14.3,
		C2:      15.45,
		C3:      1.563,
		Density: 1056.688211,
	}
}

// Apparent returns μ in Pa·s at temperature T (K) and polymer concentration
// cpol (kg/m³).
func (v ViscosityLaw) Apparent(T, cpol float64) float64 {
	return v.C0 * math.Exp(v.C1*cpol/v.Density) * math.Pow(10, v.C2*(v.A0/T-v.C3))
}
