// Package kinetics evaluates terminal-model copolymerization rates of vinyl
// acetate (A) and butyl acrylate (B) together with redox and thermal
// initiation rates.
package kinetics

import "math"

type Params struct {
	Avogadro            float64 `yaml:"avogadro" toml:"avogadro"`
	GasConstant         float64 `yaml:"gas_constant" toml:"gas_constant"` // kJ/(mol·K)
	RadicalsPerParticle float64 `yaml:"radicals_per_particle" toml:"radicals_per_particle"`

	MolarMassA float64 `yaml:"molar_mass_a" toml:"molar_mass_a"` // kg/kmol
	MolarMassB float64 `yaml:"molar_mass_b" toml:"molar_mass_b"`

	PropagationA float64 `yaml:"propagation_a" toml:"propagation_a"` // homopropagation prefactors
	PropagationB float64 `yaml:"propagation_b" toml:"propagation_b"`
	Redox        float64 `yaml:"redox" toml:"redox"`
	Thermal      float64 `yaml:"thermal" toml:"thermal"`

	PropagationEnergy float64 `yaml:"propagation_energy" toml:"propagation_energy"` // E/R, K
	RedoxEnergy       float64 `yaml:"redox_energy" toml:"redox_energy"`             // kJ/mol
	ThermalEnergy     float64 `yaml:"thermal_energy" toml:"thermal_energy"`         // E/R, K

	RatioA float64 `yaml:"ratio_a" toml:"ratio_a"` // reactivity ratio r1
	RatioB float64 `yaml:"ratio_b" toml:"ratio_b"` // reactivity ratio r2
}

func Default() Params {
	return Params{
		Avogadro:            6.022e23,
		GasConstant:         8.31446e-3,
		RadicalsPerParticle: 0.5,
		MolarMassA:          86.09,
		MolarMassB:          128.18,
		PropagationA:        6.14e7,
		PropagationB:        2.73e7,
		Redox:               11649.28,
		Thermal:             2.57e17,
		PropagationEnergy:   3171,
		RedoxEnergy:         32.19,
		ThermalEnergy:       16720,
		RatioA:              0.037,
		RatioB:              6.35,
	}
}

// Species are the reactor concentrations that drive the rates.
type Species struct {
	A, B      float64 // monomers, kmol/m³
	NaPS      float64 // persulfate, kmol/m³
	TBHP      float64 // hydroperoxide, kmol/m³
	CRD       float64 // reductant, kmol/m³
	Particles float64
}

// Feed is the monomer composition of the feed tank, kmol/m³.
type Feed struct {
	A, B float64
}

// Fraction returns the mole fraction of A in the feed, or one half for an
// empty feed.
func (f Feed) Fraction() float64 {
	total := f.A + f.B
	if total <= 0 {
		return 0.5
	}
	return f.A / total
}

// Propagation holds the terminal-model rate constants at one temperature.
type Propagation struct {
	KAA, KBB float64 // homopropagation
	KAB, KBA float64 // cross-propagation
	Phi      float64 // fraction of radicals ending in A
	KA, KB   float64 // averaged constants for consuming A and B
}

func (p Params) Propagation(T, f1 float64) Propagation {
	var k Propagation
	k.KAA = p.PropagationA * math.Exp(-p.PropagationEnergy/T)
	k.KBB = p.PropagationB * math.Exp(-p.PropagationEnergy/T)
	k.KAB = k.KAA / p.RatioA
	k.KBA = k.KBB / p.RatioB

	f2 := 1 - f1
	den := k.KBA*f1 + k.KAB*f2
	if den == 0 {
		k.Phi = f1
	} else {
		k.Phi = k.KBA * f1 / den
	}
	phi2 := 1 - k.Phi

	k.KA = k.KAA*k.Phi + k.KBA*phi2
	k.KB = k.KAB*k.Phi + k.KBB*phi2
	return k
}

type Rates struct {
	A, B    float64 // monomer consumption, kmol/s
	Redox   float64 // kmol/(m³·s)
	Thermal float64 // kmol/(m³·s)
	Phi     float64
}

// Evaluate returns all rates at temperature T (K).
func (p Params) Evaluate(T float64, feed Feed, s Species) Rates {
	k := p.Propagation(T, feed.Fraction())
	scale := s.Particles * p.RadicalsPerParticle / p.Avogadro * 1e3

	return Rates{
		A:       scale * k.KA * s.A,
		B:       scale * k.KB * s.B,
		Redox:   p.Redox * math.Exp(-p.RedoxEnergy/(T*p.GasConstant)) * s.CRD * s.TBHP,
		Thermal: p.Thermal * math.Exp(-p.ThermalEnergy/T) * s.NaPS,
		Phi:     k.Phi,
	}
}

// PolymerRate is the mass rate of polymer formation in kg/s.
func (p Params) PolymerRate(r Rates) float64 {
	return r.A*p.MolarMassA + r.B*p.MolarMassB
}
