package reactor

import (
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/geometry"
)

// Charge is the initial load of the reactor before any feed.
type Charge struct {
	Water float64 `yaml:"water" toml:"water"` // kg
	CRD   float64 `yaml:"crd" toml:"crd"`     // kg
	NaPS  float64 `yaml:"naps" toml:"naps"`   // kg
	TBHP  float64 `yaml:"tbhp" toml:"tbhp"`   // kg

	MolarMassCRD  float64 `yaml:"molar_mass_crd" toml:"molar_mass_crd"` // kg/kmol
	MolarMassNaPS float64 `yaml:"molar_mass_naps" toml:"molar_mass_naps"`
	MolarMassTBHP float64 `yaml:"molar_mass_tbhp" toml:"molar_mass_tbhp"`
}

// LaboratoryCharge is the water plus the oxidant and reductant solutions
// charged before the first feed.
func LaboratoryCharge() Charge {
	return Charge{
		Water:         0.53479 + 0.02577 + 0.01266,
		CRD:           0.00066,
		NaPS:          0.0007,
		TBHP:          0.00042,
		MolarMassCRD:  176.12,
		MolarMassNaPS: 82.03,
		MolarMassTBHP: 90.12,
	}
}

// InitialState derives the state at t0 from the charge. waterDensity is the
// density of the charge water; t1 and t3 are the measured initial reactor and
// jacket temperatures. Species that have not been fed start at Epsilon.
func InitialState(v geometry.Vessel, c Charge, waterDensity, t1, t3 float64) dynamo.State {
	volume := c.Water / waterDensity
	return Fields{
		Level:     v.Level(volume),
		VAM:       Epsilon,
		BA:        Epsilon,
		NaPS:      c.NaPS / c.MolarMassNaPS / volume,
		TBHP:      c.TBHP / c.MolarMassTBHP / volume,
		CRD:       c.CRD / c.MolarMassCRD / volume,
		Polymer:   Epsilon,
		Particles: Epsilon,
		Reactor:   t1,
		Jacket:    t3,
	}.State()
}
