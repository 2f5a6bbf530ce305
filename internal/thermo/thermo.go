// Package thermo supplies thermophysical properties of the jacket coolant.
//
// Callers depend on the Provider contract only. Water is a tabulated
// implementation for liquid water near atmospheric pressure; Cached wraps any
// Provider with a bounded, mutex-guarded LRU.
package thermo

import (
	"errors"
)

// Atmospheric is the standard atmosphere in Pa.
const Atmospheric = 101325.0

var ErrOutOfRange = errors.New("thermo: state outside tabulated range")

// Properties of a fluid at one (T, P) state, SI units.
type Properties struct {
	Density      float64 `json:"density" yaml:"density"`             // kg/m³
	HeatCapacity float64 `json:"heat_capacity" yaml:"heat_capacity"` // J/(kg·K)
	Viscosity    float64 `json:"viscosity" yaml:"viscosity"`         // Pa·s
	Conductivity float64 `json:"conductivity" yaml:"conductivity"`   // W/(m·K)
	Expansion    float64 `json:"expansion" yaml:"expansion"`         // 1/K, isobaric
}

func (p Properties) Prandtl() float64 {
	return p.Viscosity * p.HeatCapacity / p.Conductivity
}

func (p Properties) KinematicViscosity() float64 {
	return p.Viscosity / p.Density
}

// Provider answers property queries. Implementations must be safe for
// concurrent use.
type Provider interface {
	Properties(T, P float64) (Properties, error)
}
