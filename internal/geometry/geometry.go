// Package geometry derives the areas and volumes of the jacketed vessel.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGeometry = errors.New("geometry: invalid vessel dimensions")

// Spec holds the primary dimensions of the vessel in metres.
type Spec struct {
	Height        float64 `yaml:"height" toml:"height" json:"height"`
	InnerDiameter float64 `yaml:"inner_diameter" toml:"inner_diameter" json:"inner_diameter"`
	WallThickness float64 `yaml:"wall_thickness" toml:"wall_thickness" json:"wall_thickness"`
	JacketOuter   float64 `yaml:"jacket_diameter" toml:"jacket_diameter" json:"jacket_diameter"`
}

// Laboratory returns the dimensions of the laboratory reactor.
func Laboratory() Spec {
	return Spec{
		Height:        0.28,
		InnerDiameter: 0.1648,
		WallThickness: 0.0007,
		JacketOuter:   0.18,
	}
}

// Vessel is the immutable derived geometry. The jacket wall has the same
// thickness as the reactor wall.
type Vessel struct {
	Spec

	ReactorOuter float64 // d_er
	JacketInner  float64 // inner diameter of the annulus, equal to ReactorOuter
	JacketWallIn float64 // d_je, inside diameter of the outer jacket wall

	CrossSection float64 // π d_ir²/4
	Bottom       float64 // π d_er²/4, added to every wetted area

	InnerRadius float64 // r_i of the annulus
	OuterRadius float64 // r_o of the annulus
	Gap         float64 // annular thickness r_o - r_i
}

func New(s Spec) (Vessel, error) {
	if s.InnerDiameter <= 0 || s.WallThickness <= 0 || s.Height <= 0 {
		return Vessel{}, fmt.Errorf("%w: non-positive dimension in %+v", ErrInvalidGeometry, s)
	}

	v := Vessel{Spec: s}
	v.ReactorOuter = s.InnerDiameter + 2*s.WallThickness
	v.JacketInner = v.ReactorOuter
	v.JacketWallIn = s.JacketOuter - 2*s.WallThickness
	v.CrossSection = math.Pi * s.InnerDiameter * s.InnerDiameter / 4
	v.Bottom = math.Pi * v.ReactorOuter * v.ReactorOuter / 4
	v.InnerRadius = v.JacketInner / 2
	v.OuterRadius = v.JacketWallIn / 2
	v.Gap = v.OuterRadius - v.InnerRadius

	if v.Gap <= 0 {
		return Vessel{}, fmt.Errorf("%w: jacket diameter %g leaves no annulus", ErrInvalidGeometry, s.JacketOuter)
	}
	return v, nil
}

// Surfaces are the heat-transfer areas in m² at one liquid height.
type Surfaces struct {
	ReactorInner   float64 // A_Ii, wetted inside of the reactor wall
	JacketInner    float64 // A_IIi, jacket side of the reactor wall
	JacketOuter    float64 // A_IIo, inside of the outer jacket wall
	JacketExternal float64 // A_IIe, outside of the jacket
}

func (v Vessel) Surfaces(level float64) Surfaces {
	return Surfaces{
		ReactorInner:   math.Pi*level*v.InnerDiameter + v.Bottom,
		JacketInner:    math.Pi*level*v.JacketInner + v.Bottom,
		JacketOuter:    math.Pi*level*v.JacketWallIn + v.Bottom,
		JacketExternal: math.Pi*level*v.JacketOuter + v.Bottom,
	}
}

// ReactorVolume is the liquid volume at the given height.
func (v Vessel) ReactorVolume(level float64) float64 {
	return v.CrossSection * level
}

// JacketVolume is the annular coolant volume up to the given height.
func (v Vessel) JacketVolume(level float64) float64 {
	return math.Pi * level * (v.JacketWallIn*v.JacketWallIn - v.JacketInner*v.JacketInner) / 4
}

// HydraulicDiameter is the equivalent diameter used by the forced-flow
// jacket correlation.
func (v Vessel) HydraulicDiameter() float64 {
	return math.Sqrt(8.0/3.0) * v.Gap
}

// Level returns the liquid height that holds the given volume.
func (v Vessel) Level(volume float64) float64 {
	return volume / v.CrossSection
}
