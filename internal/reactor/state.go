package reactor

import "github.com/san-kum/reactorsim/internal/dynamo"

// Positions of the state variables.
const (
	Level = iota
	VAM
	BA
	NaPS
	TBHP
	CRD
	Polymer
	Particles
	ReactorTemp
	JacketTemp

	Dim
)

// SeriesNames are the output names of the state variables, by position.
var SeriesNames = [Dim]string{
	"liquid_level",
	"vam_concentration",
	"ba_concentration",
	"naps_concentration",
	"tbhp_concentration",
	"crd_concentration",
	"polymer_concentration",
	"particle_number",
	"reactor_temperature",
	"jacket_temperature",
}

// Fields is the state vector with named members.
type Fields struct {
	Level     float64 // m
	VAM       float64 // kmol/m³
	BA        float64 // kmol/m³
	NaPS      float64 // kmol/m³
	TBHP      float64 // kmol/m³
	CRD       float64 // kmol/m³
	Polymer   float64 // kg/m³
	Particles float64
	Reactor   float64 // K
	Jacket    float64 // K
}

func Decompose(x dynamo.State) Fields {
	return Fields{
		Level:     x[Level],
		VAM:       x[VAM],
		BA:        x[BA],
		NaPS:      x[NaPS],
		TBHP:      x[TBHP],
		CRD:       x[CRD],
		Polymer:   x[Polymer],
		Particles: x[Particles],
		Reactor:   x[ReactorTemp],
		Jacket:    x[JacketTemp],
	}
}

func (f Fields) State() dynamo.State {
	x := make(dynamo.State, Dim)
	x[Level] = f.Level
	x[VAM] = f.VAM
	x[BA] = f.BA
	x[NaPS] = f.NaPS
	x[TBHP] = f.TBHP
	x[CRD] = f.CRD
	x[Polymer] = f.Polymer
	x[Particles] = f.Particles
	x[ReactorTemp] = f.Reactor
	x[JacketTemp] = f.Jacket
	return x
}
