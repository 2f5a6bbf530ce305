package reactor

// Stream is a liquid stream entering or filling the reactor.
type Stream struct {
	Density      float64 `yaml:"density" toml:"density"`             // kg/m³
	HeatCapacity float64 `yaml:"heat_capacity" toml:"heat_capacity"` // J/(kg·K)
	Temperature  float64 `yaml:"temperature" toml:"temperature"`     // K, unused for the contents
}

type Streams struct {
	Contents  Stream `yaml:"contents" toml:"contents"`
	Monomer   Stream `yaml:"monomer" toml:"monomer"`     // F7
	Initiator Stream `yaml:"initiator" toml:"initiator"` // F8
	Reductant Stream `yaml:"reductant" toml:"reductant"` // F9
}

// JacketStreams are the coolant properties at the inlet and in the jacket.
type JacketStreams struct {
	InletDensity      float64
	InletHeatCapacity float64
	BulkDensity       float64
	BulkHeatCapacity  float64
}

// MonomerTank is the composition of the monomer tank (F7), kmol/m³.
type MonomerTank struct {
	VAM float64 `yaml:"vam" toml:"vam"`
	BA  float64 `yaml:"ba" toml:"ba"`
}

// InitiatorTank is the composition of the initiator tank (F8), kmol/m³.
type InitiatorTank struct {
	NaPS float64 `yaml:"naps" toml:"naps"`
	TBHP float64 `yaml:"tbhp" toml:"tbhp"`
}

// FeedSchedule switches the monomer tank from Before to After at Switch. The
// initiator and reductant tanks keep one composition for the whole batch.
type FeedSchedule struct {
	Switch    float64       `yaml:"switch" toml:"switch"` // s
	Before    MonomerTank   `yaml:"before" toml:"before"`
	After     MonomerTank   `yaml:"after" toml:"after"`
	Initiator InitiatorTank `yaml:"initiator" toml:"initiator"`
	Reductant float64       `yaml:"reductant" toml:"reductant"` // CRD in the reductant tank
}

func (s FeedSchedule) At(t float64) MonomerTank {
	if t < s.Switch {
		return s.Before
	}
	return s.After
}

type Params struct {
	Streams Streams      `yaml:"streams" toml:"streams"`
	Feed    FeedSchedule `yaml:"feed" toml:"feed"`

	Ambient    float64 `yaml:"ambient" toml:"ambient"`       // K
	HeatA      float64 `yaml:"heat_a" toml:"heat_a"`         // reaction enthalpy of VAM, J/kmol
	HeatB      float64 `yaml:"heat_b" toml:"heat_b"`         // reaction enthalpy of BA, J/kmol
	Nucleation float64 `yaml:"nucleation" toml:"nucleation"` // end of particle formation, s

	VolumeFloor float64 `yaml:"-" toml:"-"`
}

const ambient = 273.15 + 23

// Epsilon is the float64 machine epsilon, used as the floor for volumes and
// for species that have not been fed yet.
const Epsilon = 0x1p-52

func DefaultParams() Params {
	return Params{
		Streams: Streams{
			Contents:  Stream{Density: 1056.688211, HeatCapacity: 1720 * 0.85},
			Monomer:   Stream{Density: 943.73, HeatCapacity: 1566, Temperature: ambient},
			Initiator: Stream{Density: 1008.93, HeatCapacity: 3576, Temperature: ambient},
			Reductant: Stream{Density: 988.92, HeatCapacity: 3654, Temperature: ambient},
		},
		Feed: FeedSchedule{
			Switch:    7380,
			Before:    MonomerTank{VAM: 5.577, BA: 1.93},
			After:     MonomerTank{VAM: 5.047, BA: 1.75},
			Initiator: InitiatorTank{NaPS: 0.167, TBHP: 0.111},
			Reductant: 0.131,
		},
		Ambient:     ambient,
		HeatA:       -8.96e7,
		HeatB:       -7.54e7,
		Nucleation:  1303,
		VolumeFloor: Epsilon,
	}
}
