package heattransfer

// Regime is the jacket-side convection mode: Forced or Natural.
type Regime interface {
	Name() string
	regime()
}

// Forced convection driven by the coolant flow.
type Forced struct {
	Flow float64 // m³/s
}

// Natural convection; the coolant is effectively stagnant.
type Natural struct{}

func (Forced) Name() string  { return "forced" }
func (Natural) Name() string { return "natural" }

func (Forced) regime()  {}
func (Natural) regime() {}

// SelectRegime picks natural convection when flow is below threshold.
func SelectRegime(flow, threshold float64) Regime {
	if flow < threshold {
		return Natural{}
	}
	return Forced{Flow: flow}
}
