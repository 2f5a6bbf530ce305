package metrics

import (
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// DefaultTemperatureLimit is the reactor temperature above which a batch is
// considered out of control, K.
const DefaultTemperatureLimit = 273.15 + 85

// Stability is the fraction of samples whose reactor temperature stays at or
// below the limit.
type Stability struct {
	name       string
	limit      float64
	violations int
	samples    int
}

func NewStability(limit float64) *Stability {
	return &Stability{
		name:  "stability",
		limit: limit,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t float64, x dynamo.State) {
	s.samples++
	if x[reactor.ReactorTemp] > s.limit {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
