package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/integrators"
)

var ErrUnknownIntegrator = errors.New("experiment: unknown integrator")

// Solver is an integrator that reports accepted steps to observers.
type Solver interface {
	dynamo.Solver
	AddObserver(obs dynamo.Observer)
}

type Registry struct {
	integrators map[string]func() Solver
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() Solver),
	}

	r.integrators["bdf"] = func() Solver { return integrators.NewBDF() }
	r.integrators["rk45"] = func() Solver { return integrators.NewRK45() }

	return r
}

// GetIntegrator returns a fresh solver, so observers never leak between runs.
func (r *Registry) GetIntegrator(name string) (Solver, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
