package experiment

import (
	"context"

	"github.com/san-kum/reactorsim/internal/dataset"
	"github.com/san-kum/reactorsim/internal/dynamo"
)

// RunAll runs every table concurrently on at most workers goroutines and
// returns outcomes and errors by index.
func (r *Runner) RunAll(ctx context.Context, tabs []*dataset.Table, workers int) ([]*Outcome, []error) {
	r.defaults()
	outs := make([]*Outcome, len(tabs))
	errs := dynamo.NewEnsemble(workers).Run(ctx, len(tabs), func(ctx context.Context, i int) error {
		out, err := r.Run(ctx, tabs[i])
		outs[i] = out
		return err
	})
	return outs, errs
}

// Compare runs the same table once per integrator, one after the other so
// the elapsed times are comparable.
func (r *Runner) Compare(ctx context.Context, tab *dataset.Table, integrators []string) ([]*Outcome, error) {
	outs := make([]*Outcome, 0, len(integrators))
	for _, name := range integrators {
		out, err := r.run(ctx, tab, name)
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}
