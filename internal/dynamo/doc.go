// Package dynamo provides core simulation primitives for stiff reactor models.
//
// The package defines the fundamental interfaces and types shared by the
// reactor model and the time integrators:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Solver]: integrates a System over a span onto an output grid
//   - [Observer]: receives every accepted solver step
//   - [Ensemble]: runs independent simulations concurrently
//
// # Example
//
//	asm := reactor.NewAssembler(model, reactor.NewDiagnostics(), log)
//	bdf := integrators.NewBDF()
//	res, err := bdf.Solve(ctx, asm, x0, cfg)
//
// # Thread Safety
//
// A System value and its diagnostics belong to exactly one run. Solvers keep
// all step state on the stack of Solve, so a single solver value may be
// shared by concurrent runs; use [Ensemble] to drive several runs at once.
package dynamo
