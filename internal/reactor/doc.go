// Package reactor assembles the mass, particle-number and energy balances of
// the semi-batch reactor and its cooling jacket into a dynamo.System.
//
// An Assembler is owned by exactly one run. Everything it records about the
// run, the heat duty and conductance seen at each right-hand-side evaluation
// and the number of wall-solver fallbacks, goes into the Diagnostics passed
// to NewAssembler; nothing is kept at package level, so independent runs can
// execute concurrently.
package reactor
