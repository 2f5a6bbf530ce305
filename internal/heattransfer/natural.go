package heattransfer

import "math"

// Branch is one interval of the natural-convection correlation
//
//	Nu = C1·Ra·(L/s)² / (C2·(L/ro)⁴·(ro/L) + (Ra·(L/s)³)^N1·(ri/L)^N2)
//
// valid for geometry parameter values up to UpTo.
type Branch struct {
	UpTo      float64
	Inclusive bool
	C1, C2    float64
	N1, N2    float64
}

func (b Branch) contains(n float64) bool {
	if b.Inclusive {
		return n <= b.UpTo
	}
	return n < b.UpTo
}

// BranchTable is ordered by UpTo; the first branch containing N wins and the
// last branch catches everything else.
type BranchTable []Branch

func DefaultBranches() BranchTable {
	return BranchTable{
		{UpTo: 0.2, Inclusive: true, C1: 0.48, C2: 854, N1: 0.75, N2: 0},
		{UpTo: 1.48, C1: 0.93, C2: 1646, N1: 0.84, N2: 0.36},
		{UpTo: math.Inf(1), Inclusive: true, C1: 0.49, C2: 862, N1: 0.95, N2: 0.8},
	}
}

func (t BranchTable) Select(n float64) Branch {
	for _, b := range t {
		if b.contains(n) {
			return b
		}
	}
	return t[len(t)-1]
}

// Annulus is the enclosure seen by the natural-convection correlation.
type Annulus struct {
	Level float64 // wetted height L
	Gap   float64 // s = ro − ri
	Inner float64 // ri
	Outer float64 // ro
}

// Parameter returns N = (Ra·(L/s)³)^(−1/4)·(L/ri).
func (a Annulus) Parameter(ra float64) float64 {
	aspect := a.Level / a.Gap
	return math.Pow(ra*aspect*aspect*aspect, -0.25) * (a.Level / a.Inner)
}

func (b Branch) Nusselt(ra float64, a Annulus) float64 {
	aspect := a.Level / a.Gap
	num := b.C1 * ra * aspect * aspect
	den := b.C2*math.Pow(a.Level/a.Outer, 4)*(a.Outer/a.Level) +
		math.Pow(ra*aspect*aspect*aspect, b.N1)*math.Pow(a.Inner/a.Level, b.N2)
	return num / den
}

// NaturalNusselt selects the branch for ra and evaluates it.
func (t BranchTable) NaturalNusselt(ra float64, a Annulus) float64 {
	return t.Select(a.Parameter(ra)).Nusselt(ra, a)
}
