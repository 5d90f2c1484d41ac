package closure

import (
	"fmt"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
)

// CalculateLoop turns c into typed backbone residues. seq holds one residue
// type per loop residue. Each residue gets N, CA, C and the carbonyl O, which
// is placed in the peptide plane towards the following N (the end anchor's N
// for the last residue). B-factors rise from AnchorBFactor next to the anchors
// to MidBFactor in the middle of the loop.
func CalculateLoop(c Candidate, seq []string) (Loop, error) {
	if len(seq) != len(c.Residues) {
		return Loop{}, fmt.Errorf("%w: %d types for %d residues", ErrSequenceLength, len(seq), len(c.Residues))
	}

	loop := Loop{
		ID:       c.ID,
		Residues: make([]LoopResidue, len(c.Residues)),
		Quality:  c.Deviation,
		Closure:  c.Closure,
	}
	for i, r := range c.Residues {
		b := BFactor(i, len(c.Residues))
		o := fragment.CarbonylO(r, nextN(c, i))
		loop.Residues[i] = LoopResidue{
			Index: r.Index,
			Type:  seq[i],
			Atoms: []Atom{
				{Name: "N", Position: r.N, BFactor: b},
				{Name: "CA", Position: r.CA, BFactor: b},
				{Name: "C", Position: r.C, BFactor: b},
				{Name: "O", Position: o, BFactor: b},
			},
		}
	}

	return loop, nil
}

// nextN returns the N bonded to the carbonyl of residue i.
func nextN(c Candidate, i int) geom.Vec3 {
	if i+1 < len(c.Residues) {
		return c.Residues[i+1].N
	}
	if c.End != (fragment.Residue{}) {
		return c.End.N
	}

	return fragment.NextN(c.Residues[i], fragment.DefaultPsi)
}

// BFactor is the heuristic B-factor of residue i in a loop of length n:
// linear in the sequence distance to the nearer anchor, reaching MidBFactor
// at the loop centre.
func BFactor(i, n int) float64 {
	if n <= 0 || i < 0 || i >= n {
		return AnchorBFactor
	}
	d := float64(min(i+1, n-i))
	centre := float64(n+1) / 2

	return AnchorBFactor + (MidBFactor-AnchorBFactor)*min(d/centre, 1)
}
