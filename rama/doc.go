// Package rama draws backbone dihedral pairs (φ, ψ) from Ramachandran
// statistics. It is the probability source the fragment tables sample single
// residues from.
//
// The package only ships coarse Gaussian mixtures over the well-populated
// basins (right-handed helix, β strand, polyproline II, left-handed helix);
// callers with real per-residue statistics plug them in through Sampler.
//
// Sampler implementations never own a random source: the caller passes one
// in, so a fixed seed reproduces every draw.
package rama
