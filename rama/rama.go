package rama

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// ErrUnknownSampler is returned by ByName for names it does not know.
var ErrUnknownSampler = errors.New("rama: unknown sampler")

// Sampler draws one (φ, ψ) pair in degrees, both wrapped to (-180, 180].
type Sampler interface {
	Sample(rng *rand.Rand) (phi, psi float64)
}

// Region is one Gaussian basin of the Ramachandran plot.
type Region struct {
	Name     string
	Phi, Psi float64 // centre, degrees
	SdPhi    float64 // standard deviation of φ, degrees
	SdPsi    float64 // standard deviation of ψ, degrees
	Weight   float64 // relative population
}

// Mixture samples from a weighted set of regions.
type Mixture struct {
	regions []Region
	cum     []float64 // cumulative normalised weights
}

// NewMixture validates regions and precomputes the cumulative weights.
func NewMixture(regions ...Region) (*Mixture, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrUnknownSampler)
	}
	var total float64
	for _, r := range regions {
		if r.Weight < 0 || math.IsNaN(r.Weight) {
			return nil, fmt.Errorf("rama: region %q has invalid weight %v", r.Name, r.Weight)
		}
		total += r.Weight
	}
	if total <= 0 {
		return nil, errors.New("rama: mixture weights sum to zero")
	}

	m := &Mixture{regions: append([]Region(nil), regions...), cum: make([]float64, len(regions))}
	var acc float64
	for i, r := range regions {
		acc += r.Weight / total
		m.cum[i] = acc
	}
	m.cum[len(m.cum)-1] = 1

	return m, nil
}

// mustMixture is for the built-in tables only.
func mustMixture(regions ...Region) *Mixture {
	m, err := NewMixture(regions...)
	if err != nil {
		panic(err)
	}

	return m
}

// Regions returns a copy of the mixture's regions.
func (m *Mixture) Regions() []Region { return append([]Region(nil), m.regions...) }

// Sample implements Sampler.
func (m *Mixture) Sample(rng *rand.Rand) (phi, psi float64) {
	u := rng.Float64()
	i := 0
	for i < len(m.cum)-1 && u > m.cum[i] {
		i++
	}
	r := m.regions[i]

	return Wrap(r.Phi + rng.NormFloat64()*r.SdPhi), Wrap(r.Psi + rng.NormFloat64()*r.SdPsi)
}

// Uniform samples both angles uniformly over the full circle.
type Uniform struct{}

// Sample implements Sampler.
func (Uniform) Sample(rng *rand.Rand) (phi, psi float64) {
	return Wrap(rng.Float64()*360 - 180), Wrap(rng.Float64()*360 - 180)
}

// Fixed always returns the same pair; useful to build rigid reference chains.
type Fixed struct{ Phi, Psi float64 }

// Sample implements Sampler.
func (f Fixed) Sample(*rand.Rand) (phi, psi float64) { return Wrap(f.Phi), Wrap(f.Psi) }

// Wrap maps an angle in degrees into (-180, 180].
func Wrap(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg <= -180 {
		deg += 360
	} else if deg > 180 {
		deg -= 360
	}

	return deg
}

var (
	general = mustMixture(
		Region{Name: "alphaR", Phi: -63, Psi: -43, SdPhi: 12, SdPsi: 12, Weight: 0.42},
		Region{Name: "beta", Phi: -120, Psi: 130, SdPhi: 20, SdPsi: 18, Weight: 0.26},
		Region{Name: "ppII", Phi: -65, Psi: 145, SdPhi: 12, SdPsi: 15, Weight: 0.20},
		Region{Name: "bridge", Phi: -90, Psi: 0, SdPhi: 15, SdPsi: 15, Weight: 0.07},
		Region{Name: "alphaL", Phi: 57, Psi: 47, SdPhi: 10, SdPsi: 10, Weight: 0.05},
	)
	glycine = mustMixture(
		Region{Name: "alphaR", Phi: -65, Psi: -40, SdPhi: 15, SdPsi: 15, Weight: 0.30},
		Region{Name: "alphaL", Phi: 75, Psi: 25, SdPhi: 15, SdPsi: 15, Weight: 0.30},
		Region{Name: "extended", Phi: 180, Psi: 180, SdPhi: 20, SdPsi: 20, Weight: 0.25},
		Region{Name: "ppII", Phi: -75, Psi: 150, SdPhi: 15, SdPsi: 15, Weight: 0.15},
	)
	proline = mustMixture(
		Region{Name: "alphaR", Phi: -65, Psi: -35, SdPhi: 8, SdPsi: 12, Weight: 0.40},
		Region{Name: "ppII", Phi: -65, Psi: 145, SdPhi: 8, SdPsi: 12, Weight: 0.60},
	)
)

// Default returns the mixture for a generic (non-Gly, non-Pro) residue.
func Default() *Mixture { return general }

// Glycine returns the mixture for glycine, which populates both helix basins.
func Glycine() *Mixture { return glycine }

// Proline returns the mixture for proline, whose φ is locked near -65°.
func Proline() *Mixture { return proline }

// ByName resolves "general", "glycine", "proline", "uniform" (case-insensitive).
func ByName(name string) (Sampler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "general", "default":
		return general, nil
	case "glycine", "gly":
		return glycine, nil
	case "proline", "pro":
		return proline, nil
	case "uniform":
		return Uniform{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSampler, name)
	}
}
