// Package potential describes the pair interactions the energy engine sums.
//
// A [Potential] is one of three closed variants:
//
//   - [Scalar]: a single Lennard-Jones parameter set for every pair
//   - [Composite]: a symmetric matrix of parameter sets indexed by component
//   - [External]: a black-box [Calculator] that only returns whole-system energies
//
// The cutoff carried by [LJ] is informational. Pair sums evaluate the raw
// 12-6 form at every distance; truncation is left to callers.
package potential

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams indicates unusable Lennard-Jones parameters.
var ErrInvalidParams = errors.New("potential: invalid parameters")

// LJ is a 12-6 Lennard-Jones parameter set. A zero Cutoff means none.
type LJ struct {
	Epsilon float64 `json:"epsilon" yaml:"epsilon" toml:"epsilon"`
	Sigma   float64 `json:"sigma" yaml:"sigma" toml:"sigma"`
	Cutoff  float64 `json:"cutoff,omitempty" yaml:"cutoff,omitempty" toml:"cutoff,omitempty"`
}

// Energy returns 4*eps*((sigma/r)^12 - (sigma/r)^6).
func (p LJ) Energy(r float64) float64 {
	sr := p.Sigma / r
	sr2 := sr * sr
	sr6 := sr2 * sr2 * sr2
	return 4 * p.Epsilon * (sr6*sr6 - sr6)
}

// Minimum is the separation of the potential well, sigma*2^(1/6).
func (p LJ) Minimum() float64 {
	return p.Sigma * math.Pow(2, 1.0/6.0)
}

func (p LJ) HasCutoff() bool {
	return p.Cutoff > 0 && !math.IsInf(p.Cutoff, 1)
}

func (p LJ) Validate() error {
	switch {
	case !(p.Sigma > 0) || math.IsInf(p.Sigma, 0):
		return fmt.Errorf("%w: sigma must be positive and finite, got %g", ErrInvalidParams, p.Sigma)
	case !(p.Epsilon >= 0) || math.IsInf(p.Epsilon, 0):
		return fmt.Errorf("%w: epsilon must be non-negative and finite, got %g", ErrInvalidParams, p.Epsilon)
	case !(p.Cutoff >= 0):
		return fmt.Errorf("%w: cutoff must be non-negative, got %g", ErrInvalidParams, p.Cutoff)
	}
	return nil
}

func (p LJ) String() string {
	if p.HasCutoff() {
		return fmt.Sprintf("LJ(eps=%g, sigma=%g, rc=%g)", p.Epsilon, p.Sigma, p.Cutoff)
	}
	return fmt.Sprintf("LJ(eps=%g, sigma=%g)", p.Epsilon, p.Sigma)
}

// Curve samples the potential at n evenly spaced separations in [rmin, rmax].
func Curve(p LJ, rmin, rmax float64, n int) (rs, es []float64) {
	if n < 2 {
		n = 2
	}
	rs = make([]float64, n)
	es = make([]float64, n)
	step := (rmax - rmin) / float64(n-1)
	for i := range rs {
		rs[i] = rmin + float64(i)*step
		es[i] = p.Energy(rs[i])
	}
	return rs, es
}

// mixPair combines two parameter sets with the Lorentz-Berthelot rules.
func mixPair(a, b LJ) LJ {
	return LJ{
		Epsilon: math.Sqrt(a.Epsilon * b.Epsilon),
		Sigma:   0.5 * (a.Sigma + b.Sigma),
		Cutoff:  math.Max(a.Cutoff, b.Cutoff),
	}
}
