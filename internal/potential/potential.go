package potential

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindScalar Kind = iota
	KindComposite
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindComposite:
		return "composite"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Potential is implemented only by Scalar, Composite and External.
type Potential interface {
	Kind() Kind
	sealed()
}

type Scalar struct {
	LJ
}

func NewScalar(p LJ) (*Scalar, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scalar{LJ: p}, nil
}

func (*Scalar) Kind() Kind { return KindScalar }
func (*Scalar) sealed()    {}

// Composite holds one parameter set per unordered pair of components. Entry
// (i, i) applies within component i.
type Composite struct {
	m [][]LJ
}

// NewComposite copies m after checking that it is square, symmetric and that
// every entry is valid.
func NewComposite(m [][]LJ) (*Composite, error) {
	n := len(m)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty parameter matrix", ErrInvalidParams)
	}
	cp := make([][]LJ, n)
	for i, row := range m {
		if len(row) != n {
			return nil, fmt.Errorf("%w: matrix row %d has %d entries, want %d", ErrInvalidParams, i, len(row), n)
		}
		cp[i] = append([]LJ(nil), row...)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if err := cp[i][j].Validate(); err != nil {
				return nil, fmt.Errorf("entry (%d,%d): %w", i, j, err)
			}
			if cp[i][j] != cp[j][i] {
				return nil, fmt.Errorf("%w: matrix not symmetric at (%d,%d)", ErrInvalidParams, i, j)
			}
		}
	}
	return &Composite{m: cp}, nil
}

// Mix builds a composite matrix from per-component parameters with the
// Lorentz-Berthelot rules: arithmetic mean of sigma, geometric mean of
// epsilon, larger cutoff.
func Mix(per []LJ) (*Composite, error) {
	n := len(per)
	m := make([][]LJ, n)
	for i := range m {
		m[i] = make([]LJ, n)
		for j := range m[i] {
			m[i][j] = mixPair(per[i], per[j])
		}
	}
	return NewComposite(m)
}

func (*Composite) Kind() Kind { return KindComposite }
func (*Composite) sealed()    {}

func (c *Composite) Dim() int { return len(c.m) }

func (c *Composite) Pair(i, j int) LJ { return c.m[i][j] }

func (c *Composite) Energy(i, j int, r float64) float64 {
	return c.m[i][j].Energy(r)
}

// Matrix returns a copy of the parameter matrix.
func (c *Composite) Matrix() [][]LJ {
	out := make([][]LJ, len(c.m))
	for i, row := range c.m {
		out[i] = append([]LJ(nil), row...)
	}
	return out
}

// External defers to a whole-system calculator. It has no per-pair form.
type External struct {
	Calc Calculator
}

func NewExternal(calc Calculator) (*External, error) {
	if calc == nil {
		return nil, errors.New("potential: nil calculator")
	}
	return &External{Calc: calc}, nil
}

func (*External) Kind() Kind { return KindExternal }
func (*External) sealed()    {}
