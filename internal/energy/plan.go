package energy

import (
	"fmt"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/compute"
	"github.com/san-kum/pairenergy/internal/geom"
	"github.com/san-kum/pairenergy/internal/potential"
)

// Partition assigns the particles of a system to components. Component c
// holds the next Counts[c] particles in index order. A nil Counts (with a
// nil Frozen) means one free component covering the whole system.
type Partition struct {
	Counts []int
	Frozen []bool
}

// Whole is the partition with a single free component.
func Whole() Partition { return Partition{} }

func (p Partition) resolve(n int) ([]int, []bool, error) {
	if p.Counts == nil && p.Frozen == nil {
		return []int{n}, []bool{false}, nil
	}
	if len(p.Frozen) != len(p.Counts) {
		return nil, nil, &MismatchError{
			What: "frozen mask length", Got: len(p.Frozen),
			Against: "component count", Want: len(p.Counts),
		}
	}
	offsets, err := atoms.Offsets(p.Counts)
	if err != nil {
		return nil, nil, err
	}
	if total := offsets[len(p.Counts)]; total != n {
		return nil, nil, &MismatchError{
			What: "sum of component counts", Got: total,
			Against: "particle count", Want: n,
		}
	}
	return p.Counts, p.Frozen, nil
}

// plan is a validated query: components in order, the optional surface last.
type plan struct {
	pot     potential.Potential
	box     geom.Box
	sys     atoms.System
	counts  []int
	frozen  []bool
	comps   []*atoms.View
	surface bool
}

func (p *plan) size() int { return len(p.comps) }

func (p *plan) isSurface(c int) bool { return p.surface && c == len(p.comps)-1 }

func (p *plan) pair(ci, cj int) compute.PairFunc {
	switch pot := p.pot.(type) {
	case *potential.Composite:
		return pot.Pair(ci, cj).Energy
	case *potential.Scalar:
		return pot.LJ.Energy
	}
	return nil
}

func checkKind(pot potential.Potential) error {
	switch pot := pot.(type) {
	case *potential.Scalar:
		if pot != nil {
			return nil
		}
	case *potential.Composite:
		if pot != nil {
			return nil
		}
	case *potential.External:
		if pot != nil && pot.Calc != nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %T", ErrUnknownPotential, pot)
}

// hasSurface treats a nil interface, a nil *atoms.Atoms and an empty system
// alike: no surface.
func hasSurface(surface atoms.System) bool {
	if surface == nil {
		return false
	}
	if a, ok := surface.(*atoms.Atoms); ok && a == nil {
		return false
	}
	return surface.Len() > 0
}

// prepare validates every input of a query before any energy is computed.
// External potentials get a plan without geometry or components.
func prepare(sys atoms.System, pot potential.Potential, part Partition, surface atoms.System) (*plan, error) {
	if err := checkKind(pot); err != nil {
		return nil, err
	}
	counts, frozen, err := part.resolve(sys.Len())
	if err != nil {
		return nil, err
	}
	p := &plan{pot: pot, sys: sys, counts: counts, frozen: frozen, surface: hasSurface(surface)}

	if pot.Kind() == potential.KindExternal {
		return p, nil
	}

	if c, ok := pot.(*potential.Composite); ok {
		want := len(counts)
		against := "component count"
		if p.surface {
			want++
			against = "component count plus surface"
		}
		if c.Dim() != want {
			return nil, &MismatchError{What: "potential matrix dimension", Got: c.Dim(), Against: against, Want: want}
		}
	}

	p.box, err = geom.NewBox(sys.Cell(), sys.PBC())
	if err != nil {
		return nil, err
	}

	joined := sys
	split := counts
	if p.surface {
		joined = atoms.Join(sys, surface)
		split = append(append([]int(nil), counts...), surface.Len())
		p.frozen = append(append([]bool(nil), frozen...), true)
	}
	p.comps, err = atoms.Split(joined, split)
	if err != nil {
		return nil, err
	}
	return p, nil
}
