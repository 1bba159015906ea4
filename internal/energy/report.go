package energy

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/potential"
)

// Report is a full block decomposition. Blocks[i][j] holds the intra energy
// of component i on the diagonal and the inter energy of i and j elsewhere;
// the matrix is symmetric and each inter term is counted once in the
// aggregates. With a surface, the last row belongs to it and its diagonal is
// zero. Density is Particles per unit Volume and ignores the surface; both
// are zero for a degenerate cell.
type Report struct {
	Backend           string      `json:"backend"`
	Potential         string      `json:"potential"`
	Particles         int         `json:"particles"`
	Counts            []int       `json:"counts"`
	Frozen            []bool      `json:"frozen"`
	Surface           bool        `json:"surface"`
	Volume            float64     `json:"volume"`
	Density           float64     `json:"density"`
	Blocks            [][]float64 `json:"blocks"`
	FrozenEnergy      float64     `json:"frozen_energy"`
	InteractingEnergy float64     `json:"interacting_energy"`
	TotalEnergy       float64     `json:"total_energy"`
}

// Components returns the number of rows of Blocks.
func (r *Report) Components() int { return len(r.Blocks) }

// Row returns the energy of component c with everything, including itself.
func (r *Report) Row(c int) float64 {
	s := 0.0
	for _, v := range r.Blocks[c] {
		s += v
	}
	return s
}

// Decompose evaluates every block once and derives the aggregates from them.
// Without a surface the aggregates match Frozen, Interacting and Total. With
// one, FrozenEnergy also holds the frozen–surface blocks.
func (e *Evaluator) Decompose(ctx context.Context, sys atoms.System, pot potential.Potential, part Partition, surface atoms.System) (*Report, error) {
	p, err := prepare(sys, pot, part, surface)
	if err != nil {
		return nil, err
	}
	if pot.Kind() == potential.KindExternal {
		return nil, fmt.Errorf("%w: %s", ErrNotDecomposable, pot.Kind())
	}

	n := p.size()
	r := &Report{
		Backend:   e.backend.Name(),
		Potential: pot.Kind().String(),
		Particles: sys.Len(),
		Counts:    append([]int(nil), p.counts...),
		Frozen:    append([]bool(nil), p.frozen...),
		Surface:   p.surface,
		Volume:    sys.Cell().Volume(),
		Blocks:    make([][]float64, n),
	}
	if r.Volume > 0 {
		r.Density = float64(r.Particles) / r.Volume
	}
	if p.surface {
		r.Counts = append(r.Counts, surface.Len())
	}
	for i := range r.Blocks {
		r.Blocks[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v := e.block(p, i, j)
			r.Blocks[i][j], r.Blocks[j][i] = v, v

			if p.frozen[i] && p.frozen[j] {
				r.FrozenEnergy += v
			} else {
				r.InteractingEnergy += v
			}
		}
	}
	r.TotalEnergy = r.FrozenEnergy + r.InteractingEnergy
	e.log.Debugf("decomposed %d particles into %d blocks on %s", sys.Len(), n*(n+1)/2, r.Backend)
	return r, nil
}

// Sites returns the single-site energy of every particle of sys. External
// potentials give the whole-system energy for every site.
func (e *Evaluator) Sites(ctx context.Context, sys atoms.System, pot potential.Potential, part Partition, surface atoms.System) ([]float64, error) {
	p, err := prepare(sys, pot, part, surface)
	if err != nil {
		return nil, err
	}
	out := make([]float64, sys.Len())

	if pot.Kind() == potential.KindExternal {
		v, err := e.Interacting(ctx, sys, pot, part, surface)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = v
		}
		return out, nil
	}

	c := 0
	for i := range out {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for c < len(p.counts) && i >= p.comps[c].Offset()+p.counts[c] {
			c++
		}
		out[i] = e.site(p, i, c)
	}
	return out, nil
}

// Consistency compares the ways of assembling the total energy.
type Consistency struct {
	Frozen      float64
	Interacting float64
	Total       float64
	SiteSum     float64
}

// PartitionDelta is |Frozen + Interacting - Total|.
func (c *Consistency) PartitionDelta() float64 {
	return math.Abs(c.Frozen + c.Interacting - c.Total)
}

// SiteDelta is |SiteSum/2 - Total|.
func (c *Consistency) SiteDelta() float64 {
	return math.Abs(c.SiteSum/2 - c.Total)
}

// OK reports whether both deltas are within tol relative to max(1, |Total|).
func (c *Consistency) OK(tol float64) bool {
	scale := math.Max(1, math.Abs(c.Total))
	return c.PartitionDelta() <= tol*scale && c.SiteDelta() <= tol*scale
}

// Verify runs Frozen, Interacting, Total and Sites independently on the same
// inputs so their results can be compared.
func (e *Evaluator) Verify(ctx context.Context, sys atoms.System, pot potential.Potential, part Partition) (*Consistency, error) {
	if err := checkKind(pot); err != nil {
		return nil, err
	}
	if pot.Kind() == potential.KindExternal {
		return nil, fmt.Errorf("%w: %s", ErrNotDecomposable, pot.Kind())
	}

	var c Consistency
	var err error
	if c.Frozen, err = e.Frozen(ctx, sys, pot, part); err != nil {
		return nil, err
	}
	if c.Interacting, err = e.Interacting(ctx, sys, pot, part, nil); err != nil {
		return nil, err
	}
	if c.Total, err = e.Total(ctx, sys, pot, part); err != nil {
		return nil, err
	}
	sites, err := e.Sites(ctx, sys, pot, part, nil)
	if err != nil {
		return nil, err
	}
	for _, s := range sites {
		c.SiteSum += s
	}
	return &c, nil
}
