package energy

import (
	"context"
	"fmt"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/compute"
	"github.com/san-kum/pairenergy/internal/potential"
)

// Evaluator answers energy queries. It holds no per-query state and may be
// shared between goroutines, except that queries on an External potential
// must not run concurrently when its calculator is stateful.
type Evaluator struct {
	backend compute.Backend
	log     Logger
}

type Option func(*Evaluator)

// WithBackend sets the executor used by every pair summation.
func WithBackend(b compute.Backend) Option {
	return func(e *Evaluator) {
		if b != nil {
			e.backend = b
		}
	}
}

func WithLogger(l Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		backend: compute.Default(),
		log:     NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Backend() compute.Backend { return e.backend }

// Frozen returns the energy among frozen components: intra energy of each
// frozen component plus inter energy of every pair of distinct frozen
// components. External potentials cannot separate this share and yield 0.
func (e *Evaluator) Frozen(ctx context.Context, sys atoms.System, pot potential.Potential, part Partition) (float64, error) {
	p, err := prepare(sys, pot, part, nil)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if pot.Kind() == potential.KindExternal {
		e.log.Debugf("frozen energy of an external potential is not decomposable, reporting 0")
		return 0, nil
	}
	return e.sum(ctx, p, func(i, j int) bool { return p.frozen[i] && p.frozen[j] })
}

// Interacting returns the energy of every pair involving at least one free
// particle. A non-empty surface joins as an extra, always frozen component
// after the listed ones, so surface–free pairs are included. External
// potentials evaluate the whole system once and ignore part and surface.
func (e *Evaluator) Interacting(ctx context.Context, sys atoms.System, pot potential.Potential, part Partition, surface atoms.System) (float64, error) {
	p, err := prepare(sys, pot, part, surface)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if pot.Kind() == potential.KindExternal {
		if p.surface || part.Counts != nil {
			e.log.Debugf("external potential ignores partition and surface")
		}
		return e.external(ctx, pot.(*potential.External), sys)
	}
	return e.sum(ctx, p, func(i, j int) bool { return !p.frozen[i] || !p.frozen[j] })
}

// SingleSite returns the energy between particle index and every other
// particle of sys, plus the surface when given. For a composite potential the
// parameters are chosen by the components of both particles; the surface
// uses the last matrix entry. External potentials fall back to Interacting.
func (e *Evaluator) SingleSite(ctx context.Context, index int, sys atoms.System, pot potential.Potential, part Partition, surface atoms.System) (float64, error) {
	p, err := prepare(sys, pot, part, surface)
	if err != nil {
		return 0, err
	}
	ci, err := atoms.ComponentOf(index, p.counts)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if pot.Kind() == potential.KindExternal {
		e.log.Debugf("single-site energy of particle %d approximated by the whole-system energy", index)
		return e.external(ctx, pot.(*potential.External), sys)
	}
	return e.site(p, index, ci), nil
}

func (e *Evaluator) site(p *plan, index, ci int) float64 {
	pos := p.sys.Position(index)

	if _, ok := p.pot.(*potential.Scalar); ok {
		s := compute.SingleSite(e.backend, p.box, pos, p.sys, index, p.pair(0, 0))
		if p.surface {
			s += compute.SingleSite(e.backend, p.box, pos, p.comps[p.size()-1], -1, p.pair(0, 0))
		}
		return s
	}

	s := 0.0
	for cj, comp := range p.comps {
		skip := -1
		if cj == ci {
			skip, _ = comp.Local(index)
		}
		s += compute.SingleSite(e.backend, p.box, pos, comp, skip, p.pair(ci, cj))
	}
	return s
}

// Total returns the pairwise energy of the whole system. A composite
// potential needs the partition to pick parameters; a scalar one ignores it
// beyond validation.
func (e *Evaluator) Total(ctx context.Context, sys atoms.System, pot potential.Potential, part Partition) (float64, error) {
	p, err := prepare(sys, pot, part, nil)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch pot := pot.(type) {
	case *potential.External:
		return e.external(ctx, pot, sys)
	case *potential.Scalar:
		return compute.Intra(e.backend, p.box, sys, pot.LJ.Energy), nil
	}
	return e.sum(ctx, p, func(i, j int) bool { return true })
}

func (e *Evaluator) external(ctx context.Context, ext *potential.External, sys atoms.System) (float64, error) {
	v, err := ext.Calc.Energy(ctx, sys)
	if err != nil {
		e.log.Errorf("external calculator: %v", err)
		return 0, &BackendError{Particles: sys.Len(), Err: err}
	}
	return v, nil
}

// block is the energy within component i (i == j) or between i and j. The
// surface has no self energy.
func (e *Evaluator) block(p *plan, i, j int) float64 {
	if i == j {
		if p.isSurface(i) {
			return 0
		}
		return compute.Intra(e.backend, p.box, p.comps[i], p.pair(i, i))
	}
	return compute.Inter(e.backend, p.box, p.comps[i], p.comps[j], p.pair(i, j))
}

// sum adds the blocks i <= j selected by want. Context is checked between
// blocks.
func (e *Evaluator) sum(ctx context.Context, p *plan, want func(i, j int) bool) (float64, error) {
	total := 0.0
	for i := 0; i < p.size(); i++ {
		for j := i; j < p.size(); j++ {
			if !want(i, j) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("energy: block (%d,%d): %w", i, j, err)
			}
			total += e.block(p, i, j)
		}
	}
	return total, nil
}
