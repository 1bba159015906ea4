package compute

import (
	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/geom"
)

// PairFunc maps a separation to a pair energy.
type PairFunc func(r float64) float64

// Intra sums pair(r) over every unordered pair i<j of sys. Systems with
// fewer than two particles contribute zero without iterating.
func Intra(b Backend, box geom.Box, sys atoms.System, pair PairFunc) float64 {
	n := sys.Len()
	if n < 2 {
		return 0
	}
	pos := atoms.Positions(sys)

	return b.Sum(n-1, func(i int) float64 {
		pi := pos[i]
		s := 0.0
		for j := i + 1; j < n; j++ {
			s += pair(box.Distance(pi, pos[j]))
		}
		return s
	})
}

// Inter sums pair(r) over the full cross product of a and c. The two systems
// are assumed disjoint, so every pair is counted once.
func Inter(b Backend, box geom.Box, a, c atoms.System, pair PairFunc) float64 {
	na, nc := a.Len(), c.Len()
	if na == 0 || nc == 0 {
		return 0
	}
	pa, pc := atoms.Positions(a), atoms.Positions(c)

	return b.Sum(na, func(i int) float64 {
		pi := pa[i]
		s := 0.0
		for j := 0; j < nc; j++ {
			s += pair(box.Distance(pi, pc[j]))
		}
		return s
	})
}

// SingleSite sums pair(r) between the point pos and every particle of
// others except local index skip. Pass skip < 0 to include them all.
func SingleSite(b Backend, box geom.Box, pos geom.Vec3, others atoms.System, skip int, pair PairFunc) float64 {
	n := others.Len()
	if n == 0 {
		return 0
	}
	po := atoms.Positions(others)

	return b.Sum(n, func(j int) float64 {
		if j == skip {
			return 0
		}
		return pair(box.Distance(pos, po[j]))
	})
}
