package atoms

import (
	"fmt"
	"sort"

	"github.com/san-kum/pairenergy/internal/geom"
)

// View is a contiguous range of particles of a parent system. Local index 0
// maps to global index Offset() of the parent.
type View struct {
	parent System
	offset int
	n      int
}

// Whole returns a view covering every particle of sys.
func Whole(sys System) *View {
	return &View{parent: sys, n: sys.Len()}
}

func (v *View) Len() int                 { return v.n }
func (v *View) Position(i int) geom.Vec3 { return v.parent.Position(v.offset + i) }
func (v *View) Species(i int) string     { return v.parent.Species(v.offset + i) }
func (v *View) Cell() geom.Cell          { return v.parent.Cell() }
func (v *View) PBC() geom.PBC            { return v.parent.PBC() }

func (v *View) Offset() int         { return v.offset }
func (v *View) Global(local int) int { return v.offset + local }

// Local maps a global index of the parent into this view. ok is false when
// the index lies outside the view.
func (v *View) Local(global int) (local int, ok bool) {
	local = global - v.offset
	return local, local >= 0 && local < v.n
}

// Offsets returns the cumulative sums of counts with a leading zero, so that
// component c spans the half-open range [offsets[c], offsets[c+1]).
func Offsets(counts []int) ([]int, error) {
	offsets := make([]int, len(counts)+1)
	for c, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("%w: component %d has negative count %d", ErrPartition, c, n)
		}
		offsets[c+1] = offsets[c] + n
	}
	return offsets, nil
}

// Split partitions sys into one view per entry of counts, in order. The
// counts must be non-negative and sum to sys.Len().
func Split(sys System, counts []int) ([]*View, error) {
	offsets, err := Offsets(counts)
	if err != nil {
		return nil, err
	}
	if total := offsets[len(counts)]; total != sys.Len() {
		return nil, fmt.Errorf("%w: counts sum to %d but system has %d particles", ErrPartition, total, sys.Len())
	}

	views := make([]*View, len(counts))
	for c := range counts {
		views[c] = &View{parent: sys, offset: offsets[c], n: counts[c]}
	}
	return views, nil
}

// ComponentOf returns the component owning a global particle index.
func ComponentOf(index int, counts []int) (int, error) {
	offsets, err := Offsets(counts)
	if err != nil {
		return 0, err
	}
	total := offsets[len(counts)]
	if index < 0 || index >= total {
		return 0, fmt.Errorf("%w: index %d not in [0, %d)", ErrIndexOutOfRange, index, total)
	}
	// First boundary strictly above index closes the owning range; empty
	// components share a boundary with their neighbour and are skipped.
	c := sort.Search(len(offsets), func(k int) bool { return offsets[k] > index })
	return c - 1, nil
}
