// Package atoms holds particle configurations and their component partitions.
//
// The energy engine only reads configurations through the [System]
// interface. [Atoms] is the concrete in-memory implementation and [View] is a
// contiguous slice of another system, produced by [Split].
package atoms

import (
	"errors"
	"fmt"

	"github.com/san-kum/pairenergy/internal/geom"
)

var (
	// ErrPartition indicates component counts that do not tile the system.
	ErrPartition = errors.New("atoms: invalid partition")

	// ErrIndexOutOfRange indicates a particle index outside the system.
	ErrIndexOutOfRange = errors.New("atoms: index out of range")

	// ErrShape indicates per-particle arrays of different lengths.
	ErrShape = errors.New("atoms: positions and species lengths differ")
)

// System is a read-only particle configuration.
type System interface {
	Len() int
	Position(i int) geom.Vec3
	Species(i int) string
	Cell() geom.Cell
	PBC() geom.PBC
}

type Atoms struct {
	Symbols   []string
	Positions []geom.Vec3
	CellVecs  geom.Cell
	Periodic  geom.PBC
}

func New(symbols []string, positions []geom.Vec3, cell geom.Cell, pbc geom.PBC) (*Atoms, error) {
	if len(symbols) != len(positions) {
		return nil, fmt.Errorf("%w: %d species, %d positions", ErrShape, len(symbols), len(positions))
	}
	return &Atoms{
		Symbols:   symbols,
		Positions: positions,
		CellVecs:  cell,
		Periodic:  pbc,
	}, nil
}

func (a *Atoms) Len() int                 { return len(a.Positions) }
func (a *Atoms) Position(i int) geom.Vec3 { return a.Positions[i] }
func (a *Atoms) Species(i int) string     { return a.Symbols[i] }
func (a *Atoms) Cell() geom.Cell          { return a.CellVecs }
func (a *Atoms) PBC() geom.PBC            { return a.Periodic }

// Clone returns a deep copy of any system as *Atoms.
func Clone(sys System) *Atoms {
	n := sys.Len()
	a := &Atoms{
		Symbols:   make([]string, n),
		Positions: make([]geom.Vec3, n),
		CellVecs:  sys.Cell(),
		Periodic:  sys.PBC(),
	}
	for i := 0; i < n; i++ {
		a.Symbols[i] = sys.Species(i)
		a.Positions[i] = sys.Position(i)
	}
	return a
}

// Positions returns the coordinates of sys as a flat slice. For *Atoms the
// backing slice is returned and must not be modified.
func Positions(sys System) []geom.Vec3 {
	if a, ok := sys.(*Atoms); ok {
		return a.Positions
	}
	out := make([]geom.Vec3, sys.Len())
	for i := range out {
		out[i] = sys.Position(i)
	}
	return out
}

// Join returns a new system holding the particles of base followed by those
// of extra. The cell and periodicity of base are kept.
func Join(base, extra System) *Atoms {
	a := Clone(base)
	for i := 0; i < extra.Len(); i++ {
		a.Symbols = append(a.Symbols, extra.Species(i))
		a.Positions = append(a.Positions, extra.Position(i))
	}
	return a
}
