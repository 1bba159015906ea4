package geom

import (
	"fmt"
	"math"
)

// Distance returns the minimum-image distance between p1 and p2. On a
// periodic axis the separation d is folded into [0, L) and the shorter of d
// and L-d is used; a non-periodic axis contributes d unchanged.
func Distance(p1, p2, lengths Vec3, pbc PBC) float64 {
	sum := 0.0
	for i := 0; i < 3; i++ {
		d := math.Abs(p1[i] - p2[i])
		if pbc[i] {
			l := lengths[i]
			if d >= l {
				d = math.Mod(d, l)
			}
			d = math.Min(d, l-d)
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Box is a validated orthorhombic cell together with its periodicity.
type Box struct {
	Lengths Vec3
	PBC     PBC
}

func NewBox(cell Cell, pbc PBC) (Box, error) {
	lengths, err := cell.Lengths()
	if err != nil {
		return Box{}, err
	}
	for i := 0; i < 3; i++ {
		if pbc[i] && !(lengths[i] > 0) {
			return Box{}, fmt.Errorf("%w: periodic axis %d has length %g", ErrUnsupportedGeometry, i, lengths[i])
		}
	}
	return Box{Lengths: lengths, PBC: pbc}, nil
}

func (b Box) Distance(p1, p2 Vec3) float64 {
	return Distance(p1, p2, b.Lengths, b.PBC)
}
