// Package geom provides the periodic geometry used by every pair evaluation.
//
// Coordinates are plain [Vec3] values. A simulation [Cell] is a 3x3 matrix of
// cell vectors, and a [Box] is the validated orthorhombic form of a cell plus
// its per-axis periodicity:
//
//	box, err := geom.NewBox(cell, geom.PBC{true, true, true})
//	r := box.Distance(p1, p2)
//
// # Limitations
//
// Only orthorhombic cells are supported. The minimum-image rule works on the
// diagonal lengths of the cell, so [NewBox] and [Cell.Lengths] reject any cell
// with non-zero off-diagonal terms with [ErrUnsupportedGeometry] instead of
// returning a wrong distance.
package geom
