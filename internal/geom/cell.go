package geom

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnsupportedGeometry indicates a cell the minimum-image rule cannot handle.
	ErrUnsupportedGeometry = errors.New("geom: unsupported geometry (only orthorhombic cells)")

	// ErrInvalidPeriodicity indicates a periodicity flag that is neither true nor false.
	ErrInvalidPeriodicity = errors.New("geom: invalid periodicity flag")
)

// orthoTol bounds the off-diagonal terms still treated as zero.
const orthoTol = 1e-10

// Cell holds the three cell vectors as rows.
type Cell [3]Vec3

// Orthorhombic returns a diagonal cell with the given axis lengths.
func Orthorhombic(a, b, c float64) Cell {
	return Cell{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// Cubic returns an orthorhombic cell with all three lengths equal to l.
func Cubic(l float64) Cell { return Orthorhombic(l, l, l) }

func (c Cell) Matrix() *mat.Dense {
	data := make([]float64, 0, 9)
	for _, row := range c {
		data = append(data, row[:]...)
	}
	return mat.NewDense(3, 3, data)
}

func (c Cell) Volume() float64 {
	return math.Abs(mat.Det(c.Matrix()))
}

func (c Cell) IsOrthorhombic() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j && math.Abs(c[i][j]) > orthoTol {
				return false
			}
		}
	}
	return true
}

// Lengths returns the diagonal of the cell. Non-orthorhombic cells are
// rejected rather than silently truncated to their diagonal.
func (c Cell) Lengths() (Vec3, error) {
	if !c.IsOrthorhombic() {
		return Vec3{}, fmt.Errorf("%w: cell %v has off-diagonal terms", ErrUnsupportedGeometry, c)
	}
	return Vec3{c[0][0], c[1][1], c[2][2]}, nil
}

// PBC holds the periodicity of each axis.
type PBC [3]bool

// FullPBC is periodic along every axis.
var FullPBC = PBC{true, true, true}

func (p PBC) Any() bool { return p[0] || p[1] || p[2] }

func (p PBC) String() string {
	s := make([]string, 3)
	for i, v := range p {
		if v {
			s[i] = "T"
		} else {
			s[i] = "F"
		}
	}
	return strings.Join(s, " ")
}

// ParsePBC parses exactly three periodicity flags. Anything other than a
// recognised true/false spelling is an error.
func ParsePBC(fields []string) (PBC, error) {
	var p PBC
	if len(fields) != 3 {
		return p, fmt.Errorf("%w: expected 3 flags, got %d", ErrInvalidPeriodicity, len(fields))
	}
	for i, f := range fields {
		switch strings.ToLower(f) {
		case "t", "true", "1":
			p[i] = true
		case "f", "false", "0":
			p[i] = false
		default:
			return p, fmt.Errorf("%w: %q on axis %d", ErrInvalidPeriodicity, f, i)
		}
	}
	return p, nil
}
