package energy_test

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/geom"
	"github.com/san-kum/pairenergy/internal/potential"
)

var unit = potential.LJ{Epsilon: 1, Sigma: 1}

// lattice places n particles on a jittered cubic grid with spacing 1.2, so
// no two particles come closer than 1.0.
func lattice(n int, seed int64) *atoms.Atoms {
	k := int(math.Ceil(math.Cbrt(float64(n))))
	l := 1.2 * float64(k)
	rng := rand.New(rand.NewSource(seed))

	symbols := make([]string, n)
	positions := make([]geom.Vec3, n)
	for i := range positions {
		x, y, z := i%k, (i/k)%k, i/(k*k)
		jitter := func() float64 { return (rng.Float64() - 0.5) * 0.2 }
		positions[i] = geom.Vec3{
			1.2*float64(x) + jitter(),
			1.2*float64(y) + jitter(),
			1.2*float64(z) + jitter(),
		}
		symbols[i] = "Ar"
	}
	a, err := atoms.New(symbols, positions, geom.Cubic(l), geom.FullPBC)
	if err != nil {
		panic(err)
	}
	return a
}

// slab is a flat layer of particles between two lattice planes.
func slab(n int, l float64) *atoms.Atoms {
	symbols := make([]string, n)
	positions := make([]geom.Vec3, n)
	for i := range positions {
		symbols[i] = "Pt"
		positions[i] = geom.Vec3{float64(i) * l / float64(n), 0.5 * l, 0.75 * l}
	}
	a, _ := atoms.New(symbols, positions, geom.Cubic(l), geom.FullPBC)
	return a
}

func scalar() *potential.Scalar {
	s, err := potential.NewScalar(unit)
	if err != nil {
		panic(err)
	}
	return s
}

func mixed(c int) *potential.Composite {
	per := make([]potential.LJ, c)
	for i := range per {
		per[i] = potential.LJ{Epsilon: 0.5 + 0.25*float64(i), Sigma: 0.9 + 0.05*float64(i)}
	}
	m, err := potential.Mix(per)
	if err != nil {
		panic(err)
	}
	return m
}

// countingSystem records how often positions are read.
type countingSystem struct {
	*atoms.Atoms
	mu    sync.Mutex
	reads int
}

func (c *countingSystem) Position(i int) geom.Vec3 {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Atoms.Position(i)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) add(level, format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, v...))
}

func (r *recordingLogger) Debugf(format string, v ...any) { r.add("DEBUG", format, v...) }
func (r *recordingLogger) Infof(format string, v ...any)  { r.add("INFO", format, v...) }
func (r *recordingLogger) Warnf(format string, v ...any)  { r.add("WARN", format, v...) }
func (r *recordingLogger) Errorf(format string, v ...any) { r.add("ERROR", format, v...) }
