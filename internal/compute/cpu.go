package compute

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// minParallel is the smallest term count worth spreading over goroutines.
const minParallel = 64

// CPUBackend spreads terms cyclically over a fixed number of goroutines.
// Worker w owns slot w of a partial-sum slice and nothing else, so the
// reduction needs no locking. Partial sums are added in worker order, which
// makes the result reproducible for a given worker count.
type CPUBackend struct {
	workers  int
	partials sync.Pool // *[]float64 of length workers
}

// NewCPUBackend returns a backend with the given worker count; zero or a
// negative value selects runtime.NumCPU().
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	c := &CPUBackend{workers: workers}
	c.partials.New = func() any {
		s := make([]float64, workers)
		return &s
	}
	return c
}

func (c *CPUBackend) Name() string { return fmt.Sprintf("cpu(%d)", c.workers) }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Sum(n int, term func(k int) float64) float64 {
	if n < minParallel || c.workers == 1 {
		return sumSerial(n, term)
	}
	return c.sumParallel(n, term)
}

func (c *CPUBackend) sumParallel(n int, term func(k int) float64) float64 {
	workers := c.workers
	if workers > n {
		workers = n
	}

	// every slot below workers is overwritten before the reduction, so a
	// recycled slice needs no reset
	buf := c.partials.Get().(*[]float64)
	defer c.partials.Put(buf)
	partial := *buf

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			s := 0.0
			for k := worker; k < n; k += workers {
				s += term(k)
			}
			partial[worker] = s
		}(w)
	}

	wg.Wait()

	return floats.Sum(partial[:workers])
}
