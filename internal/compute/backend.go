package compute

// Backend runs order-independent reductions. Sum evaluates term(k) for every
// k in [0, n) and returns the total; terms must not write shared state.
type Backend interface {
	Name() string
	Workers() int
	Sum(n int, term func(k int) float64) float64
}

// Default returns a CPU backend using every available core.
func Default() Backend {
	return NewCPUBackend(0)
}

// SerialBackend evaluates every term on the calling goroutine.
type SerialBackend struct{}

func NewSerialBackend() SerialBackend { return SerialBackend{} }

func (SerialBackend) Name() string { return "serial" }
func (SerialBackend) Workers() int { return 1 }

func (SerialBackend) Sum(n int, term func(k int) float64) float64 {
	return sumSerial(n, term)
}

func sumSerial(n int, term func(k int) float64) float64 {
	s := 0.0
	for k := 0; k < n; k++ {
		s += term(k)
	}
	return s
}
