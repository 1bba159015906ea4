package energy

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMismatch indicates counts, frozen mask and potential that
	// disagree in length or dimension.
	ErrConfigMismatch = errors.New("energy: configuration mismatch")

	// ErrBackend indicates a failed external calculator evaluation.
	ErrBackend = errors.New("energy: external calculator failed")

	// ErrUnknownPotential indicates a nil or unrecognised potential.
	ErrUnknownPotential = errors.New("energy: unknown potential")

	// ErrNotDecomposable indicates a query that needs per-pair energies on a
	// potential that only has a whole-system form.
	ErrNotDecomposable = errors.New("energy: potential cannot be decomposed")
)

// MismatchError names the two quantities that disagreed.
type MismatchError struct {
	What    string
	Got     int
	Against string
	Want    int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: %s is %d but %s is %d", ErrConfigMismatch, e.What, e.Got, e.Against, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrConfigMismatch
}

// BackendError wraps the failure of an external calculator. Both ErrBackend
// and the cause are reachable through errors.Is.
type BackendError struct {
	Particles int
	Err       error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%v (%d particles): %v", ErrBackend, e.Particles, e.Err)
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackend, e.Err}
}
