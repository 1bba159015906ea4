package potential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/san-kum/pairenergy/internal/atoms"
)

// ErrNoEnergy indicates calculator output without a usable energy value.
var ErrNoEnergy = errors.New("potential: no numeric energy in calculator output")

// Calculator evaluates the total energy of a whole system.
type Calculator interface {
	Energy(ctx context.Context, sys atoms.System) (float64, error)
}

type CalculatorFunc func(ctx context.Context, sys atoms.System) (float64, error)

func (f CalculatorFunc) Energy(ctx context.Context, sys atoms.System) (float64, error) {
	return f(ctx, sys)
}

// ExecCalculator runs an external program once per evaluation. The attached
// system is written to the program's stdin as extended XYZ and the last
// numeric token on stdout is taken as the energy.
//
// An ExecCalculator keeps the last attached system and output, so it must
// not be shared between goroutines without external locking.
type ExecCalculator struct {
	Command []string
	Dir     string

	attached atoms.System
	output   string
}

func NewExecCalculator(command ...string) (*ExecCalculator, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("potential: empty calculator command")
	}
	return &ExecCalculator{Command: command}, nil
}

// Attach sets the system used by the next Run.
func (c *ExecCalculator) Attach(sys atoms.System) { c.attached = sys }

// Output returns the raw stdout of the last run.
func (c *ExecCalculator) Output() string { return c.output }

func (c *ExecCalculator) Energy(ctx context.Context, sys atoms.System) (float64, error) {
	c.Attach(sys)
	return c.Run(ctx)
}

// Run evaluates the currently attached system.
func (c *ExecCalculator) Run(ctx context.Context) (float64, error) {
	if c.attached == nil {
		return 0, errors.New("potential: no system attached")
	}

	var in bytes.Buffer
	if err := atoms.WriteXYZ(&in, c.attached); err != nil {
		return 0, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdin = &in
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return 0, fmt.Errorf("%s: %w: %s", c.Command[0], err, msg)
		}
		return 0, fmt.Errorf("%s: %w", c.Command[0], err)
	}

	c.output = stdout.String()
	return ParseEnergy(c.output)
}

// ParseEnergy returns the last finite number found in out.
func ParseEnergy(out string) (float64, error) {
	fields := strings.Fields(out)
	for i := len(fields) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: got %q", ErrNoEnergy, fields[i])
		}
		return v, nil
	}
	return 0, ErrNoEnergy
}
