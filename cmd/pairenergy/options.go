package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/compute"
	"github.com/san-kum/pairenergy/internal/config"
	"github.com/san-kum/pairenergy/internal/energy"
	"github.com/san-kum/pairenergy/internal/potential"
)

// resolveConfig loads the config file, if any, and applies the flags that
// were set explicitly on cmd. A positional system path wins over both.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.System = args[0]
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("frame") {
		cfg.Frame = frame
	}
	if flags.Changed("surface") {
		cfg.Surface = surface
	}
	if flags.Changed("components") {
		cfg.Components = components
	}
	if flags.Changed("frozen") {
		cfg.Frozen = frozen
	}

	p := &cfg.Potential
	if flags.Changed("potential") {
		p.Kind = potKind
	}
	if flags.Changed("preset") {
		p.Preset = preset
	}
	if flags.Changed("epsilon") {
		p.Epsilon = epsilon
	}
	if flags.Changed("sigma") {
		p.Sigma = sigma
	}
	if flags.Changed("cutoff") {
		p.Cutoff = cutoff
	}
	if flags.Changed("mix") {
		p.Mix = mix
	}
	if flags.Changed("command") {
		p.Command = command
	}

	// a component list without flags means every component is free
	if len(cfg.Components) > 0 && len(cfg.Frozen) == 0 {
		cfg.Frozen = make([]bool, len(cfg.Components))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session bundles everything a system command needs.
type session struct {
	cfg     *config.Config
	log     *Logger
	frames  []*atoms.Atoms
	indices []int
	surface *atoms.Atoms
	pot     potential.Potential
	part    energy.Partition
}

func (s *session) evaluator(backend compute.Backend) *energy.Evaluator {
	return energy.New(energy.WithBackend(backend), energy.WithLogger(s.log))
}

// surfaceSystem avoids handing a typed nil to the evaluator.
func (s *session) surfaceSystem() atoms.System {
	if s.surface == nil {
		return nil
	}
	return s.surface
}

func openSession(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	if cfg.System == "" {
		return nil, errors.New("no system given: pass an xyz file or set system in the config")
	}
	log := NewLogger(cfg.LogLevel)

	frames, err := atoms.ReadXYZFile(cfg.System)
	if err != nil {
		return nil, err
	}
	indices, err := selectFrames(len(frames), cfg.Frame)
	if err != nil {
		return nil, err
	}
	log.Debugf("read %d frames from %s, using %d", len(frames), cfg.System, len(indices))

	s := &session{cfg: cfg, log: log, frames: frames, indices: indices, part: cfg.BuildPartition()}

	if cfg.Surface != "" {
		surf, err := atoms.ReadXYZFile(cfg.Surface)
		if err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
		if len(surf) == 0 {
			return nil, fmt.Errorf("surface: %s has no frames", cfg.Surface)
		}
		s.surface = surf[0]
		log.Debugf("surface %s has %d particles", cfg.Surface, s.surface.Len())
	}

	s.pot, err = cfg.BuildPotential()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func selectFrames(n, frame int) ([]int, error) {
	if n == 0 {
		return nil, errors.New("system file has no frames")
	}
	if frame == config.AllFrames {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	if frame < 0 || frame >= n {
		return nil, fmt.Errorf("frame %d out of range, file has %d frames", frame, n)
	}
	return []int{frame}, nil
}
