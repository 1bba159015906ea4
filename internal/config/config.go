package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pairenergy/internal/energy"
	"github.com/san-kum/pairenergy/internal/potential"
)

const (
	DefaultPreset   = "reduced"
	DefaultLogLevel = "info"
	DefaultDataDir  = "runs"

	// AllFrames selects every frame of a trajectory.
	AllFrames = -1
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	System     string          `yaml:"system" toml:"system"`
	Frame      int             `yaml:"frame" toml:"frame"`
	Surface    string          `yaml:"surface,omitempty" toml:"surface,omitempty"`
	Components []int           `yaml:"components,omitempty" toml:"components,omitempty"`
	Frozen     []bool          `yaml:"frozen,omitempty" toml:"frozen,omitempty"`
	Workers    int             `yaml:"workers" toml:"workers"`
	LogLevel   string          `yaml:"log_level" toml:"log_level"`
	DataDir    string          `yaml:"data_dir" toml:"data_dir"`
	Potential  PotentialConfig `yaml:"potential" toml:"potential"`
}

// PotentialConfig selects one of the potential kinds. For "scalar", Preset
// gives the starting parameters and non-zero Epsilon, Sigma and Cutoff
// override them. For "composite", Matrix is used verbatim when present,
// otherwise the presets named in Mix are combined per component. For
// "external", Command is run once per evaluation.
type PotentialConfig struct {
	Kind    string           `yaml:"kind" toml:"kind"`
	Preset  string           `yaml:"preset,omitempty" toml:"preset,omitempty"`
	Epsilon float64          `yaml:"epsilon,omitempty" toml:"epsilon,omitempty"`
	Sigma   float64          `yaml:"sigma,omitempty" toml:"sigma,omitempty"`
	Cutoff  float64          `yaml:"cutoff,omitempty" toml:"cutoff,omitempty"`
	Mix     []string         `yaml:"mix,omitempty" toml:"mix,omitempty"`
	Matrix  [][]potential.LJ `yaml:"matrix,omitempty" toml:"matrix,omitempty"`
	Command []string         `yaml:"command,omitempty" toml:"command,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Frame:    0,
		LogLevel: DefaultLogLevel,
		DataDir:  DefaultDataDir,
		Potential: PotentialConfig{
			Kind:   potential.KindScalar.String(),
			Preset: DefaultPreset,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load decodes a YAML or, for a .toml extension, TOML file. Fields left
// empty take their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		// go-toml builds a fresh value, so defaults are filled in afterwards.
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	p := &c.Potential
	if p.Kind == "" {
		p.Kind = potential.KindScalar.String()
	}
	if p.Kind == potential.KindScalar.String() && p.Preset == "" && p.Epsilon == 0 && p.Sigma == 0 {
		p.Preset = DefaultPreset
	}
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Frame < AllFrames {
		return fmt.Errorf("%w: frame %d", ErrInvalid, c.Frame)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if len(c.Components) != len(c.Frozen) {
		return fmt.Errorf("%w: %d components but %d frozen flags", ErrInvalid, len(c.Components), len(c.Frozen))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}

	switch c.Potential.Kind {
	case potential.KindScalar.String():
		if c.Potential.Preset != "" {
			if _, ok := GetPreset(c.Potential.Preset); !ok {
				return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Potential.Preset)
			}
		}
	case potential.KindComposite.String():
		if len(c.Potential.Matrix) == 0 && len(c.Potential.Mix) == 0 {
			return fmt.Errorf("%w: composite potential needs a matrix or a mix", ErrInvalid)
		}
		for _, name := range c.Potential.Mix {
			if _, ok := GetPreset(name); !ok {
				return fmt.Errorf("%w: unknown preset %q in mix", ErrInvalid, name)
			}
		}
	case potential.KindExternal.String():
		if len(c.Potential.Command) == 0 {
			return fmt.Errorf("%w: external potential needs a command", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown potential kind %q", ErrInvalid, c.Potential.Kind)
	}
	return nil
}

// Scalar resolves the scalar parameter set from the preset and overrides.
func (p PotentialConfig) Scalar() (potential.LJ, error) {
	var lj potential.LJ
	if p.Preset != "" {
		preset, ok := GetPreset(p.Preset)
		if !ok {
			return lj, fmt.Errorf("%w: unknown preset %q", ErrInvalid, p.Preset)
		}
		lj = preset
	}
	if p.Epsilon != 0 {
		lj.Epsilon = p.Epsilon
	}
	if p.Sigma != 0 {
		lj.Sigma = p.Sigma
	}
	if p.Cutoff != 0 {
		lj.Cutoff = p.Cutoff
	}
	return lj, lj.Validate()
}

func (c *Config) BuildPotential() (potential.Potential, error) {
	p := c.Potential
	switch p.Kind {
	case potential.KindScalar.String():
		lj, err := p.Scalar()
		if err != nil {
			return nil, err
		}
		return potential.NewScalar(lj)

	case potential.KindComposite.String():
		if len(p.Matrix) > 0 {
			return potential.NewComposite(p.Matrix)
		}
		per := make([]potential.LJ, len(p.Mix))
		for i, name := range p.Mix {
			lj, ok := GetPreset(name)
			if !ok {
				return nil, fmt.Errorf("%w: unknown preset %q in mix", ErrInvalid, name)
			}
			per[i] = lj
		}
		return potential.Mix(per)

	case potential.KindExternal.String():
		calc, err := potential.NewExecCalculator(p.Command...)
		if err != nil {
			return nil, err
		}
		return potential.NewExternal(calc)
	}
	return nil, fmt.Errorf("%w: unknown potential kind %q", ErrInvalid, p.Kind)
}

// BuildPartition returns the whole-system partition when no components are
// configured.
func (c *Config) BuildPartition() energy.Partition {
	if len(c.Components) == 0 && len(c.Frozen) == 0 {
		return energy.Whole()
	}
	return energy.Partition{
		Counts: append([]int(nil), c.Components...),
		Frozen: append([]bool(nil), c.Frozen...),
	}
}
