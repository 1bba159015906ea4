package config

import (
	"sort"

	"github.com/san-kum/pairenergy/internal/potential"
)

// Presets are Lennard-Jones parameters for the noble gases in eV and
// angstrom, with a cutoff of 2.5 sigma, plus the reduced unit set.
var Presets = map[string]potential.LJ{
	"neon":    {Epsilon: 0.00307, Sigma: 2.74, Cutoff: 6.85},
	"argon":   {Epsilon: 0.0104, Sigma: 3.40, Cutoff: 8.50},
	"krypton": {Epsilon: 0.0140, Sigma: 3.65, Cutoff: 9.13},
	"xenon":   {Epsilon: 0.0194, Sigma: 3.98, Cutoff: 9.95},
	"reduced": {Epsilon: 1, Sigma: 1, Cutoff: 2.5},
}

func GetPreset(name string) (potential.LJ, bool) {
	lj, ok := Presets[name]
	return lj, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
