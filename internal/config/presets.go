package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/tensegrity/internal/structure"
)

// Presets are the canonical run setups: a structure builder paired with
// stepping parameters known to be stable for it.
var Presets = map[string]*Config{
	"prism": {
		Structure: "prism", Dt: 0.001, Steps: 5000, Gravity: DefaultGravity,
		Perturbation: []float64{1e-4, 1e-4, 0},
		DriftWindow:  10,
	},
	"prism-static": {
		Structure: "prism", Dt: 0.001, Steps: 2000, Gravity: DefaultGravity,
		DriftWindow: 10,
	},
	"pendulum": {
		Structure: "pendulum", Dt: 0.001, Steps: 2000, Gravity: DefaultGravity,
		DriftTolerance: 0.05, DriftWindow: 10,
	},
	"spring": {
		Structure: "spring", Dt: 0.0005, Steps: 10000, Gravity: 0,
		DriftTolerance: 0.01, DriftWindow: 10,
	},
}

var builders = map[string]func() *structure.Structure{
	"prism":    func() *structure.Structure { return structure.Prism(1.0, 1.0) },
	"pendulum": structure.PendulumDrop,
	"spring":   func() *structure.Structure { return structure.SpringPair(1.0, 100) },
}

func buildPreset(name string) (*structure.Structure, error) {
	fn, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown structure %q (available: %v)", name, ListStructures())
	}
	return fn(), nil
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListStructures() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
