package config

import (
	"sort"

	"github.com/san-kum/rgflow/internal/flow"
)

// Presets are named coefficient sets for exploration. None of them is
// canonical; the underlying theory fixes no coefficient values.
var Presets = map[string]*Config{
	// E=F=c=0 splits the three equations; every root is known in
	// closed form. The reference scenario for tests and demos.
	"decoupled": preset(flow.Params{A: 1, B: 1, C: 1, D: 1, SA: 1, SB: 1}),

	// Weak mixing around the decoupled system.
	"weak": preset(flow.Params{A: 1, B: 1, E: 0.1, C: 1, D: 1, F: 0.1, SA: 1, SB: 1, SC: 0.1}),

	// All nine coefficients equal; strong cross-coupling.
	"symmetric": preset(flow.Params{A: 1, B: 1, E: 1, C: 1, D: 1, F: 1, SA: 1, SB: 1, SC: 1}),
}

func preset(p flow.Params) *Config {
	cfg := Default()
	cfg.Params = p
	return cfg
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
