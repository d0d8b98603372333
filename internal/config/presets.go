package config

import "sort"

var Presets = map[string]*Config{
	"gentle": {
		Steps: 100, Interval: 0.01,
		Cart:      CartConfig{CartMass: 1.0, PoleMass: 0.1, PoleLength: 0.5, Gravity: 9.81},
		InitState: InitStateConfig{Theta: 0.05},
		Force:     ForceConfig{Amplitude: 0.2, Frequency: 1.0},
		Identify:  []string{"mp"},
	},
	"swing": {
		Steps: 200, Interval: 0.01,
		Cart:      CartConfig{CartMass: 1.0, PoleMass: 0.1, PoleLength: 0.5, Gravity: 9.81},
		InitState: InitStateConfig{Theta: 0.8},
		Force:     ForceConfig{Amplitude: 1.5, Frequency: 0.8},
		Identify:  []string{"mp"},
	},
	"heavy": {
		Steps: 150, Interval: 0.01,
		Cart:      CartConfig{CartMass: 2.0, PoleMass: 0.5, PoleLength: 1.0, Gravity: 9.81},
		InitState: InitStateConfig{Theta: 0.1},
		Force:     ForceConfig{Amplitude: 0.8, Frequency: 0.6},
		Identify:  []string{"mp", "l"},
	},
	"fine-grid": {
		Steps: 500, Interval: 0.002,
		Cart:      CartConfig{CartMass: 1.0, PoleMass: 0.1, PoleLength: 0.5, Gravity: 9.81},
		InitState: InitStateConfig{Theta: 0.05},
		Force:     ForceConfig{Amplitude: 0.3, Frequency: 1.2},
		Identify:  []string{"mp"},
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
// Callers may modify the result without affecting the preset table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Identify = append([]string(nil), cfg.Identify...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
