package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps     = 100
	DefaultInterval  = 0.01
	DefaultTheta     = 0.05
	DefaultAmplitude = 0.3
	DefaultFrequency = 1.2
)

type Config struct {
	Steps     int             `yaml:"steps"`
	Interval  float64         `yaml:"interval"`
	Cart      CartConfig      `yaml:"cart"`
	InitState InitStateConfig `yaml:"init_state"`
	Force     ForceConfig     `yaml:"force"`
	Identify  []string        `yaml:"identify"`
}

type CartConfig struct {
	CartMass   float64 `yaml:"cart_mass"`
	PoleMass   float64 `yaml:"pole_mass"`
	PoleLength float64 `yaml:"pole_length"`
	Gravity    float64 `yaml:"gravity"`
}

type InitStateConfig struct {
	Pos   float64 `yaml:"pos"`
	Theta float64 `yaml:"theta"`
	Vel   float64 `yaml:"vel"`
	Omega float64 `yaml:"omega"`
}

// ForceConfig describes the sinusoidal excitation applied to the cart.
type ForceConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

func DefaultConfig() *Config {
	return &Config{
		Steps:    DefaultSteps,
		Interval: DefaultInterval,
		Cart: CartConfig{
			CartMass:   1.0,
			PoleMass:   0.1,
			PoleLength: 0.5,
			Gravity:    9.81,
		},
		InitState: InitStateConfig{
			Theta: DefaultTheta,
		},
		Force: ForceConfig{
			Amplitude: DefaultAmplitude,
			Frequency: DefaultFrequency,
		},
		Identify: []string{"mp"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// constantNames are the identifiable parameters, in the symbolic declaration
// order mc, mp, l, g.
var constantNames = []string{"mc", "mp", "l", "g"}

func (c *Config) Validate() error {
	if c.Steps < 2 {
		return fmt.Errorf("steps must be at least 2, got %d", c.Steps)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %f", c.Interval)
	}
	if c.Cart.CartMass <= 0 || c.Cart.PoleMass <= 0 {
		return fmt.Errorf("masses must be positive, got cart %f pole %f", c.Cart.CartMass, c.Cart.PoleMass)
	}
	if c.Cart.PoleLength <= 0 {
		return fmt.Errorf("pole length must be positive, got %f", c.Cart.PoleLength)
	}
	for _, name := range c.Identify {
		if !isConstantName(name) {
			return fmt.Errorf("unknown constant %q in identify list (valid: %v)", name, constantNames)
		}
	}
	return nil
}

func isConstantName(name string) bool {
	for _, known := range constantNames {
		if name == known {
			return true
		}
	}
	return false
}

// InitialState returns the initial state in the model's layout:
// pos, theta, vel, omega.
func (c *Config) InitialState() []float64 {
	return []float64{c.InitState.Pos, c.InitState.Theta, c.InitState.Vel, c.InitState.Omega}
}

// FixedConstants maps every parameter not named in Identify to its configured
// value, keyed by symbolic name.
func (c *Config) FixedConstants() map[string]float64 {
	all := map[string]float64{
		"mc": c.Cart.CartMass,
		"mp": c.Cart.PoleMass,
		"l":  c.Cart.PoleLength,
		"g":  c.Cart.Gravity,
	}
	for _, name := range c.Identify {
		delete(all, name)
	}
	return all
}
