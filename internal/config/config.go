// Package config defines the yaml configuration record for the rgflow
// CLI. Every numerical knob the core needs is explicit here; the
// default constants below are the only defaults in the repository and
// are part of the tool's documented interface.
package config

import (
	"os"

	"github.com/san-kum/rgflow/internal/fixedpoint"
	"github.com/san-kum/rgflow/internal/flow"
	"github.com/san-kum/rgflow/internal/session"
	"gopkg.in/yaml.v3"
)

// Documented defaults. Changing any of these changes results and is a
// versioned, user-visible change.
const (
	DefaultMuStart   = 1.0
	DefaultMuEnd     = 100.0
	DefaultTol       = 1e-8
	DefaultMinStep   = 1e-10
	DefaultBlowUp    = 1e6
	DefaultMaxSteps  = 100000
	DefaultBound     = 2.0 // search cuboid [-Bound, Bound]^3
	DefaultSpacing   = 0.5
	DefaultNewtonTol = 1e-10
	DefaultMaxIter   = 50
	DefaultMergeTol  = 1e-6
	DefaultEpsilon   = 1e-6 // stability noise threshold
)

type Config struct {
	Params    flow.Params     `yaml:"params"`
	Integrate IntegrateConfig `yaml:"integrate"`
	Search    SearchConfig    `yaml:"search"`
	Epsilon   float64         `yaml:"epsilon"`
}

type IntegrateConfig struct {
	MuStart  float64       `yaml:"mu_start"`
	MuEnd    float64       `yaml:"mu_end"`
	Init     flow.Coupling `yaml:"init"`
	Tol      float64       `yaml:"tol"`
	MinStep  float64       `yaml:"min_step"`
	MaxStep  float64       `yaml:"max_step"`
	InitStep float64       `yaml:"init_step"`
	BlowUp   float64       `yaml:"blow_up"`
	MaxSteps int           `yaml:"max_steps"`
}

type SearchConfig struct {
	Min      flow.Coupling   `yaml:"min"`
	Max      flow.Coupling   `yaml:"max"`
	Spacing  float64         `yaml:"spacing"`
	Seeds    []flow.Coupling `yaml:"seeds"`
	MaxIter  int             `yaml:"max_iter"`
	Tol      float64         `yaml:"tol"`
	MergeTol float64         `yaml:"merge_tol"`
}

func Default() *Config {
	return &Config{
		Params: flow.Params{A: 1, B: 1, C: 1, D: 1, SA: 1, SB: 1},
		Integrate: IntegrateConfig{
			MuStart:  DefaultMuStart,
			MuEnd:    DefaultMuEnd,
			Init:     flow.Coupling{0.5, 0.5, 0.5},
			Tol:      DefaultTol,
			MinStep:  DefaultMinStep,
			BlowUp:   DefaultBlowUp,
			MaxSteps: DefaultMaxSteps,
		},
		Search: SearchConfig{
			Min:      flow.Coupling{-DefaultBound, -DefaultBound, -DefaultBound},
			Max:      flow.Coupling{DefaultBound, DefaultBound, DefaultBound},
			Spacing:  DefaultSpacing,
			MaxIter:  DefaultMaxIter,
			Tol:      DefaultNewtonTol,
			MergeTol: DefaultMergeTol,
		},
		Epsilon: DefaultEpsilon,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
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

// ToIntegrate converts the yaml record into the session's config.
func (c *Config) ToIntegrate() session.IntegrateConfig {
	return session.IntegrateConfig{
		MuStart:  c.Integrate.MuStart,
		MuEnd:    c.Integrate.MuEnd,
		Tol:      c.Integrate.Tol,
		MinStep:  c.Integrate.MinStep,
		MaxStep:  c.Integrate.MaxStep,
		InitStep: c.Integrate.InitStep,
		BlowUp:   c.Integrate.BlowUp,
		MaxSteps: c.Integrate.MaxSteps,
	}
}

// ToSearch converts the yaml record into the finder's config.
func (c *Config) ToSearch() fixedpoint.Config {
	return fixedpoint.Config{
		Min:      c.Search.Min,
		Max:      c.Search.Max,
		Spacing:  c.Search.Spacing,
		Seeds:    c.Search.Seeds,
		MaxIter:  c.Search.MaxIter,
		Tol:      c.Search.Tol,
		MergeTol: c.Search.MergeTol,
	}
}
