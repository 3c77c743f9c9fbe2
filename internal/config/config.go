package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1e-4
	DefaultSteps       = 2000
	DefaultSpacing     = 0.02
	DefaultSmoothing   = 1.3
	DefaultRestDensity = 1000.0
	DefaultSoundSpeed  = 10.0
	DefaultResortEvery = 100
)

type Config struct {
	Scenario    string          `yaml:"scenario"`
	Backend     string          `yaml:"backend"`
	Kernel      string          `yaml:"kernel"`
	Dt          float64         `yaml:"dt"`
	Steps       int             `yaml:"steps"`
	ResortEvery int             `yaml:"resort_every"`
	Seed        int64           `yaml:"seed"`
	Domain      DomainConfig    `yaml:"domain"`
	Particles   ParticlesConfig `yaml:"particles"`
	Fluid       FluidConfig     `yaml:"fluid"`
}

type DomainConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	PeriodicX bool    `yaml:"periodic_x"`
}

type ParticlesConfig struct {
	Spacing         float64 `yaml:"spacing"`
	SmoothingFactor float64 `yaml:"smoothing_factor"`
	Ceiling         int     `yaml:"ceiling"`
}

type FluidConfig struct {
	RestDensity float64 `yaml:"rest_density"`
	SoundSpeed  float64 `yaml:"sound_speed"`
	Viscosity   float64 `yaml:"viscosity"`
	GravityY    float64 `yaml:"gravity_y"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    "relaxation",
		Backend:     "auto",
		Kernel:      "cubic",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		ResortEvery: DefaultResortEvery,
		Domain: DomainConfig{
			Width:     1.0,
			Height:    1.0,
			PeriodicX: true,
		},
		Particles: ParticlesConfig{
			Spacing:         DefaultSpacing,
			SmoothingFactor: DefaultSmoothing,
		},
		Fluid: FluidConfig{
			RestDensity: DefaultRestDensity,
			SoundSpeed:  DefaultSoundSpeed,
			Viscosity:   1e-3,
		},
	}
}

// SmoothingLength is the derived resolution: h = factor * spacing.
func (c *Config) SmoothingLength() float64 {
	return c.Particles.SmoothingFactor * c.Particles.Spacing
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Particles.Spacing <= 0 {
		return fmt.Errorf("config: particle spacing must be positive, got %g", c.Particles.Spacing)
	}
	if c.Particles.SmoothingFactor < 1 {
		return fmt.Errorf("config: smoothing factor must be >= 1, got %g", c.Particles.SmoothingFactor)
	}
	if c.Domain.Width <= 0 || c.Domain.Height <= 0 {
		return fmt.Errorf("config: domain extent must be positive, got %gx%g", c.Domain.Width, c.Domain.Height)
	}
	if c.Fluid.RestDensity <= 0 {
		return fmt.Errorf("config: rest density must be positive, got %g", c.Fluid.RestDensity)
	}
	if c.Fluid.SoundSpeed <= 0 {
		return fmt.Errorf("config: sound speed must be positive, got %g", c.Fluid.SoundSpeed)
	}
	if c.ResortEvery < 0 {
		return fmt.Errorf("config: resort cadence must not be negative, got %d", c.ResortEvery)
	}
	return nil
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
