package config

var Presets = map[string]*Config{
	"relaxation": {
		Scenario: "relaxation", Kernel: "cubic", Dt: 1e-4, Steps: 2000, ResortEvery: 100,
		Domain:    DomainConfig{Width: 1.0, Height: 1.0, PeriodicX: true},
		Particles: ParticlesConfig{Spacing: 0.02, SmoothingFactor: 1.3},
		Fluid:     FluidConfig{RestDensity: 1000, SoundSpeed: 10, Viscosity: 1e-3},
	},
	"column": {
		Scenario: "column", Kernel: "cubic", Dt: 5e-5, Steps: 5000, ResortEvery: 100,
		Domain:    DomainConfig{Width: 1.0, Height: 2.0, PeriodicX: true},
		Particles: ParticlesConfig{Spacing: 0.02, SmoothingFactor: 1.3},
		Fluid:     FluidConfig{RestDensity: 1000, SoundSpeed: 20, Viscosity: 1e-3, GravityY: -9.81},
	},
	"shear": {
		Scenario: "shear", Kernel: "wendland", Dt: 1e-4, Steps: 4000, ResortEvery: 50,
		Domain:    DomainConfig{Width: 1.0, Height: 1.0, PeriodicX: true},
		Particles: ParticlesConfig{Spacing: 0.025, SmoothingFactor: 1.3},
		Fluid:     FluidConfig{RestDensity: 1000, SoundSpeed: 10, Viscosity: 0.01},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
