// Package config handles light compiler configuration loading and
// management.
package config

// Config holds all compiler settings.
type Config struct {
	Compile CompileConfig `yaml:"compile"`
	Bounce  BounceConfig  `yaml:"bounce"`
	Sun     SunConfig     `yaml:"sun"`
	Surface SurfaceConfig `yaml:"surface"`
	Logging LoggingConfig `yaml:"logging"`
}

// CompileConfig holds run-level settings.
type CompileConfig struct {
	// Workers is the bounce-phase thread count; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Seed feeds the jitter/penumbra random source.
	Seed int64 `yaml:"seed"`
	// Deterministic sorts the finished bounce-light list by face number
	// so repeated compiles produce identical output.
	Deterministic bool `yaml:"deterministic"`
}

// BounceConfig holds one-bounce radiosity settings.
type BounceConfig struct {
	Enabled bool `yaml:"enabled"`
	// ColorScale blends emitted bounce color between neutral gray (0)
	// and the surface's average texture color (1).
	ColorScale float64 `yaml:"color_scale"`
	// PatchSize is the maximum extent of a radiosity sampling patch.
	PatchSize float64 `yaml:"patch_size"`
	// VisApprox enables conservative visibility bounds on bounce lights.
	VisApprox bool `yaml:"vis_approx"`
}

// SunConfig holds sun and sky dome settings. Worldspawn keys override
// these per map.
type SunConfig struct {
	// Samples sets penumbra sample count and sky dome density.
	Samples int `yaml:"samples"`
	// AngleScale is the global surface-angle dimming factor in [0,1].
	AngleScale float64 `yaml:"angle_scale"`
	// AddMinLight folds the minlight formula into jitter normalization.
	AddMinLight bool `yaml:"add_min_light"`
}

// SurfaceConfig holds emissive-surface light settings.
type SurfaceConfig struct {
	// SubdivideSize is the grid spacing of generated surface lights.
	SubdivideSize float64 `yaml:"subdivide_size"`
	// DumpFile, when set, receives the generated surface-light entities
	// as editable map text for debugging.
	DumpFile string `yaml:"dump_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			Workers:       0,
			Seed:          0,
			Deterministic: false,
		},
		Bounce: BounceConfig{
			Enabled:    true,
			ColorScale: 0,
			PatchSize:  64,
			VisApprox:  true,
		},
		Sun: SunConfig{
			Samples:     64,
			AngleScale:  0.5,
			AddMinLight: false,
		},
		Surface: SurfaceConfig{
			SubdivideSize: 128,
			DumpFile:      "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
