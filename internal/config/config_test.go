package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Compile.Workers != 0 {
		t.Errorf("expected workers 0 (auto), got %d", cfg.Compile.Workers)
	}
	if cfg.Compile.Deterministic {
		t.Error("expected deterministic to be false by default")
	}

	if !cfg.Bounce.Enabled {
		t.Error("expected bounce to be enabled by default")
	}
	if cfg.Bounce.ColorScale != 0 {
		t.Errorf("expected bounce color scale 0, got %f", cfg.Bounce.ColorScale)
	}
	if cfg.Bounce.PatchSize != 64 {
		t.Errorf("expected patch size 64, got %f", cfg.Bounce.PatchSize)
	}
	if !cfg.Bounce.VisApprox {
		t.Error("expected vis approx to be enabled by default")
	}

	if cfg.Sun.Samples != 64 {
		t.Errorf("expected sun samples 64, got %d", cfg.Sun.Samples)
	}
	if cfg.Sun.AngleScale != 0.5 {
		t.Errorf("expected angle scale 0.5, got %f", cfg.Sun.AngleScale)
	}

	if cfg.Surface.SubdivideSize != 128 {
		t.Errorf("expected subdivide size 128, got %f", cfg.Surface.SubdivideSize)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bsplight.yaml")

	yamlContent := `
compile:
  workers: 8
  deterministic: true
bounce:
  color_scale: 0.75
  patch_size: 32
sun:
  samples: 256
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile() error: %v", err)
	}

	if cfg.Compile.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Compile.Workers)
	}
	if !cfg.Compile.Deterministic {
		t.Error("expected deterministic to be true")
	}
	if cfg.Bounce.ColorScale != 0.75 {
		t.Errorf("expected color scale 0.75, got %f", cfg.Bounce.ColorScale)
	}
	if cfg.Bounce.PatchSize != 32 {
		t.Errorf("expected patch size 32, got %f", cfg.Bounce.PatchSize)
	}
	if cfg.Sun.Samples != 256 {
		t.Errorf("expected sun samples 256, got %d", cfg.Sun.Samples)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	// Untouched settings keep their defaults.
	if !cfg.Bounce.Enabled {
		t.Error("expected bounce enabled to survive partial file")
	}
	if cfg.Surface.SubdivideSize != 128 {
		t.Errorf("expected subdivide size 128, got %f", cfg.Surface.SubdivideSize)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
