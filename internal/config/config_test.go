package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/brewguide/internal/narration"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Narration.WordsPerSecond != narration.DefaultWordsPerSecond {
		t.Fatalf("expected %v words/s, got %v", narration.DefaultWordsPerSecond, cfg.Narration.WordsPerSecond)
	}
	if cfg.Narration.Thresholds.OptimalMax != 0.85 || cfg.Narration.Thresholds.Max != 1.0 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Narration.Thresholds)
	}
	if cfg.Lint.TotalTolerance != 2*time.Second || !cfg.Lint.PhraseRules || cfg.Lint.Workers != 4 {
		t.Fatalf("unexpected lint defaults: %+v", cfg.Lint)
	}
	if cfg.Guide.SeekStep != 5*time.Second || cfg.Guide.TickInterval != 250*time.Millisecond {
		t.Fatalf("unexpected guide defaults: %+v", cfg.Guide)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if _, err := narration.New(cfg.NarrationOptions()...); err != nil {
		t.Fatalf("default narration options rejected: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brewguide.yaml")
	body := `
log:
  level: verbose
recipes:
  path: ./recipes
narration:
  words_per_second: 3
  thresholds:
    optimal_max: 0.8
lint:
  total_tolerance: 5s
  phrase_rules: false
guide:
  seek_step: 10s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "verbose" || cfg.Recipes.Path != "./recipes" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.Narration.WordsPerSecond != 3 || cfg.Narration.Thresholds.OptimalMax != 0.8 {
		t.Fatalf("narration not loaded: %+v", cfg.Narration)
	}
	if cfg.Narration.Thresholds.Min != 0.30 {
		t.Fatalf("unset threshold lost its default: %+v", cfg.Narration.Thresholds)
	}
	if cfg.Lint.TotalTolerance != 5*time.Second || cfg.Lint.PhraseRules {
		t.Fatalf("lint not loaded: %+v", cfg.Lint)
	}
	if cfg.Guide.SeekStep != 10*time.Second {
		t.Fatalf("guide not loaded: %+v", cfg.Guide)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BREWGUIDE_NARRATION_WORDS_PER_SECOND", "2")
	t.Setenv("BREWGUIDE_GUIDE_ALMOST_DONE", "8s")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Narration.WordsPerSecond != 2 {
		t.Fatalf("expected env override to 2, got %v", cfg.Narration.WordsPerSecond)
	}
	if cfg.Guide.AlmostDone != 8*time.Second {
		t.Fatalf("expected 8s, got %s", cfg.Guide.AlmostDone)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(path, []byte("narration:\n  thresholds:\n    min: 0.9\n"), 0o644)
	_, err := Load(viper.New(), path)
	if err == nil || !strings.Contains(err.Error(), "narration") {
		t.Fatalf("expected narration validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.Narration.WordsPerSecond = 0 }},
		{"negative tolerance", func(c *Config) { c.Lint.TotalTolerance = -time.Second }},
		{"no workers", func(c *Config) { c.Lint.Workers = 0 }},
		{"zero tick", func(c *Config) { c.Guide.TickInterval = 0 }},
		{"negative reminder", func(c *Config) { c.Guide.PauseReminder = -time.Second }},
		{"zero seek", func(c *Config) { c.Guide.SeekStep = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
