// Package config loads brewguide settings from defaults, an optional YAML
// file and BREWGUIDE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/brewguide/internal/narration"
)

// EnvPrefix prefixes every environment override, e.g.
// BREWGUIDE_NARRATION_WORDS_PER_SECOND.
const EnvPrefix = "BREWGUIDE"

// DefaultFile is the config file looked up in the working directory when
// no path is given.
const DefaultFile = "brewguide.yaml"

// Config holds every setting.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Recipes   RecipesConfig   `mapstructure:"recipes"`
	Narration NarrationConfig `mapstructure:"narration"`
	Lint      LintConfig      `mapstructure:"lint"`
	Guide     GuideConfig     `mapstructure:"guide"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // off, normal, verbose
	File  string `mapstructure:"file"`  // "stderr" logs to the console
}

type RecipesConfig struct {
	Path string `mapstructure:"path"` // file or directory; empty uses built-ins
}

type NarrationConfig struct {
	WordsPerSecond float64          `mapstructure:"words_per_second"`
	Thresholds     ThresholdsConfig `mapstructure:"thresholds"`
}

type ThresholdsConfig struct {
	Min        float64 `mapstructure:"min"`
	OptimalMin float64 `mapstructure:"optimal_min"`
	OptimalMax float64 `mapstructure:"optimal_max"`
	TightMax   float64 `mapstructure:"tight_max"`
	Max        float64 `mapstructure:"max"`
}

type LintConfig struct {
	TotalTolerance time.Duration `mapstructure:"total_tolerance"`
	PhraseRules    bool          `mapstructure:"phrase_rules"`
	Workers        int           `mapstructure:"workers"`
}

type GuideConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	AlmostDone    time.Duration `mapstructure:"almost_done"`
	PauseReminder time.Duration `mapstructure:"pause_reminder"`
	SeekStep      time.Duration `mapstructure:"seek_step"`
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	th := narration.DefaultThresholds()

	v.SetDefault("log.level", "normal")
	v.SetDefault("log.file", ".brewguide-logs/brewguide.log")
	v.SetDefault("recipes.path", "")
	v.SetDefault("narration.words_per_second", narration.DefaultWordsPerSecond)
	v.SetDefault("narration.thresholds.min", th.Min)
	v.SetDefault("narration.thresholds.optimal_min", th.OptimalMin)
	v.SetDefault("narration.thresholds.optimal_max", th.OptimalMax)
	v.SetDefault("narration.thresholds.tight_max", th.TightMax)
	v.SetDefault("narration.thresholds.max", th.Max)
	v.SetDefault("lint.total_tolerance", 2*time.Second)
	v.SetDefault("lint.phrase_rules", true)
	v.SetDefault("lint.workers", 4)
	v.SetDefault("guide.tick_interval", 250*time.Millisecond)
	v.SetDefault("guide.almost_done", 5*time.Second)
	v.SetDefault("guide.pause_reminder", time.Minute)
	v.SetDefault("guide.seek_step", 5*time.Second)
}

// Load reads the configuration. When path is empty, DefaultFile is used
// if it exists; an explicit path that cannot be read is an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with every key at its default.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults are all well-typed; decoding cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Narration.WordsPerSecond <= 0 || math.IsNaN(c.Narration.WordsPerSecond) {
		return fmt.Errorf("narration.words_per_second must be positive, got %v", c.Narration.WordsPerSecond)
	}
	if _, err := narration.New(c.NarrationOptions()...); err != nil {
		return fmt.Errorf("narration: %w", err)
	}
	if c.Lint.TotalTolerance < 0 {
		return fmt.Errorf("lint.total_tolerance must not be negative, got %s", c.Lint.TotalTolerance)
	}
	if c.Lint.Workers < 1 {
		return fmt.Errorf("lint.workers must be at least 1, got %d", c.Lint.Workers)
	}
	if c.Guide.TickInterval <= 0 {
		return fmt.Errorf("guide.tick_interval must be positive, got %s", c.Guide.TickInterval)
	}
	if c.Guide.AlmostDone < 0 || c.Guide.PauseReminder < 0 {
		return fmt.Errorf("guide.almost_done and guide.pause_reminder must not be negative")
	}
	if c.Guide.SeekStep <= 0 {
		return fmt.Errorf("guide.seek_step must be positive, got %s", c.Guide.SeekStep)
	}
	return nil
}

// NarrationOptions converts the narration settings to validator options.
func (c *Config) NarrationOptions() []narration.Option {
	t := c.Narration.Thresholds
	return []narration.Option{
		narration.WithWordsPerSecond(c.Narration.WordsPerSecond),
		narration.WithThresholds(narration.Thresholds{
			Min:        t.Min,
			OptimalMin: t.OptimalMin,
			OptimalMax: t.OptimalMax,
			TightMax:   t.TightMax,
			Max:        t.Max,
		}),
	}
}
