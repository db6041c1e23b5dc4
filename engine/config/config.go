// Package config loads and validates the engine's TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned (wrapped) when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// MaxLights is the hard capacity of a light block.
const MaxLights = 32

// Config holds all engine configuration.
type Config struct {
	Graphics    GraphicsConfig    `mapstructure:"graphics" toml:"graphics"`
	Performance PerformanceConfig `mapstructure:"performance" toml:"performance"`
	Window      WindowConfig      `mapstructure:"window" toml:"window"`
	Logging     LoggingConfig     `mapstructure:"logging" toml:"logging"`
}

// GraphicsConfig holds the exposure, tone mapping and bloom tunables.
type GraphicsConfig struct {
	MinLogLuminance         float32 `mapstructure:"min_log_luminance" toml:"min_log_luminance"`
	MaxLogLuminance         float32 `mapstructure:"max_log_luminance" toml:"max_log_luminance"`
	AutoExposureSpeed       float32 `mapstructure:"auto_exposure_speed_factor" toml:"auto_exposure_speed_factor"`
	InitialAdaptedLuminance float32 `mapstructure:"initial_adapted_luminance" toml:"initial_adapted_luminance"`
	WhitePoint              float32 `mapstructure:"white_point" toml:"white_point"` // L_white of the tone curve
	Bloom                   bool    `mapstructure:"bloom" toml:"bloom"`
	MinBloomThreshold       float32 `mapstructure:"min_bloom_threshold" toml:"min_bloom_threshold"`
	MaxBloomThreshold       float32 `mapstructure:"max_bloom_threshold" toml:"max_bloom_threshold"`
	BloomFactor             float32 `mapstructure:"bloom_factor" toml:"bloom_factor"`
	SceneFactor             float32 `mapstructure:"scene_factor" toml:"scene_factor"`
	BlurPasses              int     `mapstructure:"blur_passes" toml:"blur_passes"`
	AttenuationCutoff       float32 `mapstructure:"attenuation_cutoff" toml:"attenuation_cutoff"`
	SpotPolicy              string  `mapstructure:"spot_policy" toml:"spot_policy"` // cosine or legacy
}

// PerformanceConfig holds capacity and pacing limits.
type PerformanceConfig struct {
	MaxLights      int `mapstructure:"max_lights" toml:"max_lights"`
	MaxBatchSize   int `mapstructure:"max_batch_size" toml:"max_batch_size"`
	UpdateInterval int `mapstructure:"update_interval" toml:"update_interval"` // milliseconds
	Workers        int `mapstructure:"workers" toml:"workers"`                 // 0 = NumCPU
}

// WindowConfig configures the presentation window.
type WindowConfig struct {
	Title  string `mapstructure:"title" toml:"title"`
	Width  int    `mapstructure:"width" toml:"width"`
	Height int    `mapstructure:"height" toml:"height"`
	VSync  bool   `mapstructure:"vsync" toml:"vsync"`
}

// LoggingConfig configures the base logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			MinLogLuminance:         -8.0,
			MaxLogLuminance:         3.5,
			AutoExposureSpeed:       1.1,
			InitialAdaptedLuminance: 1.0,
			WhitePoint:              4.9,
			Bloom:                   true,
			MinBloomThreshold:       0.0,
			MaxBloomThreshold:       1.2,
			BloomFactor:             1.0,
			SceneFactor:             1.0,
			BlurPasses:              2,
			AttenuationCutoff:       51.2,
			SpotPolicy:              "cosine",
		},
		Performance: PerformanceConfig{
			MaxLights:      MaxLights,
			MaxBatchSize:   1000,
			UpdateInterval: 16,
			Workers:        0,
		},
		Window: WindowConfig{
			Title:  "oxy-hdr",
			Width:  1920,
			Height: 1080,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a TOML file layered over the defaults.
// Environment variables prefixed with OXY_ override file values
// (for example OXY_GRAPHICS_BLOOM_FACTOR). A missing file yields the defaults.
//
// Parameters:
//   - path: path to the TOML file; empty means defaults and environment only
//
// Returns:
//   - *Config: the merged, validated configuration
//   - error: read, decode or validation failure (validation wraps ErrInvalidConfig)
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	defaults, err := toml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to seed default config: %w", err)
	}

	v.SetEnvPrefix("OXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Validate checks ranges and orderings. Every problem is reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	g := c.Graphics
	check(g.MinLogLuminance < g.MaxLogLuminance,
		"min_log_luminance (%v) must be below max_log_luminance (%v)", g.MinLogLuminance, g.MaxLogLuminance)
	check(g.AutoExposureSpeed > 0, "auto_exposure_speed_factor must be positive, got %v", g.AutoExposureSpeed)
	check(g.InitialAdaptedLuminance > 0, "initial_adapted_luminance must be positive, got %v", g.InitialAdaptedLuminance)
	check(g.WhitePoint > 0, "white_point must be positive, got %v", g.WhitePoint)
	check(g.MinBloomThreshold <= g.MaxBloomThreshold,
		"min_bloom_threshold (%v) must not exceed max_bloom_threshold (%v)", g.MinBloomThreshold, g.MaxBloomThreshold)
	check(g.BloomFactor >= 0, "bloom_factor must not be negative, got %v", g.BloomFactor)
	check(g.SceneFactor >= 0, "scene_factor must not be negative, got %v", g.SceneFactor)
	check(g.BlurPasses >= 0, "blur_passes must not be negative, got %d", g.BlurPasses)
	check(g.AttenuationCutoff > 0, "attenuation_cutoff must be positive, got %v", g.AttenuationCutoff)
	check(g.SpotPolicy == "cosine" || g.SpotPolicy == "legacy", "spot_policy must be cosine or legacy, got %q", g.SpotPolicy)

	p := c.Performance
	check(p.MaxLights >= 1 && p.MaxLights <= MaxLights, "max_lights must be in 1..%d, got %d", MaxLights, p.MaxLights)
	check(p.MaxBatchSize > 0, "max_batch_size must be positive, got %d", p.MaxBatchSize)
	check(p.UpdateInterval > 0, "update_interval must be positive, got %d", p.UpdateInterval)
	check(p.Workers >= 0, "workers must not be negative, got %d", p.Workers)

	w := c.Window
	check(w.Width > 0 && w.Height > 0, "window size must be positive, got %dx%d", w.Width, w.Height)

	return errors.Join(errs...)
}

// InvLogLuminanceRange returns 1 / (max - min) of the log2 luminance window.
func (g GraphicsConfig) InvLogLuminanceRange() float32 {
	return 1 / g.LogLuminanceRange()
}

// LogLuminanceRange returns max - min of the log2 luminance window.
func (g GraphicsConfig) LogLuminanceRange() float32 {
	return g.MaxLogLuminance - g.MinLogLuminance
}
