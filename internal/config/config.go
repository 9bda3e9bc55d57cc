// Package config loads the shatter TOML configuration file.
//
// Every field is optional; missing fields keep their defaults. Unknown
// fields are rejected so typos do not go unnoticed.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/chazu/shatter/pkg/explosion"
	"github.com/chazu/shatter/pkg/scene"
	"github.com/chazu/shatter/pkg/settle"
	"github.com/pelletier/go-toml/v2"
)

// Output formats and kernels accepted by the CLI.
var (
	Formats = []string{"json", "stl"}
	Kernels = []string{"exact", "sdfx"}
)

// Settle mirrors settle.Config with times in milliseconds.
type Settle struct {
	StopMinMs       float64 `toml:"stop_min_ms"`
	StopSpreadMs    float64 `toml:"stop_spread_ms"`
	JitterDelayMs   float64 `toml:"jitter_delay_ms"`
	JitterChance    float64 `toml:"jitter_chance"`
	JitterIntensity float64 `toml:"jitter_intensity"`
	JitterFalloff   float64 `toml:"jitter_falloff"`
	JitterHoldMs    float64 `toml:"jitter_hold_ms"`
}

// Output controls what the CLI writes.
type Output struct {
	Dir     string `toml:"dir"`
	Format  string `toml:"format"`
	Kernel  string `toml:"kernel"`
	Cells   int    `toml:"cells"`   // marching cubes resolution for the sdfx kernel
	Workers int    `toml:"workers"` // 0 means one per CPU
}

// Config is the whole file.
type Config struct {
	LogLevel  string           `toml:"log_level"`
	Seed      uint64           `toml:"seed"`
	Script    string           `toml:"script"`
	Explosion explosion.Config `toml:"explosion"`
	Settle    Settle           `toml:"settle"`
	Output    Output           `toml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	s := settle.DefaultConfig()
	return Config{
		LogLevel:  "info",
		Seed:      scene.DefaultSeed,
		Explosion: explosion.DefaultConfig(),
		Settle: Settle{
			StopMinMs:       millis(s.StopMin),
			StopSpreadMs:    millis(s.StopSpread),
			JitterDelayMs:   millis(s.JitterDelay),
			JitterChance:    s.JitterChance,
			JitterIntensity: s.JitterIntensity,
			JitterFalloff:   s.JitterFalloff,
			JitterHoldMs:    millis(s.JitterHold),
		},
		Output: Output{
			Dir:    "out",
			Format: "json",
			Kernel: "exact",
			Cells:  48,
		},
	}
}

// Load reads and parses the file at path over the defaults. A relative
// script path is taken relative to the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Script != "" && !filepath.IsAbs(cfg.Script) {
		cfg.Script = filepath.Join(filepath.Dir(path), cfg.Script)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown fields:\n%s", strict.String())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the output settings and the scene description.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("output.format %q must be one of %v", c.Output.Format, Formats)
	}
	if !slices.Contains(Kernels, c.Output.Kernel) {
		return fmt.Errorf("output.kernel %q must be one of %v", c.Output.Kernel, Kernels)
	}
	if c.Output.Format == "stl" && c.Output.Kernel != "sdfx" {
		return fmt.Errorf("output.format stl needs output.kernel sdfx")
	}
	if c.Output.Cells <= 0 {
		return fmt.Errorf("output.cells must be positive, got %d", c.Output.Cells)
	}
	if c.Output.Workers < 0 {
		return fmt.Errorf("output.workers must not be negative, got %d", c.Output.Workers)
	}
	return c.Description().Validate()
}

// Description converts the file into a scene description.
func (c Config) Description() scene.Description {
	return scene.Description{
		Seed:      c.Seed,
		Explosion: c.Explosion,
		Settle: settle.Config{
			StopMin:         duration(c.Settle.StopMinMs),
			StopSpread:      duration(c.Settle.StopSpreadMs),
			JitterDelay:     duration(c.Settle.JitterDelayMs),
			JitterChance:    c.Settle.JitterChance,
			JitterIntensity: c.Settle.JitterIntensity,
			JitterFalloff:   c.Settle.JitterFalloff,
			JitterHold:      duration(c.Settle.JitterHoldMs),
		},
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func duration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
