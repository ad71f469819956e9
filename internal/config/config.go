package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/plus3/tickloop/ecs"
)

type Config struct {
	Runtime   RuntimeConfig   `toml:"runtime"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripts   ScriptsConfig   `toml:"scripts"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	View      ViewConfig      `toml:"view"`
	Systems   []SystemConfig  `toml:"systems"`
	Scene     string          `toml:"scene" env:"TICKLOOP_SCENE"`
}

type RuntimeConfig struct {
	TargetFPS    int    `toml:"target_fps" env:"TICKLOOP_TARGET_FPS"`
	MaxCatchUp   int    `toml:"max_catch_up" env:"TICKLOOP_MAX_CATCH_UP"`
	UpdatePolicy string `toml:"update_policy" env:"TICKLOOP_UPDATE_POLICY"` // "stop" or "contain"
	DrawPolicy   string `toml:"draw_policy" env:"TICKLOOP_DRAW_POLICY"`     // "stop" or "contain"
	FrameRate    int    `toml:"frame_rate" env:"TICKLOOP_FRAME_RATE"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"TICKLOOP_LOG_LEVEL"`
	Format string `toml:"format" env:"TICKLOOP_LOG_FORMAT"` // "json" or "console"
}

type ScriptsConfig struct {
	Dir             string `toml:"dir" env:"TICKLOOP_SCRIPTS_DIR"`
	Watch           bool   `toml:"watch" env:"TICKLOOP_SCRIPTS_WATCH"`
	RestartOnReload bool   `toml:"restart_on_reload" env:"TICKLOOP_SCRIPTS_RESTART"`
}

type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled" env:"TICKLOOP_OTEL_ENABLED"`
	Endpoint string `toml:"endpoint" env:"TICKLOOP_OTEL_ENDPOINT"`
}

type ViewConfig struct {
	Terminal bool `toml:"terminal" env:"TICKLOOP_TERMINAL"`
}

// SystemConfig is one [[systems]] entry: a kind name and its options.
type SystemConfig struct {
	Name    string         `toml:"name"`
	Options map[string]any `toml:"options"`
}

// Load reads the TOML file at path over the defaults and then applies
// TICKLOOP_* environment overrides. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			TargetFPS:    60,
			MaxCatchUp:   ecs.DefaultMaxCatchUp,
			UpdatePolicy: "stop",
			DrawPolicy:   "contain",
			FrameRate:    60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripts: ScriptsConfig{
			Watch: true,
		},
	}
}

func (c *Config) validate() error {
	if c.Runtime.TargetFPS <= 0 {
		return fmt.Errorf("runtime.target_fps must be positive, got %d", c.Runtime.TargetFPS)
	}
	if _, err := ParsePolicy(c.Runtime.UpdatePolicy); err != nil {
		return fmt.Errorf("runtime.update_policy: %w", err)
	}
	if _, err := ParsePolicy(c.Runtime.DrawPolicy); err != nil {
		return fmt.Errorf("runtime.draw_policy: %w", err)
	}
	for i, s := range c.Systems {
		if s.Name == "" {
			return fmt.Errorf("systems[%d]: missing name", i)
		}
	}
	return nil
}

// ParsePolicy maps a policy name onto ecs.Policy.
func ParsePolicy(s string) (ecs.Policy, error) {
	switch s {
	case "", "default":
		return ecs.PolicyDefault, nil
	case "contain":
		return ecs.PolicyContain, nil
	case "stop":
		return ecs.PolicyStop, nil
	}
	return ecs.PolicyDefault, fmt.Errorf("unknown policy %q", s)
}

// Step returns the fixed update step for the configured target rate.
func (r RuntimeConfig) Step() time.Duration {
	return time.Second / time.Duration(r.TargetFPS)
}

// Options translates the runtime section into world options. Host, logger
// and tracer are left for the caller.
func (c *Config) Options() ecs.Options {
	update, _ := ParsePolicy(c.Runtime.UpdatePolicy)
	draw, _ := ParsePolicy(c.Runtime.DrawPolicy)
	return ecs.Options{
		Step:         c.Runtime.Step(),
		MaxCatchUp:   c.Runtime.MaxCatchUp,
		UpdatePolicy: update,
		DrawPolicy:   draw,
	}
}

// Specs returns the configured system list in order.
func (c *Config) Specs() []ecs.SystemSpec {
	specs := make([]ecs.SystemSpec, len(c.Systems))
	for i, s := range c.Systems {
		specs[i] = ecs.UseWith(s.Name, ecs.Attrs(s.Options))
	}
	return specs
}
