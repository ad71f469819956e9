package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Runtime.TargetFPS)
	assert.Equal(t, 5, cfg.Runtime.MaxCatchUp)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Scripts.Watch)

	opts := cfg.Options()
	assert.Equal(t, ecs.PolicyStop, opts.UpdatePolicy)
	assert.Equal(t, ecs.PolicyContain, opts.DrawPolicy)
	assert.Equal(t, time.Second/60, opts.Step)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "tickloop.toml", `
scene = "scene.yaml"

[runtime]
target_fps = 30
update_policy = "contain"

[scripts]
dir = "scripts"
watch = false

[[systems]]
name = "Motion"

[[systems]]
name = "Collision"
options = { position_system = "Position", restitution = 0.5 }

[[systems]]
name = "Motion"
options = { instance = "slow" }
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Runtime.TargetFPS)
	assert.Equal(t, "contain", cfg.Runtime.UpdatePolicy)
	assert.Equal(t, "contain", cfg.Runtime.DrawPolicy)
	assert.False(t, cfg.Scripts.Watch)
	assert.Equal(t, "scene.yaml", cfg.Scene)

	specs := cfg.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, "Motion", specs[0].Name)
	assert.Equal(t, "Collision", specs[1].Name)
	assert.Equal(t, 0.5, specs[1].Options.Float("restitution", 0))
	assert.Equal(t, "slow", specs[2].Options.String("instance", ""))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TICKLOOP_TARGET_FPS", "120")
	t.Setenv("TICKLOOP_LOG_LEVEL", "debug")
	t.Setenv("TICKLOOP_OTEL_ENDPOINT", "http://localhost:4318")

	path := writeFile(t, "tickloop.toml", "[runtime]\ntarget_fps = 30\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Runtime.TargetFPS)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://localhost:4318", cfg.Telemetry.Endpoint)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorContains(t, err, "read config")
	})

	t.Run("bad toml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.toml", "[runtime\n"))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("TICKLOOP_TARGET_FPS", "fast")
		_, err := Load("")
		assert.ErrorContains(t, err, "parse env:")
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := Load(writeFile(t, "p.toml", "[runtime]\ndraw_policy = \"retry\"\n"))
		assert.ErrorContains(t, err, "runtime.draw_policy")
	})

	t.Run("unnamed system", func(t *testing.T) {
		_, err := Load(writeFile(t, "s.toml", "[[systems]]\noptions = { a = 1 }\n"))
		assert.ErrorContains(t, err, "systems[0]")
	})
}

func TestScene(t *testing.T) {
	scene, err := ParseScene([]byte(`
entities:
  - Position: {x: 1, y: 2}
    Motion: {dx: 3}
  - Position: {}
`))
	require.NoError(t, err)

	bags := scene.Bags()
	require.Len(t, bags, 2)
	assert.Equal(t, 1.0, bags[0]["Position"].Float("x", 0))
	assert.Equal(t, 3, bags[0]["Motion"].Int("dx", 0))
	assert.Contains(t, bags[1], "Position")

	_, err = ParseScene([]byte("entities: [oops"))
	assert.ErrorContains(t, err, "parse scene")

	_, err = LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read scene")
}
