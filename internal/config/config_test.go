package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "chamber", cfg.Generation.Kind)
	assert.Equal(t, 8, cfg.Generation.TargetRooms)
	assert.Greater(t, cfg.Generation.RoomSizeMax, cfg.Generation.RoomSizeMin)
	assert.GreaterOrEqual(t, cfg.Generation.Padding, 1, "Отступ комнат минимум один блок")
	assert.Less(t, cfg.Generation.YMin, cfg.Generation.YMax)

	assert.Greater(t, cfg.Population.SpawnerChance, 0.0)
	assert.GreaterOrEqual(t, cfg.Population.BaseWaves, 1)
	assert.GreaterOrEqual(t, cfg.Population.BaseMobs, 1)
	assert.Positive(t, cfg.Population.DistanceNorm)
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	os.Unsetenv("TRIAL_CONFIG")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := []byte(`
generation:
  seed: 12345
  kind: ruins
  target_rooms: 4
population:
  spawner_chance: 0.9
server:
  tick_rate: 10
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(12345), cfg.Generation.Seed)
	assert.Equal(t, "ruins", cfg.Generation.Kind)
	assert.Equal(t, 4, cfg.Generation.TargetRooms)
	assert.Equal(t, 0.9, cfg.Population.SpawnerChance)
	assert.Equal(t, 10, cfg.Server.TickRate)

	// Незатронутые поля остаются дефолтными
	assert.Equal(t, 13, cfg.Generation.RoomSizeMax)
}

func TestLoadBadFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	assert.Error(t, err)
}

func TestEnvFallbacks(t *testing.T) {
	cfg := Default()
	cfg.Server.MetricsPort = 0
	cfg.Server.TickRate = 0
	cfg.Storage.DataPath = ""

	os.Setenv("TRIAL_METRICS_PORT", "9999")
	os.Setenv("TRIAL_TICK_RATE", "5")
	os.Setenv("TRIAL_DATA_PATH", "/tmp/trials")
	defer func() {
		os.Unsetenv("TRIAL_METRICS_PORT")
		os.Unsetenv("TRIAL_TICK_RATE")
		os.Unsetenv("TRIAL_DATA_PATH")
	}()

	assert.Equal(t, 9999, cfg.Server.GetMetricsPort())
	assert.Equal(t, 5, cfg.Server.GetTickRate())
	assert.Equal(t, "/tmp/trials", cfg.Storage.GetDataPath())
}

func TestEnvFallbackDefaults(t *testing.T) {
	os.Unsetenv("TRIAL_METRICS_PORT")
	os.Unsetenv("TRIAL_TICK_RATE")

	cfg := Default()
	cfg.Server.MetricsPort = 0
	cfg.Server.TickRate = 0

	assert.Equal(t, 2112, cfg.Server.GetMetricsPort())
	assert.Equal(t, 20, cfg.Server.GetTickRate())
}

func TestConfigPriority(t *testing.T) {
	os.Setenv("TRIAL_TICK_RATE", "5")
	defer os.Unsetenv("TRIAL_TICK_RATE")

	cfg := Default()
	cfg.Server.TickRate = 40

	assert.Equal(t, 40, cfg.Server.GetTickRate(), "Значение из конфига важнее ENV")
}
