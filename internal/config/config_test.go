package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "punch", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.False(t, cfg.MySQLEnabled())
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.RabbitMQEnabled())
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090

[mysql]
host = "db.internal"
user = "punch"
password = "secret"

[redis]
addr = "cache:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("MYSQL_DB", "punch_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.App.Port)
	assert.True(t, cfg.MySQLEnabled())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "punch:secret@tcp(db.internal:3306)/punch_test?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nport="), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("PUNCH_TEST_INT", "not-a-number")
	assert.Equal(t, 42, getEnvAsInt("PUNCH_TEST_INT", 42))
}

func TestLoad_LLMTemperatureFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("LLM_TEMPERATURE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cfg.LLM.Temperature, 1e-9)

	t.Setenv("LLM_TEMPERATURE", "warm")
	cfg, err = Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, cfg.LLM.Temperature, 1e-9)
}

func TestLoadClient_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PUNCH_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("PUNCH_API_URL", "http://backend:8000")
	t.Setenv("PUNCH_DATA_DIR", dir)
	t.Setenv("PUNCH_REPLY_DELAY_MAX_MS", "10")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:8000", cfg.APIURL)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.Equal(t, filepath.Join(dir, "punch.db"), cfg.DatabasePath())
	assert.Equal(t, 300, cfg.ReplyDelayMinMS)
	assert.Equal(t, 10, cfg.ReplyDelayMaxMS)
}
