package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "local", cfg.User)
	assert.Equal(t, "ulid", cfg.Engine.IDScheme)
	assert.False(t, cfg.Engine.ReevaluateOnEdit)
	assert.Equal(t, account.DefaultRiskLimits(), cfg.RiskLimits)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing user", func(c *Config) { c.User = " " }, "user is required"},
		{"missing db", func(c *Config) { c.Journal.DBPath = "" }, "journal.db_path is required"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad id scheme", func(c *Config) { c.Engine.IDScheme = "snowflake" }, "engine.id_scheme"},
		{"negative limit", func(c *Config) { c.RiskLimits.MaxTradesPerDay = -1 }, "risk_limits"},
		{"zero limits allowed", func(c *Config) { c.RiskLimits = account.RiskLimits{} }, ""},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "edgetracker.yaml")

	cfg := Default()
	cfg.User = "alice"
	cfg.Engine.ReevaluateOnEdit = true
	cfg.RiskLimits.MaxTradesPerDay = 3
	require.NoError(t, cfg.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_trades_per_day: 3")
	assert.Contains(t, string(data), "reevaluate_on_edit: true")

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveAndLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "edgetracker.json")

	cfg := Default()
	cfg.Server.Addr = ":9090"
	cfg.RiskLimits.MaxConsecutiveLosses = 4
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user: bob\nlog:\n  level: debug\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.User)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, Default().Journal.DBPath, cfg.Journal.DBPath)
	assert.Equal(t, account.DefaultRiskLimits(), cfg.RiskLimits)
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  id_scheme: snowflake\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDB, "/tmp/et.sqlite")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvUser, "carol")
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvReeval, "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/tmp/et.sqlite", cfg.Journal.DBPath)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "carol", cfg.User)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.True(t, cfg.Engine.ReevaluateOnEdit)
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv(EnvReeval, "sometimes")
	cfg := Default()
	assert.Error(t, cfg.ApplyEnv())

	t.Setenv(EnvReeval, "")
	t.Setenv(EnvLogLevel, "loud")
	cfg = Default()
	assert.Error(t, cfg.ApplyEnv())
}
