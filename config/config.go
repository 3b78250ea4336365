package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/edgetracker/account"
	"gopkg.in/yaml.v3"
)

// Config is the complete edgetracker configuration.
type Config struct {
	User       string             `json:"user" yaml:"user"`
	Journal    JournalConfig      `json:"journal" yaml:"journal"`
	Log        LogConfig          `json:"log" yaml:"log"`
	Engine     EngineConfig       `json:"engine" yaml:"engine"`
	RiskLimits account.RiskLimits `json:"risk_limits" yaml:"risk_limits"`
	Server     ServerConfig       `json:"server" yaml:"server"`
}

type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"` // debug, info, warn, error
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// EngineConfig tunes the evaluation engine.
type EngineConfig struct {
	ReevaluateOnEdit bool   `json:"reevaluate_on_edit" yaml:"reevaluate_on_edit"`
	IDScheme         string `json:"id_scheme" yaml:"id_scheme"` // ulid or uuid
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Environment overrides applied by ApplyEnv.
const (
	EnvDB       = "EDGETRACKER_DB"
	EnvLogLevel = "EDGETRACKER_LOG_LEVEL"
	EnvUser     = "EDGETRACKER_USER"
	EnvAddr     = "EDGETRACKER_ADDR"
	EnvReeval   = "EDGETRACKER_REEVALUATE_ON_EDIT"
)

// LoadFromFile loads configuration from a file: JSON for .json paths,
// otherwise YAML with a JSON fallback. Missing sections keep their
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		// Try YAML first, fall back to JSON
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML for .yaml/.yml paths and as
// JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv loads a .env file from the working directory if present and
// overlays the EDGETRACKER_* variables.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv(EnvDB); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvReeval); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReeval, err)
		}
		c.Engine.ReevaluateOnEdit = b
	}
	return c.Validate()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user is required")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Engine.IDScheme {
	case "ulid", "uuid":
	default:
		return fmt.Errorf("engine.id_scheme must be 'ulid' or 'uuid'")
	}
	l := c.RiskLimits
	if l.MaxLossesPerDay < 0 || l.MaxConsecutiveLosses < 0 || l.MaxTradesPerDay < 0 || l.DailyProfitGoal < 0 {
		return fmt.Errorf("risk_limits must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		User: "local",
		Journal: JournalConfig{
			DBPath: "./edgetracker.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			IDScheme: "ulid",
		},
		RiskLimits: account.DefaultRiskLimits(),
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}
