// Package config loads application configuration from
// ~/.jarvis/config.yaml, merged with JARVIS_* environment variables.
// A default file is written on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Memory   MemoryConfig   `mapstructure:"memory" yaml:"memory"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Services ServicesConfig `mapstructure:"services" yaml:"services"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `mapstructure:"addr" yaml:"addr"`

	// AuthSecret signs and verifies access tokens. Empty disables
	// authenticated sessions; every caller is then a guest.
	AuthSecret string `mapstructure:"auth_secret" yaml:"auth_secret"`
}

// AIConfig selects and configures the generative backend.
type AIConfig struct {
	// Provider is "openrouter" or "gemini".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// APIKey authenticates with the provider.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Model overrides the provider's default model.
	Model string `mapstructure:"model" yaml:"model"`

	// Timeout bounds each backend call.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MemoryConfig controls durable fact and transcript storage.
type MemoryConfig struct {
	// DBPath is the SQLite database file. Empty keeps facts in memory
	// only.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// CorpusPath optionally replaces the built-in command corpus.
	CorpusPath string `mapstructure:"corpus_path" yaml:"corpus_path"`
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	MaxSessions int           `mapstructure:"max_sessions" yaml:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ServicesConfig carries API keys for the answer providers.
type ServicesConfig struct {
	WeatherAPIKey    string `mapstructure:"weather_api_key" yaml:"weather_api_key"`
	TimezoneDBAPIKey string `mapstructure:"timezonedb_api_key" yaml:"timezonedb_api_key"`
	OpenCageAPIKey   string `mapstructure:"opencage_api_key" yaml:"opencage_api_key"`
	OpenRouteAPIKey  string `mapstructure:"openroute_api_key" yaml:"openroute_api_key"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Pretty switches to human-readable console output.
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
		},
		AI: AIConfig{
			Provider: "openrouter",
			Model:    "openai/gpt-3.5-turbo",
			Timeout:  10 * time.Second,
		},
		Memory: MemoryConfig{
			DBPath: filepath.Join(home, ".jarvis", "jarvis.db"),
		},
		Session: SessionConfig{
			MaxSessions: 1024,
			TTL:         30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads ~/.jarvis/config.yaml, creating it with defaults when
// missing, and merges JARVIS_* environment overrides.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}
	return LoadFromPath(filepath.Join(home, ".jarvis", "config.yaml"))
}

// LoadFromPath reads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example: JARVIS_AI_API_KEY overrides ai.api_key.
	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero values so a sparse config file still works.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.AI.Provider == "" {
		c.AI.Provider = d.AI.Provider
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = d.AI.Timeout
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = d.Session.MaxSessions
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = d.Session.TTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
