package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all numerologyX configuration.
type Config struct {
	Name string `yaml:"name"`

	// Generative-service gateway
	Gateway GatewayConfig `yaml:"gateway"`

	// Persistence adapter
	Store StoreConfig `yaml:"store"`

	// Browser-facing HTTP adapter
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GatewayConfig configures the generative-language service.
type GatewayConfig struct {
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`      // report generation
	ChatModel    string `yaml:"chat_model"` // conversation turns
	Timeout      string `yaml:"timeout"`
	EnableSearch bool   `yaml:"enable_search"` // retrieval augmentation for chat
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StoreConfig configures the persistence adapter.
type StoreConfig struct {
	Backend      string `yaml:"backend"` // memory, sqlite, redis
	DatabasePath string `yaml:"database_path"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisDB      int    `yaml:"redis_db"`
	Profile      string `yaml:"profile"` // scope of the persisted keys
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "numerologyX",

		Gateway: GatewayConfig{
			Model:        "gemini-2.5-flash",
			ChatModel:    "gemini-3-flash-preview",
			EnableSearch: true,
		},

		Store: StoreConfig{
			Backend:      BackendSQLite,
			DatabasePath: filepath.Join(".numerologyx", "state.db"),
			RedisAddr:    "localhost:6379",
			Profile:      "default",
		},

		Server: ServerConfig{
			Addr:           "127.0.0.1:8787",
			AllowedOrigins: []string{"http://localhost:5173"},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Credential, later entries win
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"} {
		if key := os.Getenv(env); key != "" {
			c.Gateway.APIKey = key
		}
	}
	if model := os.Getenv("NUMEROLOGYX_MODEL"); model != "" {
		c.Gateway.Model = model
	}

	if backend := os.Getenv("NUMEROLOGYX_STORE"); backend != "" {
		c.Store.Backend = backend
	}
	if path := os.Getenv("NUMEROLOGYX_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Store.RedisAddr = addr
	}
	if profile := os.Getenv("NUMEROLOGYX_PROFILE"); profile != "" {
		c.Store.Profile = profile
	}

	if addr := os.Getenv("NUMEROLOGYX_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// GetGatewayTimeout returns the per-call timeout; zero means no timeout.
func (c *Config) GetGatewayTimeout() time.Duration {
	if c.Gateway.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Gateway.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ValidBackends lists all supported persistence backends.
var ValidBackends = []string{BackendMemory, BackendSQLite, BackendRedis}

// Validate validates the configuration.
// A missing API key is not an error here: every gateway call reports it instead.
func (c *Config) Validate() error {
	validBackend := false
	for _, b := range ValidBackends {
		if c.Store.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, ValidBackends)
	}

	if c.Store.Backend == BackendSQLite && c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path is required for the sqlite backend")
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisAddr == "" {
		return fmt.Errorf("store.redis_addr is required for the redis backend")
	}

	if c.Gateway.Timeout != "" {
		if _, err := time.ParseDuration(c.Gateway.Timeout); err != nil {
			return fmt.Errorf("invalid gateway timeout %q: %w", c.Gateway.Timeout, err)
		}
	}

	return nil
}

// HasAPIKey reports whether a service credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.Gateway.APIKey != ""
}
