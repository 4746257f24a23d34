// Package config loads career simulator settings from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hayaneofficial/soccer-career-sim/internal/logging"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

// Environment variables read by Load.
const (
	EnvDB           = "CAREERSIM_DB"
	EnvSeed         = "CAREERSIM_SEED"
	EnvLogLevel     = "CAREERSIM_LOG_LEVEL"
	EnvPort         = "CAREERSIM_PORT"
	EnvAdminKey     = "CAREERSIM_ADMIN_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvRandomOrgKey = "RANDOM_ORG_API_KEY"
)

// Config contains all settings.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Simulation SimulationConfig `yaml:"simulation"`
	LLM        LLMConfig        `yaml:"llm"`
	Entropy    EntropyConfig    `yaml:"entropy"`
	API        APIConfig        `yaml:"api"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SimulationConfig holds defaults for new careers.
type SimulationConfig struct {
	// Seed drives roster generation; 0 means a fresh seed per career.
	Seed      int64  `yaml:"seed"`
	Category  string `yaml:"category"`
	Formation string `yaml:"formation"`
}

// LLMConfig configures the content-generation collaborator.
type LLMConfig struct {
	APIKey       string        `yaml:"api_key,omitempty"`
	Model        string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxPerMinute int           `yaml:"max_per_minute"`
	Enabled      bool          `yaml:"enabled"`
}

// EntropyConfig selects the random source for new careers.
type EntropyConfig struct {
	// RandomOrgKey enables true random numbers from random.org for
	// unseeded careers.
	RandomOrgKey string `yaml:"random_org_key,omitempty"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Port       int           `yaml:"port"`
	AdminKey   string        `yaml:"admin_key,omitempty"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// LoggingConfig sets the log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Path: "data/careers.db"},
		Simulation: SimulationConfig{
			Category:  string(roster.HighSchool),
			Formation: "4-4-2",
		},
		LLM: LLMConfig{
			Model:        "claude-haiku-4-5-20251001",
			Timeout:      30 * time.Second,
			MaxPerMinute: 20,
			Enabled:      true,
		},
		API: APIConfig{
			Port:       8080,
			RateLimit:  30,
			RateWindow: time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads defaults, then ~/.careersim/config.yaml (or path when set),
// then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".careersim", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)
	cfg.Entropy.RandomOrgKey = os.ExpandEnv(cfg.Entropy.RandomOrgKey)
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must be set")
	}
	if _, ok := roster.ParseCategory(c.Simulation.Category); !ok {
		return fmt.Errorf("invalid category: %s (valid: %v)", c.Simulation.Category, roster.Categories)
	}
	if c.Simulation.Formation != "" {
		if _, ok := roster.LookupFormation(c.Simulation.Formation); !ok {
			return fmt.Errorf("invalid formation: %s (valid: %v)", c.Simulation.Formation, roster.FormationNames())
		}
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.LLM.Timeout)
	}
	if c.LLM.MaxPerMinute <= 0 {
		return fmt.Errorf("max_per_minute must be positive, got %d", c.LLM.MaxPerMinute)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.API.Port)
	}
	if c.API.RateLimit <= 0 || c.API.RateWindow <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d per %v", c.API.RateLimit, c.API.RateWindow)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

// LLMKey returns the API key when the collaborator is enabled.
func (c *Config) LLMKey() string {
	if !c.LLM.Enabled {
		return ""
	}
	return c.LLM.APIKey
}

func applyEnvOverrides(c *Config) error {
	if v := os.Getenv(EnvDB); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Simulation.Seed = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.API.Port = n
	}
	if v := os.Getenv(EnvAdminKey); v != "" {
		c.API.AdminKey = v
	}
	if v := os.Getenv(EnvAnthropicKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(EnvRandomOrgKey); v != "" {
		c.Entropy.RandomOrgKey = v
	}
	return nil
}
