// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Prefix is prepended to every variable name, e.g. RYAN_HTTP_PORT.
const Prefix = "RYAN"

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = "ryanEnv.env"

// Config holds the configuration for the assistant.
// Variables are read with the RYAN_ prefix and fall back to the unprefixed
// name, so a plain GOOGLE_API_KEY is picked up.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Storage
	DBPath string `envconfig:"DB_PATH" default:"~/.ryan/memory.db"`
	UserID string `envconfig:"USER_ID" default:"default_user"`

	// HTTP
	HTTPPort int `envconfig:"HTTP_PORT" default:"8000"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"~/.ryan/app.log"`

	// Generative model
	GoogleAPIKey    string  `envconfig:"GOOGLE_API_KEY"`
	Model           string  `envconfig:"MODEL" default:"gemini-1.5-flash-latest"`
	Temperature     float32 `envconfig:"TEMPERATURE" default:"0.7"`
	MaxOutputTokens int32   `envconfig:"MAX_OUTPUT_TOKENS" default:"1024"`

	// Image search plugin
	SearchAPIKey   string `envconfig:"SEARCH_API_KEY"`
	SearchEngineID string `envconfig:"SEARCH_ENGINE_ID"`

	// Code execution
	ExecTimeout time.Duration `envconfig:"EXEC_TIMEOUT" default:"30s"`
	ExecGrace   time.Duration `envconfig:"EXEC_GRACE" default:"5s"`
	PythonBin   string        `envconfig:"PYTHON_BIN" default:"python3"`
	NodeBin     string        `envconfig:"NODE_BIN" default:"node"`
}

// ResolveDefaults validates the environment and expands "~/" in paths.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	case "":
		c.Environment = EnvDevelopment
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.ExecTimeout <= 0 {
		return fmt.Errorf("invalid EXEC_TIMEOUT: %s", c.ExecTimeout)
	}
	if strings.TrimSpace(c.UserID) == "" {
		c.UserID = "default_user"
	}

	var err error
	if c.DBPath, err = expandHome(c.DBPath); err != nil {
		return err
	}
	if c.LogFile, err = expandHome(c.LogFile); err != nil {
		return err
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Load pre-loads envFile into the process environment and then parses the
// configuration. An empty envFile tries DefaultEnvFile; a missing default is
// not an error, a missing named file is. Variables already set win over the
// file.
func Load(envFile string) (*Config, error) {
	name := envFile
	if name == "" {
		name = DefaultEnvFile
	}
	if err := godotenv.Load(name); err != nil {
		if envFile != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", name, err)
		}
	}
	return New()
}

// New creates a new Config by parsing environment variables.
// Example: RYAN_DB_PATH, RYAN_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("environment", string(cfg.Environment)).
		Str("db_path", cfg.DBPath).
		Str("user", cfg.UserID).
		Int("port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Str("log_file", cfg.LogFile).
		Str("model", cfg.Model).
		Bool("google_api_key_present", cfg.GoogleAPIKey != "").
		Bool("search_api_key_present", cfg.SearchAPIKey != "").
		Dur("exec_timeout", cfg.ExecTimeout).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:     EnvTesting,
		DBPath:          filepath.Join(os.TempDir(), "ryan-test.db"),
		UserID:          "default_user",
		HTTPPort:        8000,
		LogLevel:        "debug",
		Model:           "gemini-1.5-flash-latest",
		Temperature:     0.7,
		MaxOutputTokens: 1024,
		ExecTimeout:     5 * time.Second,
		ExecGrace:       time.Second,
		PythonBin:       "python3",
		NodeBin:         "node",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// HasModel reports whether a generative model key is configured.
func (c *Config) HasModel() bool {
	return c.GoogleAPIKey != ""
}
