package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the restodir configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Reference ReferenceConfig `yaml:"reference"`
	Search    SearchConfig    `yaml:"search"`
	Import    ImportConfig    `yaml:"import"`
	Status    StatusConfig    `yaml:"status"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	URI                string `yaml:"uri"`
	Name               string `yaml:"name"`
	Collection         string `yaml:"collection"`
	ConnectTimeoutMs   int    `yaml:"connect_timeout_ms"`
	AtomicGradeRemoval *bool  `yaml:"atomic_grade_removal"`
}

// ConnectTimeout returns the server selection timeout.
func (d DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutMs) * time.Millisecond
}

// AtomicRemoval reports whether grade removal uses the single pipeline update.
func (d DatabaseConfig) AtomicRemoval() bool {
	return d.AtomicGradeRemoval == nil || *d.AtomicGradeRemoval
}

// ReferenceConfig is the point distances are measured from.
type ReferenceConfig struct {
	Longitude float64 `yaml:"longitude"`
	Latitude  float64 `yaml:"latitude"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	Regex bool `yaml:"regex"` // pass field values through as patterns
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	ProgressIntervalMs int `yaml:"progress_interval_ms"`
}

// ProgressInterval returns how often the CLI polls import progress.
func (i ImportConfig) ProgressInterval() time.Duration {
	return time.Duration(i.ProgressIntervalMs) * time.Millisecond
}

// StatusConfig holds the optional status HTTP server settings.
type StatusConfig struct {
	Addr            string   `yaml:"addr"` // empty disables the server
	CORSOrigins     []string `yaml:"cors_origins"`
	APIKeys         []string `yaml:"api_keys"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() Config {
	cfg := Config{
		Database:  DatabaseConfig{URI: "mongodb://localhost:27017/", Name: "restaurants"},
		Reference: ReferenceConfig{Longitude: -73.9, Latitude: 40.9},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.Collection == "" {
		c.Database.Collection = "restaurants"
	}
	if c.Database.ConnectTimeoutMs <= 0 {
		c.Database.ConnectTimeoutMs = 1000
	}
	if c.Import.ProgressIntervalMs <= 0 {
		c.Import.ProgressIntervalMs = 100
	}
	if c.Status.ShutdownTimeout <= 0 {
		c.Status.ShutdownTimeout = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Reference.Longitude < -180 || c.Reference.Longitude > 180 {
		return fmt.Errorf("reference.longitude must be between -180 and 180, got %v", c.Reference.Longitude)
	}
	if c.Reference.Latitude < -90 || c.Reference.Latitude > 90 {
		return fmt.Errorf("reference.latitude must be between -90 and 90, got %v", c.Reference.Latitude)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file, for tests run from package directories
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
