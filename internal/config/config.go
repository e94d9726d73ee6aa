package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths   PathsConfig   `yaml:"paths" validate:"required"`
	Logging LoggingConfig `yaml:"logging" validate:"required"`
	Limits  Limits        `yaml:"limits" validate:"required"`
}

type PathsConfig struct {
	DataDir string `yaml:"data_dir" validate:"required,dirpath"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"required,oneof=text json"`
}

// Load reads the config file, applies environment overrides and validates
// the result. A missing file is not an error: defaults are used.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile(getConfigPath())
}

// LoadFile is Load for an explicit path, without reading .env.
func LoadFile(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults stand
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a config with XDG-compliant paths and default limits.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: defaultDataDir(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Limits: DefaultLimits(),
	}
}

func getConfigPath() string {
	// 1. Explicit config path via environment variable
	if path := os.Getenv("OUTLINE_CONFIG"); path != "" {
		return path
	}

	// 2. XDG_CONFIG_HOME (XDG Base Directory Specification)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "outline", "config.yaml")
	}

	// 3. Default to ~/.config/outline/config.yaml (XDG fallback)
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "outline", "config.yaml")
}

func defaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "outline")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "outline")
}

func (c *Config) applyEnv() {
	if dir := os.Getenv("OUTLINE_DATA_DIR"); dir != "" {
		c.Paths.DataDir = dir
	}
	if level := os.Getenv("OUTLINE_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("OUTLINE_LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}
}

// expandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) validate() error {
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = defaultDataDir()
	} else {
		c.Paths.DataDir = expandTilde(c.Paths.DataDir)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Limits.MaxConcurrentAnalyses == 0 {
		c.Limits = DefaultLimits()
	}

	validate := validator.New()

	// The data directory is created on first use
	validate.RegisterValidation("dirpath", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}
