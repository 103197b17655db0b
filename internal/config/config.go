// Package config loads paradoxd settings from defaults, an optional YAML or
// TOML file, and PARADOX_* environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/paradox-engine/internal/logging"
	"github.com/danielpatrickdp/paradox-engine/internal/memory"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Environment overrides.
const (
	EnvAddr           = "PARADOX_ADDR"
	EnvDB             = "PARADOX_DB"
	EnvLogLevel       = "PARADOX_LOG_LEVEL"
	EnvMemoryCapacity = "PARADOX_MEMORY_CAPACITY"
)

// #region types

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Memory  MemoryConfig  `yaml:"memory" toml:"memory"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Addr            string `yaml:"addr" toml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// StoreConfig configures persistence. An empty path keeps state in memory.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// MemoryConfig configures the paradox memory bank.
type MemoryConfig struct {
	Capacity            int     `yaml:"capacity" toml:"capacity"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" toml:"similarity_threshold"`
	MaxSimilar          int     `yaml:"max_similar" toml:"max_similar"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

// #endregion types

// #region defaults

// Default returns the built-in configuration.
func Default() Config {
	bank := memory.DefaultBankConfig()
	return Config{
		Server: ServerConfig{Addr: "localhost:50061", ShutdownTimeout: "10s"},
		Memory: MemoryConfig{
			Capacity:            bank.Capacity,
			SimilarityThreshold: bank.SimilarityThreshold,
			MaxSimilar:          bank.MaxSimilar,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// #endregion defaults

// #region load

// Load reads path (if non-empty) over the defaults, applies environment
// overrides from the process environment and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse toml config: %w", err)
		}
	default:
		return fmt.Errorf("%w: unsupported config extension %q", ErrInvalidConfig, ext)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	c.Server.Addr = envOr(getenv, EnvAddr, c.Server.Addr)
	c.Store.Path = envOr(getenv, EnvDB, c.Store.Path)
	c.Logging.Level = envOr(getenv, EnvLogLevel, c.Logging.Level)
	if v := getenv(EnvMemoryCapacity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvMemoryCapacity, v)
		}
		c.Memory.Capacity = n
	}
	return nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate

// Validate checks ranges and parses durations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if _, err := c.Server.ShutdownDuration(); err != nil {
		return err
	}
	if c.Memory.Capacity <= 0 {
		return fmt.Errorf("%w: memory.capacity must be positive, got %d", ErrInvalidConfig, c.Memory.Capacity)
	}
	if c.Memory.SimilarityThreshold <= 0 {
		return fmt.Errorf("%w: memory.similarity_threshold must be positive, got %g", ErrInvalidConfig, c.Memory.SimilarityThreshold)
	}
	if c.Memory.MaxSimilar <= 0 {
		return fmt.Errorf("%w: memory.max_similar must be positive, got %d", ErrInvalidConfig, c.Memory.MaxSimilar)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ShutdownDuration parses the graceful shutdown timeout.
func (s ServerConfig) ShutdownDuration() (time.Duration, error) {
	if s.ShutdownTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: server.shutdown_timeout %q", ErrInvalidConfig, s.ShutdownTimeout)
	}
	return d, nil
}

// #endregion validate

// #region projections

// BankConfig returns the memory bank settings.
func (c Config) BankConfig() memory.BankConfig {
	return memory.BankConfig{
		Capacity:            c.Memory.Capacity,
		SimilarityThreshold: c.Memory.SimilarityThreshold,
		MaxSimilar:          c.Memory.MaxSimilar,
	}
}

// LoggerConfig returns the logger settings.
func (c Config) LoggerConfig() logging.LoggerConfig {
	return logging.LoggerConfig{Level: c.Logging.Level, Development: c.Logging.Development}
}

// #endregion projections
