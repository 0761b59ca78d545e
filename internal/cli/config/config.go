package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/typebind/internal/orm/schema"
)

// Config represents the typebind configuration
type Config struct {
	Mapping  MappingConfig  `mapstructure:"mapping"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
}

// MappingConfig represents resolution defaults
type MappingConfig struct {
	DefaultEnumStrategy string `mapstructure:"default_enum_strategy"`
	DefaultStringLength int    `mapstructure:"default_string_length"`
	Concurrency         int    `mapstructure:"concurrency"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DatabaseConfig represents the store that migrations are applied to
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// Load loads the configuration from typebind.yml or typebind.yaml in the current
// directory. An empty path searches the working directory; otherwise the file at path
// is read and must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("mapping.default_enum_strategy", "ordinal")
	v.SetDefault("mapping.default_string_length", 255)
	v.SetDefault("mapping.concurrency", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("database.url", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("typebind")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// TYPEBIND_MAPPING_CONCURRENCY overrides mapping.concurrency
	v.SetEnvPrefix("TYPEBIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// EnumStrategy returns the configured default enum strategy
func (c *Config) EnumStrategy() schema.EnumStrategy {
	// validated on load
	s, _ := schema.ParseEnumStrategy(c.Mapping.DefaultEnumStrategy)
	return s
}

// DatabaseURL returns the configured database URL, falling back to DATABASE_URL
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}

// NewLogger builds a zap logger from the log configuration
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := schema.ParseEnumStrategy(cfg.Mapping.DefaultEnumStrategy); err != nil {
		return fmt.Errorf("mapping.default_enum_strategy: %w", err)
	}
	if cfg.Mapping.DefaultStringLength <= 0 {
		return fmt.Errorf("mapping.default_string_length must be positive, got: %d", cfg.Mapping.DefaultStringLength)
	}
	if cfg.Mapping.Concurrency <= 0 {
		return fmt.Errorf("mapping.concurrency must be positive, got: %d", cfg.Mapping.Concurrency)
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
