package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the Lumen project configuration
type Config struct {
	ProjectName string           `mapstructure:"project_name"`
	Server      ServerConfig     `mapstructure:"server"`
	Build       BuildConfig      `mapstructure:"build"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Diagnostics DiagnosticConfig `mapstructure:"diagnostics"`
}

// ServerConfig represents the playground HTTP server configuration
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	APIPrefix string `mapstructure:"api_prefix"`
}

// BuildConfig represents output configuration for the compile command
type BuildConfig struct {
	Output       string `mapstructure:"output"`
	GeneratedDir string `mapstructure:"generated_dir"`
}

// CacheConfig represents the redis-backed compile cache configuration
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	TTL     int    `mapstructure:"ttl_seconds"`
}

// DiagnosticConfig represents the compile-run history store configuration
type DiagnosticConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite3" or "pgx"
	DSN    string `mapstructure:"dsn"`
}

// Load loads the configuration from lumen.yml or lumen.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.api_prefix", "")
	v.SetDefault("build.output", "build/app")
	v.SetDefault("build.generated_dir", "build/generated")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("diagnostics.driver", "sqlite3")
	v.SetDefault("diagnostics.dsn", "lumen_history.db")

	// Set config name and paths
	v.SetConfigName("lumen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetDiagnosticsDSN returns the diagnostics store DSN from config or
// environment.
func GetDiagnosticsDSN() string {
	if dsn := os.Getenv("LUMEN_DIAGNOSTICS_DSN"); dsn != "" {
		return dsn
	}

	cfg, err := Load()
	if err != nil {
		return ""
	}

	return cfg.Diagnostics.DSN
}

// InProject checks if the current directory is a Lumen project.
func InProject() bool {
	if _, err := os.Stat("lumen.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("lumen.yaml"); err == nil {
		return true
	}

	return false
}

// GetProjectRoot tries to find the project root by looking for lumen.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "lumen.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "lumen.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Lumen project (no lumen.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	// Validate API prefix format
	if cfg.Server.APIPrefix != "" {
		if !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must start with '/', got: %s", cfg.Server.APIPrefix)
		}
		if strings.HasSuffix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must not end with '/', got: %s", cfg.Server.APIPrefix)
		}
	}
	return nil
}
