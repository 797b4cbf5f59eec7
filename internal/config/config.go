// Package config provides configuration loading and structs for the nocs server and CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Query     QueryConfig     `yaml:"query"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatasetConfig locates the snapshot and the classification table it is built from.
type DatasetConfig struct {
	// SnapshotPath is a .json or .db/.sqlite file written by `nocs build`.
	SnapshotPath string `yaml:"snapshot_path"`
	// SourcePath is the published classification table (.csv or .xlsx).
	SourcePath            string `yaml:"source_path"`
	Version               string `yaml:"version"`
	Source                string `yaml:"source"`
	ReferenceLinkTemplate string `yaml:"reference_link_template"`
	// Preload loads the snapshot at startup instead of on the first request.
	Preload bool `yaml:"preload"`
}

// QueryConfig holds pagination and suggestion limits.
type QueryConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	SuggestLimit int `yaml:"suggest_limit"`
}

// CacheConfig holds the Cache-Control max-age per response kind.
type CacheConfig struct {
	ListMaxAge   time.Duration `yaml:"list_max_age"`
	DetailMaxAge time.Duration `yaml:"detail_max_age"`
	InfoMaxAge   time.Duration `yaml:"info_max_age"`
}

// RateLimitConfig configures the token bucket shared by all clients.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Load reads and parses the config file at path, expands paths, applies defaults and then
// environment overrides. A missing file is not an error: defaults are used instead.
func Load(path string) (*Config, error) {
	var cfg Config
	configDir := "."

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
			configDir = filepath.Dir(path)
		}
	}

	ApplyDefaults(&cfg)
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.Dataset.SnapshotPath = expandPath(cfg.Dataset.SnapshotPath, configDir)
	cfg.Dataset.SourcePath = expandPath(cfg.Dataset.SourcePath, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// ApplyEnv overrides cfg from the environment:
// NOCS_HOST, NOCS_PORT (or PORT), NOCS_SNAPSHOT, NOCS_SOURCE and LOG_LEVEL=debug.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("NOCS_HOST"); ok && v != "" {
		cfg.Server.Host = v
	}
	port, ok := os.LookupEnv("NOCS_PORT")
	if !ok || port == "" {
		port, ok = os.LookupEnv("PORT")
	}
	if ok && port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q in environment: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if v, ok := os.LookupEnv("NOCS_SNAPSHOT"); ok && v != "" {
		cfg.Dataset.SnapshotPath = v
	}
	if v, ok := os.LookupEnv("NOCS_SOURCE"); ok && v != "" {
		cfg.Dataset.SourcePath = v
	}
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		cfg.Debug = true
	}
	return nil
}

// Validate reports settings that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("query.default_limit %d exceeds query.max_limit %d", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	if c.Dataset.ReferenceLinkTemplate != "" && !strings.Contains(c.Dataset.ReferenceLinkTemplate, "{code}") {
		return fmt.Errorf("dataset.reference_link_template must contain {code}")
	}
	return nil
}

// expandPath converts a path to absolute. "~/" is relative to the home directory; other
// relative paths are relative to configDir.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	if abs, err := filepath.Abs(filepath.Join(configDir, path)); err == nil {
		return abs
	}
	return path
}
