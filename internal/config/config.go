// Package config loads process configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pable/go-match-metrics/internal/model"
)

const (
	// FileEnv names the optional YAML config file.
	FileEnv   = "MATCHMETRICS_CONFIG"
	envPrefix = "MATCHMETRICS_"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings shared by every command.
type Config struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite catalog file.
	DBPath string `koanf:"db_path"`

	// DataDir holds uploaded originals and their sidecars.
	DataDir string `koanf:"data_dir"`

	// Addr is the listen address of serve and mcp.
	Addr string `koanf:"addr"`

	// Team is the analysed team used when no --team is given.
	Team string `koanf:"team"`

	AnthropicModel string `koanf:"anthropic_model"`

	// MaxUploadMB caps multipart uploads.
	MaxUploadMB int `koanf:"max_upload_mb"`
}

// Default returns the built-in settings. Files live under ~/.matchmetrics.
func Default() *Config {
	base := filepath.Join(userHome(), ".matchmetrics")
	return &Config{
		LogLevel:       "info",
		DBPath:         filepath.Join(base, "matchmetrics.db"),
		DataDir:        filepath.Join(base, "data"),
		Addr:           ":8080",
		Team:           model.DefaultTeam,
		AnthropicModel: "claude-sonnet-4-5",
		MaxUploadMB:    32,
	}
}

// Load layers defaults, the YAML file named by MATCHMETRICS_CONFIG and
// MATCHMETRICS_* environment variables, in that order.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// MATCHMETRICS_DB_PATH -> db_path; keys stay flat.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load config env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DBPath) == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataDir) == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Team) == "" {
		c.Team = model.DefaultTeam
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
