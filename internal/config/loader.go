package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a config file, expands ${{ .Env.VAR }} templates, unmarshals
// it into Config and applies defaults. The format follows the extension:
// .yaml/.yml is YAML, anything else is JSON with comments.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Templates live inside strings, so expand before parsing.
	expanded := []byte(expandEnvTemplates(string(data)))

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	default:
		standardized, err := hujson.Standardize(expanded)
		if err != nil {
			return nil, fmt.Errorf("standardize config: %w", err)
		}
		if err := json.Unmarshal(standardized, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(DataPath(), "tasklistd.db")
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = Duration(24 * time.Hour)
	}
	if cfg.Auth.SweepSchedule == "" {
		cfg.Auth.SweepSchedule = "*/10 * * * *"
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 1024
	}
}
