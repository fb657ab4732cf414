package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	dc "waste-stats/domain/config"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "./config.yml"

// Load parses the YAML configuration file at path, then applies
// environment overrides and defaults. A missing file is not an error
// when optional is true.
func Load(path string, optional bool) (*dc.Config, error) {
	var c dc.Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		slog.Info("config.loaded", "path", path)
	case errors.Is(err, os.ErrNotExist) && optional:
		slog.Debug("config.missing", "path", path)
	default:
		return nil, err
	}
	applyEnv(&c)
	c.ApplyDefaults()
	return &c, nil
}

// LoadDefault loads CONFIG_PATH (or ./config.yml); the file is optional
// unless CONFIG_PATH names it explicitly.
func LoadDefault() (*dc.Config, error) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return Load(p, false)
	}
	return Load(DefaultPath, true)
}

func applyEnv(c *dc.Config) {
	if v := os.Getenv("SHEET_URL"); v != "" {
		c.Sheet.URL = v
	}
	if v := os.Getenv("SHEET_TOKEN"); v != "" {
		c.Sheet.Token = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
}
