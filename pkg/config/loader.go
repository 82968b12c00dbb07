// Package config loads and validates rafiq's runtime configuration:
// built-in defaults merged with a user YAML file, environment-variable
// expansion, and a thin validation pass. Ported from the teacher's
// pkg/config loader and retargeted at this system's environment surface
// (spec.md §6): port, timezone offset, thresholds, prayer settings,
// scheduler hours, retention days.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads .env (if present), then configDir/config.yaml (if present),
// expands environment variables, and merges the result over Default().
// A missing config.yaml is not an error — the built-in defaults apply.
func Load(configDir string) (*Config, error) {
	envPath := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("failed to load .env file", "path", envPath, "error", err)
		}
	}

	cfg := Default()

	yamlPath := filepath.Join(configDir, "config.yaml")
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("no config.yaml found, using built-in defaults", "path", yamlPath)
			return cfg, Validate(cfg)
		}
		return nil, NewLoadError(yamlPath, err)
	}

	expanded := ExpandEnv(raw)

	var userCfg Config
	if err := yaml.Unmarshal(expanded, &userCfg); err != nil {
		return nil, NewLoadError(yamlPath, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	if err := mergo.Merge(cfg, userCfg, mergo.WithOverride); err != nil {
		return nil, NewLoadError(yamlPath, fmt.Errorf("merge user config: %w", err))
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
