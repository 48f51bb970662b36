// Package config handles configuration loading for stigmergy.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/stigmergy-dev/stigmergy/internal/capability"
	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// Config holds all configuration for stigmergy.
type Config struct {
	Project  ProjectConfig  `mapstructure:"project"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	// Agents overrides or extends the built-in specialty registry.
	Agents map[string]capability.Specialty `mapstructure:"agents"`
}

// ProjectConfig holds defaults applied when synthesizing a new project.
type ProjectConfig struct {
	// Name is used for state files created on first access.
	Name string `mapstructure:"name"`
}

// ExecutorConfig holds subprocess execution settings.
type ExecutorConfig struct {
	// Timeout bounds one CLI invocation's wall-clock time.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PlannerConfig holds follow-up planning settings.
type PlannerConfig struct {
	// MaxFollowUps caps new tasks spawned per completed task.
	MaxFollowUps int `mapstructure:"max_followups"`
}

// ArchiveConfig holds audit archive settings.
type ArchiveConfig struct {
	// Enabled turns on the sqlite transition archive.
	Enabled bool `mapstructure:"enabled"`
}

// Registry returns the effective specialty registry: the built-in table
// with configured agents overriding matching entries wholesale.
func (c *Config) Registry() capability.Registry {
	reg := capability.DefaultRegistry()
	for name, spec := range c.Agents {
		reg[models.AgentID(name)] = spec
	}
	return reg
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (STIGMERGY_*)
// 2. Project config (.stigmergy.yaml in current directory or a parent)
// 3. User config (~/.config/stigmergy/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("STIGMERGY")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "Collaboration Project")
	v.SetDefault("executor.timeout", "5m")
	v.SetDefault("planner.max_followups", 2)
	v.SetDefault("archive.enabled", false)
}

// getUserConfigDir returns the XDG config directory for stigmergy.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "stigmergy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "stigmergy")
	}
	return filepath.Join(home, ".config", "stigmergy")
}

// findProjectConfig searches for .stigmergy.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir := cwd
	for {
		candidate := filepath.Join(dir, ".stigmergy.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
