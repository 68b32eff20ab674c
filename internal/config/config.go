package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	DatabaseURL     string `yaml:"databaseURL" validate:"required"`
	CatalogPath     string `yaml:"catalogPath" validate:"required"`
	ScheduleSheetID string `yaml:"scheduleSheetID,omitempty"`
	ScheduleTab     string `yaml:"scheduleTab,omitempty"`
	HistoryDays     int    `yaml:"historyDays,omitempty" validate:"omitempty,min=1"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration for an environment.
// env="test" looks for "camplan_config.test.yaml"; the file is searched in
// the current directory first, then the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	name := "camplan_config.yaml"
	if env != "" {
		name = "camplan_config." + env + ".yaml"
	}

	path, err := findFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// validateRRule checks an rrule string the way the catalog loader will use
// it.
func validateRRule(value string) error {
	if _, err := rrule.StrToRRule(value); err != nil {
		return err
	}
	return nil
}

// findFile searches for a file in the current directory and home directory.
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("file %q not found in current directory or home directory", name)
}
