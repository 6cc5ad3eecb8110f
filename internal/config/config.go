// Package config loads and validates the mast-planner configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then MASTPLANNER_* environment variables. The merged result is validated
// once at startup; components receive the typed sections they need.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Selection SelectionConfig `yaml:"selection" envconfig:"SELECTION"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// OutputConfig contains result output configuration
type OutputConfig struct {
	// BaseDir is the directory under which each run creates its
	// timestamped results folder.
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR" validate:"required"`
	// Workbook enables the consolidated Excel workbook alongside the CSVs.
	Workbook bool `yaml:"workbook" envconfig:"WORKBOOK"`
}

// SelectionConfig contains optimal-mast selection configuration
type SelectionConfig struct {
	// Mode picks the selection strategy: a single optimal mast or the
	// optimal pair of masts.
	Mode string `yaml:"mode" envconfig:"MODE" validate:"oneof=single pair"`
}

// Default returns the configuration with all defaults applied
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stdout",
			FilePath: "logs/mastplanner.log",
		},
		Output: OutputConfig{
			BaseDir:  "results",
			Workbook: true,
		},
		Selection: SelectionConfig{
			Mode: "pair",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// MASTPLANNER_* environment variables, then validates the result.
// An empty path skips the file layer; a missing file at an explicit path
// is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("MASTPLANNER", cfg); err != nil {
		return nil, fmt.Errorf("process environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against the struct validation tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
