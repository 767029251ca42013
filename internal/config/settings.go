package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds file-based application settings.
type Settings struct {
	CORS       CORSSettings       `yaml:"cors"`
	Pagination PaginationSettings `yaml:"pagination"`
}

// CORSSettings holds the allowed CORS origins.
type CORSSettings struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PaginationSettings holds the default and maximum page sizes per listing.
type PaginationSettings struct {
	RecipePageSize int `yaml:"recipe_page_size"`
	UserPageSize   int `yaml:"user_page_size"`
	MaxPageSize    int `yaml:"max_page_size"`
}

// DefaultSettings returns the settings used when no settings file is loaded.
func DefaultSettings() *Settings {
	return &Settings{
		Pagination: PaginationSettings{
			RecipePageSize: 6,
			UserPageSize:   10,
			MaxPageSize:    100,
		},
	}
}

// LoadSettings reads application settings from a YAML file. Zero-valued
// pagination fields fall back to the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	defaults := DefaultSettings()
	if settings.Pagination.RecipePageSize <= 0 {
		settings.Pagination.RecipePageSize = defaults.Pagination.RecipePageSize
	}
	if settings.Pagination.UserPageSize <= 0 {
		settings.Pagination.UserPageSize = defaults.Pagination.UserPageSize
	}
	if settings.Pagination.MaxPageSize <= 0 {
		settings.Pagination.MaxPageSize = defaults.Pagination.MaxPageSize
	}

	return settings, nil
}

// PaginationDefaults returns the effective pagination settings for a config,
// falling back to the defaults when no settings file was loaded.
func (c *Config) PaginationDefaults() PaginationSettings {
	if c != nil && c.Settings != nil {
		return c.Settings.Pagination
	}
	return DefaultSettings().Pagination
}
