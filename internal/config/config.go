// Package config provides configuration loading for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the application configuration, loadable from a JSON file.
// All fields are optional; missing values use defaults or come from
// CLI flags and the environment.
type Config struct {
	// Server
	Addr string `json:"addr,omitempty"` // Listen address, e.g. ":8080"

	// Inputs for one-shot CLI runs
	CV     string `json:"cv,omitempty"`      // Path to CV text file
	Job    string `json:"job,omitempty"`     // Path to job posting text file
	JobURL string `json:"job_url,omitempty"` // URL to fetch job posting from

	// Generation settings
	Language       string  `json:"language,omitempty"`        // en, fr or es
	Temperature    float64 `json:"temperature,omitempty"`     // Generation temperature
	MinExperiences int     `json:"min_experiences,omitempty"` // Experiences to keep, lower bound
	MaxExperiences int     `json:"max_experiences,omitempty"` // Experiences to keep, upper bound

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Headless browser fallback for SPA job boards
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed run information
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for inconsistent values. Required
// fields are enforced later, after flags and environment merge in.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.MinExperiences < 0 {
		return fmt.Errorf("config error: 'min_experiences' must be non-negative")
	}
	if c.MaxExperiences < 0 {
		return fmt.Errorf("config error: 'max_experiences' must be non-negative")
	}
	if c.MaxExperiences > 0 && c.MinExperiences > c.MaxExperiences {
		return fmt.Errorf("config error: 'min_experiences' exceeds 'max_experiences'")
	}

	if c.CV != "" {
		if _, err := os.Stat(c.CV); os.IsNotExist(err) {
			return fmt.Errorf("config error: CV file not found: %s", c.CV)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Bool fields are not merged; flags always win for those.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.CV == "" {
		result.CV = defaults.CV
	}
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.Language == "" {
		result.Language = defaults.Language
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MinExperiences == 0 {
		result.MinExperiences = defaults.MinExperiences
	}
	if result.MaxExperiences == 0 {
		result.MaxExperiences = defaults.MaxExperiences
	}

	return result
}
