// Package types provides type definitions for structured data used throughout the cv-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// OptimizeSettings holds user-supplied generation settings for an optimization run.
// All fields are optional; zero values are replaced by defaults in Normalize.
type OptimizeSettings struct {
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	Language       string  `json:"language,omitempty"`
	MinExperiences int     `json:"min_experiences,omitempty"`
	MaxExperiences int     `json:"max_experiences,omitempty"`
	MaxDateYears   int     `json:"max_date_years,omitempty"` // 0 means no lookback cutoff
}

// Default settings applied by Normalize.
const (
	DefaultTemperature    = 0.3
	DefaultLanguage       = "en"
	DefaultMinExperiences = 3
	DefaultMaxExperiences = 8
)

// Normalize fills zero-valued fields with defaults and clamps invalid ranges.
func (s *OptimizeSettings) Normalize() {
	if s.Temperature <= 0 {
		s.Temperature = DefaultTemperature
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.MinExperiences <= 0 {
		s.MinExperiences = DefaultMinExperiences
	}
	if s.MaxExperiences <= 0 {
		s.MaxExperiences = DefaultMaxExperiences
	}
	if s.MaxExperiences < s.MinExperiences {
		s.MaxExperiences = s.MinExperiences
	}
	if s.MaxDateYears < 0 {
		s.MaxDateYears = 0
	}
}

// LanguageName maps a language code to its prompt-facing name.
// Unknown codes fall back to English.
func LanguageName(code string) string {
	switch code {
	case "fr":
		return "French (Français)"
	case "es":
		return "Spanish (Español)"
	case "en", "":
		return "English"
	default:
		return "English"
	}
}
