package config

import (
	"fmt"

	"p12status/internal/dates"
	"p12status/internal/status"
)

// ExtractionConfig exposes the parsing heuristics, since the service's
// wording and date formats drift over time.
type ExtractionConfig struct {
	// Go time layouts, tried in order.
	DateLayouts []string `yaml:"date_layouts"`

	// Two-digit years below the pivot map to 20xx, the rest to 19xx.
	TwoDigitYearPivot int `yaml:"two_digit_year_pivot"`

	// A leading slash-date group above this value is read as the day.
	DayFirstThreshold int `yaml:"day_first_threshold"`

	ValidKeywords   []string `yaml:"valid_keywords"`
	RevokedKeywords []string `yaml:"revoked_keywords"`
}

// DefaultExtractionConfig mirrors the package defaults of dates and status.
func DefaultExtractionConfig() ExtractionConfig {
	p := dates.DefaultPolicy()
	kw := status.DefaultKeywords()
	return ExtractionConfig{
		DateLayouts:       p.Layouts,
		TwoDigitYearPivot: p.TwoDigitYearPivot,
		DayFirstThreshold: p.DayFirstThreshold,
		ValidKeywords:     kw.Valid,
		RevokedKeywords:   kw.Revoked,
	}
}

// DatePolicy converts the config into a dates.Policy.
func (e ExtractionConfig) DatePolicy() dates.Policy {
	return dates.Policy{
		Layouts:           e.DateLayouts,
		TwoDigitYearPivot: e.TwoDigitYearPivot,
		DayFirstThreshold: e.DayFirstThreshold,
	}
}

// Keywords converts the config into status.Keywords.
func (e ExtractionConfig) Keywords() status.Keywords {
	return status.Keywords{Valid: e.ValidKeywords, Revoked: e.RevokedKeywords}
}

// Validate checks the heuristic bounds.
func (e ExtractionConfig) Validate() error {
	// 0 would be replaced by the default when the policy is built.
	if e.TwoDigitYearPivot < 1 || e.TwoDigitYearPivot > 100 {
		return fmt.Errorf("extraction.two_digit_year_pivot must be between 1 and 100, got %d", e.TwoDigitYearPivot)
	}
	if e.DayFirstThreshold < 1 || e.DayFirstThreshold > 31 {
		return fmt.Errorf("extraction.day_first_threshold must be between 1 and 31, got %d", e.DayFirstThreshold)
	}
	return nil
}
