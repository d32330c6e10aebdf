// Package ui provides the console styling for p12status output.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"p12status/internal/status"
)

// Semantic colors (same in both modes)
var (
	Destructive = lipgloss.Color("#e53935") // Red
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue

	LightMuted = lipgloss.Color("#6a737d")
	DarkMuted  = lipgloss.Color("#8b95a5")
)

// Theme holds the current color scheme
type Theme struct {
	Muted  lipgloss.Color
	IsDark bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{Muted: LightMuted}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{Muted: DarkMuted, IsDark: true}
}

// DetectTheme picks dark mode from COLORFGBG or P12STATUS_DARK_MODE,
// otherwise light.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// "foreground;background"
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}
	if os.Getenv("P12STATUS_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	Title lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().Bold(true),
		Body:  lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().Foreground(theme.Muted),

		Success: lipgloss.NewStyle().Foreground(Success).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(Warning),
		Info:    lipgloss.NewStyle().Foreground(Info),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// PlainStyles renders text unchanged. Used for tests and non-terminal output.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Theme:   LightTheme(),
		Title:   plain,
		Body:    plain,
		Muted:   plain,
		Success: plain,
		Error:   plain,
		Warning: plain,
		Info:    plain,
	}
}

// Outcome returns the style for an outcome.
func (s Styles) Outcome(o status.Outcome) lipgloss.Style {
	switch o {
	case status.Valid:
		return s.Success
	case status.Revoked:
		return s.Error
	default:
		return s.Warning
	}
}
