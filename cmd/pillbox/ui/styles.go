// Package ui provides the visual styling for the pillbox terminal client.
// Light and dark palettes mirror the brand colors; the active palette is
// chosen by the theme resolver, never detected here.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"pillbox/internal/theme"
)

var (
	// Light mode colors
	LightBackground = lipgloss.Color("#f6f7f9")
	LightForeground = lipgloss.Color("#102a43")
	LightPrimary    = lipgloss.Color("#2f80ed") // brand blue
	LightAccent     = lipgloss.Color("#27ae60") // pill green
	LightMuted      = lipgloss.Color("#829ab1")
	LightBorder     = lipgloss.Color("#d9e2ec")

	// Dark mode colors
	DarkBackground = lipgloss.Color("#0f1c2e")
	DarkForeground = lipgloss.Color("#f0f4f8")
	DarkPrimary    = lipgloss.Color("#5fa8f5") // brand blue, lifted
	DarkAccent     = lipgloss.Color("#6fcf97")
	DarkMuted      = lipgloss.Color("#627d98")
	DarkBorder     = lipgloss.Color("#243b53")

	// Semantic colors, same in both modes
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#f2c94c")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ForAppearance maps the resolver's effective appearance to a palette.
func ForAppearance(a theme.Appearance) Theme {
	if a == theme.Dark {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components used by the onboarding screens.
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	Card      lipgloss.Style
	Button    lipgloss.Style
	Dot       lipgloss.Style
	ActiveDot lipgloss.Style
	Input     lipgloss.Style
	Footer    lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(t.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 3),

		Button: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Dot: lipgloss.NewStyle().
			Foreground(t.Muted),

		ActiveDot: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground),

		Footer: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
	}
}
