package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the assistant.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#0EA5E9"), // Sky
		Secondary: lipgloss.Color("#F97316"), // Orange

		Success: lipgloss.Color("#10B981"), // Emerald
		Warning: lipgloss.Color("#F59E0B"), // Amber
		Error:   lipgloss.Color("#EF4444"), // Red
		Muted:   lipgloss.Color("#6B7280"), // Gray

		Text:    lipgloss.Color("#F9FAFB"), // Near white
		TextDim: lipgloss.Color("#9CA3AF"), // Gray
	}
}

// Styles contains the styled components for the UI.
type Styles struct {
	App   lipgloss.Style
	Title lipgloss.Style

	Prompt lipgloss.Style

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style
	WarningMessage   lipgloss.Style
	ErrorMessage     lipgloss.Style

	StatusText lipgloss.Style
	StageLabel lipgloss.Style
	BadgeOn    lipgloss.Style
	BadgeOff   lipgloss.Style

	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
	HelpBar   lipgloss.Style
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			PaddingLeft(2),

		AssistantMessage: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(2),

		SystemMessage: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true).
			PaddingLeft(2),

		WarningMessage: lipgloss.NewStyle().
			Foreground(t.Warning).
			PaddingLeft(2),

		ErrorMessage: lipgloss.NewStyle().
			Foreground(t.Error).
			PaddingLeft(2),

		StatusText: lipgloss.NewStyle().
			Foreground(t.TextDim),

		StageLabel: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		BadgeOn: lipgloss.NewStyle().
			Foreground(t.Success),

		BadgeOff: lipgloss.NewStyle().
			Foreground(t.Muted),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Muted),

		HelpValue: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpBar: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}
