package report

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Warning   = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Danger    = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary).
		MarginTop(1)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// LabelColor maps a topic label to its display color.
func LabelColor(l profile.Label) color.Color {
	switch l {
	case profile.LabelStrength:
		return Success
	case profile.LabelWeakness:
		return Danger
	default:
		return TextDim
	}
}

// PriorityColor maps a recommendation tier to its display color.
func PriorityColor(p recommend.Priority) color.Color {
	switch p {
	case recommend.PriorityHigh:
		return Danger
	case recommend.PriorityMedium:
		return Warning
	default:
		return Secondary
	}
}
