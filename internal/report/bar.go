package report

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Bar is a horizontal accuracy bar.
type Bar struct {
	Label   string
	Percent float64
	Width   int
	Fill    color.Color
}

// View renders the bar followed by its percentage.
func (b Bar) View() string {
	var out string
	if b.Label != "" {
		out = Body.Render(b.Label) + "  "
	}

	const percentWidth = 6 // "  100%"
	barWidth := b.Width - lipgloss.Width(out) - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * b.Percent)
	filled = max(0, min(filled, barWidth))

	fill := b.Fill
	if fill == nil {
		fill = Secondary
	}
	out += lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled))
	out += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("░", barWidth-filled))
	out += Subtitle.Render(fmt.Sprintf("  %3d%%", int(b.Percent*100+0.5)))
	return out
}
