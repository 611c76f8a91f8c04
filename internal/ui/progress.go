package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64
	Width   int
}

// View renders the bar with a trailing percentage. Percent is clamped to [0, 1].
func (r Renderer) View(p ProgressBar) string {
	barWidth := max(p.Width, 4)
	frac := min(max(p.Percent, 0), 1)
	filled := int(float64(barWidth) * frac)
	empty := barWidth - filled
	pct := fmt.Sprintf("%3d%%", int(frac*100))

	var b strings.Builder
	if p.Label != "" {
		b.WriteString(p.Label)
		b.WriteString("  ")
	}
	if !r.Styled {
		b.WriteString("[" + strings.Repeat("#", filled) + strings.Repeat(".", empty) + "] ")
		b.WriteString(pct)
		return b.String()
	}
	b.WriteString(lipgloss.NewStyle().Background(Secondary).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(Border).Render(strings.Repeat(" ", empty)))
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Foreground(TextDim).Render(pct))
	return b.String()
}
