package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/ui/theme"
)

const minBarWidth = 4

// ProgressBar draws a labelled horizontal bar for a fraction in [0, 1].
// Fractions outside that range are clamped.
type ProgressBar struct {
	Label       string
	Fraction    float64
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, fraction float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Fraction:    min(max(fraction, 0), 1),
		ShowPercent: showPercent,
		Width:       width,
	}
}

// Ratio returns done/total, or 0 when total is zero.
func Ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func (p ProgressBar) View() string {
	var label, suffix string
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf(" %3d%%", int(p.Fraction*100+0.5)))
	}

	width := max(p.Width-lipgloss.Width(label)-lipgloss.Width(suffix), minBarWidth)
	filled := int(float64(width) * p.Fraction)

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", width-filled)) +
		suffix
}
