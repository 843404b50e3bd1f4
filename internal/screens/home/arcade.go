package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

const arcadeTitleFull = `██████╗ ██████╗ ███████╗██████╗ ██╗    ██╗██╗███████╗███████╗
██╔══██╗██╔══██╗██╔════╝██╔══██╗██║    ██║██║██╔════╝██╔════╝
██████╔╝██████╔╝█████╗  ██████╔╝██║ █╗ ██║██║███████╗█████╗
██╔═══╝ ██╔══██╗██╔══╝  ██╔═══╝ ██║███╗██║██║╚════██║██╔══╝
██║     ██║  ██║███████╗██║     ╚███╔███╔╝██║███████║███████╗
╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝      ╚══╝╚══╝ ╚═╝╚══════╝╚══════╝`

const arcadeTitleCompact = "P · R · E · P · W · I · S · E"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders quiz and interview practice totals in a
// bordered box matching content width.
func renderStatsBar(st stats, cw int, compact bool) string {
	quizStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	evalStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	quiz := dimStyle.Render("NO QUIZZES")
	if st.Quizzes > 0 {
		quiz = quizStyle.Render(fmt.Sprintf("★ %d QUIZZES · %.0f%%", st.Quizzes, st.QuizAccuracy*100))
	}
	evals := dimStyle.Render("NO ANSWERS")
	if st.Evaluations > 0 {
		evals = evalStyle.Render(fmt.Sprintf("✎ %d ANSWERS · %.1f AVG", st.Evaluations, st.AvgScore))
	}
	if compact {
		quiz = quizStyle.Render(fmt.Sprintf("★%d", st.Quizzes))
		evals = evalStyle.Render(fmt.Sprintf("✎%d", st.Evaluations))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(quiz + "   " + evals)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 26

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int) string {
	var buttons []string
	for i, label := range items {
		buttons = append(buttons, components.ArcadeButton(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as plain text lines for small
// terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ "+label+" "))
			continue
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.Text).
			Render("   "+label))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderKeyBanner warns that evaluations need an AI provider key.
func renderKeyBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Add an AI key under PROVIDERS to get answer scores")
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
