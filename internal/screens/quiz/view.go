package quiz

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	qz "github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.session.Phase != qz.PhaseInProgress {
		return s.renderCategoryMenu(width, height)
	}
	if s.confirmSubmit {
		return s.renderSubmitConfirm(width, height)
	}
	return s.renderQuestionView(width)
}

func (s *QuizScreen) renderCategoryMenu(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.ArcadeYellow).
		Bold(true).
		Render("CHOOSE A CATEGORY"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d questions per quiz", s.count)))
	b.WriteString("\n\n")
	b.WriteString(components.ArcadeCard(s.menu.View(), cw))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return components.CabinetFrame(b.String(), width, height)
}

func (s *QuizScreen) renderQuestionView(width int) string {
	sess := s.session
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", categoryTitle(sess.Category)))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d answered  %s %s",
			sess.Current+1,
			len(sess.Questions),
			lipgloss.NewStyle().Foreground(theme.Success).Render("●"),
			sess.Answered(),
			lipgloss.NewStyle().Foreground(theme.Accent).Render("T"),
			formatElapsed(sess.Elapsed),
		))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderDots(sess)))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(min(width-8, 70)).Render(s.choice.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
	b.WriteString("\n")

	progress := components.NewProgressBar("Answered", components.Ratio(sess.Answered(), len(sess.Questions)), true, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, progress.View()))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)))
	}
	return b.String()
}

// renderDots shows one marker per question: filled when answered, ringed
// for the current one.
func renderDots(sess *qz.Session) string {
	parts := make([]string, len(sess.Questions))
	for i, sel := range sess.Selected {
		dot := "○"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if sel != qz.Unanswered {
			dot = "●"
			style = style.Foreground(theme.Secondary)
		}
		if i == sess.Current {
			style = style.Foreground(theme.ArcadeYellow).Bold(true)
			dot = "◉"
			if sel != qz.Unanswered {
				dot = "●"
			}
		}
		parts[i] = style.Render(dot)
	}
	return strings.Join(parts, " ")
}

func (s *QuizScreen) renderSubmitConfirm(width, height int) string {
	left := len(s.session.Questions) - s.session.Answered()
	msg := fmt.Sprintf("Submit the quiz?\n\n%d question(s) still unanswered.\nUnanswered questions count as wrong.\n\n[Y] Submit   [N] Keep going", left)
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(msg)
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
