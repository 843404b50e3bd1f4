package interview

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *InterviewScreen) View(width, height int) string {
	switch s.step {
	case stepCustom:
		return s.renderCustom(width, height)
	case stepAnswer:
		return s.renderAnswer(width)
	case stepEvaluating:
		return s.renderEvaluating(width, height)
	case stepResult:
		return s.renderResult(width, height)
	}
	return s.renderPick(width)
}

func (s *InterviewScreen) renderPick(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.ArcadeYellow).
		Bold(true).
		Render("PICK A QUESTION"))
	b.WriteString("\n\n")
	menu := lipgloss.NewStyle().Width(min(width-4, 90)).Render(s.menu.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))
	return b.String()
}

func (s *InterviewScreen) renderCustom(width, height int) string {
	content := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Your interview question") +
		"\n\n" + s.custom.View()
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (s *InterviewScreen) renderAnswer(width int) string {
	textWidth := min(width-8, 72)
	var b strings.Builder
	b.WriteString("\n")

	q := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Bold(true).Render(s.question)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, q))
	b.WriteString("\n\n")

	settings := fmt.Sprintf("%s %s    %s %s    %s %d words",
		theme.Label.Render("Mode:"), string(s.mode),
		theme.Label.Render("Type:"), string(s.evalType),
		theme.Label.Render("Length:"), s.answer.WordCount())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(settings)))
	b.WriteString("\n\n")

	s.answer.Resize(textWidth, 10)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.answer.View()))
	b.WriteString("\n\n")

	button := components.NewButton("Evaluate (Ctrl+S)", s.answer.Value() != "")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, button.View()))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)))
	}
	return b.String()
}

func (s *InterviewScreen) renderEvaluating(width, height int) string {
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	elapsed := time.Since(s.started).Truncate(time.Second)
	msg := fmt.Sprintf("%s Evaluating your answer...\n\n%s",
		lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render(frame),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			fmt.Sprintf("%s elapsed · insights are generated alongside", elapsed)))
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(msg)
}

func (s *InterviewScreen) renderResult(width, height int) string {
	textWidth := min(width-8, 72)
	body := RenderResult(s.result, s.errMsg, textWidth)

	lines := strings.Split(body, "\n")
	s.scroll = min(s.scroll, max(len(lines)-height, 0))
	lines = lines[s.scroll:]
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}

// RenderResult formats an orchestrated result for the terminal at the
// given text width. errMsg is shown when res is nil.
func RenderResult(res *evaluation.Result, errMsg string, textWidth int) string {
	var b strings.Builder
	para := lipgloss.NewStyle().Width(textWidth)
	heading := func(title string) {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render(title))
		b.WriteString("\n")
	}
	bullets := func(items []string, style lipgloss.Style) {
		for _, item := range items {
			b.WriteString(para.Render(style.Render("  • " + item)))
			b.WriteString("\n")
		}
	}

	if res == nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Evaluation failed"))
		b.WriteString("\n\n")
		b.WriteString(para.Render(errMsg))
		return b.String()
	}

	switch res.State {
	case evaluation.StateMissingKeys:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("No AI provider configured"))
		b.WriteString("\n\n")
		b.WriteString(para.Foreground(theme.Text).Render(res.Error))
		b.WriteString("\n")
		b.WriteString(para.Foreground(theme.TextDim).Render("Open PROVIDERS from the home screen to add a key."))
		b.WriteString("\n")

	case evaluation.StateFailed:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Evaluation failed"))
		b.WriteString("\n\n")
		b.WriteString(para.Foreground(theme.Text).Render(res.Error))
		b.WriteString("\n")

	default:
		renderEvaluation(&b, res.Evaluation, textWidth)
	}

	if len(res.Insights) > 0 {
		heading("Insights")
		bullets(res.Insights, lipgloss.NewStyle().Foreground(theme.ArcadeCyan))
	} else if len(res.Tips) > 0 {
		heading("Tips")
		bullets(res.Tips, lipgloss.NewStyle().Foreground(theme.TextDim))
	}
	return b.String()
}

func renderEvaluation(b *strings.Builder, ev *evaluation.Evaluation, textWidth int) {
	if ev == nil {
		return
	}
	para := lipgloss.NewStyle().Width(textWidth)

	b.WriteString(theme.ScoreColor(ev.OverallScore).Render(fmt.Sprintf("Overall %.1f / 10", ev.OverallScore)))
	source := "Scored by " + ev.Provider
	if ev.Fallback {
		source = "AI evaluation was unavailable; scored offline by the built-in heuristic scorer"
	}
	b.WriteString("\n")
	b.WriteString(para.Foreground(theme.TextDim).Italic(true).Render(fmt.Sprintf("%s · %s · %s", source, ev.RatingMode, ev.Type)))
	b.WriteString("\n\n")

	barWidth := min(textWidth, 56)
	for _, row := range []struct {
		label string
		score float64
	}{
		{"Clarity          ", ev.Clarity},
		{"Relevance        ", ev.Relevance},
		{"Critical thinking", ev.CriticalThinking},
		{"Thoroughness     ", ev.Thoroughness},
	} {
		bar := components.NewProgressBar(row.label, row.score/evaluation.MaxScore, false, barWidth-6)
		b.WriteString(bar.View())
		b.WriteString(theme.ScoreColor(row.score).Render(fmt.Sprintf(" %4.1f", row.score)))
		b.WriteString("\n")
	}

	if ev.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(para.Foreground(theme.Text).Render(ev.Feedback))
		b.WriteString("\n")
	}

	sections := []struct {
		title string
		items []string
		color lipgloss.Style
	}{
		{"Strengths", ev.Strengths, lipgloss.NewStyle().Foreground(theme.Success)},
		{"Improvements", ev.Improvements, lipgloss.NewStyle().Foreground(theme.Accent)},
		{"Key points missed", ev.KeyPointsMissed, lipgloss.NewStyle().Foreground(theme.Error)},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(theme.Label.Render(sec.title))
		b.WriteString("\n")
		for _, item := range sec.items {
			b.WriteString(para.Render(sec.color.Render("  • " + item)))
			b.WriteString("\n")
		}
	}
}
