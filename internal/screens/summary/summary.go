package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

// SummaryScreen displays the result of a completed quiz and a
// per-question review.
type SummaryScreen struct {
	session  *quiz.Session
	review   []quiz.ReviewItem
	selected int
	expanded bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen for a completed session.
func New(sess *quiz.Session) *SummaryScreen {
	review, _ := sess.Review()
	return &SummaryScreen{session: sess, review: review}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Review"},
		{Key: "Space", Description: "Explain"},
		{Key: "Enter", Description: "Done"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.review)-1 {
				s.selected++
			}
		case "space":
			s.expanded = !s.expanded
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sess := s.session
	if sess == nil || len(s.review) == 0 {
		return ""
	}

	var b strings.Builder
	center := func(str string) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, str))
		b.WriteString("\n")
	}

	center(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(headline(sess.Percent())))
	b.WriteString("\n")

	secs := int(sess.Elapsed.Seconds())
	center(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Time: %d:%02d", secs/60, secs%60)))
	b.WriteString("\n")

	center(lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(fmt.Sprintf("Score: %d/%d        Answered: %d        Accuracy: %.0f%%",
			sess.Score, len(sess.Questions), sess.Answered(), sess.Percent())))
	b.WriteString("\n")
	center(components.NewProgressBar("", sess.Percent()/100, true, min(width-8, 50)).View())
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Review"))
	center(divider)
	b.WriteString("\n")

	textWidth := min(width-8, 60)
	for i, item := range s.review {
		mark, style := "✓", lipgloss.NewStyle().Foreground(theme.Success)
		if !item.Correct {
			mark, style = "✗", lipgloss.NewStyle().Foreground(theme.Error)
		}
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
			style = style.Bold(true)
		}
		line := fmt.Sprintf("%s%s %d. %s", prefix, mark, i+1, truncate(item.Question.Text, textWidth-8))
		center(lipgloss.NewStyle().Width(textWidth).Render(style.Render(line)))

		if i == s.selected && s.expanded {
			center(lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim).Render(detail(item)))
		}
	}

	return b.String()
}

func headline(percent float64) string {
	switch {
	case percent >= 80:
		return "Excellent work!"
	case percent >= 50:
		return "Quiz complete!"
	default:
		return "Quiz complete. Keep practicing!"
	}
}

func detail(item quiz.ReviewItem) string {
	q := item.Question
	yours := "not answered"
	if item.Selected != quiz.Unanswered {
		yours = fmt.Sprintf("%s) %s", components.OptionLabel(item.Selected), q.Options[item.Selected])
	}
	out := fmt.Sprintf("     Your answer: %s\n     Correct: %s) %s",
		yours, components.OptionLabel(q.CorrectAnswer), q.Options[q.CorrectAnswer])
	if q.Explanation != "" {
		out += "\n     " + q.Explanation
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
