package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens/interview"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/layout"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Evaluations []store.EvaluationEvent
	Quizzes     []store.QuizEvent
	Err         error
}

type tab int

const (
	tabEvaluations tab = iota
	tabQuizzes
)

// HistoryScreen displays past interview evaluations and quiz results.
type HistoryScreen struct {
	eventRepo   store.EventRepo
	evaluations []store.EvaluationEvent
	quizzes     []store.QuizEvent
	tab         tab
	selected    int
	expanded    map[int]bool
	loaded      bool
	errMsg      string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		opts := store.QueryOpts{Limit: historyLimit}

		evals, err := s.eventRepo.QueryEvaluations(ctx, opts)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		quizzes, err := s.eventRepo.QueryQuizResults(ctx, opts)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Evaluations: evals, Quizzes: quizzes}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Answers/Quizzes"},
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) rows() int {
	if s.tab == tabQuizzes {
		return len(s.quizzes)
	}
	return len(s.evaluations)
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.evaluations = msg.Evaluations
			s.quizzes = msg.Quizzes
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.tab = 1 - s.tab
			s.selected = 0
			s.expanded = make(map[int]bool)
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < s.rows()-1 {
				s.selected++
			}
		case "enter":
			if s.tab == tabEvaluations {
				s.expanded[s.selected] = !s.expanded[s.selected]
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderTabs()))
	b.WriteString("\n\n")

	if s.tab == tabQuizzes {
		b.WriteString(s.renderQuizzes(width))
	} else {
		b.WriteString(s.renderEvaluations(width))
	}
	return b.String()
}

func (s *HistoryScreen) renderTabs() string {
	active := lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.ArcadeYellow).Bold(true).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(theme.TextDim).Padding(0, 1)

	answers := fmt.Sprintf("Answers (%d)", len(s.evaluations))
	quizzes := fmt.Sprintf("Quizzes (%d)", len(s.quizzes))
	if s.tab == tabQuizzes {
		return inactive.Render(answers) + " " + active.Render(quizzes)
	}
	return active.Render(answers) + " " + inactive.Render(quizzes)
}

func (s *HistoryScreen) renderEvaluations(width int) string {
	if len(s.evaluations) == 0 {
		return empty(width, "No answers evaluated yet. Try Interview Practice!")
	}

	var b strings.Builder
	textWidth := min(width-8, 80)
	for i, ev := range s.evaluations {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		score := "  —  "
		if ev.State == string(evaluation.StateComplete) {
			score = theme.ScoreColor(ev.OverallScore).Render(fmt.Sprintf("%4.1f", ev.OverallScore))
		}
		source := ev.Provider
		if ev.Fallback {
			source = "offline"
		}
		if source == "" {
			source = ev.State
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := style.Render(fmt.Sprintf("%s%s  ", prefix, ev.Timestamp.Local().Format("Jan 02 15:04"))) +
			score + style.Render(fmt.Sprintf("  %-8s %s", source, truncate(ev.Question, textWidth-36)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(textWidth).Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderDetail(ev, textWidth)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderDetail shows the stored result of one evaluation.
func renderDetail(ev store.EvaluationEvent, textWidth int) string {
	var res evaluation.Result
	if ev.Result == "" || json.Unmarshal([]byte(ev.Result), &res) != nil {
		msg := ev.ErrorMessage
		if msg == "" {
			msg = "No details stored for this answer."
		}
		return lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim).Italic(true).Render("    " + msg)
	}
	answer := lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim).Render("Your answer: " + ev.Answer)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(answer + "\n" + interview.RenderResult(&res, "", textWidth-4))
}

func (s *HistoryScreen) renderQuizzes(width int) string {
	if len(s.quizzes) == 0 {
		return empty(width, "No quizzes yet. Start practicing!")
	}

	var b strings.Builder
	for i, q := range s.quizzes {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		var accuracy float64
		if q.TotalQuestions > 0 {
			accuracy = float64(q.Score) / float64(q.TotalQuestions) * 100
		}
		line := fmt.Sprintf("%s%s  %-20s  %d/%d correct  %.0f%%  %d:%02d",
			prefix, q.Timestamp.Local().Format("Jan 02, 2006"), q.Category,
			q.Score, q.TotalQuestions, accuracy, q.DurationSecs/60, q.DurationSecs%60)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func empty(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
		Render("\n  " + msg)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
