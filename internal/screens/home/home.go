package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens/history"
	"github.com/abhisek/prepwise/internal/screens/interview"
	"github.com/abhisek/prepwise/internal/screens/placeholder"
	"github.com/abhisek/prepwise/internal/screens/providers"
	quizscreen "github.com/abhisek/prepwise/internal/screens/quiz"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/components"
)

// statsWindow bounds how many past events the stats bar looks at.
const statsWindow = 200

// Deps carries the services the screens need. Any of them may be nil;
// the matching menu entry then shows a placeholder.
type Deps struct {
	Evaluator        interview.Runner
	Providers        providers.Registry
	KV               store.KVRepo
	Events           store.EventRepo
	Bank             *quiz.Bank
	QuestionsPerQuiz int
	Logger           *zap.Logger
}

type stats struct {
	Quizzes      int
	QuizAccuracy float64
	Evaluations  int
	AvgScore     float64
	LastScore    float64
	HasKeys      bool
}

type statsLoadedMsg struct {
	Stats stats
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
	stats      stats
	loaded     bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	push := func(s screen.Screen) tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}

	menuLabels := []string{"APTITUDE QUIZ", "INTERVIEW PRACTICE", "PROVIDERS", "HISTORY", "EXIT"}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			if deps.Bank == nil {
				return push(placeholder.New("Aptitude Quiz", "The question bank could not be loaded."))
			}
			return push(quizscreen.New(deps.Bank, deps.Events, deps.QuestionsPerQuiz, deps.Logger))
		}},
		{Label: menuLabels[1], Action: func() tea.Cmd {
			if deps.Evaluator == nil {
				return push(placeholder.New("Interview Practice", "Answer evaluation is not configured."))
			}
			return push(interview.New(deps.Evaluator, deps.KV, deps.Logger))
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			if deps.Providers == nil {
				return push(placeholder.New("AI Providers", "No provider registry is configured."))
			}
			return push(providers.New(deps.Providers))
		}},
		{Label: menuLabels[3], Action: func() tea.Cmd {
			if deps.Events == nil {
				return push(placeholder.New("History", "History needs the local database."))
			}
			return push(history.New(deps.Events))
		}},
		{Label: menuLabels[4], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps:       deps,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// loadStats reads recent quiz and evaluation events and provider keys in
// the background.
func (h *HomeScreen) loadStats() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		var st stats

		if deps.Providers != nil {
			for _, p := range deps.Providers.Status(ctx) {
				st.HasKeys = st.HasKeys || p.HasKey
			}
		}
		if deps.Events == nil {
			return statsLoadedMsg{Stats: st}
		}

		quizzes, err := deps.Events.QueryQuizResults(ctx, store.QueryOpts{Limit: statsWindow})
		if err != nil {
			deps.Logger.Warn("load quiz stats", zap.Error(err))
		}
		var correct, total int
		for _, q := range quizzes {
			correct += q.Score
			total += q.TotalQuestions
		}
		st.Quizzes = len(quizzes)
		if total > 0 {
			st.QuizAccuracy = float64(correct) / float64(total)
		}

		evals, err := deps.Events.QueryEvaluations(ctx, store.QueryOpts{Limit: statsWindow})
		if err != nil {
			deps.Logger.Warn("load evaluation stats", zap.Error(err))
		}
		var sum float64
		for _, e := range evals {
			if e.State != string(evaluation.StateComplete) {
				continue
			}
			if st.Evaluations == 0 {
				st.LastScore = e.OverallScore
			}
			st.Evaluations++
			sum += e.OverallScore
		}
		if st.Evaluations > 0 {
			st.AvgScore = sum / float64(st.Evaluations)
		}
		return statsLoadedMsg{Stats: st}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		h.stats = msg.Stats
		h.loaded = true
		return h, nil
	case providers.ChangedMsg:
		return h, h.loadStats()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// Refresh reloads the stats bar, e.g. after returning from a quiz.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.loaded && !h.stats.HasKeys:
		return MascotAlert
	case h.stats.Evaluations > 0 && h.stats.LastScore >= 8:
		return MascotCelebrating
	}
	return MascotIdle
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 34 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(), cw))
	}

	sections = append(sections, renderStatsBar(h.stats, cw, compact))

	if h.loaded && !h.stats.HasKeys {
		sections = append(sections, renderKeyBanner(cw))
	}

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw))
	}

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
