package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	qz "github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens/summary"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
)

// QuizScreen walks through category selection and an in-progress quiz.
// On submit it records the result and hands over to the summary screen.
type QuizScreen struct {
	bank    *qz.Bank
	events  store.EventRepo
	logger  *zap.Logger
	count   int
	rng     *rand.Rand
	session *qz.Session

	menu          components.Menu
	choice        components.MultiChoice
	confirmSubmit bool
	errMsg        string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen drawing count questions per attempt from bank.
// events may be nil, in which case results are not recorded.
func New(bank *qz.Bank, events store.EventRepo, count int, logger *zap.Logger) *QuizScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &QuizScreen{
		bank:    bank,
		events:  events,
		logger:  logger,
		count:   count,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		session: qz.NewSession(),
	}
	s.menu = components.NewMenu(s.categoryItems())
	return s
}

func (s *QuizScreen) categoryItems() []components.MenuItem {
	start := func(c qz.Category) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return startQuizMsg{Category: c} }
		}
	}

	var items []components.MenuItem
	for _, info := range qz.Categories() {
		n := s.bank.Count(info.ID)
		items = append(items, components.MenuItem{
			Label:    fmt.Sprintf("%s (%d)", info.Title, n),
			Action:   start(info.ID),
			Disabled: n == 0,
		})
	}
	items = append(items, components.MenuItem{
		Label:  fmt.Sprintf("Mixed (%d)", s.bank.Count(qz.CategoryMixed)),
		Action: start(qz.CategoryMixed),
	})
	return items
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	if s.session.Phase == qz.PhaseInProgress {
		return "Quiz · " + categoryTitle(s.session.Category)
	}
	return "Aptitude Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmSubmit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Submit"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.session.Phase != qz.PhaseInProgress {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startQuizMsg:
		return s.handleStart(msg)

	case timerTickMsg:
		if s.session.Phase != qz.PhaseInProgress {
			return s, nil
		}
		_ = s.session.Tick(time.Time(msg))
		return s, tickCmd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleStart(msg startQuizMsg) (screen.Screen, tea.Cmd) {
	if err := s.session.StartRandom(s.bank, msg.Category, s.count, s.rng); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.syncChoice()
	return s, tickCmd()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.session.Phase != qz.PhaseInProgress {
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}

	if s.confirmSubmit {
		switch key {
		case "y", "Y", "enter":
			s.confirmSubmit = false
			return s, s.submit()
		case "n", "N":
			s.confirmSubmit = false
		}
		return s, nil
	}

	switch key {
	case "right", "l", "tab", "n":
		_ = s.session.Next()
		s.syncChoice()
		return s, nil
	case "left", "h", "shift+tab", "p":
		_ = s.session.Prev()
		s.syncChoice()
		return s, nil
	case "s", "S":
		if s.session.Answered() < len(s.session.Questions) {
			s.confirmSubmit = true
			return s, nil
		}
		return s, s.submit()
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	if s.choice.Chosen != components.NoChoice && s.choice.Chosen != s.session.Selected[s.session.Current] {
		if err := s.session.SelectAnswer(s.choice.Chosen); err != nil {
			s.errMsg = err.Error()
		}
	}
	return s, cmd
}

// syncChoice rebuilds the option list for the current question, keeping
// any answer already selected for it.
func (s *QuizScreen) syncChoice() {
	q := s.session.CurrentQuestion()
	if q == nil {
		return
	}
	s.choice = components.NewMultiChoice(q.Text, q.Options, q.CorrectAnswer, s.session.Selected[s.session.Current])
}

// submit scores the quiz and replaces this screen with the summary once
// the result is recorded.
func (s *QuizScreen) submit() tea.Cmd {
	if err := s.session.Submit(); err != nil {
		s.errMsg = err.Error()
		return nil
	}

	sess := *s.session
	events, logger := s.events, s.logger
	return func() tea.Msg {
		if events != nil {
			err := events.AppendQuizResult(context.Background(), store.QuizEventData{
				SessionID:      sess.ID,
				Category:       string(sess.Category),
				TotalQuestions: len(sess.Questions),
				Answered:       sess.Answered(),
				Score:          sess.Score,
				DurationSecs:   int(sess.Elapsed.Seconds()),
			})
			if err != nil {
				logger.Warn("failed to record quiz result", zap.Error(err))
			}
		}
		return router.ReplaceScreenMsg{Screen: summary.New(&sess)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func categoryTitle(c qz.Category) string {
	for _, info := range qz.Categories() {
		if info.ID == c {
			return info.Title
		}
	}
	return "Mixed"
}
