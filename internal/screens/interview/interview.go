package interview

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
)

// Runner evaluates one answer. It is satisfied by *evaluation.Orchestrator.
type Runner interface {
	Run(ctx context.Context, req evaluation.Request) (*evaluation.Result, error)
}

type step int

const (
	stepPick step = iota
	stepCustom
	stepAnswer
	stepEvaluating
	stepResult
)

const customLabel = "✎ Write my own question"

// InterviewScreen lets the user pick an interview question, type an
// answer and see the evaluation with insights.
type InterviewScreen struct {
	runner Runner
	kv     store.KVRepo
	logger *zap.Logger

	step     step
	menu     components.Menu
	custom   components.TextInput
	answer   components.AnswerBox
	question string
	mode     evaluation.RatingMode
	evalType evaluation.Type
	handoff  *evaluation.Request

	// runID tags the evaluation in flight; results for any other run
	// were abandoned and are dropped.
	runID   string
	started time.Time
	frame   int
	result  *evaluation.Result
	errMsg  string
	scroll  int
}

var _ screen.Screen = (*InterviewScreen)(nil)
var _ screen.KeyHintProvider = (*InterviewScreen)(nil)

// New creates an InterviewScreen. kv may be nil, in which case the last
// question and answer are not saved.
func New(runner Runner, kv store.KVRepo, logger *zap.Logger) *InterviewScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewScreen{
		runner:   runner,
		kv:       kv,
		logger:   logger,
		menu:     components.NewMenu(questionItems()),
		mode:     evaluation.RatingTough,
		evalType: evaluation.TypeSimple,
	}
}

func questionItems() []components.MenuItem {
	choose := func(q string, custom bool) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return questionChosenMsg{Question: q, Custom: custom} }
		}
	}

	items := []components.MenuItem{{Label: customLabel, Action: choose("", true)}}
	for _, role := range evaluation.Roles() {
		items = append(items, components.MenuItem{Label: "── " + roleTitle(role) + " ──", Disabled: true})
		for _, q := range evaluation.QuestionsByRole(role) {
			items = append(items, components.MenuItem{Label: q.Text, Action: choose(q.Text, false)})
		}
	}
	return items
}

func roleTitle(role string) string {
	switch role {
	case evaluation.RoleBehavioral:
		return "Behavioral"
	case evaluation.RoleTechnical:
		return "Technical"
	case evaluation.RoleSystemDesign:
		return "System Design"
	}
	return role
}

func (s *InterviewScreen) Init() tea.Cmd {
	if s.kv == nil {
		return nil
	}
	kv := s.kv
	return func() tea.Msg {
		req, ok, err := evaluation.LoadHandoff(context.Background(), kv)
		if err != nil {
			return handoffLoadedMsg{}
		}
		return handoffLoadedMsg{Request: req, OK: ok}
	}
}

func (s *InterviewScreen) Title() string {
	return "Interview Practice"
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	switch s.step {
	case stepCustom:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Esc", Description: "Back"},
		}
	case stepAnswer:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Evaluate"},
			{Key: "Ctrl+T", Description: "Tough/Lenient"},
			{Key: "Ctrl+D", Description: "Simple/Detailed"},
			{Key: "Esc", Description: "Back"},
		}
	case stepEvaluating:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Abandon"},
		}
	case stepResult:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "R", Description: "Revise"},
			{Key: "N", Description: "New question"},
			{Key: "Enter", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Answer"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case handoffLoadedMsg:
		if msg.OK {
			req := msg.Request
			s.handoff = &req
		}
		return s, nil

	case questionChosenMsg:
		return s.handleChosen(msg)

	case evaluationDoneMsg:
		return s.handleDone(msg)

	case spinnerTickMsg:
		if s.step != stepEvaluating {
			return s, nil
		}
		s.frame++
		return s, spinnerCmd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	switch s.step {
	case stepCustom:
		var cmd tea.Cmd
		s.custom, cmd = s.custom.Update(msg)
		return s, cmd
	case stepAnswer:
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *InterviewScreen) handleChosen(msg questionChosenMsg) (screen.Screen, tea.Cmd) {
	if msg.Custom {
		s.step = stepCustom
		s.custom = components.NewTextInput("Type the interview question...", false, 60)
		if s.handoff != nil && !isBuiltIn(s.handoff.Question) {
			s.custom.Model.SetValue(s.handoff.Question)
		}
		return s, s.custom.Init()
	}
	return s, s.beginAnswer(msg.Question)
}

// beginAnswer moves to the answer step, restoring the saved answer when
// the question matches the last hand-off.
func (s *InterviewScreen) beginAnswer(question string) tea.Cmd {
	s.question = question
	s.step = stepAnswer
	s.errMsg = ""
	s.answer = components.NewAnswerBox("Type your answer. Aim for a specific example with a clear outcome.", 70, 10)
	if h := s.handoff; h != nil && h.Question == question {
		s.answer.SetValue(h.Answer)
		if mode, err := evaluation.ParseRatingMode(string(h.RatingMode)); err == nil {
			s.mode = mode
		}
		if typ, err := evaluation.ParseType(string(h.Type)); err == nil {
			s.evalType = typ
		}
	}
	return s.answer.Init()
}

func isBuiltIn(question string) bool {
	for _, q := range evaluation.InterviewQuestions() {
		if q.Text == question {
			return true
		}
	}
	return false
}

func (s *InterviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.step {
	case stepPick:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd

	case stepCustom:
		if key == "enter" {
			if q := s.custom.Value(); q != "" {
				return s, s.beginAnswer(q)
			}
			s.custom.Submit(false)
			return s, nil
		}
		var cmd tea.Cmd
		s.custom, cmd = s.custom.Update(msg)
		return s, cmd

	case stepAnswer:
		switch key {
		case "ctrl+t":
			s.mode = toggleMode(s.mode)
			return s, nil
		case "ctrl+d":
			s.evalType = toggleType(s.evalType)
			return s, nil
		case "ctrl+s":
			return s, s.evaluate()
		}
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		return s, cmd

	case stepResult:
		switch key {
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		case "down", "j":
			s.scroll++
		case "r", "R":
			s.step = stepAnswer
			s.result = nil
			return s, s.answer.Init()
		case "n", "N":
			s.step = stepPick
			s.result = nil
			s.handoff = nil
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func toggleMode(m evaluation.RatingMode) evaluation.RatingMode {
	if m == evaluation.RatingTough {
		return evaluation.RatingLenient
	}
	return evaluation.RatingTough
}

func toggleType(t evaluation.Type) evaluation.Type {
	if t == evaluation.TypeSimple {
		return evaluation.TypeDetailed
	}
	return evaluation.TypeSimple
}

// request builds the evaluation request from the current inputs.
func (s *InterviewScreen) request() evaluation.Request {
	return evaluation.Request{
		Question:   s.question,
		Answer:     s.answer.Value(),
		RatingMode: s.mode,
		Type:       s.evalType,
	}
}

// evaluate saves the hand-off and starts the orchestrated run in the
// background. The result arrives as an evaluationDoneMsg.
func (s *InterviewScreen) evaluate() tea.Cmd {
	req := s.request()
	if err := req.Validate(); err != nil {
		s.errMsg = "Write an answer before asking for an evaluation."
		if !errors.Is(err, evaluation.ErrEmptyAnswer) {
			s.errMsg = err.Error()
		}
		return nil
	}

	s.step = stepEvaluating
	s.errMsg = ""
	s.started = time.Now()
	s.frame = 0
	s.handoff = &req
	s.runID = uuid.NewString()

	runID, runner, kv, logger := s.runID, s.runner, s.kv, s.logger
	run := func() tea.Msg {
		ctx := context.Background()
		if kv != nil {
			if err := evaluation.SaveHandoff(ctx, kv, req); err != nil {
				logger.Warn("failed to save hand-off", zap.Error(err))
			}
		}
		res, err := runner.Run(ctx, req)
		return evaluationDoneMsg{RunID: runID, Result: res, Err: err}
	}
	return tea.Batch(run, spinnerCmd())
}

func (s *InterviewScreen) handleDone(msg evaluationDoneMsg) (screen.Screen, tea.Cmd) {
	if s.step != stepEvaluating || msg.RunID != s.runID {
		return s, nil
	}
	s.step = stepResult
	s.scroll = 0
	s.result = msg.Result
	if msg.Result == nil {
		s.errMsg = "Evaluation did not finish."
		if msg.Err != nil {
			s.errMsg += " " + msg.Err.Error()
		}
	} else if msg.Err != nil && !errors.Is(msg.Err, llm.ErrNoAPIKeys) {
		s.logger.Warn("evaluation returned an error", zap.Error(msg.Err))
	}
	return s, nil
}

func spinnerCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
