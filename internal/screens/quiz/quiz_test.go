package quiz

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testBank(t *testing.T) *qz.Bank {
	t.Helper()
	bank, err := qz.DefaultBank()
	if err != nil {
		t.Fatalf("default bank: %v", err)
	}
	return bank
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func startedScreen(t *testing.T, events store.EventRepo) *QuizScreen {
	t.Helper()
	s := New(testBank(t), events, 3, nil)
	_, cmd := s.Update(startQuizMsg{Category: qz.CategoryLogical})
	if cmd == nil {
		t.Fatal("expected tick command after start")
	}
	if s.session.Phase != qz.PhaseInProgress {
		t.Fatalf("phase = %s, want in_progress", s.session.Phase)
	}
	return s
}

func TestQuizScreen_CategoryMenuStartsQuiz(t *testing.T) {
	s := New(testBank(t), nil, 3, nil)
	if s.Title() != "Aptitude Quiz" {
		t.Errorf("Title = %q", s.Title())
	}
	if !strings.Contains(s.View(100, 30), "Quantitative Aptitude") {
		t.Error("category menu should list categories")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected command from menu selection")
	}
	msg, ok := cmd().(startQuizMsg)
	if !ok {
		t.Fatalf("expected startQuizMsg, got %T", cmd())
	}
	if msg.Category != qz.CategoryQuantitative {
		t.Errorf("category = %q, want quantitative", msg.Category)
	}
}

func TestQuizScreen_AnswerAndNavigate(t *testing.T) {
	s := startedScreen(t, nil)
	if got := len(s.session.Questions); got != 3 {
		t.Fatalf("got %d questions, want 3", got)
	}

	s.Update(keyPress('b'))
	if s.session.Selected[0] != 1 {
		t.Errorf("Selected[0] = %d, want 1", s.session.Selected[0])
	}

	s.Update(specialKey(tea.KeyRight))
	if s.session.Current != 1 {
		t.Fatalf("Current = %d, want 1", s.session.Current)
	}
	if s.choice.Chosen != -1 {
		t.Errorf("second question should start unanswered, chosen %d", s.choice.Chosen)
	}

	s.Update(specialKey(tea.KeyLeft))
	if s.choice.Chosen != 1 {
		t.Errorf("going back should keep the answer, chosen %d", s.choice.Chosen)
	}
	if len(s.session.Selected) != len(s.session.Questions) {
		t.Error("Selected and Questions out of step")
	}
}

func TestQuizScreen_SubmitWithUnansweredAsksFirst(t *testing.T) {
	s := startedScreen(t, nil)
	s.Update(keyPress('a'))

	_, cmd := s.Update(keyPress('s'))
	if cmd != nil {
		t.Fatal("expected confirmation before submitting")
	}
	if !s.confirmSubmit {
		t.Fatal("expected confirm prompt")
	}
	if !strings.Contains(s.View(100, 30), "2 question(s) still unanswered") {
		t.Error("confirm view should count unanswered questions")
	}

	s.Update(keyPress('n'))
	if s.confirmSubmit || s.session.Phase != qz.PhaseInProgress {
		t.Error("N should return to the quiz")
	}
}

func TestQuizScreen_SubmitRecordsAndShowsSummary(t *testing.T) {
	st := openStore(t)
	s := startedScreen(t, st.EventRepo())

	correct := 0
	for i := range s.session.Questions {
		q := s.session.Questions[i]
		s.Update(keyPress(rune('a' + q.CorrectAnswer)))
		correct++
		s.Update(specialKey(tea.KeyRight))
	}

	_, cmd := s.Update(keyPress('s'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if !s.session.Complete || s.session.Score != correct {
		t.Errorf("Complete=%v Score=%d, want true %d", s.session.Complete, s.session.Score, correct)
	}

	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg to the summary")
	}
	if msg.Screen.Title() != "Quiz Summary" {
		t.Errorf("next screen = %q", msg.Screen.Title())
	}

	results, err := st.EventRepo().QueryQuizResults(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d quiz events, want 1", len(results))
	}
	if r := results[0]; r.Score != 3 || r.TotalQuestions != 3 || r.Answered != 3 || r.Category != "logical" {
		t.Errorf("unexpected quiz event: %+v", r.QuizEventData)
	}
}

func TestQuizScreen_TickStopsAfterSubmit(t *testing.T) {
	s := startedScreen(t, nil)
	_, cmd := s.Update(timerTickMsg(s.session.StartedAt.Add(5 * time.Second)))
	if cmd == nil {
		t.Error("expected next tick while in progress")
	}
	if s.session.Elapsed != 5*time.Second {
		t.Errorf("Elapsed = %v, want 5s", s.session.Elapsed)
	}

	s.session.Submit()
	_, cmd = s.Update(timerTickMsg(s.session.StartedAt.Add(10 * time.Second)))
	if cmd != nil {
		t.Error("ticks should stop once the quiz is complete")
	}
}
