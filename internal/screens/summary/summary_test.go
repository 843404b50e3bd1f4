package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/quiz"
)

func testSession(t *testing.T) *quiz.Session {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := quiz.NewSession(quiz.WithClock(func() time.Time { return now }))
	questions := []quiz.Question{
		{ID: "q1", Category: quiz.CategoryLogical, Text: "2, 4, 8, ?", Options: []string{"10", "16"}, CorrectAnswer: 1, Explanation: "Each term doubles."},
		{ID: "q2", Category: quiz.CategoryLogical, Text: "All cats are animals. Tom is a cat.", Options: []string{"Tom is an animal", "Unknown"}, CorrectAnswer: 0},
		{ID: "q3", Category: quiz.CategoryLogical, Text: "Odd one out", Options: []string{"red", "blue", "dog"}, CorrectAnswer: 2},
	}
	if err := sess.Start(quiz.CategoryLogical, questions); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = sess.SelectAnswer(1)
	_ = sess.Next()
	_ = sess.SelectAnswer(1)
	now = now.Add(75 * time.Second)
	if err := sess.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	return sess
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSession(t))
	if s.Title() != "Quiz Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSession(t))
	view := s.View(100, 30)
	for _, want := range []string{"Score: 1/3", "Time: 1:15", "2, 4, 8, ?"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_ExpandShowsExplanation(t *testing.T) {
	s := New(testSession(t))
	if strings.Contains(s.View(100, 30), "Each term doubles.") {
		t.Fatal("explanation should be hidden until expanded")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	view := s.View(100, 30)
	if !strings.Contains(view, "Each term doubles.") {
		t.Error("expected explanation after expanding")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	view = s.View(100, 30)
	if !strings.Contains(view, "not answered") {
		t.Error("third question should show as not answered")
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testSession(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected a command on Enter (pop)")
	}
}

func TestSummaryScreen_Navigation_Esc(t *testing.T) {
	s := New(testSession(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a command on Esc (pop)")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testSession(t))
	if len(s.KeyHints()) != 3 {
		t.Errorf("KeyHints length = %d, want 3", len(s.KeyHints()))
	}
}
