package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/screen"
)

type finishedMsg struct{}

// fakeScreen records what the router does to it. On finishedMsg it asks
// to be replaced by next, the way a finished quiz hands over to its
// summary.
type fakeScreen struct {
	title string
	next  screen.Screen
	inits int
	seen  []tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.seen = append(s.seen, msg)
	if _, ok := msg.(finishedMsg); ok && s.next != nil {
		next := s.next
		return s, func() tea.Msg { return ReplaceScreenMsg{Screen: next} }
	}
	return s, nil
}

func (s *fakeScreen) View(int, int) string { return s.title }
func (s *fakeScreen) Title() string        { return s.title }

func TestRouter_PushPop(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	r := New(home)

	interview := &fakeScreen{title: "Interview Practice"}
	r.Update(PushScreenMsg{Screen: interview})
	require.Equal(t, 2, r.Depth())
	assert.Equal(t, "Interview Practice", r.View(80, 24))
	assert.Equal(t, 1, interview.inits)

	r.Update(PopScreenMsg{})
	assert.Equal(t, 1, r.Depth())
	assert.Same(t, home, r.Active())

	r.Update(PopScreenMsg{})
	assert.Equal(t, 1, r.Depth(), "home is never popped")
}

func TestRouter_QuizHandsOverToSummary(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	summary := &fakeScreen{title: "Quiz Summary"}
	quiz := &fakeScreen{title: "Aptitude Quiz", next: summary}

	r := New(home)
	r.Push(quiz)

	cmd := r.Update(finishedMsg{})
	require.NotNil(t, cmd)
	r.Update(cmd())

	assert.Equal(t, 2, r.Depth())
	assert.Same(t, summary, r.Active())
	assert.Equal(t, 1, summary.inits)

	r.Update(PopScreenMsg{})
	assert.Same(t, home, r.Active(), "leaving the summary returns home, not to the quiz")
}

func TestRouter_ForwardsOnlyToActive(t *testing.T) {
	home := &fakeScreen{title: "Home"}
	providers := &fakeScreen{title: "Providers"}
	r := New(home)
	r.Push(providers)

	r.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Len(t, providers.seen, 1)
	assert.Empty(t, home.seen)

	// Navigation messages are consumed by the router.
	r.Update(PushScreenMsg{Screen: &fakeScreen{title: "History"}})
	assert.Len(t, providers.seen, 1)
}
