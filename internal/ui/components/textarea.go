package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/ui/theme"
)

// AnswerBox is a multi-line input for free-text interview answers.
type AnswerBox struct {
	Model textarea.Model
}

// NewAnswerBox creates a focused answer box sized to width x height.
func NewAnswerBox(placeholder string, width, height int) AnswerBox {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return AnswerBox{Model: ta}
}

// Init returns the initial command.
func (a AnswerBox) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update handles messages.
func (a AnswerBox) Update(msg tea.Msg) (AnswerBox, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// SetValue replaces the content.
func (a *AnswerBox) SetValue(s string) {
	a.Model.SetValue(s)
}

// Resize adjusts the box to the available space.
func (a *AnswerBox) Resize(width, height int) {
	a.Model.SetWidth(width)
	a.Model.SetHeight(height)
}

// Value returns the trimmed answer text.
func (a AnswerBox) Value() string {
	return strings.TrimSpace(a.Model.Value())
}

// WordCount returns the number of words typed so far.
func (a AnswerBox) WordCount() int {
	return len(strings.Fields(a.Model.Value()))
}

// View renders the answer box inside a rounded border.
func (a AnswerBox) View() string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(a.Model.View())
}
