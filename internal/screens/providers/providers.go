package providers

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

// Registry is the provider registry surface this screen manages. It is
// satisfied by *llm.Registry.
type Registry interface {
	Status(ctx context.Context) []llm.ProviderStatus
	Force(ctx context.Context, name string) error
	SetAPIKey(ctx context.Context, name, key string) error
}

// ChangedMsg is emitted after a key or the forced provider changes, so
// the app can refresh its header.
type ChangedMsg struct{}

type statusLoadedMsg struct {
	Statuses []llm.ProviderStatus
}

type actionDoneMsg struct {
	Notice string
	Err    error
}

// ProvidersScreen lists AI providers, their keys and which one is
// active, and lets the user set keys or force a provider.
type ProvidersScreen struct {
	registry Registry
	statuses []llm.ProviderStatus
	selected int
	editing  bool
	input    components.TextInput
	notice   string
	errMsg   string
}

var _ screen.Screen = (*ProvidersScreen)(nil)
var _ screen.KeyHintProvider = (*ProvidersScreen)(nil)

// New creates a new ProvidersScreen.
func New(registry Registry) *ProvidersScreen {
	return &ProvidersScreen{registry: registry}
}

func (s *ProvidersScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ProvidersScreen) load() tea.Cmd {
	reg := s.registry
	return func() tea.Msg {
		return statusLoadedMsg{Statuses: reg.Status(context.Background())}
	}
}

func (s *ProvidersScreen) Title() string {
	return "AI Providers"
}

func (s *ProvidersScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save key"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Set key"},
		{Key: "F", Description: "Force/auto"},
		{Key: "D", Description: "Delete key"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProvidersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		s.statuses = msg.Statuses
		if s.selected >= len(s.statuses) {
			s.selected = max(len(s.statuses)-1, 0)
		}
		return s, nil

	case actionDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.notice = ""
			return s, nil
		}
		s.errMsg = ""
		s.notice = msg.Notice
		return s, tea.Batch(s.load(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ProvidersScreen) current() (llm.ProviderStatus, bool) {
	if s.selected < 0 || s.selected >= len(s.statuses) {
		return llm.ProviderStatus{}, false
	}
	return s.statuses[s.selected], true
}

func (s *ProvidersScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.editing {
		if key == "enter" {
			s.editing = false
			st, ok := s.current()
			if !ok || s.input.Value() == "" {
				return s, nil
			}
			return s, s.setKey(st.Name, s.input.Value())
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.statuses)-1 {
			s.selected++
		}
	case "enter":
		if st, ok := s.current(); ok {
			s.editing = true
			s.input = components.NewTextInput(fmt.Sprintf("Paste your %s API key", st.Name), true, 48)
			return s, s.input.Init()
		}
	case "d", "D":
		if st, ok := s.current(); ok && st.HasKey {
			return s, s.setKey(st.Name, "")
		}
	case "f", "F":
		if st, ok := s.current(); ok {
			name := st.Name
			if st.Forced {
				name = ""
			}
			return s, s.force(name)
		}
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *ProvidersScreen) setKey(name, key string) tea.Cmd {
	reg := s.registry
	return func() tea.Msg {
		if err := reg.SetAPIKey(context.Background(), name, key); err != nil {
			return actionDoneMsg{Err: err}
		}
		if key == "" {
			return actionDoneMsg{Notice: fmt.Sprintf("Removed the %s key.", name)}
		}
		return actionDoneMsg{Notice: fmt.Sprintf("Saved the %s key.", name)}
	}
}

func (s *ProvidersScreen) force(name string) tea.Cmd {
	reg := s.registry
	return func() tea.Msg {
		if err := reg.Force(context.Background(), name); err != nil {
			return actionDoneMsg{Err: err}
		}
		if name == "" {
			return actionDoneMsg{Notice: "Provider selection is automatic again."}
		}
		return actionDoneMsg{Notice: fmt.Sprintf("Requests now go to %s only.", name)}
	}
}

func (s *ProvidersScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.ArcadeYellow).
		Bold(true).
		Render("AI PROVIDERS"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Tried top to bottom; the first with a key answers."))
	b.WriteString("\n\n")

	var rows []string
	for i, st := range s.statuses {
		rows = append(rows, renderRow(st, i == s.selected))
	}
	if len(rows) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.TextDim).Render("Loading..."))
	}
	b.WriteString(components.ArcadeCard(strings.Join(rows, "\n"), cw))

	if s.editing {
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render(s.notice))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return components.CabinetFrame(b.String(), width, height)
}

func renderRow(st llm.ProviderStatus, selected bool) string {
	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		prefix = "▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}

	key := lipgloss.NewStyle().Foreground(theme.TextDim).Render("no key")
	if st.HasKey {
		key = lipgloss.NewStyle().Foreground(theme.Success).Render("key set")
	}

	var tags []string
	if st.Active {
		tags = append(tags, lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render("active"))
	}
	if st.Forced {
		tags = append(tags, lipgloss.NewStyle().Foreground(theme.Accent).Render("forced"))
	}

	line := style.Render(fmt.Sprintf("%s%-10s", prefix, st.Name)) + "  " + key +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("  "+st.Model)
	if len(tags) > 0 {
		line += "  " + strings.Join(tags, " ")
	}
	return line
}
