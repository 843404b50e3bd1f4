package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens/home"
	"github.com/abhisek/prepwise/internal/screens/providers"
	"github.com/abhisek/prepwise/internal/ui/layout"
)

// providerStatusMsg carries the active provider name for the header.
type providerStatusMsg struct {
	Name string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	home     *home.HomeScreen
	registry providers.Registry
	status   string
	width    int
	height   int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(deps home.Deps) AppModel {
	homeScreen := home.New(deps)
	return AppModel{
		router:   router.New(homeScreen),
		home:     homeScreen,
		registry: deps.Providers,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.loadStatus())
}

func (m AppModel) loadStatus() tea.Cmd {
	if m.registry == nil {
		return nil
	}
	reg := m.registry
	return func() tea.Msg {
		for _, p := range reg.Status(context.Background()) {
			if p.Active {
				return providerStatusMsg{Name: p.Name}
			}
		}
		return providerStatusMsg{}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case providerStatusMsg:
		m.status = msg.Name
		return m, nil

	case providers.ChangedMsg:
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.loadStatus())

	case router.PopScreenMsg:
		cmd := m.router.Update(msg)
		if m.router.Depth() == 1 {
			// Back on the home screen; pick up new quiz and answer results.
			cmd = tea.Batch(cmd, m.home.Refresh())
		}
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render lays out header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, deps home.Deps) error {
	p := tea.NewProgram(newAppModel(deps), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
