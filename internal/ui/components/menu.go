package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/ui/theme"
)

// MenuItem is one row of a Menu. Disabled rows are rendered but never
// selected, which makes them usable as section headings.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions navigated with the arrow keys or j/k.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

func (m Menu) Init() tea.Cmd {
	return nil
}

// Update moves the selection or runs the selected item's action on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.Selected = -1
		m.move(1)
	case "end", "G":
		m.Selected = len(m.Items)
		m.move(-1)
	case "enter":
		if item, ok := m.current(); ok && item.Action != nil {
			return m, item.Action()
		}
	}
	return m, nil
}

// move steps the selection towards the next enabled item in direction
// step, staying put when there is none.
func (m *Menu) move(step int) {
	for i := m.Selected + step; i >= 0 && i < len(m.Items); i += step {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) || m.Items[m.Selected].Disabled {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

var (
	menuSelected = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	menuItem     = lipgloss.NewStyle().Foreground(theme.Text)
	menuHeading  = lipgloss.NewStyle().Foreground(theme.TextDim)
)

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case i == m.Selected:
			b.WriteString(menuSelected.Render("  ▸ " + item.Label))
		case item.Disabled:
			b.WriteString(menuHeading.Render("    " + item.Label))
		default:
			b.WriteString(menuItem.Render("    " + item.Label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
