// Package screen holds the contract between the router and the Prepwise
// screens (home, quiz, interview, providers, history).
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/ui/layout"
)

// Screen is one full-page view on the router stack. View receives the
// content area only; the app draws the header and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints, e.g.
// to show Ctrl+S while an answer is being written.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
