package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screens/home"
	"github.com/abhisek/prepwise/internal/screens/placeholder"
	"github.com/abhisek/prepwise/internal/screens/providers"
	"github.com/abhisek/prepwise/internal/store"
)

func newTestModel(t *testing.T) (AppModel, *llm.Registry) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg := llm.NewRegistry(llm.DefaultConfig(), llm.WithKeyStore(s.KVRepo()))
	m := newAppModel(home.Deps{Providers: reg, Events: s.EventRepo(), KV: s.KVRepo()})
	return m, reg
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

func TestAppModel_HeaderShowsActiveProvider(t *testing.T) {
	m, reg := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, m.loadStatus()())
	assert.Empty(t, m.status)
	assert.Contains(t, m.render(), "offline")

	require.NoError(t, reg.SetAPIKey(context.Background(), "openai", "sk-test"))
	m, cmd := update(t, m, providers.ChangedMsg{})
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(providerStatusMsg); ok {
			m, _ = update(t, m, msg)
		}
	}
	assert.Equal(t, "openai", m.status)
	assert.Contains(t, m.render(), "openai")
}

func TestAppModel_EscPopsToHome(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, router.PushScreenMsg{Screen: placeholder.New("Test", "nothing here")})
	require.Equal(t, 2, m.router.Depth())

	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())
	assert.Equal(t, 1, m.router.Depth())
	assert.NotNil(t, cmd, "returning home should refresh stats")

	_, cmd = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}

func TestAppModel_FooterUsesScreenHints(t *testing.T) {
	m, _ := newTestModel(t)
	hints := m.footerHints()
	require.NotEmpty(t, hints)
	assert.Equal(t, "Enter", hints[1].Key)

	m, _ = update(t, m, router.PushScreenMsg{Screen: placeholder.New("Test", "nothing here")})
	var keys []string
	for _, h := range m.footerHints() {
		keys = append(keys, h.Key)
	}
	assert.Contains(t, strings.Join(keys, " "), "Esc")
}
