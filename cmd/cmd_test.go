package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/store"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "•••"},
		{"gsk_1234567890abcd", "gsk_••••••••abcd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskKey(tt.key), "maskKey(%q)", tt.key)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "short", truncate("short", 10))
}

func TestEvaluateCommand_MockJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	dbPath := filepath.Join(dir, "cli.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"evaluate", "--db", dbPath, "--mock", "--json", "--type", "detailed",
		"--question", "Describe a time you resolved a conflict in your team",
		"--answer", "First I listened to both engineers because the conflict was about design. Then we measured both options and picked the faster one.",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var res evaluation.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, evaluation.StateComplete, res.State)
	require.NotNil(t, res.Evaluation)
	assert.True(t, res.Evaluation.Fallback)
	assert.Equal(t, evaluation.TypeDetailed, res.Evaluation.Type)
	assert.NotEmpty(t, res.Tips)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	req, ok, err := evaluation.LoadHandoff(context.Background(), s.KVRepo())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Describe a time you resolved a conflict in your team", req.Question)
	assert.Equal(t, evaluation.TypeDetailed, req.Type)
}
