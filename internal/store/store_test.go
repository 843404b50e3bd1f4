package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.KVRepo().Set(ctx, "apikey.groq", "gsk-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, ok, err := s.KVRepo().Get(ctx, "apikey.groq")
	if err != nil || !ok || v != "gsk-1" {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestSequenceIsGlobal(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "groq", Model: "m", Purpose: "evaluation", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	if err := repo.AppendEvaluation(ctx, EvaluationEventData{RunID: "r1", Question: "q", Answer: "a", RatingMode: "tough", EvaluationType: "simple", State: "complete"}); err != nil {
		t.Fatalf("append evaluation: %v", err)
	}
	if err := repo.AppendQuizResult(ctx, QuizEventData{SessionID: "s1", Category: "logical", TotalQuestions: 5, Answered: 4, Score: 3, DurationSecs: 60}); err != nil {
		t.Fatalf("append quiz: %v", err)
	}

	llmEvents, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	evals, _ := repo.QueryEvaluations(ctx, QueryOpts{})
	quizzes, _ := repo.QueryQuizResults(ctx, QueryOpts{})
	if len(llmEvents) != 1 || len(evals) != 1 || len(quizzes) != 1 {
		t.Fatalf("got %d/%d/%d events, want 1/1/1", len(llmEvents), len(evals), len(quizzes))
	}
	if !(llmEvents[0].Sequence < evals[0].Sequence && evals[0].Sequence < quizzes[0].Sequence) {
		t.Errorf("sequences not increasing across tables: %d, %d, %d",
			llmEvents[0].Sequence, evals[0].Sequence, quizzes[0].Sequence)
	}
}

func TestLLMEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := LLMRequestEventData{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Purpose:      "evaluation",
		InputTokens:  120,
		OutputTokens: 80,
		LatencyMs:    950,
		Success:      false,
		ErrorMessage: "rate limited",
		RequestBody:  "[user]\nhello",
	}
	if err := repo.AppendLLMRequest(ctx, data); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	got, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected event")
	}
	if got.LLMRequestEventData != data {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got.LLMRequestEventData, data)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp %v is not recent", got.Timestamp)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing event")
	}
}

func TestQueryOptsLimitAndOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := range 5 {
		err := repo.AppendQuizResult(ctx, QuizEventData{SessionID: "s", Category: "verbal", TotalQuestions: 5, Score: i})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryQuizResults(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Score != 4 || events[1].Score != 3 {
		t.Errorf("expected newest first (4, 3), got (%d, %d)", events[0].Score, events[1].Score)
	}

	after, err := repo.QueryQuizResults(ctx, QueryOpts{After: events[0].Sequence - 1})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("After filter returned %d events, want 1", len(after))
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "evaluation", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "insights", InputTokens: 40, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "evaluation", InputTokens: 10, OutputTokens: 5, LatencyMs: 400, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	eval := byPurpose[0]
	if eval.Purpose != "evaluation" || eval.Calls != 2 || eval.InputTokens != 110 || eval.OutputTokens != 55 || eval.AvgLatencyMs != 300 {
		t.Errorf("unexpected evaluation usage: %+v", eval)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("got %d models, want 2", len(byModel))
	}
	if byModel[1].Model != "llama-3.3-70b-versatile" || byModel[1].Calls != 2 {
		t.Errorf("unexpected model usage: %+v", byModel[1])
	}
}

func TestKVRepo(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "apikey.openai"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := kv.Set(ctx, "apikey.openai", "sk-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "apikey.openai", "sk-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := kv.Set(ctx, "apikey.groq", "gsk"); err != nil {
		t.Fatalf("set groq: %v", err)
	}
	if err := kv.Set(ctx, "apikeyXother", "x"); err != nil {
		t.Fatalf("set other: %v", err)
	}
	if err := kv.Set(ctx, "handoff.question", "Tell me about yourself"); err != nil {
		t.Fatalf("set handoff: %v", err)
	}

	v, ok, err := kv.Get(ctx, "apikey.openai")
	if err != nil || !ok || v != "sk-2" {
		t.Fatalf("Get = %q, %v, %v; want sk-2", v, ok, err)
	}

	keys, err := kv.List(ctx, "apikey.")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 || keys["apikey.groq"] != "gsk" || keys["apikey.openai"] != "sk-2" {
		t.Errorf("List(apikey.) = %v", keys)
	}

	if err := kv.Delete(ctx, "apikey.openai"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete(ctx, "apikey.openai"); err != nil {
		t.Fatalf("delete twice: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "apikey.openai"); ok {
		t.Error("expected key to be gone after Delete")
	}
}

func TestKVRepoSetAll(t *testing.T) {
	s := openTestStore(t)
	kv := s.KVRepo()
	ctx := context.Background()

	if err := kv.Set(ctx, "handoff.question", "old"); err != nil {
		t.Fatalf("set: %v", err)
	}
	err := kv.SetAll(ctx, map[string]string{
		"handoff.question": "new",
		"handoff.response": "answer",
	})
	if err != nil {
		t.Fatalf("set all: %v", err)
	}

	got, err := kv.List(ctx, "handoff.")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got["handoff.question"] != "new" || got["handoff.response"] != "answer" {
		t.Errorf("List(handoff.) = %v", got)
	}
}
