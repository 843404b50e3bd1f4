package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/store"
)

// fakeFactory hands out pre-built mock providers by name and counts builds.
type fakeFactory struct {
	mu        sync.Mutex
	providers map[string]*MockProvider
	builds    map[string]int
	keys      map[string]string
}

func newFakeFactory(providers map[string]*MockProvider) *fakeFactory {
	for name, p := range providers {
		p.ProviderName = name
	}
	return &fakeFactory{
		providers: providers,
		builds:    make(map[string]int),
		keys:      make(map[string]string),
	}
}

func (f *fakeFactory) build(_ context.Context, name string, cfg ProviderConfig) (Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds[name]++
	f.keys[name] = cfg.APIKey
	p, ok := f.providers[name]
	if !ok {
		return nil, errors.New("no fake for " + name)
	}
	return p, nil
}

func testRegistryConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = RetryConfig{MaxAttempts: 1}
	cfg.RateLimit = RateLimitConfig{}
	return cfg
}

func openKV(t *testing.T) store.KVRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.KVRepo()
}

func TestRegistry_NoKeys(t *testing.T) {
	r := NewRegistry(testRegistryConfig(), WithKeyStore(openKV(t)))
	ctx := context.Background()

	assert.False(t, r.HasAPIKeys(ctx))

	_, _, err := r.GenerateWithBest(ctx, Request{})
	assert.ErrorIs(t, err, ErrNoAPIKeys)

	for _, st := range r.Status(ctx) {
		assert.False(t, st.HasKey, st.Name)
		assert.False(t, st.Active, st.Name)
	}
}

func TestRegistry_KeyStoreOverridesConfig(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.OpenAI.APIKey = "from-config"
	kv := openKV(t)
	ctx := context.Background()

	r := NewRegistry(cfg, WithKeyStore(kv))
	key, err := r.APIKey(ctx, ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	require.NoError(t, r.SetAPIKey(ctx, ProviderOpenAI, "from-store"))
	key, err = r.APIKey(ctx, ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "from-store", key)

	require.NoError(t, r.SetAPIKey(ctx, ProviderOpenAI, ""))
	key, err = r.APIKey(ctx, ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	assert.ErrorIs(t, r.SetAPIKey(ctx, "cohere", "x"), ErrUnknownProvider)
}

func TestRegistry_PriorityOrder(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, APIKeyName(ProviderGemini), "gm"))
	require.NoError(t, kv.Set(ctx, APIKeyName(ProviderOpenAI), "sk"))

	f := newFakeFactory(map[string]*MockProvider{
		ProviderOpenAI: NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"openai"}`)}),
		ProviderGemini: NewMockProvider(),
	})
	r := NewRegistry(testRegistryConfig(), WithKeyStore(kv), WithFactory(f.build))

	resp, name, err := r.GenerateWithBest(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, name)
	assert.JSONEq(t, `{"from":"openai"}`, string(resp.Content))
	assert.Equal(t, 0, f.providers[ProviderGemini].CallCount())
	assert.Equal(t, "sk", f.keys[ProviderOpenAI])

	status := r.Status(ctx)
	require.Len(t, status, len(ProviderOrder))
	assert.Equal(t, ProviderGroq, status[0].Name)
	assert.False(t, status[0].HasKey)
	assert.True(t, status[1].Active)
	assert.False(t, status[2].Active)
	assert.True(t, status[2].HasKey)
}

func TestRegistry_FallsThroughOnFailure(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.Groq.APIKey = "gsk"
	cfg.Gemini.APIKey = "gm"

	f := newFakeFactory(map[string]*MockProvider{
		ProviderGroq:   NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}}),
		ProviderGemini: NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)}),
	})
	r := NewRegistry(cfg, WithFactory(f.build))

	_, name, err := r.GenerateWithBest(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, name)
	assert.Equal(t, 1, f.providers[ProviderGroq].CallCount())
}

func TestRegistry_AllFail(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.Groq.APIKey = "gsk"
	cfg.Anthropic.APIKey = "ant"

	f := newFakeFactory(map[string]*MockProvider{
		ProviderGroq:      NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}),
		ProviderAnthropic: NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}}),
	})
	r := NewRegistry(cfg, WithFactory(f.build))

	_, _, err := r.GenerateWithBest(context.Background(), Request{})
	require.Error(t, err)

	var unavail *ErrProviderUnavailable
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &unavail)
	assert.ErrorAs(t, err, &rl)
	assert.Contains(t, err.Error(), "groq")
	assert.Contains(t, err.Error(), "anthropic")
}

func TestRegistry_ContextErrorStopsFallthrough(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.Groq.APIKey = "gsk"
	cfg.OpenAI.APIKey = "sk"

	f := newFakeFactory(map[string]*MockProvider{
		ProviderGroq:   NewMockProvider(MockResponse{Content: json.RawMessage(`{}`), Delay: time.Second}),
		ProviderOpenAI: NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}),
	})
	r := NewRegistry(cfg, WithFactory(f.build))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := r.GenerateWithBest(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.providers[ProviderOpenAI].CallCount())
}

func TestRegistry_Force(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	cfg := testRegistryConfig()
	cfg.Groq.APIKey = "gsk"
	cfg.Gemini.APIKey = "gm"

	f := newFakeFactory(map[string]*MockProvider{
		ProviderGroq:   NewMockProvider(),
		ProviderGemini: NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}),
	})
	r := NewRegistry(cfg, WithKeyStore(kv), WithFactory(f.build))

	require.NoError(t, r.Force(ctx, ProviderGemini))
	assert.Equal(t, ProviderGemini, r.Forced(ctx))

	// Persisted: a fresh registry on the same store sees the override.
	r2 := NewRegistry(cfg, WithKeyStore(kv), WithFactory(f.build))
	assert.Equal(t, ProviderGemini, r2.Forced(ctx))

	_, name, err := r.GenerateWithBest(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, name)
	assert.Equal(t, 0, f.providers[ProviderGroq].CallCount())

	for _, st := range r.Status(ctx) {
		assert.Equal(t, st.Name == ProviderGemini, st.Forced, st.Name)
		assert.Equal(t, st.Name == ProviderGemini, st.Active, st.Name)
	}

	require.NoError(t, r.Force(ctx, ""))
	assert.Equal(t, "", r.Forced(ctx))

	assert.ErrorIs(t, r.Force(ctx, "cohere"), ErrUnknownProvider)
}

func TestRegistry_ForcedWithoutKeyIsIgnored(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.Provider = ProviderAnthropic
	cfg.OpenAI.APIKey = "sk"

	f := newFakeFactory(map[string]*MockProvider{
		ProviderOpenAI: NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}),
	})
	r := NewRegistry(cfg, WithFactory(f.build))

	_, name, err := r.GenerateWithBest(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, name)
}

func TestRegistry_ForceWithoutKeyStoreConcurrent(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.OpenAI.APIKey = "sk"
	cfg.Gemini.APIKey = "gm"

	openai, gemini := NewMockProvider(), NewMockProvider()
	for range 50 {
		openai.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})
		gemini.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})
	}
	f := newFakeFactory(map[string]*MockProvider{
		ProviderOpenAI: openai,
		ProviderGemini: gemini,
	})
	r := NewRegistry(cfg, WithFactory(f.build))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			name := ProviderGemini
			if i%2 == 0 {
				name = ""
			}
			assert.NoError(t, r.Force(ctx, name))
		}()
		go func() {
			defer wg.Done()
			_, _, err := r.GenerateWithBest(ctx, Request{})
			assert.NoError(t, err)
			r.Status(ctx)
		}()
	}
	wg.Wait()

	require.NoError(t, r.Force(ctx, ProviderGemini))
	_, name, err := r.GenerateWithBest(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, name)
	assert.Equal(t, "", cfg.Provider)
}

func TestRegistry_CachesProvidersUntilKeyChanges(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, APIKeyName(ProviderGroq), "gsk-1"))

	f := newFakeFactory(map[string]*MockProvider{
		ProviderGroq: NewMockProvider(),
	})
	r := NewRegistry(testRegistryConfig(), WithKeyStore(kv), WithFactory(f.build))

	_, err := r.Best(ctx)
	require.NoError(t, err)
	_, err = r.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.builds[ProviderGroq])

	require.NoError(t, kv.Set(ctx, APIKeyName(ProviderGroq), "gsk-2"))
	_, err = r.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.builds[ProviderGroq])
	assert.Equal(t, "gsk-2", f.keys[ProviderGroq])
}

func TestRegistry_RecordsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := testRegistryConfig()
	cfg.Groq.APIKey = "gsk"
	f := newFakeFactory(map[string]*MockProvider{
		ProviderGroq: NewMockProvider(MockResponse{
			Content: json.RawMessage(`{"ok":true}`),
			Usage:   Usage{InputTokens: 12, OutputTokens: 4},
		}),
	})
	r := NewRegistry(cfg, WithEventRepo(s.EventRepo()), WithFactory(f.build))

	ctx := WithPurpose(context.Background(), PurposeInsights)
	_, _, err = r.GenerateWithBest(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ProviderGroq, events[0].Provider)
	assert.Equal(t, PurposeInsights, events[0].Purpose)
	assert.Equal(t, 12, events[0].InputTokens)
	assert.True(t, events[0].Success)
	assert.Contains(t, events[0].RequestBody, "[user]\nhi")
}
