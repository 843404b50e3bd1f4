package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/store"
)

// Key-value store keys owned by the registry.
const (
	KeyPrefixAPIKey   = "apikey."
	KeyForcedProvider = "provider.forced"
)

// APIKeyName returns the key-value key holding a provider's API key.
func APIKeyName(provider string) string {
	return KeyPrefixAPIKey + provider
}

// ProviderStatus describes one provider for status displays.
type ProviderStatus struct {
	Name   string `json:"name"`
	HasKey bool   `json:"has_key"`
	Model  string `json:"model"`
	Forced bool   `json:"forced"`

	// Active marks the provider GenerateWithBest would try first.
	Active bool `json:"active"`
}

// Registry resolves which providers are usable and dispatches requests to
// the best one, falling through the rest in ProviderOrder on failure.
// API keys stored in the key-value store take precedence over config.
type Registry struct {
	cfg     Config
	keys    store.KVRepo
	mw      Middleware
	factory Factory

	mu     sync.Mutex
	forced string
	cache  map[string]cachedProvider
}

type cachedProvider struct {
	apiKey   string
	provider Provider
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithKeyStore reads API keys and the forced provider from kv.
func WithKeyStore(kv store.KVRepo) RegistryOption {
	return func(r *Registry) { r.keys = kv }
}

// WithEventRepo records every request as an LLM request event.
func WithEventRepo(repo store.EventRepo) RegistryOption {
	return func(r *Registry) { r.mw.EventRepo = repo }
}

// WithLogger sets the logger for providers and the registry.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.mw.Logger = logger }
}

// WithMetricsCollector instruments providers with m.
func WithMetricsCollector(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.mw.Metrics = m }
}

// WithFactory replaces the SDK-backed provider constructor.
func WithFactory(f Factory) RegistryOption {
	return func(r *Registry) { r.factory = f }
}

// NewRegistry creates a Registry.
func NewRegistry(cfg Config, opts ...RegistryOption) *Registry {
	r := &Registry{
		cfg:     cfg,
		forced:  cfg.Provider,
		factory: NewBaseProvider,
		cache:   make(map[string]cachedProvider),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.mw.Logger == nil {
		r.mw.Logger = zap.NewNop()
	}
	return r
}

// APIKey returns the API key for a provider, or "" if none is configured.
func (r *Registry) APIKey(ctx context.Context, name string) (string, error) {
	pc, err := r.cfg.For(name)
	if err != nil {
		return "", err
	}
	if r.keys != nil {
		v, ok, err := r.keys.Get(ctx, APIKeyName(name))
		if err != nil {
			return "", fmt.Errorf("read %s API key: %w", name, err)
		}
		if ok && v != "" {
			return v, nil
		}
	}
	return pc.APIKey, nil
}

// HasAPIKeys reports whether at least one provider has an API key.
func (r *Registry) HasAPIKeys(ctx context.Context) bool {
	for _, name := range ProviderOrder {
		key, err := r.APIKey(ctx, name)
		if err != nil {
			r.mw.Logger.Warn("api key lookup failed", zap.String("provider", name), zap.Error(err))
			continue
		}
		if key != "" {
			return true
		}
	}
	return false
}

// SetAPIKey stores a provider's API key. An empty key removes it.
func (r *Registry) SetAPIKey(ctx context.Context, name, key string) error {
	if !KnownProvider(name) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if r.keys == nil {
		return errors.New("no key store configured")
	}
	if key == "" {
		return r.keys.Delete(ctx, APIKeyName(name))
	}
	return r.keys.Set(ctx, APIKeyName(name), key)
}

// Force pins GenerateWithBest to one provider. An empty name clears the
// override. The choice is persisted in the key store when one is set.
func (r *Registry) Force(ctx context.Context, name string) error {
	if name != "" && !KnownProvider(name) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if r.keys == nil {
		r.mu.Lock()
		r.forced = name
		r.mu.Unlock()
		return nil
	}
	if name == "" {
		return r.keys.Delete(ctx, KeyForcedProvider)
	}
	return r.keys.Set(ctx, KeyForcedProvider, name)
}

// Forced returns the forced provider name, or "" for automatic selection.
func (r *Registry) Forced(ctx context.Context) string {
	if r.keys != nil {
		v, ok, err := r.keys.Get(ctx, KeyForcedProvider)
		if err != nil {
			r.mw.Logger.Warn("forced provider lookup failed", zap.Error(err))
		} else if ok && KnownProvider(v) {
			return v
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forced
}

// Status reports every provider in priority order.
func (r *Registry) Status(ctx context.Context) []ProviderStatus {
	forced := r.Forced(ctx)
	order := r.order(ctx, forced)

	out := make([]ProviderStatus, 0, len(ProviderOrder))
	for _, name := range ProviderOrder {
		pc, _ := r.cfg.For(name)
		key, _ := r.APIKey(ctx, name)
		out = append(out, ProviderStatus{
			Name:   name,
			HasKey: key != "",
			Model:  pc.Model,
			Forced: name == forced,
			Active: len(order) > 0 && order[0] == name,
		})
	}
	return out
}

// order lists keyed providers in the order they will be tried. A forced
// provider with a key is the only candidate; without a key it is ignored.
func (r *Registry) order(ctx context.Context, forced string) []string {
	if forced != "" {
		if key, err := r.APIKey(ctx, forced); err == nil && key != "" {
			return []string{forced}
		}
	}
	var names []string
	for _, name := range ProviderOrder {
		if key, err := r.APIKey(ctx, name); err == nil && key != "" {
			names = append(names, name)
		}
	}
	return names
}

// Available returns the decorated providers GenerateWithBest would try.
// Providers that fail to initialize are logged and skipped.
func (r *Registry) Available(ctx context.Context) ([]Provider, error) {
	names := r.order(ctx, r.Forced(ctx))
	if len(names) == 0 {
		return nil, ErrNoAPIKeys
	}

	var out []Provider
	var errs []error
	for _, name := range names {
		p, err := r.provider(ctx, name)
		if err != nil {
			r.mw.Logger.Warn("provider init failed", zap.String("provider", name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Best returns the highest-priority usable provider.
func (r *Registry) Best(ctx context.Context) (Provider, error) {
	ps, err := r.Available(ctx)
	if err != nil {
		return nil, err
	}
	return ps[0], nil
}

// GenerateWithBest sends req to each available provider in order until one
// succeeds, returning the response and the name of the provider that served
// it. Context errors stop the fallthrough immediately.
func (r *Registry) GenerateWithBest(ctx context.Context, req Request) (*Response, string, error) {
	ps, err := r.Available(ctx)
	if err != nil {
		return nil, "", err
	}

	var errs []error
	for _, p := range ps {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, p.Name(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		r.mw.Logger.Info("provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, "", errors.Join(errs...)
}

// provider returns the cached decorated provider for name, rebuilding it
// when the API key changed since it was created.
func (r *Registry) provider(ctx context.Context, name string) (Provider, error) {
	key, err := r.APIKey(ctx, name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[name]; ok && c.apiKey == key {
		return c.provider, nil
	}

	pc, err := r.cfg.For(name)
	if err != nil {
		return nil, err
	}
	pc.APIKey = key

	base, err := r.factory(ctx, name, pc)
	if err != nil {
		return nil, err
	}
	p := Decorate(base, r.cfg, r.mw)
	r.cache[name] = cachedProvider{apiKey: key, provider: p}
	return p, nil
}
