package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/store"
)

// Factory builds an undecorated provider for a name and its settings.
type Factory func(ctx context.Context, name string, cfg ProviderConfig) (Provider, error)

// NewBaseProvider is the default Factory backed by the vendor SDKs.
func NewBaseProvider(ctx context.Context, name string, cfg ProviderConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch name {
	case ProviderGroq:
		p, err = NewGroqProvider(cfg)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg)
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, cfg)
	case ProviderAnthropic:
		p, err = NewAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}
	return p, nil
}

// Middleware carries the collaborators of the decorator chain. Any field
// may be nil.
type Middleware struct {
	EventRepo store.EventRepo
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Decorate wraps base with the standard chain:
// caller → retry → rate limit → metrics → logging → base.
func Decorate(base Provider, cfg Config, mw Middleware) Provider {
	p := WithLogging(base, mw.EventRepo, mw.Logger)
	p = WithMetrics(p, mw.Metrics)
	p = WithRateLimit(p, cfg.RateLimit)
	return WithRetry(p, cfg.Retry)
}
