package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider is a decorator that spaces requests to stay under a
// provider's request quota.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a Provider with a token-bucket limiter. A zero
// RequestsPerMinute returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.RequestsPerMinute <= 0 {
		return p
	}
	every := rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	return &RateLimitProvider{
		inner:   p,
		limiter: rate.NewLimiter(every, max(cfg.Burst, 1)),
	}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Wait fails early when the next token lands past the deadline.
		return nil, &ErrRateLimit{Err: err}
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) Name() string {
	return r.inner.Name()
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
