package llm

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/prepwise/internal/metrics"
)

// InstrumentedProvider records request counts and latency in Prometheus.
type InstrumentedProvider struct {
	inner   Provider
	metrics *metrics.Metrics
}

// WithMetrics wraps a Provider with Prometheus instrumentation. A nil m
// returns p unchanged.
func WithMetrics(p Provider, m *metrics.Metrics) Provider {
	if m == nil {
		return p
	}
	return &InstrumentedProvider{inner: p, metrics: m}
}

func (i *InstrumentedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := i.inner.Generate(ctx, req)

	purpose := PurposeFrom(ctx)
	i.metrics.LLMRequests.WithLabelValues(i.inner.Name(), purpose, outcome(err)).Inc()
	i.metrics.LLMDuration.WithLabelValues(i.inner.Name(), purpose).Observe(time.Since(start).Seconds())

	return resp, err
}

func (i *InstrumentedProvider) Name() string {
	return i.inner.Name()
}

func (i *InstrumentedProvider) ModelID() string {
	return i.inner.ModelID()
}

// outcome classifies an error into a low-cardinality metric label.
func outcome(err error) string {
	var (
		rl      *ErrRateLimit
		invalid *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &invalid):
		return "invalid"
	case errors.As(err, &maxTok):
		return "truncated"
	default:
		return "unavailable"
	}
}
