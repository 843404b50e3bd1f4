package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/tracing"
)

// KeyChecker reports whether any AI provider is configured. It is
// satisfied by *llm.Registry.
type KeyChecker interface {
	HasAPIKeys(ctx context.Context) bool
}

// Orchestrator runs the AI evaluation and the insight call side by side,
// each under its own deadline, and degrades to the mock generator and
// static tips when they fail.
type Orchestrator struct {
	evaluator Evaluator
	insights  InsightSource
	keys      KeyChecker
	fallback  Evaluator

	cfg     Config
	events  store.EventRepo
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// WithFallback replaces the mock generator used when the AI call fails.
func WithFallback(e Evaluator) Option {
	return func(o *Orchestrator) { o.fallback = e }
}

// WithEvents records every run as an evaluation event.
func WithEvents(repo store.EventRepo) Option {
	return func(o *Orchestrator) { o.events = repo }
}

// WithMetrics counts runs by state and source.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(evaluator Evaluator, insights InsightSource, keys KeyChecker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		evaluator: evaluator,
		insights:  insights,
		keys:      keys,
		fallback:  NewMockGenerator(),
		cfg:       DefaultConfig(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromRegistry wires an Orchestrator whose AI calls go through r.
func NewFromRegistry(r *llm.Registry, cfg Config, opts ...Option) *Orchestrator {
	opts = append([]Option{WithConfig(cfg)}, opts...)
	return NewOrchestrator(NewAIEvaluator(r, cfg), NewInsightGenerator(r, cfg), r, opts...)
}

// Run evaluates one answer.
//
// It returns ErrEmptyAnswer for a blank question or answer, and a
// StateMissingKeys result with llm.ErrNoAPIKeys when no provider is
// configured. Every other failure is reported in the Result, not as an
// error, except cancellation of ctx itself.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{RunID: uuid.NewString()}

	ctx, span := tracing.Tracer().Start(ctx, "evaluation.run", trace.WithAttributes(
		attribute.String("evaluation.run_id", res.RunID),
		attribute.String("evaluation.rating_mode", string(req.RatingMode)),
		attribute.String("evaluation.type", string(req.Type)),
	))
	defer span.End()

	if !o.keys.HasAPIKeys(ctx) {
		res.State = StateMissingKeys
		res.Error = "No AI provider API key is configured. Add a Groq, OpenAI or Gemini key to get evaluations."
		res.Insights = []string{}
		res.Tips = StaticTips()
		res.Duration = time.Since(start)
		o.record(ctx, req, res, "none")
		span.SetStatus(codes.Error, string(StateMissingKeys))
		return res, llm.ErrNoAPIKeys
	}

	var (
		g        errgroup.Group
		ev       *Evaluation
		evalErr  error
		insights []string
	)
	g.Go(func() error {
		ev, evalErr = o.evaluate(ctx, req)
		return nil
	})
	g.Go(func() error {
		insights = o.generateInsights(ctx, req)
		return nil
	})
	g.Wait()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return nil, err
	}

	res.Insights = insights
	if len(insights) == 0 {
		res.Insights = []string{}
		res.Tips = StaticTips()
	}

	source := "ai"
	if evalErr != nil {
		res.State = StateFailed
		res.Error = fmt.Sprintf("Could not evaluate your answer: %v", evalErr)
		source = "none"
		span.RecordError(evalErr)
		span.SetStatus(codes.Error, string(StateFailed))
	} else {
		res.State = StateComplete
		res.Evaluation = ev
		if ev.Fallback {
			source = "mock"
		}
		span.SetAttributes(
			attribute.String("evaluation.provider", ev.Provider),
			attribute.Float64("evaluation.overall_score", ev.OverallScore),
		)
	}
	res.Duration = time.Since(start)

	o.record(ctx, req, res, source)
	return res, nil
}

// evaluate races the AI evaluator against EvaluationTimeout, then falls
// back to the mock generator. It returns an error only when both fail.
func (o *Orchestrator) evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	ctx, span := tracing.Tracer().Start(ctx, "evaluation.evaluate")
	defer span.End()

	ev, aiErr := raceTimeout(ctx, o.cfg.EvaluationTimeout, func(ctx context.Context) (*Evaluation, error) {
		return o.evaluator.Evaluate(ctx, req)
	})
	if aiErr == nil {
		return ev, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	o.logger.Warn("ai evaluation failed, using fallback", zap.Error(aiErr))
	span.AddEvent("fallback", trace.WithAttributes(attribute.String("cause", aiErr.Error())))

	ev, fbErr := o.fallback.Evaluate(ctx, req)
	if fbErr != nil {
		o.logger.Error("fallback evaluation failed", zap.Error(fbErr))
		span.RecordError(fbErr)
		span.SetStatus(codes.Error, "fallback failed")
		return nil, fmt.Errorf("%w; fallback: %w", describe(aiErr), fbErr)
	}
	ev.Fallback = true
	return ev, nil
}

// generateInsights races the insight source against InsightTimeout.
// Failure of any kind yields nil.
func (o *Orchestrator) generateInsights(ctx context.Context, req Request) []string {
	ctx, span := tracing.Tracer().Start(ctx, "evaluation.insights")
	defer span.End()

	insights, err := raceTimeout(ctx, o.cfg.InsightTimeout, func(ctx context.Context) ([]string, error) {
		return o.insights.Insights(ctx, req)
	})

	outcome := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "failed"
	}
	if o.metrics != nil {
		o.metrics.Insights.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		o.logger.Info("insights unavailable", zap.String("outcome", outcome), zap.Error(err))
		span.SetStatus(codes.Error, outcome)
		return nil
	}
	return insights
}

// raceTimeout runs fn under a deadline and returns as soon as either fn
// finishes or the deadline passes. The deadline context is cancelled on
// return, so fn's network call is aborted; a result that arrives after
// the deadline is dropped.
func raceTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// describe turns a deadline error into a readable cause.
func describe(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("AI evaluation timed out")
	}
	return err
}

func (o *Orchestrator) record(ctx context.Context, req Request, res *Result, source string) {
	if o.metrics != nil {
		o.metrics.Evaluations.WithLabelValues(string(res.State), source).Inc()
	}
	o.logger.Info("evaluation finished",
		zap.String("run_id", res.RunID),
		zap.String("state", string(res.State)),
		zap.String("source", source),
		zap.Int("insights", len(res.Insights)),
		zap.Duration("duration", res.Duration),
	)
	if o.events == nil {
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		o.logger.Warn("marshal evaluation result", zap.Error(err))
	}
	data := store.EvaluationEventData{
		RunID:          res.RunID,
		Question:       req.Question,
		Answer:         req.Answer,
		RatingMode:     string(req.RatingMode),
		EvaluationType: string(req.Type),
		State:          string(res.State),
		InsightCount:   len(res.Insights),
		LatencyMs:      res.Duration.Milliseconds(),
		ErrorMessage:   res.Error,
		Result:         string(body),
	}
	if ev := res.Evaluation; ev != nil {
		data.Provider = ev.Provider
		data.Fallback = ev.Fallback
		data.OverallScore = ev.OverallScore
	}
	if err := o.events.AppendEvaluation(context.WithoutCancel(ctx), data); err != nil {
		o.logger.Warn("failed to record evaluation event", zap.Error(err))
	}
}
