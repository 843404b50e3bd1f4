// Package server exposes evaluations and quizzes over a local HTTP API.
package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
)

// Runner runs one evaluation. It is satisfied by *evaluation.Orchestrator.
type Runner interface {
	Run(ctx context.Context, req evaluation.Request) (*evaluation.Result, error)
}

// ProviderStatuser reports provider configuration. It is satisfied by
// *llm.Registry.
type ProviderStatuser interface {
	Status(ctx context.Context) []llm.ProviderStatus
}

// Config wires the server's dependencies. Evaluator, Bank and Events are
// required; the rest have defaults.
type Config struct {
	Evaluator Runner
	Providers ProviderStatuser
	Events    store.EventRepo
	Bank      *quiz.Bank
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	// SessionSecret signs the quiz cookie. A random secret is used when
	// empty, which invalidates cookies on restart.
	SessionSecret []byte

	// QuestionsPerQuiz is the default quiz length.
	QuestionsPerQuiz int

	// SessionTTL is how long an idle quiz is kept in memory.
	SessionTTL time.Duration

	ServiceName string
	Clock       func() time.Time
	Rand        *rand.Rand
}

const (
	cookieName     = "prepwise-quiz"
	cookieClientID = "client_id"
)

// Server is the HTTP API.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	cookies *sessions.CookieStore

	// quizzes is keyed by the client id stored in the cookie.
	mu      sync.Mutex
	quizzes map[string]*quizEntry
}

type quizEntry struct {
	session  *quiz.Session
	lastSeen time.Time
}

// New builds the server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Evaluator == nil || cfg.Bank == nil || cfg.Events == nil {
		return nil, errors.New("server: evaluator, question bank and event repo are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.QuestionsPerQuiz <= 0 {
		cfg.QuestionsPerQuiz = 5
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "prepwise"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if len(cfg.SessionSecret) == 0 {
		cfg.SessionSecret = []byte(uuid.NewString() + uuid.NewString())
	}

	cookies := sessions.NewCookieStore(cfg.SessionSecret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		cfg:     cfg,
		cookies: cookies,
		quizzes: make(map[string]*quizEntry),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.cfg.ServiceName))
	r.Use(s.cfg.Metrics.Middleware())
	r.Use(requestLogger(s.cfg.Logger))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(s.cfg.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/providers", s.listProviders)

		api.POST("/evaluations", s.createEvaluation)
		api.GET("/evaluations", s.listEvaluations)

		api.GET("/quiz/categories", s.listCategories)
		api.GET("/quiz", s.getQuiz)
		api.POST("/quiz/start", s.startQuiz)
		api.POST("/quiz/answer", s.answerQuiz)
		api.POST("/quiz/navigate", s.navigateQuiz)
		api.POST("/quiz/submit", s.submitQuiz)
		api.POST("/quiz/reset", s.resetQuiz)
	}
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
