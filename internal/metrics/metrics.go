package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one process. Each instance owns
// its registry so tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	LLMRequests     *prometheus.CounterVec
	LLMDuration     *prometheus.HistogramVec
	Evaluations     *prometheus.CounterVec
	Insights        *prometheus.CounterVec
	QuizSubmissions *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepwise_llm_requests_total",
				Help: "LLM requests by provider, purpose and outcome",
			},
			[]string{"provider", "purpose", "outcome"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prepwise_llm_request_duration_seconds",
				Help:    "Wall-clock duration of LLM requests",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "purpose"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepwise_evaluations_total",
				Help: "Evaluation runs by final state and source (ai, mock, none)",
			},
			[]string{"state", "source"},
		),
		Insights: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepwise_insights_total",
				Help: "Insight generation outcomes (ok, failed, timeout)",
			},
			[]string{"outcome"},
		),
		QuizSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepwise_quiz_submissions_total",
				Help: "Submitted quizzes by category",
			},
			[]string{"category"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepwise_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prepwise_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 30, 60},
			},
			[]string{"method", "endpoint"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LLMRequests,
		m.LLMDuration,
		m.Evaluations,
		m.Insights,
		m.QuizSubmissions,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations for gin routes.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}
