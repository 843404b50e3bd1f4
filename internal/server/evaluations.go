package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/store"
)

func (s *Server) listProviders(c *gin.Context) {
	var statuses []llm.ProviderStatus
	if s.cfg.Providers != nil {
		statuses = s.cfg.Providers.Status(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"providers": statuses})
}

type evaluationRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	RatingMode string `json:"rating_mode"`
	Type       string `json:"type"`
}

// createEvaluation runs the orchestrator synchronously. Missing keys and
// failed evaluations are valid results and return 200 with their state.
func (s *Server) createEvaluation(c *gin.Context) {
	var body evaluationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}

	req := evaluation.Request{
		Question:   body.Question,
		Answer:     body.Answer,
		RatingMode: evaluation.RatingMode(body.RatingMode),
		Type:       evaluation.Type(body.Type),
	}
	if err := req.Validate(); err != nil {
		code := "invalid_request"
		if errors.Is(err, evaluation.ErrEmptyAnswer) {
			code = "empty_answer"
		}
		respondError(c, http.StatusBadRequest, code, err)
		return
	}

	res, err := s.cfg.Evaluator.Run(c.Request.Context(), req)
	if err != nil && !errors.Is(err, llm.ErrNoAPIKeys) {
		respondError(c, http.StatusServiceUnavailable, "cancelled", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type evaluationSummary struct {
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
	Question       string    `json:"question"`
	RatingMode     string    `json:"rating_mode"`
	EvaluationType string    `json:"type"`
	State          string    `json:"state"`
	Provider       string    `json:"provider"`
	Fallback       bool      `json:"fallback"`
	OverallScore   float64   `json:"overall_score"`
	LatencyMs      int64     `json:"latency_ms"`
	Error          string    `json:"error,omitempty"`
}

func (s *Server) listEvaluations(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := s.cfg.Events.QueryEvaluations(c.Request.Context(), store.QueryOpts{Limit: limit})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "query_failed", err)
		return
	}

	out := make([]evaluationSummary, 0, len(events))
	for _, e := range events {
		out = append(out, evaluationSummary{
			RunID:          e.RunID,
			Timestamp:      e.Timestamp,
			Question:       e.Question,
			RatingMode:     e.RatingMode,
			EvaluationType: e.EvaluationType,
			State:          e.State,
			Provider:       e.Provider,
			Fallback:       e.Fallback,
			OverallScore:   e.OverallScore,
			LatencyMs:      e.LatencyMs,
			Error:          e.ErrorMessage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": out})
}
