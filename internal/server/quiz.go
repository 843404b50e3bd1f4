package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
)

var errNoQuiz = errors.New("no quiz for this session; call /api/quiz/start first")

type categoryView struct {
	quiz.CategoryInfo
	Count int `json:"count"`
}

func (s *Server) listCategories(c *gin.Context) {
	out := make([]categoryView, 0, len(quiz.Categories()))
	for _, info := range quiz.Categories() {
		out = append(out, categoryView{CategoryInfo: info, Count: s.cfg.Bank.Count(info.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// questionView hides the correct answer until the quiz is complete.
type questionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type quizView struct {
	ID          string            `json:"id"`
	Phase       string            `json:"phase"`
	Category    quiz.Category     `json:"category,omitempty"`
	Current     int               `json:"current"`
	Total       int               `json:"total"`
	Selected    []int             `json:"selected"`
	Answered    int               `json:"answered"`
	ElapsedSecs int               `json:"elapsed_secs"`
	Question    *questionView     `json:"question,omitempty"`
	Complete    bool              `json:"complete"`
	Score       int               `json:"score"`
	Percent     float64           `json:"percent"`
	Review      []quiz.ReviewItem `json:"review,omitempty"`
}

func newQuizView(qs *quiz.Session) quizView {
	v := quizView{
		ID:          qs.ID,
		Phase:       qs.Phase.String(),
		Category:    qs.Category,
		Current:     qs.Current,
		Total:       len(qs.Questions),
		Selected:    qs.Selected,
		Answered:    qs.Answered(),
		ElapsedSecs: int(qs.Elapsed.Seconds()),
		Complete:    qs.Complete,
	}
	if q := qs.CurrentQuestion(); q != nil && qs.Phase == quiz.PhaseInProgress {
		v.Question = &questionView{ID: q.ID, Text: q.Text, Options: q.Options}
	}
	if review, err := qs.Review(); err == nil {
		v.Score = qs.Score
		v.Percent = qs.Percent()
		v.Review = review
	}
	return v
}

// withQuiz runs fn on the caller's quiz under the server lock. When create
// is set a new quiz is made for callers without one.
func (s *Server) withQuiz(c *gin.Context, create bool, fn func(qs *quiz.Session) error) {
	cookie, _ := s.cookies.Get(c.Request, cookieName)
	id, _ := cookie.Values[cookieClientID].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Clock()
	entry := s.quizzes[id]
	if entry == nil {
		if !create {
			respondError(c, http.StatusNotFound, "no_quiz", errNoQuiz)
			return
		}
		s.pruneLocked()
		id = uuid.NewString()
		entry = &quizEntry{session: quiz.NewSession(quiz.WithClock(s.cfg.Clock))}
		s.quizzes[id] = entry
		cookie.Values[cookieClientID] = id
		if err := cookie.Save(c.Request, c.Writer); err != nil {
			respondError(c, http.StatusInternalServerError, "session_failed", err)
			return
		}
	}
	entry.lastSeen = now

	qs := entry.session
	_ = qs.Tick(now)
	if err := fn(qs); err != nil {
		status, code := http.StatusBadRequest, "invalid_request"
		switch {
		case errors.Is(err, quiz.ErrWrongPhase):
			status, code = http.StatusConflict, "wrong_phase"
		case errors.Is(err, quiz.ErrInvalidOption):
			code = "invalid_option"
		case errors.Is(err, quiz.ErrNoQuestions):
			code = "no_questions"
		}
		respondError(c, status, code, err)
		return
	}
	c.JSON(http.StatusOK, newQuizView(qs))
}

// pruneLocked drops quizzes idle for longer than the session TTL.
func (s *Server) pruneLocked() {
	cutoff := s.cfg.Clock().Add(-s.cfg.SessionTTL)
	for id, e := range s.quizzes {
		if e.lastSeen.Before(cutoff) {
			delete(s.quizzes, id)
		}
	}
}

func (s *Server) getQuiz(c *gin.Context) {
	s.withQuiz(c, false, func(*quiz.Session) error { return nil })
}

type startRequest struct {
	Category string `json:"category" binding:"required"`
	Count    int    `json:"count"`
}

func (s *Server) startQuiz(c *gin.Context) {
	var body startRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	n := body.Count
	if n <= 0 {
		n = s.cfg.QuestionsPerQuiz
	}
	s.withQuiz(c, true, func(qs *quiz.Session) error {
		return qs.StartRandom(s.cfg.Bank, quiz.Category(body.Category), n, s.cfg.Rand)
	})
}

type answerRequest struct {
	Option *int `json:"option" binding:"required"`
}

func (s *Server) answerQuiz(c *gin.Context) {
	var body answerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	s.withQuiz(c, false, func(qs *quiz.Session) error {
		return qs.SelectAnswer(*body.Option)
	})
}

type navigateRequest struct {
	Action string `json:"action" binding:"required"`
	Index  int    `json:"index"`
}

func (s *Server) navigateQuiz(c *gin.Context) {
	var body navigateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	s.withQuiz(c, false, func(qs *quiz.Session) error {
		switch body.Action {
		case "next":
			return qs.Next()
		case "prev":
			return qs.Prev()
		case "goto":
			return qs.GoTo(body.Index)
		}
		return fmt.Errorf("unknown action %q (want next, prev or goto)", body.Action)
	})
}

func (s *Server) submitQuiz(c *gin.Context) {
	s.withQuiz(c, false, func(qs *quiz.Session) error {
		if err := qs.Submit(); err != nil {
			return err
		}
		s.recordQuiz(c.Request.Context(), qs)
		return nil
	})
}

func (s *Server) resetQuiz(c *gin.Context) {
	s.withQuiz(c, false, func(qs *quiz.Session) error {
		qs.Reset()
		return nil
	})
}

func (s *Server) recordQuiz(ctx context.Context, qs *quiz.Session) {
	s.cfg.Metrics.QuizSubmissions.WithLabelValues(string(qs.Category)).Inc()
	err := s.cfg.Events.AppendQuizResult(context.WithoutCancel(ctx), store.QuizEventData{
		SessionID:      qs.ID,
		Category:       string(qs.Category),
		TotalQuestions: len(qs.Questions),
		Answered:       qs.Answered(),
		Score:          qs.Score,
		DurationSecs:   int(qs.Elapsed.Seconds()),
	})
	if err != nil {
		s.cfg.Logger.Warn("failed to record quiz result", zap.Error(err))
	}
}
