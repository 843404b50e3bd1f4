package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Unanswered marks a question with no selected option.
const Unanswered = -1

var (
	// ErrWrongPhase is returned when an operation is not valid in the
	// session's current phase.
	ErrWrongPhase = errors.New("operation not allowed in current quiz phase")

	// ErrNoQuestions is returned when a quiz is started with no questions.
	ErrNoQuestions = errors.New("quiz has no questions")

	// ErrInvalidOption is returned for an option index outside the question.
	ErrInvalidOption = errors.New("option out of range")
)

// Phase is the lifecycle stage of a quiz session.
type Phase int

const (
	PhaseSelectingCategory Phase = iota // Waiting for a category
	PhaseInProgress                     // Answering questions
	PhaseComplete                       // Submitted and scored
)

func (p Phase) String() string {
	switch p {
	case PhaseSelectingCategory:
		return "selecting_category"
	case PhaseInProgress:
		return "in_progress"
	case PhaseComplete:
		return "complete"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Session holds the state of one quiz attempt. It is not safe for
// concurrent use.
//
// Selected always has one slot per question, so len(Selected) ==
// len(Questions) in every phase.
type Session struct {
	// ID identifies the current attempt. Each Start assigns a new one.
	ID        string
	Phase     Phase
	Category  Category
	Questions []Question
	Current   int
	Selected  []int
	Score     int
	Complete  bool
	StartedAt time.Time
	Elapsed   time.Duration

	now func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session waiting for a category.
func NewSession(opts ...Option) *Session {
	s := &Session{ID: uuid.NewString(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.clear()
	return s
}

func (s *Session) clear() {
	s.Phase = PhaseSelectingCategory
	s.Category = ""
	s.Questions = []Question{}
	s.Selected = []int{}
	s.Current = 0
	s.Score = 0
	s.Complete = false
	s.StartedAt = time.Time{}
	s.Elapsed = 0
}

func (s *Session) requirePhase(p Phase) error {
	if s.Phase != p {
		return fmt.Errorf("%w: %s (need %s)", ErrWrongPhase, s.Phase, p)
	}
	return nil
}

// Start begins a quiz over the given questions.
func (s *Session) Start(category Category, questions []Question) error {
	if err := s.requirePhase(PhaseSelectingCategory); err != nil {
		return err
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.ID = uuid.NewString()
	s.Category = category
	s.Questions = append([]Question(nil), questions...)
	s.Selected = make([]int, len(questions))
	for i := range s.Selected {
		s.Selected[i] = Unanswered
	}
	s.Current = 0
	s.StartedAt = s.now()
	s.Elapsed = 0
	s.Phase = PhaseInProgress
	return nil
}

// StartRandom begins a quiz with up to n shuffled questions of category c
// drawn from bank. n <= 0 means every question in the category.
func (s *Session) StartRandom(bank *Bank, c Category, n int, rng *rand.Rand) error {
	if c != CategoryMixed && !KnownCategory(c) {
		return fmt.Errorf("unknown category %q", c)
	}
	return s.Start(c, bank.Pick(c, n, rng))
}

// SelectAnswer records option as the answer to the current question.
func (s *Session) SelectAnswer(option int) error {
	if err := s.requirePhase(PhaseInProgress); err != nil {
		return err
	}
	if option < 0 || option >= len(s.Questions[s.Current].Options) {
		return fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}
	s.Selected[s.Current] = option
	return nil
}

// Next moves to the following question, staying on the last one.
func (s *Session) Next() error {
	return s.GoTo(s.Current + 1)
}

// Prev moves to the previous question, staying on the first one.
func (s *Session) Prev() error {
	return s.GoTo(s.Current - 1)
}

// GoTo moves to question i, clamped to the valid range.
func (s *Session) GoTo(i int) error {
	if err := s.requirePhase(PhaseInProgress); err != nil {
		return err
	}
	s.Current = max(0, min(i, len(s.Questions)-1))
	return nil
}

// Tick updates Elapsed while the quiz is in progress.
func (s *Session) Tick(now time.Time) error {
	if err := s.requirePhase(PhaseInProgress); err != nil {
		return err
	}
	if now.After(s.StartedAt) {
		s.Elapsed = now.Sub(s.StartedAt)
	}
	return nil
}

// Submit scores the quiz and freezes the elapsed time. Unanswered
// questions count as wrong.
func (s *Session) Submit() error {
	if err := s.requirePhase(PhaseInProgress); err != nil {
		return err
	}
	if err := s.Tick(s.now()); err != nil {
		return err
	}

	s.Score = 0
	for i, q := range s.Questions {
		if s.Selected[i] == q.CorrectAnswer {
			s.Score++
		}
	}
	s.Complete = true
	s.Phase = PhaseComplete
	return nil
}

// Reset returns the session to category selection. It is valid in any phase.
func (s *Session) Reset() {
	s.clear()
}

// CurrentQuestion returns the question being shown, or nil outside a quiz.
func (s *Session) CurrentQuestion() *Question {
	if len(s.Questions) == 0 {
		return nil
	}
	return &s.Questions[s.Current]
}

// Answered returns how many questions have a selected option.
func (s *Session) Answered() int {
	n := 0
	for _, sel := range s.Selected {
		if sel != Unanswered {
			n++
		}
	}
	return n
}

// Percent returns the score as a percentage of the question count.
func (s *Session) Percent() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	return 100 * float64(s.Score) / float64(len(s.Questions))
}

// ReviewItem is one row of the post-quiz review.
type ReviewItem struct {
	Index    int      `json:"index"`
	Question Question `json:"question"`
	Selected int      `json:"selected"`
	Correct  bool     `json:"correct"`
}

// Review lists every question with the chosen option. Only valid once the
// quiz is complete.
func (s *Session) Review() ([]ReviewItem, error) {
	if err := s.requirePhase(PhaseComplete); err != nil {
		return nil, err
	}
	items := make([]ReviewItem, len(s.Questions))
	for i, q := range s.Questions {
		items[i] = ReviewItem{
			Index:    i,
			Question: q,
			Selected: s.Selected[i],
			Correct:  s.Selected[i] == q.CorrectAnswer,
		}
	}
	return items, nil
}
