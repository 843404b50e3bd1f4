package evaluation

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/prepwise/internal/llm"
)

// MockGenerator scores answers with local text heuristics. It is the
// fallback when no AI provider answers in time, and is fully deterministic.
type MockGenerator struct{}

// NewMockGenerator creates a MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"being": true, "could": true, "describe": true, "does": true, "explain": true,
	"from": true, "have": true, "into": true, "more": true, "should": true,
	"tell": true, "than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"time": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "with": true, "would": true, "your": true, "you": true,
	"how": true, "why": true, "the": true, "and": true, "for": true,
}

var reasoningMarkers = []string{
	"because", "therefore", "however", "although", "trade-off", "tradeoff",
	"instead", "as a result", "which meant", "impact", "measured", "so that",
	"on the other hand", "alternatively", "learned",
}

var structureMarkers = []string{
	"situation", "task", "action", "result", "first", "second", "finally",
	"for example", "for instance",
}

// Evaluate implements Evaluator. It fails with ErrUnscorable when the
// answer has no words.
func (m *MockGenerator) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answerWords := words(req.Answer)
	if len(answerWords) == 0 {
		return nil, ErrUnscorable
	}
	lower := strings.ToLower(req.Answer)

	keys := keywords(req.Question)
	present := make(map[string]bool, len(answerWords))
	for _, w := range answerWords {
		present[w] = true
	}
	var missed []string
	for _, k := range keys {
		if !present[k] {
			missed = append(missed, k)
		}
	}

	relevance := 6.0
	if len(keys) > 0 {
		relevance = 3 + 7*float64(len(keys)-len(missed))/float64(len(keys))
	}

	sentences := max(countSentences(req.Answer), 1)
	avgLen := float64(len(answerWords)) / float64(sentences)
	clarity := 8.0
	switch {
	case avgLen > 35:
		clarity = 4
	case avgLen > 25:
		clarity = 6
	case avgLen < 5:
		clarity = 5
	}

	var thoroughness float64
	switch n := len(answerWords); {
	case n < 20:
		thoroughness = 2
	case n < 50:
		thoroughness = 4
	case n < 100:
		thoroughness = 6
	case n < 200:
		thoroughness = 8
	default:
		thoroughness = 9
	}

	reasoning := countMarkers(lower, reasoningMarkers)
	if strings.ContainsFunc(req.Answer, unicode.IsDigit) {
		reasoning++
	}
	critical := 3 + 1.2*float64(reasoning)
	structure := countMarkers(lower, structureMarkers)
	clarity += 0.5 * float64(min(structure, 2))

	adjust := -1.0
	if req.RatingMode == RatingLenient {
		adjust = 1.0
	}

	ev := &Evaluation{
		Clarity:          clarity + adjust,
		Relevance:        relevance + adjust,
		CriticalThinking: critical + adjust,
		Thoroughness:     thoroughness + adjust,
		Provider:         llm.ProviderMock,
		Type:             req.Type,
		RatingMode:       req.RatingMode,
		Fallback:         true,
	}
	ev.normalize()
	ev.OverallScore = clampScore((ev.Clarity + ev.Relevance + ev.CriticalThinking + ev.Thoroughness) / 4)

	ev.Feedback = mockFeedback(ev.OverallScore)
	ev.Strengths, ev.Improvements = mockObservations(len(answerWords), len(missed), reasoning, structure)
	if req.Type == TypeDetailed {
		for i, k := range missed {
			if i == 5 {
				break
			}
			ev.KeyPointsMissed = append(ev.KeyPointsMissed, fmt.Sprintf("Address %q directly", k))
		}
	}
	return ev, nil
}

func mockFeedback(overall float64) string {
	switch {
	case overall >= 8:
		return "A strong, well-reasoned answer. Tighten the delivery and it is interview-ready."
	case overall >= 6:
		return "A solid answer that covers the basics. Add concrete examples and explain your reasoning to stand out."
	case overall >= 4:
		return "The answer touches on the question but stays general. Use a clear structure and support each point with evidence."
	default:
		return "The answer is too brief or off-target to judge well. Restate the question, then walk through a specific example."
	}
}

func mockObservations(wordCount, missed, reasoning, structure int) (strengths, improvements []string) {
	if wordCount >= 50 {
		strengths = append(strengths, "Gives enough detail to follow the story")
	} else {
		improvements = append(improvements, "Expand the answer with specific details and outcomes")
	}
	if missed == 0 {
		strengths = append(strengths, "Stays focused on what the question asks")
	} else {
		improvements = append(improvements, "Address every part of the question explicitly")
	}
	if reasoning >= 2 {
		strengths = append(strengths, "Explains the reasoning behind decisions")
	} else {
		improvements = append(improvements, "Explain why you made each decision and its impact")
	}
	if structure >= 2 {
		strengths = append(strengths, "Follows a clear, easy-to-follow structure")
	} else {
		improvements = append(improvements, "Use a structure such as Situation, Task, Action, Result")
	}
	return strengths, improvements
}

// words returns the lower-cased words of s.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// keywords returns the distinct content words of a question in order.
func keywords(question string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range words(question) {
		w = strings.Trim(w, "-")
		if len(w) < 4 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func countSentences(s string) int {
	n := 0
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '!' || r == '?' }) {
		if len(words(part)) > 0 {
			n++
		}
	}
	return n
}

func countMarkers(lower string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			n++
		}
	}
	return n
}
