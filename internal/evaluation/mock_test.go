package evaluation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/llm"
)

const strongAnswer = `In my last role I disagreed with a teammate about the database schema for our billing service.
The situation was that we expected traffic to grow 10x within a year. My task was to make sure the design would scale.
First, I wrote down both designs and the trade-offs of each. Second, we measured query latency on a copy of production data, because opinions alone were not settling it.
The result was that my design was 40% faster on the hot path, however my teammate's design was simpler to migrate, so we combined them.
As a result we shipped on time, and I learned to bring data to a disagreement instead of arguing from taste.`

func TestMockGenerator_Deterministic(t *testing.T) {
	m := NewMockGenerator()
	req := Request{Question: "Tell me about a time you disagreed with a teammate.", Answer: strongAnswer, RatingMode: RatingTough, Type: TypeDetailed}

	a, err := m.Evaluate(context.Background(), req)
	require.NoError(t, err)
	b, err := m.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.Fallback)
	assert.Equal(t, llm.ProviderMock, a.Provider)
	assert.Equal(t, TypeDetailed, a.Type)
}

func TestMockGenerator_ScoresInRange(t *testing.T) {
	m := NewMockGenerator()
	answers := []string{"ok", "yes because 42", strongAnswer, strings.Repeat("word ", 400)}
	for _, mode := range []RatingMode{RatingTough, RatingLenient} {
		for _, ans := range answers {
			ev, err := m.Evaluate(context.Background(), Request{Question: "Design a rate limiter for a public API.", Answer: ans, RatingMode: mode, Type: TypeSimple})
			require.NoError(t, err)
			for _, s := range []float64{ev.OverallScore, ev.Clarity, ev.Relevance, ev.CriticalThinking, ev.Thoroughness} {
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, MaxScore)
			}
			assert.NotEmpty(t, ev.Feedback)
			assert.Nil(t, ev.KeyPointsMissed)
		}
	}
}

func TestMockGenerator_RewardsStrongerAnswers(t *testing.T) {
	m := NewMockGenerator()
	q := "Tell me about a time you disagreed with a teammate."

	weak, err := m.Evaluate(context.Background(), Request{Question: q, Answer: "It was fine.", RatingMode: RatingTough})
	require.NoError(t, err)
	strong, err := m.Evaluate(context.Background(), Request{Question: q, Answer: strongAnswer, RatingMode: RatingTough})
	require.NoError(t, err)

	assert.Greater(t, strong.OverallScore, weak.OverallScore)
	assert.Greater(t, strong.Thoroughness, weak.Thoroughness)
	assert.Greater(t, strong.CriticalThinking, weak.CriticalThinking)
}

func TestMockGenerator_LenientScoresHigher(t *testing.T) {
	m := NewMockGenerator()
	req := Request{Question: "Explain database indexes.", Answer: "An index is a sorted structure, so lookups avoid full scans."}

	req.RatingMode = RatingTough
	tough, err := m.Evaluate(context.Background(), req)
	require.NoError(t, err)
	req.RatingMode = RatingLenient
	lenient, err := m.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Greater(t, lenient.OverallScore, tough.OverallScore)
}

func TestMockGenerator_DetailedListsMissedKeywords(t *testing.T) {
	m := NewMockGenerator()
	ev, err := m.Evaluate(context.Background(), Request{
		Question: "How would you debug a service whose latency doubled overnight?",
		Answer:   "I would look at the service dashboards.",
		Type:     TypeDetailed,
	})
	require.NoError(t, err)
	assert.Contains(t, ev.KeyPointsMissed, `Address "latency" directly`)
	assert.NotContains(t, ev.KeyPointsMissed, `Address "service" directly`)
	assert.LessOrEqual(t, len(ev.KeyPointsMissed), 5)
}

func TestMockGenerator_Failures(t *testing.T) {
	m := NewMockGenerator()

	_, err := m.Evaluate(context.Background(), Request{Question: "q", Answer: "?! ..."})
	assert.ErrorIs(t, err, ErrUnscorable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Evaluate(ctx, Request{Question: "q", Answer: "a real answer"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeywords(t *testing.T) {
	got := keywords("Tell me about a time you disagreed with a teammate. How did you resolve it?")
	assert.Equal(t, []string{"disagreed", "teammate", "resolve"}, got)
}
