package evaluation

import (
	"fmt"

	"github.com/abhisek/prepwise/internal/llm"
)

func scoreProperty(desc string) map[string]any {
	return map[string]any{
		"type":        "number",
		"minimum":     0,
		"maximum":     MaxScore,
		"description": desc,
	}
}

func stringList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

func evaluationProperties() map[string]any {
	return map[string]any{
		"overall_score":     scoreProperty("Overall quality of the answer, 0-10"),
		"clarity":           scoreProperty("How clearly and concisely the answer is expressed, 0-10"),
		"relevance":         scoreProperty("How directly the answer addresses the question, 0-10"),
		"critical_thinking": scoreProperty("Depth of reasoning, trade-offs and judgement shown, 0-10"),
		"thoroughness":      scoreProperty("Coverage of the points a strong answer would include, 0-10"),
		"feedback": map[string]any{
			"type":        "string",
			"description": "2-4 sentences of direct feedback addressed to the candidate",
		},
		"strengths":    stringList("2-4 specific strengths (5-12 words each)"),
		"improvements": stringList("2-4 concrete improvements (5-12 words each)"),
	}
}

var simpleRequired = []any{
	"overall_score", "clarity", "relevance", "critical_thinking", "thoroughness",
	"feedback", "strengths", "improvements",
}

// SimpleEvaluationSchema is the response shape for simple evaluations.
var SimpleEvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation-simple",
	Description: "Scores and short feedback for an interview answer",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           evaluationProperties(),
		"required":             simpleRequired,
		"additionalProperties": false,
	},
}

// DetailedEvaluationSchema adds the key points a strong answer would cover.
var DetailedEvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation-detailed",
	Description: "Scores, feedback and missed key points for an interview answer",
	Definition: func() map[string]any {
		props := evaluationProperties()
		props["key_points_missed"] = stringList("Key points a strong answer would mention that this one omits (0-5 items)")
		return map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             append(append([]any{}, simpleRequired...), "key_points_missed"),
			"additionalProperties": false,
		}
	}(),
}

func evaluationSchema(t Type) *llm.Schema {
	if t == TypeDetailed {
		return DetailedEvaluationSchema
	}
	return SimpleEvaluationSchema
}

// InsightsSchema returns a schema requiring exactly n insights. The name
// carries n so compiled schemas for different counts do not collide.
func InsightsSchema(n int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("answer-insights-%d", n),
		Description: fmt.Sprintf("Exactly %d short insights about an interview answer", n),
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"insights": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"minItems":    n,
					"maxItems":    n,
					"description": "One sentence each, actionable, no numbering",
				},
			},
			"required":             []any{"insights"},
			"additionalProperties": false,
		},
	}
}
