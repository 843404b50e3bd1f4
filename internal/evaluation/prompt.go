package evaluation

import (
	"fmt"
	"strings"
)

const evaluationSystemPrompt = `You are an experienced interviewer assessing a candidate's answer to an interview question. Score each dimension from 0 to 10 and give feedback the candidate can act on. Judge only what the answer says; do not invent content.`

const toughRubric = `Rating mode: TOUGH. Grade as a demanding hiring panel would. Reserve 8+ for answers that are specific, structured and complete. Vague or generic answers score 4 or below.`

const lenientRubric = `Rating mode: LENIENT. Grade as a supportive coach would. Reward a sound attempt and partial coverage; reserve scores below 3 for off-topic or empty answers.`

const insightsSystemPrompt = `You are an interview coach. Read the question and the candidate's answer and give short, practical insights the candidate can apply next time.`

func rubric(mode RatingMode) string {
	if mode == RatingLenient {
		return lenientRubric
	}
	return toughRubric
}

func buildEvaluationSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(evaluationSystemPrompt)
	b.WriteString("\n\n")
	b.WriteString(rubric(req.RatingMode))
	if req.Type == TypeDetailed {
		b.WriteString("\n\nAlso list the key points a strong answer would cover that this answer misses.")
	}
	return b.String()
}

func buildEvaluationUserMessage(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", strings.TrimSpace(req.Question))
	fmt.Fprintf(&b, "Candidate's answer:\n%s\n", strings.TrimSpace(req.Answer))
	return b.String()
}

func buildInsightsUserMessage(req Request, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", strings.TrimSpace(req.Question))
	fmt.Fprintf(&b, "Candidate's answer:\n%s\n\n", strings.TrimSpace(req.Answer))
	fmt.Fprintf(&b, "Give exactly %d insights, one sentence each.", n)
	return b.String()
}
