package evaluation

var staticTips = []string{
	"Open with a one-sentence answer, then support it with detail.",
	"Use the STAR structure for behavioural questions: Situation, Task, Action, Result.",
	"Quantify outcomes where you can; numbers make impact concrete.",
	"Explain the trade-offs you considered, not just the choice you made.",
	"Close by tying your answer back to the role you are interviewing for.",
}

// StaticTips returns general interview advice shown when AI insights are
// unavailable.
func StaticTips() []string {
	return append([]string(nil), staticTips...)
}
