package evaluation

// InterviewQuestion is a built-in practice prompt.
type InterviewQuestion struct {
	ID   string
	Role string
	Text string
}

// Roles group the built-in questions.
const (
	RoleBehavioral   = "behavioral"
	RoleTechnical    = "technical"
	RoleSystemDesign = "system-design"
)

var interviewQuestions = []InterviewQuestion{
	{"beh-conflict", RoleBehavioral, "Tell me about a time you disagreed with a teammate. How did you resolve it?"},
	{"beh-failure", RoleBehavioral, "Describe a project that failed. What did you learn and what would you do differently?"},
	{"beh-deadline", RoleBehavioral, "Tell me about a time you had to deliver under a tight deadline."},
	{"beh-influence", RoleBehavioral, "Describe a situation where you had to convince others without formal authority."},
	{"beh-feedback", RoleBehavioral, "Tell me about the most useful critical feedback you have received."},

	{"tech-process-thread", RoleTechnical, "Explain the difference between a process and a thread, and when you would use each."},
	{"tech-index", RoleTechnical, "How does a database index speed up queries, and what does it cost?"},
	{"tech-http", RoleTechnical, "Walk me through what happens when you type a URL into a browser and press enter."},
	{"tech-debug", RoleTechnical, "How would you debug a service whose latency doubled overnight with no deploys?"},
	{"tech-tests", RoleTechnical, "How do you decide what to cover with unit tests versus integration tests?"},

	{"sd-shortener", RoleSystemDesign, "Design a URL shortener that handles millions of redirects per day."},
	{"sd-ratelimit", RoleSystemDesign, "Design a rate limiter for a public API."},
	{"sd-feed", RoleSystemDesign, "Design the news feed for a social network."},
	{"sd-chat", RoleSystemDesign, "Design a chat service that supports one-to-one and group conversations."},
}

// InterviewQuestions returns every built-in question.
func InterviewQuestions() []InterviewQuestion {
	return append([]InterviewQuestion(nil), interviewQuestions...)
}

// QuestionsByRole returns the built-in questions for one role.
func QuestionsByRole(role string) []InterviewQuestion {
	var out []InterviewQuestion
	for _, q := range interviewQuestions {
		if q.Role == role {
			out = append(out, q)
		}
	}
	return out
}

// Roles returns the question roles in display order.
func Roles() []string {
	return []string{RoleBehavioral, RoleTechnical, RoleSystemDesign}
}
