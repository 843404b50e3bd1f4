package quiz

// Category groups aptitude questions.
type Category string

const (
	CategoryQuantitative       Category = "quantitative"
	CategoryLogical            Category = "logical"
	CategoryVerbal             Category = "verbal"
	CategoryDataInterpretation Category = "data-interpretation"
)

// CategoryMixed draws questions from every category.
const CategoryMixed Category = "mixed"

// CategoryInfo describes a category for display.
type CategoryInfo struct {
	ID          Category `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

var categories = []CategoryInfo{
	{CategoryQuantitative, "Quantitative Aptitude", "Arithmetic, percentages, ratios and speed-distance problems"},
	{CategoryLogical, "Logical Reasoning", "Series, syllogisms, coding-decoding and arrangements"},
	{CategoryVerbal, "Verbal Ability", "Vocabulary, grammar and sentence correction"},
	{CategoryDataInterpretation, "Data Interpretation", "Reading tables and figures to answer questions"},
}

// Categories returns the known categories in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// KnownCategory reports whether c is one of the bank categories.
func KnownCategory(c Category) bool {
	for _, info := range categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

// Question is a multiple-choice aptitude question.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Category      Category `json:"category" yaml:"category"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correct_answer" yaml:"correct_answer"` // 0-based index
	Explanation   string   `json:"explanation" yaml:"explanation"`
}
