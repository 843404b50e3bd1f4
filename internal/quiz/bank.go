package quiz

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var bankYAML []byte

// Bank is a validated, read-only set of questions.
type Bank struct {
	questions  []Question
	byCategory map[Category][]Question
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// DefaultBank parses the built-in question bank.
func DefaultBank() (*Bank, error) {
	return ParseBank(bankYAML)
}

// ParseBank decodes a YAML question bank and validates it.
func ParseBank(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := Validate(f.Questions); err != nil {
		return nil, err
	}

	b := &Bank{
		questions:  f.Questions,
		byCategory: make(map[Category][]Question),
	}
	for _, q := range f.Questions {
		b.byCategory[q.Category] = append(b.byCategory[q.Category], q)
	}
	return b, nil
}

// Validate checks every question and returns one error listing all problems.
func Validate(questions []Question) error {
	var errs []string
	if len(questions) == 0 {
		errs = append(errs, "bank has no questions")
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		name := q.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Sprintf("question %s has no ID", name))
		} else if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		seen[q.ID] = true

		if !KnownCategory(q.Category) {
			errs = append(errs, fmt.Sprintf("question %s has unknown category %q", name, q.Category))
		}
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %s has no text", name))
		}
		if len(q.Options) < 2 {
			errs = append(errs, fmt.Sprintf("question %s has %d options, want at least 2", name, len(q.Options)))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			errs = append(errs, fmt.Sprintf("question %s correct answer %d out of range", name, q.CorrectAnswer))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid question bank:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Questions returns the questions of one category, or all of them for
// CategoryMixed.
func (b *Bank) Questions(c Category) []Question {
	if c == CategoryMixed {
		return append([]Question(nil), b.questions...)
	}
	return append([]Question(nil), b.byCategory[c]...)
}

// Count returns how many questions a category holds.
func (b *Bank) Count(c Category) int {
	if c == CategoryMixed {
		return len(b.questions)
	}
	return len(b.byCategory[c])
}

// Pick returns up to n questions of category c in random order.
func (b *Bank) Pick(c Category, n int, rng *rand.Rand) []Question {
	qs := b.Questions(c)
	rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	if n > 0 && n < len(qs) {
		qs = qs[:n]
	}
	return qs
}
