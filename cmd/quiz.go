package cmd

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/components"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Aptitude quiz categories, results and a plain-text quiz",
}

var quizCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List quiz categories and question counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := quiz.DefaultBank()
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-22s  %5s  %s\n", "ID", "Title", "Qs", "Description")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, c := range quiz.Categories() {
			fmt.Fprintf(out, "%-20s  %-22s  %5d  %s\n", c.ID, c.Title, bank.Count(c.ID), c.Description)
		}
		fmt.Fprintf(out, "%-20s  %-22s  %5d  %s\n", quiz.CategoryMixed, "Mixed", bank.Count(quiz.CategoryMixed), "Questions from every category")
		return nil
	},
}

var quizHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent quiz results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryQuizResults(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query quiz results: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No quizzes taken yet.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-20s  %7s  %8s  %6s  %s\n",
			"Timestamp", "Category", "Score", "Answered", "Pct", "Time")
		fmt.Fprintln(out, strings.Repeat("─", 76))
		for _, q := range events {
			pct := 0.0
			if q.TotalQuestions > 0 {
				pct = 100 * float64(q.Score) / float64(q.TotalQuestions)
			}
			fmt.Fprintf(out, "%-19s  %-20s  %7s  %8s  %5.0f%%  %d:%02d\n",
				q.Timestamp.Local().Format("2006-01-02 15:04:05"),
				q.Category,
				fmt.Sprintf("%d/%d", q.Score, q.TotalQuestions),
				fmt.Sprintf("%d/%d", q.Answered, q.TotalQuestions),
				pct,
				q.DurationSecs/60, q.DurationSecs%60,
			)
		}
		return nil
	},
}

var quizTakeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take a quiz on plain stdin/stdout",
	Long: `Answer a quiz one question at a time by typing the option letter.
An empty line skips a question. The result is saved like a quiz taken in the app.`,
	RunE: runQuizTake,
}

func init() {
	quizHistoryCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	quizTakeCmd.Flags().StringP("category", "c", string(quiz.CategoryMixed), "Category ID (see `quiz categories`)")
	quizTakeCmd.Flags().Int("count", questionsPerQuiz, "Number of questions")

	quizCmd.AddCommand(quizCategoriesCmd)
	quizCmd.AddCommand(quizHistoryCmd)
	quizCmd.AddCommand(quizTakeCmd)
}

func runQuizTake(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	count, _ := cmd.Flags().GetInt("count")

	bank, err := quiz.DefaultBank()
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	e, err := openEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	sess := quiz.NewSession()
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if err := sess.StartRandom(bank, quiz.Category(category), count, rng); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	total := len(sess.Questions)

	for i, q := range sess.Questions {
		if err := sess.GoTo(i); err != nil {
			return err
		}

		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, total)
		fmt.Fprintln(out, q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %s) %s\n", components.OptionLabel(j), opt)
		}

		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintln(out, "(skipped)")
			fmt.Fprintln(out)
			continue
		}
		idx, ok := components.OptionIndex(strings.ToLower(answer), len(q.Options))
		if !ok {
			fmt.Fprintf(out, "(%q is not an option, skipped)\n\n", answer)
			continue
		}
		if err := sess.SelectAnswer(idx); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if err := sess.Submit(); err != nil {
		return err
	}
	review, err := sess.Review()
	if err != nil {
		return err
	}
	for _, item := range review {
		mark := "\033[32m✓\033[0m"
		if !item.Correct {
			mark = "\033[31m✗\033[0m"
		}
		fmt.Fprintf(out, "%s %d. %s\n", mark, item.Index+1, item.Question.Text)
		if !item.Correct {
			fmt.Fprintf(out, "    Answer: %s\n", item.Question.Options[item.Question.CorrectAnswer])
		}
		if item.Question.Explanation != "" {
			fmt.Fprintf(out, "    %s\n", item.Question.Explanation)
		}
	}

	secs := int(sess.Elapsed.Seconds())
	fmt.Fprintf(out, "\n── Summary: %d/%d correct (%.0f%%) in %d:%02d ──\n",
		sess.Score, total, sess.Percent(), secs/60, secs%60)

	err = e.store.EventRepo().AppendQuizResult(cmd.Context(), store.QuizEventData{
		SessionID:      sess.ID,
		Category:       string(sess.Category),
		TotalQuestions: total,
		Answered:       sess.Answered(),
		Score:          sess.Score,
		DurationSecs:   secs,
	})
	if err != nil {
		e.logger.Warn("record quiz result", zap.Error(err))
	}
	return nil
}
