package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/screens/interview"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score an interview answer",
	Long: `Score one interview answer with the best available AI provider.

Pass --answer - to read the answer from stdin. --last re-runs the question
and answer most recently written in the practice app.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringP("question", "q", "", "Interview question")
	evaluateCmd.Flags().StringP("answer", "a", "", "Your answer, or - to read stdin")
	evaluateCmd.Flags().String("mode", "tough", "Rating mode: tough or lenient")
	evaluateCmd.Flags().String("type", "simple", "Evaluation type: simple or detailed")
	evaluateCmd.Flags().Bool("last", false, "Evaluate the last question and answer from the practice app")
	evaluateCmd.Flags().Bool("mock", false, "Score with the offline heuristic scorer only")
	evaluateCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	req, err := evaluateRequest(cmd, e)
	if err != nil {
		return err
	}

	var res *evaluation.Result
	if mock, _ := cmd.Flags().GetBool("mock"); mock {
		res, err = mockResult(cmd, req)
	} else {
		res, err = e.eval.Run(ctx, req)
		if errors.Is(err, llm.ErrNoAPIKeys) {
			err = nil
		}
	}
	if err != nil {
		return err
	}

	if err := evaluation.SaveHandoff(ctx, e.store.KVRepo(), req); err != nil {
		e.logger.Warn("save hand-off", zap.Error(err))
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = lipgloss.Fprintln(cmd.OutOrStdout(), interview.RenderResult(res, "", 76))
	return err
}

// evaluateRequest builds the request from flags, the hand-off, or stdin.
func evaluateRequest(cmd *cobra.Command, e *env) (evaluation.Request, error) {
	var req evaluation.Request

	if last, _ := cmd.Flags().GetBool("last"); last {
		saved, ok, err := evaluation.LoadHandoff(cmd.Context(), e.store.KVRepo())
		if err != nil {
			return req, fmt.Errorf("load last answer: %w", err)
		}
		if !ok {
			return req, errors.New("no saved question and answer; write one in the practice app first")
		}
		req = saved
	}

	if cmd.Flags().Changed("question") {
		req.Question, _ = cmd.Flags().GetString("question")
	}
	if cmd.Flags().Changed("answer") {
		answer, _ := cmd.Flags().GetString("answer")
		if answer == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return req, fmt.Errorf("read answer: %w", err)
			}
			answer = string(data)
		}
		req.Answer = strings.TrimSpace(answer)
	}
	if cmd.Flags().Changed("mode") || req.RatingMode == "" {
		mode, _ := cmd.Flags().GetString("mode")
		req.RatingMode = evaluation.RatingMode(mode)
	}
	if cmd.Flags().Changed("type") || req.Type == "" {
		typ, _ := cmd.Flags().GetString("type")
		req.Type = evaluation.Type(typ)
	}

	if err := req.Validate(); err != nil {
		if errors.Is(err, evaluation.ErrEmptyAnswer) {
			return req, errors.New("both --question and --answer are required (or use --last)")
		}
		return req, err
	}
	return req, nil
}

// mockResult scores req locally, without providers or insights.
func mockResult(cmd *cobra.Command, req evaluation.Request) (*evaluation.Result, error) {
	start := time.Now()
	ev, err := evaluation.NewMockGenerator().Evaluate(cmd.Context(), req)
	if err != nil {
		return nil, fmt.Errorf("mock evaluation: %w", err)
	}
	return &evaluation.Result{
		RunID:      uuid.NewString(),
		State:      evaluation.StateComplete,
		Evaluation: ev,
		Insights:   []string{},
		Tips:       evaluation.StaticTips(),
		Duration:   time.Since(start),
	}, nil
}
