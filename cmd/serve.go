package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/server"
	"github.com/abhisek/prepwise/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation and quiz HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().Bool("trace", false, "Print OpenTelemetry spans to stderr")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	traceOn, _ := cmd.Flags().GetBool("trace")
	shutdown, err := tracing.Init(tracing.Config{
		Enabled:     traceOn || e.cfg.Tracing.Enabled,
		ServiceName: "prepwise",
		Version:     version,
		Writer:      os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			e.logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	bank, err := quiz.DefaultBank()
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	srv, err := server.New(server.Config{
		Evaluator:        e.eval,
		Providers:        e.registry,
		Events:           e.store.EventRepo(),
		Bank:             bank,
		Metrics:          e.metrics,
		Logger:           e.logger.Named("http"),
		SessionSecret:    []byte(e.cfg.Server.SessionSecret),
		QuestionsPerQuiz: questionsPerQuiz,
	})
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = e.cfg.Server.Addr
	}
	return srv.Run(cmd.Context(), addr)
}
