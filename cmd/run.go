package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/app"
	"github.com/abhisek/prepwise/internal/config"
	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/logging"
	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/screens/home"
	"github.com/abhisek/prepwise/internal/store"
)

// questionsPerQuiz is the quiz length used by the TUI and `quiz take`.
const questionsPerQuiz = 5

// env holds the services shared by every command.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	metrics  *metrics.Metrics
	registry *llm.Registry
	eval     *evaluation.Orchestrator
}

// openEnv loads config, opens the store and wires the provider registry
// and orchestrator. console, when non-nil, also receives log output.
func openEnv(cmd *cobra.Command, console io.Writer) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Path = p
	}

	logger, err := logging.New(logging.Options{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Console: console,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	m := metrics.New()
	reg := llm.NewRegistry(cfg.LLMConfig(),
		llm.WithKeyStore(st.KVRepo()),
		llm.WithEventRepo(st.EventRepo()),
		llm.WithLogger(logger.Named("llm")),
		llm.WithMetricsCollector(m),
	)
	orch := evaluation.NewFromRegistry(reg, cfg.Orchestration(),
		evaluation.WithEvents(st.EventRepo()),
		evaluation.WithMetrics(m),
		evaluation.WithLogger(logger.Named("evaluation")),
	)

	logger.Debug("environment ready", zap.String("db", dbPath))
	return &env{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		metrics:  m,
		registry: reg,
		eval:     orch,
	}, nil
}

func (e *env) Close() error {
	_ = e.logger.Sync()
	return e.store.Close()
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	bank, err := quiz.DefaultBank()
	if err != nil {
		// The TUI shows a placeholder for the quiz instead.
		e.logger.Error("load question bank", zap.Error(err))
	}

	return app.Run(cmd.Context(), home.Deps{
		Evaluator:        e.eval,
		Providers:        e.registry,
		KV:               e.store.KVRepo(),
		Events:           e.store.EventRepo(),
		Bank:             bank,
		QuestionsPerQuiz: questionsPerQuiz,
		Logger:           e.logger.Named("tui"),
	})
}
