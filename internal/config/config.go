// Package config loads settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/prepwise/internal/evaluation"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/logging"
	"github.com/abhisek/prepwise/internal/store"
)

// EnvPrefix prefixes every environment variable, e.g. PREPWISE_LOG_LEVEL.
const EnvPrefix = "PREPWISE"

type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type LLMConfig struct {
	Provider  string          `mapstructure:"provider"`
	Groq      ProviderConfig  `mapstructure:"groq"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Gemini    ProviderConfig  `mapstructure:"gemini"`
	Anthropic ProviderConfig  `mapstructure:"anthropic"`
	Retry     RetryConfig     `mapstructure:"retry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type EvaluationConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	InsightTimeout time.Duration `mapstructure:"insight_timeout"`
	InsightCount   int           `mapstructure:"insight_count"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	SessionSecret string `mapstructure:"session_secret"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration. An explicit path must exist; otherwise
// config.yaml is looked up in DefaultDir and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := llm.DefaultConfig()

	v.SetDefault("llm.provider", "")
	for name, pc := range map[string]llm.ProviderConfig{
		llm.ProviderGroq:      def.Groq,
		llm.ProviderOpenAI:    def.OpenAI,
		llm.ProviderGemini:    def.Gemini,
		llm.ProviderAnthropic: def.Anthropic,
	} {
		v.SetDefault("llm."+name+".api_key", "")
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", "")
	}
	v.SetDefault("llm.retry.max_attempts", def.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", def.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", def.Retry.MaxWait)
	v.SetDefault("llm.rate_limit.requests_per_minute", def.RateLimit.RequestsPerMinute)
	v.SetDefault("llm.rate_limit.burst", def.RateLimit.Burst)

	v.SetDefault("evaluation.timeout", 60*time.Second)
	v.SetDefault("evaluation.insight_timeout", 30*time.Second)
	v.SetDefault("evaluation.insight_count", 3)

	// Empty defers to store.DefaultDBPath, which creates the directory.
	v.SetDefault("database.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", logging.DefaultLogPath())
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("tracing.enabled", false)
}

// bindEnv maps the short variable names users expect onto nested keys.
// Bare vendor names (GROQ_API_KEY, ...) are accepted as a fallback.
func bindEnv(v *viper.Viper) {
	v.BindEnv("llm.provider", EnvPrefix+"_LLM_PROVIDER")
	for _, name := range llm.ProviderOrder {
		upper := strings.ToUpper(name)
		v.BindEnv("llm."+name+".api_key", EnvPrefix+"_"+upper+"_API_KEY", upper+"_API_KEY")
		v.BindEnv("llm."+name+".model", EnvPrefix+"_"+upper+"_MODEL")
		v.BindEnv("llm."+name+".base_url", EnvPrefix+"_"+upper+"_BASE_URL")
	}
	v.BindEnv("database.path", EnvPrefix+"_DB")
	v.BindEnv("server.session_secret", EnvPrefix+"_SESSION_SECRET")
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if err := c.LLMConfig().Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if c.Evaluation.Timeout <= 0 || c.Evaluation.InsightTimeout <= 0 {
		return fmt.Errorf("evaluation timeouts must be positive")
	}
	if c.Evaluation.InsightCount < 1 {
		return fmt.Errorf("evaluation.insight_count must be at least 1, got %d", c.Evaluation.InsightCount)
	}
	return nil
}

// LLMConfig converts the llm section into the llm package's Config.
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = c.LLM.Provider
	cfg.Groq = llm.ProviderConfig(c.LLM.Groq)
	cfg.OpenAI = llm.ProviderConfig(c.LLM.OpenAI)
	cfg.Gemini = llm.ProviderConfig(c.LLM.Gemini)
	cfg.Anthropic = llm.ProviderConfig(c.LLM.Anthropic)
	cfg.Retry.MaxAttempts = c.LLM.Retry.MaxAttempts
	if c.LLM.Retry.InitialWait > 0 {
		cfg.Retry.InitialWait = c.LLM.Retry.InitialWait
	}
	if c.LLM.Retry.MaxWait > 0 {
		cfg.Retry.MaxWait = c.LLM.Retry.MaxWait
	}
	cfg.RateLimit = llm.RateLimitConfig(c.LLM.RateLimit)
	return cfg
}

// Orchestration converts the evaluation section, keeping generation
// defaults the file does not expose.
func (c *Config) Orchestration() evaluation.Config {
	cfg := evaluation.DefaultConfig()
	cfg.EvaluationTimeout = c.Evaluation.Timeout
	cfg.InsightTimeout = c.Evaluation.InsightTimeout
	cfg.InsightCount = c.Evaluation.InsightCount
	return cfg
}

// DatabasePath returns the configured database path, resolving the
// platform default when none is set.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path == "" {
		return store.DefaultDBPath()
	}
	return c.Database.Path, store.EnsureDir(c.Database.Path)
}

// DefaultDir returns $XDG_CONFIG_HOME/prepwise, falling back to ~/.config.
func DefaultDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "prepwise")
}
