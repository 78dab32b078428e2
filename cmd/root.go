package cmd

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/core"
	"github.com/headhunter-core/server/internal/knowledge"
	"github.com/headhunter-core/server/internal/store"
	"github.com/headhunter-core/server/internal/websearch"
	logx "github.com/headhunter-core/server/pkg/logger"
	pkgredis "github.com/headhunter-core/server/pkg/redis"
)

const app = "headhunter-agent"

// AppConfig defines all configurable parameters for the agent, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis     pkgredis.Config
	Postgres  store.PostgresConfig
	Tavily    websearch.Config
	Knowledge knowledge.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Workflow stages
	Classifier model.ClassifierModelConfig
	Enricher   model.EnricherModelConfig
	Specialist model.SpecialistModelConfig
	Synthesis  model.SynthesisModelConfig
	Quality    model.QualityConfig
	Session    model.SessionConfig
}

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "headhunter-agent is a conversational recruiting assistant over candidate, market and web research tools",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)
}

func initEnv() {
	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}
}

func loadConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})
	return &cfg, nil
}
