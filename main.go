package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/core"
	"github.com/ia-assistant/server/internal/mail"
	"github.com/ia-assistant/server/internal/metrics"
	"github.com/ia-assistant/server/internal/pipeline/graph"
	"github.com/ia-assistant/server/internal/pipeline/graph/nodes"
	"github.com/ia-assistant/server/internal/pipeline/model"
	"github.com/ia-assistant/server/internal/runs"
	"github.com/ia-assistant/server/internal/web"
	logx "github.com/ia-assistant/server/pkg/logger"
	pkgredis "github.com/ia-assistant/server/pkg/redis"
)

const (
	shutdownTimeout  = 30 * time.Second
	defaultSecretKey = "your-secret-key"
)

// AppConfig defines every configurable parameter of the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	HTTP  web.Config
	Redis pkgredis.Config

	// Pipeline
	Answer    model.AnswerModelConfig
	Providers model.ProviderConfig
	Artifacts model.ArtifactConfig
	Mail      model.MailConfig
	Runs      model.RunStoreConfig
}

func main() {
	// Load .env file
	envErr := godotenv.Load(".env")

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
	if envErr != nil {
		logx.Warn().Err(envErr).Msg("Could not load .env file")
	}
	if cfg.HTTP.SecretKey == defaultSecretKey {
		logx.Warn().Msg("SECRET_KEY is not set, flash cookies are signed with the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runRepo, closeRuns := newRunRepository(ctx, cfg)
	defer closeRuns()

	chatModel, err := nodes.NewChatModel(ctx, nodes.ChatModelConfig{Answer: cfg.Answer, Providers: cfg.Providers})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat model")
	}

	store, err := artifacts.NewStore(cfg.Artifacts)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to prepare artifact directory")
	}

	transport := mail.NewSMTPTransport(cfg.Mail)
	if transport.From() == "" {
		logx.Warn().Msg("GMAIL_EMAIL is not set, document delivery will fail")
	}

	m := metrics.New()
	pdf := artifacts.NewPDFRenderer(cfg.Artifacts.PDFRenderer)
	logx.Info().Str("pdf_renderer", pdf.Capability().String()).Str("artifact_dir", store.Dir()).Msg("Artifact store ready")

	runner, err := graph.BuildPipelineGraph(ctx, graph.Config{
		Stages: graph.NewStages(graph.Dependencies{
			ChatModel: chatModel,
			Answer:    cfg.Answer,
			PDF:       pdf,
			Text:      artifacts.NewTextRenderer(),
			Store:     store,
			Mailer:    transport,
		}),
		Metrics: m,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build graph")
	}

	router, err := web.NewRouter(cfg.HTTP, web.Deps{Runner: runner, Runs: runRepo, Store: store, Metrics: m})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build router")
	}
	server := web.NewServer(cfg.HTTP, router)

	go func() {
		logx.Info().Str("addr", cfg.HTTP.Addr).Str("provider", cfg.Answer.Provider).Str("model", cfg.Answer.Model).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Server forced to shutdown")
	}
	logx.Info().Msg("Server exited")
}

// newRunRepository returns the Redis-backed repository when REDIS_URL is set
// and an in-memory one otherwise.
func newRunRepository(ctx context.Context, cfg AppConfig) (model.RunRepository, func()) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set, keeping run records in memory")
		return runs.NewMemoryRunRepository(), func() {}
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	logx.Info().Msg("Connected to Redis successfully")

	return runs.NewRedisRunRepository(rdb, cfg.Runs.TTL), func() {
		if err := rdb.Close(); err != nil {
			logx.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}
