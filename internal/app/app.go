// Package app wires configuration, storage and the translation core into a
// runnable service.
//
// Operational modes:
//
//   - Server mode: REST API for provider administration, prompts and machine translation
//   - Migrate mode: apply database migrations and exit (handled by the caller through db.Migrate)
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/api"
	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/imaging"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
	"github.com/lueurxax/tolgee-ai/internal/platform/config"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
	db "github.com/lueurxax/tolgee-ai/internal/storage"
	"github.com/lueurxax/tolgee-ai/internal/storage/filestore"
	"github.com/lueurxax/tolgee-ai/internal/storage/redisstate"
)

const (
	errFmtServerProviders = "load server providers: %w"
	errFmtScreenshots     = "open screenshots dir: %w"
	errFmtRedis           = "connect redis: %w"

	healthCheckDatabase = "database"
	healthCheckRedis    = "redis"

	logKeyProviders   = "server_providers"
	logKeySharedState = "shared_state"
)

type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// Services is the assembled translation core.
type Services struct {
	Providers *llm.ProviderService
	Prompts   *prompt.Service
	Invoker   *llm.Service

	checks  map[string]observability.Pinger
	closers []func() error
}

// Close releases connections opened while building the services.
func (s *Services) Close() error {
	var firstErr error

	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// BuildServices assembles the selector, the vendor dispatcher and the prompt
// service on top of the database.
func (a *App) BuildServices(ctx context.Context) (*Services, error) {
	services := &Services{
		checks: map[string]observability.Pinger{healthCheckDatabase: a.database},
	}

	server, err := a.serverProviders()
	if err != nil {
		return nil, err
	}

	suspensions, err := a.suspensionStore(ctx, services)
	if err != nil {
		return nil, err
	}

	screenshots, err := filestore.Open(a.cfg.Storage.ScreenshotsDir)
	if err != nil {
		_ = services.Close()
		return nil, fmt.Errorf(errFmtScreenshots, err)
	}

	services.closers = append(services.closers, screenshots.Close)

	selector := llm.NewSelector(a.database, server, suspensions, llm.NewRotationState(), a.logger)
	dispatcher := llm.NewDispatcher(llm.DispatcherOptions{
		Timeout:        a.cfg.LLM.RequestTimeout,
		RateLimitRPS:   a.cfg.LLM.RateLimitRPS,
		RateLimitBurst: a.cfg.LLM.RateLimitBurst,
	}, a.logger)

	services.Invoker = llm.NewService(selector, dispatcher, suspensions, llm.NewUsageRecorder(a.database, a.logger), llm.ServiceOptions{
		MaxAttempts:   a.cfg.LLM.MaxAttempts,
		SuspendPeriod: a.cfg.LLM.SuspendPeriod,
	}, a.logger)
	services.Providers = llm.NewProviderService(a.database, selector, a.logger)
	services.Prompts = NewPromptService(a.database, a.database, a.database, screenshots, a.highlighter(), services.Invoker, a.logger)

	return services, nil
}

// NewPromptService assembles the prompt service from its stores.
func NewPromptService(
	prompts ports.PromptRepository,
	playground ports.PlaygroundRepository,
	data prompt.ProjectData,
	screenshots ports.ScreenshotStore,
	highlighter ports.ImageHighlighter,
	invoker prompt.Invoker,
	logger *zerolog.Logger,
) *prompt.Service {
	return prompt.NewService(prompt.ServiceDeps{
		Prompts:    prompts,
		Playground: playground,
		Data:       data,
		Builder:    prompt.NewVariableBuilder(data, logger),
		Renderer:   prompt.NewRenderer(logger),
		Segmenter:  prompt.NewSegmenter(screenshots, highlighter, logger),
		Invoker:    invoker,
	}, logger)
}

// RunServer serves the REST API until ctx is canceled.
func (a *App) RunServer(ctx context.Context) error {
	services, err := a.BuildServices(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := services.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to release resources")
		}
	}()

	go func() {
		if err := a.StartHealthServer(ctx, services.checks); err != nil {
			a.logger.Error().Err(err).Msg("health server failed")
		}
	}()

	server := api.NewServer(services.Providers, services.Prompts, api.Options{
		Port:           a.cfg.HTTP.Port,
		RequestTimeout: a.cfg.HTTP.RequestTimeout,
	}, a.logger)

	return server.Start(ctx)
}

func (a *App) StartHealthServer(ctx context.Context, checks map[string]observability.Pinger) error {
	return observability.NewServer(checks, a.cfg.HTTP.HealthPort, a.logger).Start(ctx)
}

func (a *App) serverProviders() ([]domain.ProviderConfig, error) {
	if !a.cfg.LLM.Enabled {
		a.logger.Info().Msg("server providers disabled")
		return nil, nil
	}

	server, err := config.LoadServerProviders(a.cfg.LLM.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf(errFmtServerProviders, err)
	}

	a.logger.Info().Int(logKeyProviders, len(server)).Msg("server providers loaded")

	return server, nil
}

// suspensionStore shares suspensions through Redis when configured so every
// replica skips a rate-limited config.
func (a *App) suspensionStore(ctx context.Context, services *Services) (llm.SuspensionStore, error) {
	if a.cfg.Redis.URL == "" {
		a.logger.Info().Str(logKeySharedState, "memory").Msg("suspension store ready")
		return llm.NewMemorySuspensionStore(), nil
	}

	client, err := redisstate.Connect(ctx, a.cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf(errFmtRedis, err)
	}

	services.closers = append(services.closers, client.Close)
	services.checks[healthCheckRedis] = redisPinger{client: client}

	a.logger.Info().Str(logKeySharedState, "redis").Msg("suspension store ready")

	return redisstate.NewSuspensionStore(client, a.cfg.Redis.KeyPrefix, 0, a.logger), nil
}

func (a *App) highlighter() ports.ImageHighlighter {
	if !a.cfg.Storage.HighlightKeys {
		return nil
	}

	return imaging.NewHighlighter()
}

type redisPinger struct {
	client redis.UniversalClient
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
