package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-platform/internal/arena"
	"github.com/modelarena/arena-platform/internal/config"
	"github.com/modelarena/arena-platform/internal/llm"
	"github.com/modelarena/arena-platform/internal/logging"
	"github.com/modelarena/arena-platform/internal/search"
	"github.com/modelarena/arena-platform/internal/server"
	ws "github.com/modelarena/arena-platform/pkg/http/ws"
)

// Application aggregates shared infrastructure (cache, LLM router, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server

	bgCancels []context.CancelFunc
}

// New bootstraps config, logger, Redis, the model router and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	providers := map[string]llm.Provider{}
	if cfg.DeepSeek.APIKey != "" {
		providers["deepseek"] = llm.Provider{
			BaseURL:      cfg.DeepSeek.BaseURL,
			APIKey:       cfg.DeepSeek.APIKey,
			DefaultModel: cfg.DeepSeek.DefaultModel,
		}
	}
	if cfg.Grok.APIKey != "" {
		providers["grok"] = llm.Provider{
			BaseURL:      cfg.Grok.BaseURL,
			APIKey:       cfg.Grok.APIKey,
			DefaultModel: cfg.Grok.DefaultModel,
		}
	}
	router := llm.NewRouter(llm.Config{
		LMStudioURL: cfg.LMStudio.BaseURL,
		Timeout:     cfg.LMStudio.HTTPTimeout,
		Providers:   providers,
	}, logger)

	history := arena.NewRedisHistory(redisClient, cfg.Arena.HistoryTTL)
	selCache := arena.NewSelectionCache(arena.NewRedisKV(redisClient, cfg.Arena.SelectionCacheTTL))

	var searcher arena.WebSearcher
	if cfg.Search.Enabled {
		searcher = search.NewClient(logger, search.WithHTTPClient(&http.Client{
			Timeout: cfg.Search.HTTPTimeout,
		}))
	}

	wsHub := ws.NewHub(logger)
	wsHandler := arena.NewWSHandler(wsHub, &server.WSUpgrader, logger)

	arenaSvc := arena.NewService(router, router, history, arena.ServiceOptions{
		SelectionCache: selCache,
		Search:         searcher,
		Sink:           wsHandler,
	}, logger)

	handlers := arena.NewHTTPHandlers(arenaSvc, router, logger)
	apiServer := server.NewHTTPServer(cfg, logger, redisClient, handlers, wsHandler.HandleWebSocket)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		redis:     redisClient,
		http:      apiServer,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go a.pingLoop(bgCtx)
}

// pingLoop keeps the Redis connection warm and logs a warning when the
// store becomes unreachable, so history writes fail loudly.
func (a *Application) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := a.redis.Ping(pingCtx).Err(); err != nil {
				a.logger.Warn().Err(err).Msg("redis unreachable")
			}
			cancel()
		}
	}
}
