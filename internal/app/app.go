package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Yo1k/qaws/internal/config"
	"github.com/Yo1k/qaws/internal/db/repository"
	"github.com/Yo1k/qaws/internal/logging"
	"github.com/Yo1k/qaws/internal/question"
	"github.com/Yo1k/qaws/internal/question/external"
	"github.com/Yo1k/qaws/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	statsWorker *question.StatsWorker
	bgCancels   []context.CancelFunc
}

// New bootstraps config, logger, Postgres, the optional Redis id cache and
// the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	// Redis only shortcuts known-id lookups; the service runs fine without
	// it, so an unset address downgrades rather than fails.
	var redisClient *redis.Client
	var knownIDs question.KnownIDs
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		knownIDs = question.NewIDCache(redisClient, cfg.Redis.KnownIDTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("known id cache enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; known id cache disabled")
	}

	questionRepo := repository.NewQuestionRepository(pool)
	sourceClient := external.NewJServiceClient(cfg.Source.BaseURL, &http.Client{Timeout: cfg.Source.HTTPTimeout})

	questionSvc := question.NewService(questionRepo, sourceClient, knownIDs, question.ServiceOptions{
		MaxRounds:    cfg.Fetch.MaxRounds,
		RoundRetries: cfg.Fetch.RoundRetries,
		RetryBackoff: cfg.Fetch.RetryBackoff,
		StoreTimeout: cfg.Fetch.StoreTimeout,
	})

	questionHandler := question.NewHTTPHandler(questionSvc, cfg.Fetch.RequestTimeout, logger)
	statsWorker := question.NewStatsWorker(questionRepo, cfg.Fetch.CountInterval, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, questionHandler.HandleFetch)

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       redisClient,
		http:        apiServer,
		statsWorker: statsWorker,
		bgCancels:   make([]context.CancelFunc, 0, 1),
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

	a.pool.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.statsWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.statsWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("stats worker stopped")
			}
		}()
	}
}
