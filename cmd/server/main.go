package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/simplebank/internal/adapter/http"
	"github.com/iho/simplebank/internal/adapter/http/handler"
	"github.com/iho/simplebank/internal/adapter/http/middleware"
	"github.com/iho/simplebank/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/simplebank/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/simplebank/internal/adapter/repository/redis"
	"github.com/iho/simplebank/internal/infrastructure/auth"
	"github.com/iho/simplebank/internal/infrastructure/config"
	"github.com/iho/simplebank/internal/infrastructure/logger"
	"github.com/iho/simplebank/internal/infrastructure/metrics"
	"github.com/iho/simplebank/internal/infrastructure/postgres"
	"github.com/iho/simplebank/internal/infrastructure/redis"
	"github.com/iho/simplebank/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 3 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "simplebank",
	})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

// run serves HTTP until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer app.close()

	go app.cleanupLimiters(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// app is the assembled HTTP service and the resources it owns.
type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.limiter.CleanupLimiters(limiterIdleTimeout)
		}
	}
}

// stores groups the repositories of one storage driver.
type stores struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	transfers usecase.TransferRepository
	entries   usecase.EntryRepository
	users     usecase.UserRepository
	ledger    usecase.LedgerRepository
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}
	checks := map[string]handler.Check{}

	s, err := openStorage(ctx, cfg, logger, a, checks)
	if err != nil {
		a.close()
		return nil, err
	}

	// Optional account cache
	var cache usecase.AccountCache
	if cfg.CacheEnabled {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		checks["redis"] = handler.RedisCheck(redisClient)
		cache = redisRepo.NewAccountCache(redisClient, cfg.CacheTTL)
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("account cache enabled")
	}

	m := metrics.New(reg)
	idGen := postgresRepo.NewULIDGenerator()
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(s.txManager, s.accounts, s.entries, idGen, cache, m, logger)
	transferUC := usecase.NewTransferUseCase(s.txManager, s.accounts, s.transfers, s.entries, idGen, cache, m, logger)
	entryUC := usecase.NewEntryUseCase(s.accounts, s.entries)
	userUC := usecase.NewUserUseCase(s.users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, idGen, m)
	reconUC := usecase.NewReconciliationUseCase(s.accounts, s.entries, s.ledger, m, logger)

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UserHandler:           handler.NewUserHandler(userUC),
		AccountHandler:        handler.NewAccountHandler(accountUC, entryUC),
		TransferHandler:       handler.NewTransferHandler(transferUC),
		ReconciliationHandler: handler.NewReconciliationHandler(accountUC, reconUC),
		HealthHandler:         handler.NewHealthHandler(checks),
		TokenVerifier:         tokens,
		RateLimiter:           a.limiter,
		HTTPMetrics:           middleware.NewHTTPMetrics(reg),
		Gatherer:              reg,
		Logger:                logger,
	})

	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger, a *app, checks map[string]handler.Check) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &stores{
			txManager: store,
			accounts:  memory.NewAccountRepository(store),
			transfers: memory.NewTransferRepository(store),
			entries:   memory.NewEntryRepository(store),
			users:     memory.NewUserRepository(store),
			ledger:    memory.NewLedgerRepository(store),
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			LockTimeout:    cfg.DatabaseLockTimeout,
			ConnectTimeout: cfg.DatabaseConnectTimeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = handler.PostgresCheck(pool)
		logger.Info().Msg("connected to postgres")

		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}

		return &stores{
			txManager: postgresRepo.NewTxManager(pool),
			accounts:  postgresRepo.NewAccountRepository(pool),
			transfers: postgresRepo.NewTransferRepository(pool),
			entries:   postgresRepo.NewEntryRepository(pool),
			users:     postgresRepo.NewUserRepository(pool),
			ledger:    postgresRepo.NewLedgerRepository(pool),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
