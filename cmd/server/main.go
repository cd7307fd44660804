package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/olegbp/cryptofolio/internal/adapter/http"
	"github.com/olegbp/cryptofolio/internal/adapter/http/handler"
	postgresRepo "github.com/olegbp/cryptofolio/internal/adapter/repository/postgres"
	redisRepo "github.com/olegbp/cryptofolio/internal/adapter/repository/redis"
	"github.com/olegbp/cryptofolio/internal/infrastructure/auth"
	"github.com/olegbp/cryptofolio/internal/infrastructure/config"
	"github.com/olegbp/cryptofolio/internal/infrastructure/logger"
	"github.com/olegbp/cryptofolio/internal/infrastructure/metrics"
	"github.com/olegbp/cryptofolio/internal/infrastructure/postgres"
	"github.com/olegbp/cryptofolio/internal/infrastructure/redis"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Apply pending schema migrations
	migrator := postgres.NewMigrator(pool, log)
	if err := migrator.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	quoteRepo := postgresRepo.NewQuoteRepository(pool)
	activityRepo := postgresRepo.NewActivityRepository(pool)
	maintRepo := postgresRepo.NewMaintenanceRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	hasher := auth.NewBcryptHasher()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, hasher, idGen, m)
	session := usecase.NewSession(accountUC, m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, ledgerRepo, retrier, idGen, m, cfg.AllowShortSelling)
	holdingsUC := usecase.NewHoldingsUseCase(ledgerRepo, quoteRepo)
	marketUC := usecase.NewMarketUseCase(quoteRepo, activityRepo, idGen, m)
	maintenanceUC := usecase.NewMaintenanceUseCase(maintRepo, session)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(session, accountUC, jwtManager)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	marketHandler := handler.NewMarketHandler(marketUC)
	portfolioHandler := handler.NewPortfolioHandler(holdingsUC)
	adminHandler := handler.NewAdminHandler(maintenanceUC, marketUC, cfg.CacheMaxAge)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      authHandler,
		LedgerHandler:    ledgerHandler,
		MarketHandler:    marketHandler,
		PortfolioHandler: portfolioHandler,
		AdminHandler:     adminHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		Session:          session,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
	})

	// Background cache eviction
	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go runEvictionLoop(evictCtx, marketUC, cfg.CacheMaxAge, cfg.CacheEvictInterval, log)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopEviction()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// runEvictionLoop periodically removes cached quotes older than maxAge.
func runEvictionLoop(ctx context.Context, marketUC *usecase.MarketUseCase, maxAge, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, err := marketUC.EvictStale(ctx, maxAge)
			if err != nil {
				log.Error().Err(err).Msg("cache eviction failed")
				continue
			}
			if evicted > 0 {
				log.Info().Int64("evicted", evicted).Msg("evicted stale quotes")
			}
		}
	}
}
