package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-offer-service/internal/config"
	"github.com/fairyhunter13/cart-offer-service/internal/handler"
	"github.com/fairyhunter13/cart-offer-service/internal/ratelimit"
	"github.com/fairyhunter13/cart-offer-service/internal/repository"
	"github.com/fairyhunter13/cart-offer-service/internal/segment"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
	"github.com/fairyhunter13/cart-offer-service/internal/validator"
	"github.com/fairyhunter13/cart-offer-service/pkg/database"
)

// offerStore is what the engine and the health check need from a backend.
type offerStore interface {
	service.OfferStoreInterface
	handler.Pinger
}

// pgStore pairs the Postgres repository with its pool for health checks.
type pgStore struct {
	*repository.OfferRepository
	handler.Pinger
}

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openStore(ctx, cfg)

	var resolver service.SegmentResolver = segment.NewClient(cfg.Segment.BaseURL, cfg.Segment.Timeout)
	closeCache := func() {}
	if cfg.Cache.Enabled() {
		rdb, err := segment.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		resolver = segment.NewCachingResolver(resolver, rdb, cfg.Cache.SegmentTTL)
		closeCache = func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("error closing redis client")
			}
		}
		log.Info().Dur("ttl", cfg.Cache.SegmentTTL).Msg("segment cache enabled")
	}

	limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go ratelimit.RunSweeper(ctx, limiter, cfg.RateLimit.IdleTTL/2, cfg.RateLimit.IdleTTL)

	gate := service.NewAccessGate(service.DefaultPermissions(), limiter)
	engine := service.NewOfferEngine(gate, store, resolver, validator.New())

	roles := handler.NewRoleResolver(cfg.Auth.AnonymousRole)
	offerHandler := handler.NewOfferHandler(engine, roles)
	cartHandler := handler.NewCartHandler(engine, roles)
	healthHandler := handler.NewHealthHandler(store)

	app := fiber.New(fiber.Config{
		AppName:      "Cart Offer Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(handler.Metrics())

	handler.RegisterRoutes(app, offerHandler, cartHandler, healthHandler, cfg.Server.RequestTimeout)

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("store", cfg.Store.Driver).
			Int("rate_limit_requests", cfg.RateLimit.Requests).
			Dur("rate_limit_window", cfg.RateLimit.Window).
			Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Stop background work and release backends only after the server drained
	cancel()
	closeCache()
	closeStore()
	log.Info().Msg("server stopped")
}

// openStore builds the configured offer store and its cleanup func.
func openStore(ctx context.Context, cfg *config.Config) (offerStore, func()) {
	if !cfg.Store.UsesPostgres() {
		log.Info().Msg("using in-memory offer store")
		return repository.NewMemoryOfferStore(), func() {}
	}

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	store := pgStore{OfferRepository: repository.NewOfferRepository(pool), Pinger: pool}
	return store, func() {
		log.Info().Msg("closing database connections...")
		pool.Close()
	}
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
