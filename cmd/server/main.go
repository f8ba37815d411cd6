package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/config"
	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/handler"
	"github.com/contactdesk/admin-server/internal/redis"
	"github.com/contactdesk/admin-server/internal/repository"
	"github.com/contactdesk/admin-server/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Str("driver", db.Driver()).Msg("database connected")

	if cfg.MigrateOnStart {
		if err := db.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	var limiter service.Limiter
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		limiter = service.NewRedisRateLimiter(redisClient.Client)
		log.Info().Msg("redis connected, rate limits are shared")
	} else {
		limiter = service.NewMemoryRateLimiter()
		log.Info().Msg("REDIS_URL not set, rate limits are per process")
	}

	messageRepo := repository.NewMessageRepository(db.DB)
	archiveRepo := repository.NewArchiveRepository(db.DB)
	adminSessionRepo := repository.NewAdminSessionRepository(db.DB)
	offerRepo := repository.NewOfferRepository(db.DB)
	blogRepo := repository.NewBlogPostRepository(db.DB)

	sessions := service.NewSessionStore(adminSessionRepo)
	services := handler.Services{
		Admin:    service.NewAdminService(sessions, cfg.AdminPasswordHash),
		Sessions: sessions,
		Archiver: service.NewMessageArchiver(db, messageRepo, archiveRepo),
		Messages: service.NewMessageService(messageRepo),
		Offers:   service.NewOfferService(offerRepo),
		Blog:     service.NewBlogService(blogRepo),
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(cfg, db, services, limiter),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown LOG_LEVEL, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
