// Command purge-sessions deletes expired admin sessions once and exits.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/config"
	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/jobs"
	"github.com/contactdesk/admin-server/internal/repository"
	"github.com/contactdesk/admin-server/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	sessions := service.NewSessionStore(repository.NewAdminSessionRepository(db.DB))

	counts, err := jobs.NewPurger(config.PurgeTimeout).
		Add("admin sessions", sessions.PurgeExpired).
		Run(context.Background())
	if err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("purge failed")
	}

	log.Info().Int64("adminSessions", counts["admin sessions"]).Msg("purge complete")
}
