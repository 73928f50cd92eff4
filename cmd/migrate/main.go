package main

import (
	"context"
	"flag"

	"bookmesh/internal/config"
	"bookmesh/internal/platform/logger"
	"bookmesh/internal/platform/postgres"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		service = flag.String("service", "books", "Database to migrate: books, authors")
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	dir, err := migrationsDir(*service)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -service")
	}

	cfg, err := config.Load("", defaultDSN(*service))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("migrate", cfg.LogLevel, cfg.LogPretty)
	l := log.With().Str("db", *service).Str("dir", dir).Logger()

	if *command == "create" {
		if *name == "" {
			l.Fatal().Msg("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			l.Fatal().Err(err).Msg("failed to create migration")
		}
		l.Info().Str("name", *name).Msg("migration created")
		return
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, cfg.DatabaseDSN, cfg.QueryTimeout)
	if err != nil {
		l.Fatal().Err(err).Str("dsn", cfg.RedactedDSN()).Msg("failed to connect to database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		l.Fatal().Err(err).Msg("set goose dialect")
	}

	switch *command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			l.Fatal().Err(err).Msg("failed to run migrations")
		}
		l.Info().Msg("migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			l.Fatal().Err(err).Msg("failed to rollback migrations")
		}
		l.Info().Msg("migrations rolled back successfully")
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			l.Fatal().Err(err).Msg("failed to check migration status")
		}
	default:
		l.Fatal().Str("command", *command).Msg("unknown command, use: up, down, status, create")
	}
}
