// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate up
//	migrate down [steps]
//	migrate version
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/recaudopro/recaudo-api/internal/config"
	"github.com/recaudopro/recaudo-api/internal/pkg/database"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down [steps] | version")
		os.Exit(2)
	}

	db, err := database.NewPostgres(context.Background(), cfg.DatabaseURL, database.PoolConfig{MaxOpen: 2, MaxIdle: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	switch os.Args[1] {
	case "up":
		err = database.MigrateUp(db)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				log.Fatal().Str("steps", os.Args[2]).Msg("steps must be a positive integer")
			}
		}
		err = database.MigrateDown(db, steps)
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = database.MigrationVersion(db)
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		log.Fatal().Str("command", os.Args[1]).Msg("unknown command")
	}

	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Migration failed")
		database.ClosePostgres(db)
		os.Exit(1)
	}
}
