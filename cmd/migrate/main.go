// Command migrate applies or rolls back the database schema.
//
//	migrate up            apply all pending migrations
//	migrate down [n]      roll back n migrations (default 1)
//	migrate version       print the current schema version
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"vendorbook/internal/config"
	"vendorbook/internal/infrastructure/storage/postgres"
	"vendorbook/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.IsDevelopment()})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to open migrator", "error", err)
	}
	defer func() { _, _ = m.Close() }()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps < 1 {
				log.Fatalw("invalid step count", "value", os.Args[2])
			}
		}
		err = m.Steps(-steps)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info("no migrations applied")
			return
		}
		if verr != nil {
			log.Fatalw("failed to read version", "error", verr)
		}
		log.Infow("schema version", "version", v, "dirty", dirty)
		return
	default:
		log.Fatalw("unknown command", "command", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalw("migration failed", "command", cmd, "error", err)
	}
	log.Infow("migration complete", "command", cmd)
}
