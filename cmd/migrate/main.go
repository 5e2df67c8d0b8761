package main

import (
	"context"
	"flag"
	"os"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Config{}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Environment: string(cfg.Environment)})

	migrationsDir := cfg.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	db, err := database.Connect(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if *rollback {
		name, err := database.RollbackLastMigration(db, migrationsDir, log)
		if err != nil {
			log.Error("rollback failed", "error", err)
			os.Exit(1)
		}
		log.Info("rolled back migration", "name", name)
		return
	}

	if err := database.RunMigrations(db, migrationsDir, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("all migrations applied")
}
