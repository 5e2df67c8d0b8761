// Command createsuperuser creates an account with staff and superuser flags.
//
//	createsuperuser -email admin@example.com
//
// The password is read from -password or, when empty, from the
// SUPERUSER_PASSWORD environment variable.
package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/logger"
	"github.com/pageza/recipe-app/backend/internal/service"
)

func main() {
	email := flag.String("email", "", "Email address of the superuser")
	password := flag.String("password", "", "Password (defaults to SUPERUSER_PASSWORD)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Config{}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Environment: string(cfg.Environment)})

	if *password == "" {
		*password = os.Getenv("SUPERUSER_PASSWORD")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	user, err := service.NewUserService(db, bcrypt.DefaultCost).CreateSuperuser(ctx, *email, *password)
	if err != nil {
		log.Error("failed to create superuser", "error", err)
		os.Exit(1)
	}
	log.Info("superuser created", "id", user.ID, "email", user.Email)
}
