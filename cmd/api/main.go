package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipe-app/backend/config"
	"github.com/pageza/recipe-app/backend/internal/api"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/logger"
	"github.com/pageza/recipe-app/backend/internal/router"
	"github.com/pageza/recipe-app/backend/internal/server"
	"github.com/pageza/recipe-app/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Config{}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{
		Writer:      os.Stdout,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Environment: string(cfg.Environment),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("redis unavailable, rate limiting disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	storage, err := service.NewImageStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to set up image storage", "error", err)
		os.Exit(1)
	}

	users := service.NewUserService(db, bcrypt.DefaultCost)
	handler := router.SetupRouter(router.Deps{
		Config: cfg,
		Log:    log,
		DB:     db,
		Redis:  redisClient,
		Services: api.Services{
			Users:       users,
			Auth:        service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL),
			Tags:        service.NewTagService(db),
			Ingredients: service.NewIngredientService(db),
			Recipes:     service.NewRecipeService(db, storage),
		},
	})

	srv := server.New(cfg, handler, log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
