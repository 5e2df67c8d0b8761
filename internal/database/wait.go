package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/config"
)

// Pinger is the part of a database handle WaitForDB needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// WaitForDB pings until the database answers, the attempts run out or ctx
// is cancelled. Containers usually start the API before PostgreSQL accepts
// connections.
func WaitForDB(ctx context.Context, db Pinger, attempts int, interval time.Duration, log *slog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			log.Info("database available", "attempt", i)
			return nil
		}
		log.Warn("database unavailable, waiting", "attempt", i, "error", err)

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("database not available after %d attempts: %w", attempts, err)
}

// Connect opens the configured database and waits until it answers.
func Connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	if err := WaitForDB(ctx, sqlDB, 30, time.Second, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}
