package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reminder_notifier/internal/domain/reminder"
	"reminder_notifier/internal/infra/config"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

const (
	// A run touches records one at a time, so a small pool is plenty.
	defaultMaxOpenConns    = 4
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewSQLiteConnection opens a SQLite database file. A "sqlite://" prefix is accepted.
func NewSQLiteConnection(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	dsn := strings.TrimPrefix(dataSourceName, "sqlite://")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

// OpenRepository connects to the configured store and returns the reminder
// repository for it together with the underlying handle for closing.
func OpenRepository(ctx context.Context, cfg *config.AppConfig) (reminder.Repository, *sql.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := NewSQLiteConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := NewSQLiteReminderRepository(db, cfg.RemindersDatabaseID)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	default:
		db, err := NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresReminderRepository(db, cfg.RemindersDatabaseID), db, nil
	}
}
