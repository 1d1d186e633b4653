package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/insurancebot/core/logger"
)

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	host, port, name := cfg.Target()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	took := time.Since(start)
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			slog.String("status", "fail"),
			slog.String("host", host),
			slog.String("port", port),
			slog.String("db", name),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxConnections)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info(ctx, "db", "db.connect",
		slog.String("status", "ok"),
		slog.String("host", host),
		slog.String("port", port),
		slog.String("db", name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)
	return db, nil
}

// WaitForPostgres polls the server until it answers a ping or the timeout elapses.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var lastErr error
	for {
		db, err := sqlx.Open("postgres", dsn)
		if err == nil {
			err = db.PingContext(ctx)
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		case <-ticker.C:
		}
	}
}
