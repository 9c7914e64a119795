package db

import (
	"context"

	"spyfall_webapp/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool, or returns nil when no DSN is configured so the
// server can run without persistence.
func Connect(dsn string) *pgxpool.Pool {
	if dsn == "" {
		return nil
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return pool
}
