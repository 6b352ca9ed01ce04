package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteConfig holds local SQLite database configuration.
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns sensible defaults for a database file at path.
func DefaultSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:        path,
		BusyTimeout: 5 * time.Second,
	}
}

// DSN returns the modernc.org/sqlite connection string.
func (c *SQLiteConfig) DSN() string {
	if c.Path == MemoryPath {
		return MemoryPath
	}
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", c.BusyTimeout.Milliseconds()),
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
		"_pragma=synchronous(NORMAL)",
	}
	return filepath.Clean(c.Path) + "?" + strings.Join(params, "&")
}

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = 100 * time.Millisecond
	retryJitterFraction  = 0.25
)

// retryBackoff returns the backoff duration for the given attempt (0-indexed)
// with ±25% jitter. Base delays: 100ms, 200ms, 400ms.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := defaultRetryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
	return base + jitter
}

// isBusyError reports whether err is SQLite refusing a lock held by another
// connection or process.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

// OpenSQLite opens the database described by cfg, creating parent
// directories as needed, and verifies it with a ping. Lock contention at
// startup is retried (3 attempts, 100ms/200ms/400ms with ±25% jitter).
//
// The pool is limited to one connection: the database is private to this
// process and a single connection keeps in-memory databases coherent.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig, logger *slog.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(filepath.Clean(cfg.Path)), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if !isBusyError(err) || attempt == defaultRetryAttempts-1 {
			break
		}
		wait := retryBackoff(attempt)
		if logger != nil {
			logger.WarnContext(ctx, "sqlite busy, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", defaultRetryAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite db: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping sqlite db: %w", err)
}
