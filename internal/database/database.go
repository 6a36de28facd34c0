package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// schema is applied on every start; statements must stay idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reply_records (
		id                BIGSERIAL PRIMARY KEY,
		source_post_id    TEXT NOT NULL,
		source_post_text  TEXT NOT NULL,
		reply_post_id     TEXT NOT NULL,
		reply_text        TEXT NOT NULL,
		reply_created_at  TEXT NOT NULL,
		source_created_at TEXT NOT NULL,
		logged_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reply_records_source_post_id_key ON reply_records (source_post_id)`,
}

// NewDB opens and pings a Postgres connection
func NewDB(ctx context.Context, dbURL string) (*sql.DB, error) {
	dbURL = strings.TrimSpace(dbURL)
	if dbURL == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return db, nil
}

// Migrate creates the tables the bot needs
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
