package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/factreply/pkg/models"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS reply_records (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		source_post_id    TEXT NOT NULL UNIQUE,
		source_post_text  TEXT NOT NULL,
		reply_post_id     TEXT NOT NULL,
		reply_text        TEXT NOT NULL,
		reply_created_at  TEXT NOT NULL,
		source_created_at TEXT NOT NULL,
		logged_at         TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// SQLiteStore keeps records in a local SQLite file, for single-host setups
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, stmt := range append(pragmas, sqliteSchema...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT source_post_id, source_post_text, reply_post_id, reply_text, reply_created_at, source_created_at
        FROM reply_records ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReplyRecord
	for rows.Next() {
		var r models.ReplyRecord
		if err := rows.Scan(&r.SourcePostID, &r.SourcePostText, &r.ReplyPostID, &r.ReplyText, &r.ReplyCreatedAt, &r.SourceCreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertRecord(ctx context.Context, rec models.ReplyRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO reply_records (source_post_id, source_post_text, reply_post_id, reply_text, reply_created_at, source_created_at)
        VALUES (?,?,?,?,?,?)
    `, rec.SourcePostID, rec.SourcePostText, rec.ReplyPostID, rec.ReplyText, rec.ReplyCreatedAt, rec.SourceCreatedAt)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) HasSourcePost(ctx context.Context, sourcePostID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reply_records WHERE source_post_id = ?)`, sourcePostID).Scan(&exists)
	return exists, err
}
