package records

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/factreply/pkg/models"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict
const uniqueViolation = "23505"

// PostgresStore keeps records in the reply_records table
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error) {
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

func (s *PostgresStore) InsertRecord(ctx context.Context, rec models.ReplyRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO reply_records (source_post_id, source_post_text, reply_post_id, reply_text, reply_created_at, source_created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, rec.SourcePostID, rec.SourcePostText, rec.ReplyPostID, rec.ReplyText, rec.ReplyCreatedAt, rec.SourceCreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// HasSourcePost answers a dedup query through the unique index
func (s *PostgresStore) HasSourcePost(ctx context.Context, sourcePostID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reply_records WHERE source_post_id = $1)`, sourcePostID).Scan(&exists)
	return exists, err
}
