// Package records persists ReplyRecords, the append-only log of replies the
// bot has posted. The log is also what dedup checks read.
package records

import (
	"context"
	"errors"

	"github.com/factreply/pkg/models"
)

// ErrDuplicate is returned by stores that enforce one record per source post
var ErrDuplicate = errors.New("reply record already exists for source post")

// Store is an append-only record store
type Store interface {
	GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error)
	InsertRecord(ctx context.Context, rec models.ReplyRecord) error
}

// SourceIndex is implemented by stores that can answer a membership query
// without returning every record.
type SourceIndex interface {
	HasSourcePost(ctx context.Context, sourcePostID string) (bool, error)
}
