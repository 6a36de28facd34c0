package records

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factreply/internal/database"
	"github.com/factreply/pkg/models"
)

// Runs against a real Postgres when FACTREPLY_TEST_DATABASE_URL is set
func TestPostgresStore(t *testing.T) {
	dbURL := os.Getenv("FACTREPLY_TEST_DATABASE_URL")
	if dbURL == "" || testing.Short() {
		t.Skip("FACTREPLY_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := database.NewDB(ctx, dbURL)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `DELETE FROM reply_records WHERE source_post_id LIKE 'test-%'`)
	require.NoError(t, err)

	store := NewPostgresStore(db)
	rec := models.ReplyRecord{SourcePostID: "test-1", SourcePostText: "t", ReplyPostID: "r", ReplyText: "x"}

	require.NoError(t, store.InsertRecord(ctx, rec))
	assert.ErrorIs(t, store.InsertRecord(ctx, rec), ErrDuplicate)

	found, err := store.HasSourcePost(ctx, "test-1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.HasSourcePost(ctx, "test-missing")
	require.NoError(t, err)
	assert.False(t, found)

	all, err := store.GetAllRecords(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, rec)
}
