package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factreply/pkg/models"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(models.ReplyRecord{SourcePostID: "1"})
	require.NoError(t, store.InsertRecord(context.Background(), models.ReplyRecord{SourcePostID: "2"}))

	recs, err := store.GetAllRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 2, store.Len())

	// returned slice is a copy
	recs[0].SourcePostID = "changed"
	again, _ := store.GetAllRecords(context.Background())
	assert.Equal(t, "1", again[0].SourcePostID)
}
