package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factreply/internal/records"
	"github.com/factreply/pkg/models"
)

type countingStore struct {
	*records.MemoryStore
	loads int
	err   error
}

func (s *countingStore) GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.GetAllRecords(ctx)
}

type indexedStore struct {
	records.Store
	lookups []string
}

func (s *indexedStore) HasSourcePost(ctx context.Context, id string) (bool, error) {
	s.lookups = append(s.lookups, id)
	return id == "indexed", nil
}

func TestDedupChecker_LinearScan(t *testing.T) {
	store := &countingStore{MemoryStore: records.NewMemoryStore(
		models.ReplyRecord{SourcePostID: "100"},
		models.ReplyRecord{SourcePostID: "200"},
	)}
	checker := NewDedupChecker(store)

	replied, err := checker.AlreadyReplied(context.Background(), "200")
	require.NoError(t, err)
	assert.True(t, replied)

	replied, err = checker.AlreadyReplied(context.Background(), "300")
	require.NoError(t, err)
	assert.False(t, replied)

	assert.Equal(t, 2, store.loads)
}

func TestDedupChecker_UsesIndexWhenAvailable(t *testing.T) {
	store := &indexedStore{Store: records.NewMemoryStore()}
	checker := NewDedupChecker(store)

	replied, err := checker.AlreadyReplied(context.Background(), "indexed")
	require.NoError(t, err)
	assert.True(t, replied)
	assert.Equal(t, []string{"indexed"}, store.lookups)
}

func TestDedupChecker_StoreError(t *testing.T) {
	storeErr := errors.New("airtable down")
	checker := NewDedupChecker(&countingStore{MemoryStore: records.NewMemoryStore(), err: storeErr})

	_, err := checker.AlreadyReplied(context.Background(), "1")
	assert.ErrorIs(t, err, storeErr)
}

func TestFilter_SelfRootIsNeverEligible(t *testing.T) {
	store := &countingStore{MemoryStore: records.NewMemoryStore()}
	filter := NewFilter(NewDedupChecker(store))

	eligible, err := filter.IsEligible(context.Background(),
		models.Mention{ID: "5"},
		models.Post{ID: "5"})

	require.NoError(t, err)
	assert.False(t, eligible)
	assert.Equal(t, 0, store.loads, "dedup should not be consulted")
}

func TestFilter_AlreadyRepliedRootIsNotEligible(t *testing.T) {
	store := records.NewMemoryStore(models.ReplyRecord{SourcePostID: "10"})
	filter := NewFilter(NewDedupChecker(store))

	eligible, err := filter.IsEligible(context.Background(),
		models.Mention{ID: "11", ConversationID: "10"},
		models.Post{ID: "10"})

	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestFilter_FreshRootIsEligible(t *testing.T) {
	store := records.NewMemoryStore(models.ReplyRecord{SourcePostID: "10"})
	filter := NewFilter(NewDedupChecker(store))

	eligible, err := filter.IsEligible(context.Background(),
		models.Mention{ID: "21", ConversationID: "20"},
		models.Post{ID: "20"})

	require.NoError(t, err)
	assert.True(t, eligible)
}
