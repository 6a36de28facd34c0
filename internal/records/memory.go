package records

import (
	"context"
	"sync"

	"github.com/factreply/pkg/models"
)

// MemoryStore keeps records in process memory. Used for dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.ReplyRecord
}

// NewMemoryStore creates a MemoryStore seeded with records
func NewMemoryStore(seed ...models.ReplyRecord) *MemoryStore {
	return &MemoryStore{records: append([]models.ReplyRecord(nil), seed...)}
}

func (s *MemoryStore) GetAllRecords(ctx context.Context) ([]models.ReplyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ReplyRecord(nil), s.records...), nil
}

func (s *MemoryStore) InsertRecord(ctx context.Context, rec models.ReplyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
