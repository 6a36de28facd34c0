package api

import (
	"sync"

	"github.com/factreply/pkg/models"
)

// StatusBoard holds the most recent cycle report, in memory only
type StatusBoard struct {
	mu   sync.RWMutex
	last *models.CycleReport
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// Record replaces the last report
func (b *StatusBoard) Record(report models.CycleReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = &report
}

// Last returns the last report, false before the first cycle finishes
func (b *StatusBoard) Last() (models.CycleReport, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return models.CycleReport{}, false
	}
	return *b.last, true
}
