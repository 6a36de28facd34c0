// Package triage decides which mentions the bot should answer.
package triage

import (
	"context"
	"fmt"

	"github.com/factreply/internal/records"
)

// DedupChecker answers whether a source post already has a logged reply
type DedupChecker struct {
	store records.Store
}

// NewDedupChecker creates a DedupChecker reading from store
func NewDedupChecker(store records.Store) *DedupChecker {
	return &DedupChecker{store: store}
}

// AlreadyReplied reports whether sourcePostID appears in the reply log.
// Stores with an index answer directly; otherwise every record is loaded and
// scanned, which is O(n) per check and fine at the bot's volume.
func (d *DedupChecker) AlreadyReplied(ctx context.Context, sourcePostID string) (bool, error) {
	if idx, ok := d.store.(records.SourceIndex); ok {
		found, err := idx.HasSourcePost(ctx, sourcePostID)
		if err != nil {
			return false, fmt.Errorf("failed to look up source post %s: %w", sourcePostID, err)
		}
		return found, nil
	}

	recs, err := d.store.GetAllRecords(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load reply records: %w", err)
	}
	for _, rec := range recs {
		if rec.SourcePostID == sourcePostID {
			return true, nil
		}
	}
	return false, nil
}
