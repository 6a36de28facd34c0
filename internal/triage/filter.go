package triage

import (
	"context"

	"github.com/factreply/pkg/models"
)

// Deduper is the part of DedupChecker the filter needs
type Deduper interface {
	AlreadyReplied(ctx context.Context, sourcePostID string) (bool, error)
}

// Filter decides whether a mention gets a reply
type Filter struct {
	dedup Deduper
}

func NewFilter(dedup Deduper) *Filter {
	return &Filter{dedup: dedup}
}

// IsEligible is true when the mention points at a different root post and
// that root has not been answered yet. A mention that is itself the root has
// nothing to fact-check, so the reply log is not consulted for it.
func (f *Filter) IsEligible(ctx context.Context, mention models.Mention, root models.Post) (bool, error) {
	if root.ID == mention.ID {
		return false, nil
	}
	replied, err := f.dedup.AlreadyReplied(ctx, root.ID)
	if err != nil {
		return false, err
	}
	return !replied, nil
}
