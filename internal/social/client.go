// Package social talks to the social-media platform the bot lives on.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/factreply/pkg/models"
)

// Client is what the bot needs from the platform
type Client interface {
	SelfID(ctx context.Context) (string, error)
	Mentions(ctx context.Context, userID string, since time.Time) ([]models.Mention, error)
	Post(ctx context.Context, id string) (*models.Post, error)
	CreateReply(ctx context.Context, text, inReplyToID string) (string, error)
}

// Error classes. Every APIError wraps at most one of these.
var (
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient failure")
	ErrNotFound     = errors.New("not found")
)

// APIError is a failed platform call
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Kind       error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Op, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Kind }

// classifyStatus maps an HTTP status to an error class, nil for plain
// client errors that will not change on retry.
func classifyStatus(status int) error {
	switch {
	case status == 429:
		return ErrRateLimited
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrTransient
	default:
		return nil
	}
}
