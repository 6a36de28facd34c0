package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/factreply/internal/retry"
)

// Completer is a single-turn completion backend
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userText string) (string, error)
}

// ResilientClient wraps a Completer with per-attempt timeouts and retries on
// errors that look transient.
type ResilientClient struct {
	client      Completer
	retryConfig retry.Config
	timeout     time.Duration
}

// NewResilientClient creates a new resilient completion wrapper. A zero
// timeout disables the per-attempt deadline.
func NewResilientClient(client Completer, config retry.Config, timeout time.Duration) *ResilientClient {
	return &ResilientClient{
		client:      client,
		retryConfig: config,
		timeout:     timeout,
	}
}

// Complete implements Completer
func (rc *ResilientClient) Complete(ctx context.Context, systemInstruction, userText string) (string, error) {
	var response string
	result := retry.Do(ctx, rc.retryConfig, func(ctx context.Context) error {
		attemptCtx := ctx
		if rc.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, rc.timeout)
			defer cancel()
		}

		text, err := rc.client.Complete(attemptCtx, systemInstruction, userText)
		if err != nil {
			if ctx.Err() == nil && (retry.IsRetryableError(err) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			return retry.Permanent(err)
		}
		if text == "" {
			return ErrEmptyCompletion
		}
		response = text
		return nil
	})

	if !result.Success {
		return "", result.LastError
	}
	if result.Attempts > 1 {
		zerolog.Ctx(ctx).Info().
			Int("attempts", result.Attempts).
			Dur("duration", result.TotalDuration).
			Strs("retry_reasons", result.RetryReasons).
			Msg("Completion succeeded after retries")
	}
	return response, nil
}
