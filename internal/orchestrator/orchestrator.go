// Package orchestrator runs one reply cycle: fetch mentions, pick the ones
// worth answering, generate and post replies, log them.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/factreply/internal/capture"
	"github.com/factreply/internal/records"
	"github.com/factreply/internal/social"
	"github.com/factreply/pkg/models"
)

const (
	DefaultLookback      = 30 * time.Minute
	DefaultResponseLimit = 35
)

// Generator produces the reply text for a post
type Generator interface {
	Generate(ctx context.Context, input string) (string, error)
}

// Eligibility decides whether a mention gets a reply
type Eligibility interface {
	IsEligible(ctx context.Context, mention models.Mention, root models.Post) (bool, error)
}

// Config tunes a cycle
type Config struct {
	// Lookback is how far back mentions are fetched. Keep it at least as long
	// as the scheduling interval or mentions fall between cycles.
	Lookback time.Duration
	// ResponseLimit caps how many mentions one cycle processes
	ResponseLimit int
	// DryRun generates replies without posting or logging them
	DryRun bool
}

// Orchestrator drives reply cycles. Cycles must not overlap.
type Orchestrator struct {
	client    social.Client
	filter    Eligibility
	generator Generator
	store     records.Store
	cfg       Config
	now       func() time.Time

	selfID string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator
func New(client social.Client, filter Eligibility, generator Generator, store records.Store, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.ResponseLimit <= 0 {
		cfg.ResponseLimit = DefaultResponseLimit
	}
	o := &Orchestrator{
		client:    client,
		filter:    filter,
		generator: generator,
		store:     store,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one cycle under a fresh run id and reports how it went.
// Errors are logged and carried in the report, never returned.
func (o *Orchestrator) Run(ctx context.Context) models.CycleReport {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	report := models.CycleReport{RunID: runID, StartedAt: o.now().UTC()}
	logger.Info().Time("started_at", report.StartedAt).Msg("Starting job")

	tally, err := o.Execute(ctx)
	report.Tally = tally
	report.FinishedAt = o.now().UTC()

	event := logger.Info()
	if err != nil {
		report.Error = err.Error()
		event = logger.Error().Err(err)
	}
	event.
		Int("found", tally.Found).
		Int("replied", tally.RepliedOK).
		Int("errors", tally.RepliedErr).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Finished job")

	return report
}

// Execute runs one cycle. A failed post or an unavailable conversation root
// is skipped; any other failure stops the cycle and is returned with the
// tally so far.
func (o *Orchestrator) Execute(ctx context.Context) (models.RunTally, error) {
	logger := zerolog.Ctx(ctx)
	var tally models.RunTally

	selfID, err := o.resolveSelfID(ctx)
	if err != nil {
		return tally, fmt.Errorf("failed to resolve account id: %w", err)
	}

	since := o.now().UTC().Add(-o.cfg.Lookback)
	mentions, err := o.client.Mentions(ctx, selfID, since)
	if err != nil {
		return tally, fmt.Errorf("failed to fetch mentions: %w", err)
	}
	if len(mentions) == 0 {
		logger.Info().Time("since", since).Msg("No mentions found")
		return tally, nil
	}

	tally.Found = len(mentions)
	batch := mentions
	if len(batch) > o.cfg.ResponseLimit {
		logger.Info().
			Int("found", len(mentions)).
			Int("limit", o.cfg.ResponseLimit).
			Msg("Mention limit reached, deferring the rest")
		batch = batch[:o.cfg.ResponseLimit]
	}

	for _, mention := range batch {
		root, err := o.conversationRoot(ctx, mention)
		if errors.Is(err, social.ErrNotFound) {
			// deleted or protected root
			logger.Warn().Err(err).Str("mention_id", mention.ID).Msg("Conversation root unavailable, skipping mention")
			continue
		}
		if err != nil {
			return tally, fmt.Errorf("failed to resolve conversation root of mention %s: %w", mention.ID, err)
		}

		eligible, err := o.filter.IsEligible(ctx, mention, root)
		if err != nil {
			return tally, fmt.Errorf("failed to check eligibility of mention %s: %w", mention.ID, err)
		}
		if !eligible {
			logger.Debug().Str("mention_id", mention.ID).Str("root_id", root.ID).Msg("Skipping mention")
			continue
		}

		if err := o.respond(ctx, mention, root, &tally); err != nil {
			return tally, err
		}
	}

	return tally, nil
}

// respond generates, posts and logs one reply. Post failures are tallied and
// swallowed so the rest of the batch still runs.
func (o *Orchestrator) respond(ctx context.Context, mention models.Mention, root models.Post, tally *models.RunTally) error {
	logger := zerolog.Ctx(ctx).With().Str("mention_id", mention.ID).Str("root_id", root.ID).Logger()

	reply, err := o.generator.Generate(ctx, root.Text)
	if err != nil {
		return fmt.Errorf("failed to generate reply for post %s: %w", root.ID, err)
	}

	if o.cfg.DryRun {
		logger.Info().Str("reply", reply).Msg("Dry run, not posting reply")
		capture.WriteJSON("replies", "dry-run", map[string]string{
			"mention_id":  mention.ID,
			"source_id":   root.ID,
			"source_text": root.Text,
			"reply_text":  reply,
		})
		return nil
	}

	replyID, err := o.client.CreateReply(ctx, reply, mention.ID)
	if err != nil {
		tally.RepliedErr++
		logger.Error().Err(err).Msg("Failed to post reply")
		return nil
	}
	logger.Info().Str("reply_id", replyID).Msg("Reply created")

	rec := models.ReplyRecord{
		SourcePostID:    root.ID,
		SourcePostText:  root.Text,
		ReplyPostID:     replyID,
		ReplyText:       reply,
		ReplyCreatedAt:  o.now().UTC().Format(time.RFC3339Nano),
		SourceCreatedAt: mentionCreatedAt(mention),
	}
	if err := o.store.InsertRecord(ctx, rec); err != nil {
		if !errors.Is(err, records.ErrDuplicate) {
			return fmt.Errorf("failed to log reply %s: %w", replyID, err)
		}
		// another process answered the same root concurrently
		logger.Warn().Msg("Reply already logged for this post")
	}

	tally.RepliedOK++
	return nil
}

// conversationRoot returns the post the mention's thread started with. A
// mention without a distinct conversation is its own root.
func (o *Orchestrator) conversationRoot(ctx context.Context, mention models.Mention) (models.Post, error) {
	if mention.ConversationID == "" || mention.ConversationID == mention.ID {
		return models.Post{ID: mention.ID, Text: mention.Text}, nil
	}
	post, err := o.client.Post(ctx, mention.ConversationID)
	if err != nil {
		return models.Post{}, err
	}
	return *post, nil
}

func (o *Orchestrator) resolveSelfID(ctx context.Context) (string, error) {
	if o.selfID != "" {
		return o.selfID, nil
	}
	id, err := o.client.SelfID(ctx)
	if err != nil {
		return "", err
	}
	o.selfID = id
	return id, nil
}

func mentionCreatedAt(m models.Mention) string {
	if m.CreatedAtRaw != "" {
		return m.CreatedAtRaw
	}
	if m.CreatedAt.IsZero() {
		return ""
	}
	return m.CreatedAt.UTC().Format(time.RFC3339Nano)
}
