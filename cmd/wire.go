package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/factreply/internal/capture"
	"github.com/factreply/internal/config"
	"github.com/factreply/internal/database"
	"github.com/factreply/internal/llm"
	"github.com/factreply/internal/logging"
	"github.com/factreply/internal/orchestrator"
	"github.com/factreply/internal/records"
	"github.com/factreply/internal/responder"
	"github.com/factreply/internal/retry"
	"github.com/factreply/internal/search"
	"github.com/factreply/internal/social"
	"github.com/factreply/internal/triage"
)

// bot is everything a reply cycle needs, built from configuration
type bot struct {
	cfg          *config.Config
	client       *social.TwitterClient
	store        records.Store
	orchestrator *orchestrator.Orchestrator
	closers      []io.Closer
}

func (b *bot) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// loadConfig reads configuration, applies command flags and sets up logging.
// The returned closer releases the log file.
func loadConfig(c *cli.Context, validate bool) (*config.Config, io.Closer, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.Bool("dry-run") {
		cfg.Bot.DryRun = true
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}

	if validate {
		if err := config.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Capture.Dir != "" {
		capture.Enable(cfg.Capture.Dir)
	}
	return cfg, closer, nil
}

func newBot(ctx context.Context, cfg *config.Config) (*bot, error) {
	client, err := newTwitterClient(cfg)
	if err != nil {
		return nil, err
	}

	b := &bot{cfg: cfg, client: client}
	if err := b.openStore(ctx); err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}

	filter := triage.NewFilter(triage.NewDedupChecker(b.store))
	b.orchestrator = orchestrator.New(client, filter, generator, b.store, orchestrator.Config{
		Lookback:      cfg.Bot.Lookback,
		ResponseLimit: cfg.Bot.ResponseLimit,
		DryRun:        cfg.Bot.DryRun,
	})
	return b, nil
}

func (b *bot) openStore(ctx context.Context) error {
	switch b.cfg.Store.Backend {
	case config.StoreAirtable:
		store, err := records.NewAirtableStore(records.AirtableConfig{
			BaseURL: b.cfg.Airtable.BaseURL,
			APIKey:  b.cfg.Airtable.APIKey,
			BaseID:  b.cfg.Airtable.BaseID,
			Table:   b.cfg.Airtable.Table,
			View:    b.cfg.Airtable.View,
		})
		if err != nil {
			return fmt.Errorf("failed to create airtable store: %w", err)
		}
		b.store = store
	case config.StorePostgres:
		db, err := database.NewDB(ctx, b.cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return err
		}
		b.closers = append(b.closers, db)
		b.store = records.NewPostgresStore(db)
	case config.StoreSQLite:
		store, err := records.NewSQLiteStore(ctx, b.cfg.SQLite.Path)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, store)
		b.store = store
	case config.StoreRedis:
		store, err := records.NewRedisStore(ctx, b.cfg.Redis.URL, b.cfg.Redis.Prefix)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, store)
		b.store = store
	case config.StoreMemory:
		b.store = records.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported store backend: %s", b.cfg.Store.Backend)
	}
	return nil
}

func newTwitterClient(cfg *config.Config) (*social.TwitterClient, error) {
	client, err := social.NewTwitterClient(social.TwitterConfig{
		BaseURL:           cfg.Twitter.BaseURL,
		APIKey:            cfg.Twitter.APIKey,
		APISecret:         cfg.Twitter.APISecret,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
		BearerToken:       cfg.Twitter.BearerToken,
		MaxResults:        cfg.Twitter.MaxResults,
		RequestsPerSecond: cfg.Twitter.RequestsPerSecond,
		Burst:             cfg.Twitter.Burst,
		Timeout:           cfg.Twitter.Timeout,
		Retry:             retry.DefaultConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create twitter client: %w", err)
	}
	return client, nil
}

func newSearcher(cfg *config.Config) (*search.Searcher, error) {
	searcher, err := search.NewDuckDuckGo(cfg.Search.MaxResults, cfg.Search.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create web search: %w", err)
	}
	return searcher, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) (*responder.Generator, error) {
	connector, err := llm.NewConnector(ctx, llm.ModelConfig{
		Provider:    llm.Provider(cfg.LLM.Provider),
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create llm connector: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("provider", string(connector.GetProvider())).
		Str("model", connector.GetModel()).
		Msg("LLM connector ready")
	completion := llm.NewResilientClient(connector, retry.LLMConfig(), cfg.LLM.Timeout)

	searcher, err := newSearcher(cfg)
	if err != nil {
		return nil, err
	}

	return responder.NewGenerator(completion, searcher, responder.WithSearchResults(cfg.Search.TopResults)), nil
}
