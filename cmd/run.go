package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/factreply/internal/api"
	"github.com/factreply/internal/config"
	"github.com/factreply/internal/jobqueue"
	"github.com/factreply/internal/scheduler"
)

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Reply to mentions on a schedule until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Generate replies without posting or logging them",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: runBot,
	}
}

// OnceCommand returns the once command
func OnceCommand() *cli.Command {
	return &cli.Command{
		Name:  "once",
		Usage: "Run a single reply cycle and exit",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Generate replies without posting or logging them",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: runOnce,
	}
}

func runBot(c *cli.Context) error {
	cfg, logCloser, err := loadConfig(c, true)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	b, err := newBot(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	board := api.NewStatusBoard()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.Addr != "" {
		server := api.NewServer(cfg.Server.Addr, board)
		g.Go(func() error { return server.Start(ctx) })
	}

	switch cfg.Scheduler.Backend {
	case config.SchedulerRiver:
		g.Go(func() error { return runRiver(ctx, cfg, b, board) })
	default:
		loop := scheduler.NewLoop(b.orchestrator, cfg.Bot.Interval, board.Record)
		g.Go(func() error { return loop.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("Shut down")
	return nil
}

func runRiver(ctx context.Context, cfg *config.Config, b *bot, board *api.StatusBoard) error {
	jq, err := jobqueue.NewJobQueue(ctx, cfg.Database.URL, jobqueue.GetQueueConfig(cfg.Bot.Interval), b.orchestrator, board.Record)
	if err != nil {
		return err
	}
	if err := jq.Migrate(ctx); err != nil {
		return err
	}
	if err := jq.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job queue: %w", err)
	}
	log.Info().Dur("interval", cfg.Bot.Interval).Msg("River scheduler started")

	<-ctx.Done()
	return jq.Stop(context.WithoutCancel(ctx))
}

func runOnce(c *cli.Context) error {
	cfg, logCloser, err := loadConfig(c, true)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx := log.Logger.WithContext(c.Context)
	b, err := newBot(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	report := b.orchestrator.Run(ctx)
	fmt.Printf("Found: %d, Replied: %d, Errors: %d\n", report.Tally.Found, report.Tally.RepliedOK, report.Tally.RepliedErr)
	if report.Error != "" {
		return fmt.Errorf("cycle aborted: %s", report.Error)
	}
	return nil
}
