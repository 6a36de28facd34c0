/*
Package jobqueue runs reply cycles as a River periodic job.

For configuration options see queue_config.go.
*/
package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/zerolog/log"

	"github.com/factreply/pkg/models"
)

// CycleRunner runs one reply cycle
type CycleRunner interface {
	Run(ctx context.Context) models.CycleReport
}

// ReportFunc receives every finished cycle
type ReportFunc func(models.CycleReport)

// ReplyCycleArgs represents the arguments for a reply cycle job
type ReplyCycleArgs struct{}

// Kind returns the job kind for River
func (ReplyCycleArgs) Kind() string {
	return "reply_cycle"
}

// ReplyCycleWorker handles reply cycle jobs
type ReplyCycleWorker struct {
	river.WorkerDefaults[ReplyCycleArgs]
	runner  CycleRunner
	report  ReportFunc
	timeout time.Duration
}

// Work runs the cycle. A failed cycle is reported, not retried.
func (w *ReplyCycleWorker) Work(ctx context.Context, job *river.Job[ReplyCycleArgs]) error {
	log.Info().Int64("job_id", job.ID).Int("attempt", job.Attempt).Msg("Processing reply cycle job")

	report := w.runner.Run(ctx)
	if w.report != nil {
		w.report(report)
	}
	return nil
}

// Timeout bounds a single cycle
func (w *ReplyCycleWorker) Timeout(*river.Job[ReplyCycleArgs]) time.Duration {
	return w.timeout
}

// JobQueue manages the River job queue
type JobQueue struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	config *QueueConfig
}

// NewJobQueue creates a new job queue instance. The periodic cycle job runs
// once on start and then every config.Interval.
func NewJobQueue(ctx context.Context, databaseURL string, config *QueueConfig, runner CycleRunner, report ReportFunc) (*JobQueue, error) {
	if config == nil {
		config = DefaultQueueConfig()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig(config, runner, report))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &JobQueue{
		client: client,
		pool:   pool,
		config: config,
	}, nil
}

func riverConfig(config *QueueConfig, runner CycleRunner, report ReportFunc) *river.Config {
	workers := river.NewWorkers()
	river.AddWorker(workers, &ReplyCycleWorker{runner: runner, report: report, timeout: config.JobTimeout})

	return &river.Config{
		Queues:       config.RiverQueueConfig(),
		Workers:      workers,
		PeriodicJobs: []*river.PeriodicJob{periodicCycleJob(config)},
		JobTimeout:   config.JobTimeout,
	}
}

func periodicCycleJob(config *QueueConfig) *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(config.Interval),
		func() (river.JobArgs, *river.InsertOpts) {
			return ReplyCycleArgs{}, config.InsertOpts()
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}

// Migrate brings River's tables up to date
func (jq *JobQueue) Migrate(ctx context.Context) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(jq.pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("failed to migrate River schema: %w", err)
	}
	for _, v := range res.Versions {
		log.Info().Int("version", v.Version).Msg("Applied River migration")
	}
	return nil
}

// Start starts the job queue workers
func (jq *JobQueue) Start(ctx context.Context) error {
	return jq.client.Start(ctx)
}

// Stop stops the job queue workers and closes the pool
func (jq *JobQueue) Stop(ctx context.Context) error {
	defer jq.pool.Close()
	return jq.client.Stop(ctx)
}

// RunNow queues an extra cycle outside the schedule. It is still unique
// per period, so it is a no-op if this period's cycle is already queued.
func (jq *JobQueue) RunNow(ctx context.Context) (bool, error) {
	res, err := jq.client.Insert(ctx, ReplyCycleArgs{}, jq.config.InsertOpts())
	if err != nil {
		return false, fmt.Errorf("failed to queue reply cycle job: %w", err)
	}
	return !res.UniqueSkippedAsDuplicate, nil
}
