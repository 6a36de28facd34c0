package jobqueue

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factreply/pkg/models"
)

type countingRunner struct {
	runs int
}

func (r *countingRunner) Run(ctx context.Context) models.CycleReport {
	r.runs++
	return models.CycleReport{RunID: "run", Tally: models.RunTally{Found: 2, RepliedOK: 1}}
}

func TestReplyCycleArgs_Kind(t *testing.T) {
	assert.Equal(t, "reply_cycle", ReplyCycleArgs{}.Kind())
}

func TestGetQueueConfig(t *testing.T) {
	config := GetQueueConfig(5 * time.Minute)
	assert.Equal(t, 1, config.MaxWorkers)
	assert.Equal(t, 5*time.Minute, config.Interval)
	assert.Equal(t, 5*time.Minute, config.JobTimeout, "timeout never exceeds interval")

	config = GetQueueConfig(0)
	assert.Equal(t, 20*time.Minute, config.Interval)
}

func TestQueueConfig_InsertOpts(t *testing.T) {
	config := GetQueueConfig(20 * time.Minute)
	opts := config.InsertOpts()
	assert.Equal(t, QueueName, opts.Queue)
	assert.Equal(t, 1, opts.MaxAttempts)
	assert.Equal(t, 20*time.Minute, opts.UniqueOpts.ByPeriod)

	queues := config.RiverQueueConfig()
	require.Contains(t, queues, QueueName)
	assert.Equal(t, 1, queues[QueueName].MaxWorkers)
}

func TestRiverConfig(t *testing.T) {
	config := DefaultQueueConfig()
	rc := riverConfig(config, &countingRunner{}, nil)
	assert.Len(t, rc.PeriodicJobs, 1)
	assert.Equal(t, config.JobTimeout, rc.JobTimeout)
	assert.NotNil(t, rc.Workers)
}

func TestReplyCycleWorker_Work(t *testing.T) {
	runner := &countingRunner{}
	var reports []models.CycleReport
	w := &ReplyCycleWorker{
		runner:  runner,
		report:  func(r models.CycleReport) { reports = append(reports, r) },
		timeout: time.Minute,
	}

	job := &river.Job[ReplyCycleArgs]{JobRow: &rivertype.JobRow{ID: 7, Attempt: 1}}
	require.NoError(t, w.Work(context.Background(), job))
	assert.Equal(t, 1, runner.runs)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Tally.RepliedOK)
	assert.Equal(t, time.Minute, w.Timeout(job))
}
