/*
Package jobqueue configuration - tunables for the River-backed reply schedule.

The reply cycle is a River periodic job. It runs on a dedicated queue with a
single worker, and each insert is unique per period, so several bot processes
sharing one database still run at most one cycle per interval.

## Database Requirements:
- PostgreSQL; River's schema is migrated on start (see Migrate)
*/
package jobqueue

import (
	"time"

	"github.com/riverqueue/river"
)

// QueueName is the queue reply cycles run on
const QueueName = "reply_cycle"

type QueueConfig struct {
	Queue      string        // queue name (default: reply_cycle)
	MaxWorkers int           // concurrent cycles per process; keep at 1
	Interval   time.Duration // period between cycles (default: 20 minutes)
	JobTimeout time.Duration // hard limit for one cycle (default: 15 minutes)

	// MaxAttempts is 1: a failed cycle is not retried, the next period
	// picks up whatever it missed.
	MaxAttempts int
}

func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		Queue:       QueueName,
		MaxWorkers:  1,
		Interval:    20 * time.Minute,
		JobTimeout:  15 * time.Minute,
		MaxAttempts: 1,
	}
}

// GetQueueConfig returns the default configuration with the given interval
func GetQueueConfig(interval time.Duration) *QueueConfig {
	config := DefaultQueueConfig()
	if interval > 0 {
		config.Interval = interval
		if config.JobTimeout > interval {
			config.JobTimeout = interval
		}
	}
	return config
}

// RiverQueueConfig converts the configuration into River's queue map
func (c *QueueConfig) RiverQueueConfig() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		c.Queue: {MaxWorkers: c.MaxWorkers},
	}
}

// InsertOpts pins cycle jobs to the queue and dedups them per period
func (c *QueueConfig) InsertOpts() *river.InsertOpts {
	return &river.InsertOpts{
		Queue:       c.Queue,
		MaxAttempts: c.MaxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: c.Interval,
		},
	}
}
