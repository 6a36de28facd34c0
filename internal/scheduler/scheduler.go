// Package scheduler runs reply cycles on a fixed interval inside the process.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/factreply/pkg/models"
)

// CycleRunner runs one reply cycle
type CycleRunner interface {
	Run(ctx context.Context) models.CycleReport
}

// Loop runs a cycle immediately and then on every tick. A tick that lands
// while a cycle is still running is dropped.
type Loop struct {
	runner   CycleRunner
	interval time.Duration
	report   func(models.CycleReport)
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewLoop creates a Loop; report may be nil
func NewLoop(runner CycleRunner, interval time.Duration, report func(models.CycleReport)) *Loop {
	return &Loop{runner: runner, interval: interval, report: report}
}

// Run blocks until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Dur("interval", l.interval).Msg("Scheduler started")

	l.trigger(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Scheduler stopping")
			l.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			if l.running.Load() {
				logger.Warn().Msg("Previous cycle still running, skipping tick")
				continue
			}
			l.trigger(ctx)
		}
	}
}

func (l *Loop) trigger(ctx context.Context) {
	l.running.Store(true)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.running.Store(false)
		report := l.runner.Run(ctx)
		if l.report != nil {
			l.report(report)
		}
	}()
}
