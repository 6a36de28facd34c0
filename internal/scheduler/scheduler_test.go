package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/factreply/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRunner struct {
	runs    atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
}

func (r *fakeRunner) Run(ctx context.Context) models.CycleReport {
	if r.active.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.active.Add(-1)
	n := r.runs.Add(1)
	time.Sleep(r.delay)
	return models.CycleReport{Tally: models.RunTally{Found: int(n)}}
}

func TestLoop_RunsImmediately(t *testing.T) {
	runner := &fakeRunner{}
	var mu sync.Mutex
	var reports []models.CycleReport
	loop := NewLoop(runner, time.Hour, func(r models.CycleReport) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reports) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestLoop_RunsOnEveryTick(t *testing.T) {
	runner := &fakeRunner{}
	loop := NewLoop(runner, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-errCh
}

func TestLoop_NeverOverlaps(t *testing.T) {
	runner := &fakeRunner{delay: 30 * time.Millisecond}
	loop := NewLoop(runner, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = loop.Run(ctx)

	assert.False(t, runner.overlap.Load())
	assert.Zero(t, runner.active.Load(), "Run waits for the in-flight cycle")
	assert.GreaterOrEqual(t, runner.runs.Load(), int32(2))
}
