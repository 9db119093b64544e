package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/equipment-alerts/internal/engine"
)

type fakeRunner struct {
	mu    gosync.Mutex
	runs  int
	gate  chan struct{}
	start chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{start: make(chan struct{}, 16)}
}

func (f *fakeRunner) RunAll(context.Context) engine.Report {
	select {
	case f.start <- struct{}{}:
	default:
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return engine.Report{
		RunID:     "run",
		StartedAt: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
		Total:     f.runs,
	}
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestPollerRunsImmediately(t *testing.T) {
	r := newFakeRunner()
	p := New(r, time.Hour, zerolog.Nop())
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return p.Status().Runs == 1 }, time.Second, 5*time.Millisecond)

	st := p.Status()
	assert.Equal(t, RunIdle, st.State)
	require.NotNil(t, st.LastReport)
	assert.Equal(t, 1, st.LastReport.Total)
	assert.False(t, st.LastRun.IsZero())
}

func TestPollerTrigger(t *testing.T) {
	r := newFakeRunner()
	p := New(r, time.Hour, zerolog.Nop())
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return r.count() == 1 }, time.Second, 5*time.Millisecond)

	assert.True(t, p.Trigger())
	require.Eventually(t, func() bool { return r.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPollerCoalescesTriggers(t *testing.T) {
	r := newFakeRunner()
	r.gate = make(chan struct{})
	p := New(r, time.Hour, zerolog.Nop())
	p.Start(context.Background())

	// Wait until the startup run is blocked inside the runner.
	<-r.start
	assert.Equal(t, RunRunning, p.Status().State)

	assert.True(t, p.Trigger())
	assert.False(t, p.Trigger())
	assert.False(t, p.Trigger())

	close(r.gate)
	require.Eventually(t, func() bool { return r.count() == 2 }, time.Second, 5*time.Millisecond)

	p.Stop()
	assert.Equal(t, 2, r.count())
}

func TestPollerTicks(t *testing.T) {
	r := newFakeRunner()
	p := New(r, 10*time.Millisecond, zerolog.Nop())
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return r.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPollerStop(t *testing.T) {
	t.Run("stop without start", func(t *testing.T) {
		p := New(newFakeRunner(), time.Hour, zerolog.Nop())
		p.Stop()
		p.Stop()
	})

	t.Run("context cancel ends loop", func(t *testing.T) {
		r := newFakeRunner()
		ctx, cancel := context.WithCancel(context.Background())
		p := New(r, time.Hour, zerolog.Nop())
		p.Start(ctx)
		require.Eventually(t, func() bool { return r.count() == 1 }, time.Second, 5*time.Millisecond)

		cancel()
		p.Stop()
		p.Stop()
	})

	t.Run("start after stop is ignored", func(t *testing.T) {
		r := newFakeRunner()
		p := New(r, time.Hour, zerolog.Nop())
		p.Stop()
		p.Start(context.Background())

		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, r.count())
	})
}

func TestNewDefaultsInterval(t *testing.T) {
	p := New(newFakeRunner(), 0, zerolog.Nop())
	assert.Equal(t, defaultInterval, p.interval)
}
