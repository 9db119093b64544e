package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/equipment-alerts/internal/engine"
	"github.com/nhle/equipment-alerts/internal/metrics"
)

// defaultInterval is used when the configured run interval is not positive.
const defaultInterval = 24 * time.Hour

// Runner runs every alerting rule once.
type Runner interface {
	RunAll(ctx context.Context) engine.Report
}

// RunState represents the current state of the scheduler.
type RunState int

const (
	RunIdle RunState = iota
	RunRunning
)

func (s RunState) String() string {
	if s == RunRunning {
		return "running"
	}
	return "idle"
}

// Status is a snapshot of the scheduler.
type Status struct {
	State      RunState
	Runs       int
	LastRun    time.Time
	LastReport *engine.Report
}

// Poller runs the engine on a fixed interval, once immediately on start, and
// whenever Trigger is called. At most one triggered run is kept pending.
type Poller struct {
	runner    Runner
	interval  time.Duration
	log       zerolog.Logger
	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        gosync.Mutex
	started   bool
	stopped   bool
	status    Status
}

// New creates a Poller that runs r every interval.
func New(r Runner, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		runner:    r,
		interval:  interval,
		log:       log,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the scheduling goroutine. It returns immediately; the
// first run happens in the background. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.loop(ctx)
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	close(p.stopCh)
	p.mu.Unlock()

	if started {
		<-p.doneCh
	}
}

// Trigger requests an immediate run. It reports false when a run is
// already pending.
func (p *Poller) Trigger() bool {
	select {
	case p.triggerCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// Status returns a snapshot of the scheduler state.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Msg("scheduler started")

	// Do an initial run immediately
	p.run(ctx, "startup")

	for {
		select {
		case <-p.stopCh:
			p.log.Info().Msg("scheduler stopped")
			return
		case <-ctx.Done():
			p.log.Info().Err(ctx.Err()).Msg("scheduler stopped")
			return
		case <-ticker.C:
			p.run(ctx, "ticker")
		case <-p.triggerCh:
			p.run(ctx, "manual")
		}
	}
}

func (p *Poller) run(ctx context.Context, trigger string) {
	p.setState(RunRunning)
	metrics.SchedulerRunsTotal.WithLabelValues(trigger).Inc()

	report := p.runner.RunAll(ctx)

	p.mu.Lock()
	p.status.State = RunIdle
	p.status.Runs++
	p.status.LastRun = report.StartedAt
	p.status.LastReport = &report
	p.mu.Unlock()

	failed := 0
	for _, res := range report.Results {
		if !res.Succeeded() {
			failed++
		}
	}
	p.log.Info().
		Str("trigger", trigger).
		Str("run_id", report.RunID).
		Int("created", report.Total).
		Int("failed_rules", failed).
		Msg("scheduled run finished")
}

func (p *Poller) setState(state RunState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = state
}
