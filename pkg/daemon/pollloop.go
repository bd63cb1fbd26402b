package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CycleRunner runs one complete cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) Report
}

// Loop runs cycles back to back with a fixed wait in between. The wait can
// be cut short with Trigger. Cycles never overlap.
type Loop struct {
	runner   CycleRunner
	interval time.Duration
	trigger  chan struct{}
	logger   *slog.Logger

	mu       sync.RWMutex
	running  bool
	next     time.Time
	onReport []func(Report)
}

// NewLoop creates a loop that waits interval between cycles.
func NewLoop(runner CycleRunner, interval time.Duration, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		runner:   runner,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// OnReport registers fn to receive every finished cycle report. Must be
// called before Run.
func (l *Loop) OnReport(fn func(Report)) {
	l.onReport = append(l.onReport, fn)
}

// Trigger asks for a cycle as soon as the current wait or cycle ends.
// Triggers coalesce: it returns false if one is already pending.
func (l *Loop) Trigger() bool {
	select {
	case l.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether a cycle is in progress.
func (l *Loop) Running() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.running
}

// Next returns when the next cycle is due; zero while a cycle runs.
func (l *Loop) Next() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.next
}

// Run drives cycles until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("loop started", "interval", l.interval)
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			l.logger.Info("loop stopped")
			return nil
		}

		l.cycle(ctx)

		l.mu.Lock()
		l.next = time.Now().Add(l.interval)
		l.mu.Unlock()
		timer.Reset(l.interval)

		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped")
			return nil
		case <-timer.C:
		case <-l.trigger:
			l.logger.Info("cycle triggered")
			if !timer.Stop() {
				<-timer.C
			}
		}
	}
}

func (l *Loop) cycle(ctx context.Context) {
	l.mu.Lock()
	l.running = true
	l.next = time.Time{}
	l.mu.Unlock()

	rep := l.runner.RunCycle(ctx)

	l.mu.Lock()
	l.running = false
	l.mu.Unlock()

	l.logger.Info("cycle finished",
		"cycle", rep.ID,
		"duration", rep.Duration().Round(time.Millisecond),
		"commands", rep.Commands,
		"failures", rep.Failures,
		"artifact", rep.ArtifactWritten,
	)
	for _, fn := range l.onReport {
		fn(rep)
	}
}
