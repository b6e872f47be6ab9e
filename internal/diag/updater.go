// Package diag implements the periodic diagnostics aggregator: registered
// health tasks are polled on an interval and their reports logged and
// exported as metrics.
package diag

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"groundlink.io/rlmon/internal/metrics"
	"groundlink.io/rlmon/internal/radio"
)

// Task produces a health report on demand. Producing a report must be
// read-only and safe to call concurrently with the task's own message
// processing.
type Task interface {
	Name() string
	ProduceHealthReport() radio.HealthReport
}

// TaskReport pairs a collected report with the task that produced it.
type TaskReport struct {
	Name   string
	Report radio.HealthReport
}

// Updater polls registered tasks on a fixed interval.
type Updater struct {
	interval time.Duration

	mu    sync.RWMutex
	tasks []Task

	cancel context.CancelFunc
	doneCh chan struct{}
}

// NewUpdater creates an updater with the given polling interval.
func NewUpdater(interval time.Duration) *Updater {
	if interval <= 0 {
		interval = time.Second
	}
	return &Updater{
		interval: interval,
		doneCh:   make(chan struct{}),
	}
}

// Add registers a task. Safe to call before or after Start.
func (u *Updater) Add(t Task) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tasks = append(u.tasks, t)
}

// RunOnce collects a report from every registered task, logs each at a level
// matching its status and updates the health gauge. Returns the collected
// reports in registration order.
func (u *Updater) RunOnce() []TaskReport {
	u.mu.RLock()
	tasks := make([]Task, len(u.tasks))
	copy(tasks, u.tasks)
	u.mu.RUnlock()

	reports := make([]TaskReport, 0, len(tasks))
	for _, t := range tasks {
		report := t.ProduceHealthReport()
		reports = append(reports, TaskReport{Name: t.Name(), Report: report})

		metrics.HealthStatus.WithLabelValues(t.Name()).Set(float64(report.Status))

		logFn := slog.Debug
		switch report.Status {
		case radio.StatusWarning:
			logFn = slog.Warn
		case radio.StatusCritical:
			logFn = slog.Error
		}
		logFn("diagnostics",
			"task", t.Name(),
			"status", report.Status.String(),
			"message", report.Message,
		)
	}
	return reports
}

// Start begins periodic collection. Stop with Stop.
func (u *Updater) Start(ctx context.Context) {
	ctx, u.cancel = context.WithCancel(ctx)

	go func() {
		defer close(u.doneCh)
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				u.RunOnce()
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("diagnostics updater started", "interval", u.interval)
}

// Stop halts periodic collection and waits for the runner to exit.
func (u *Updater) Stop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.doneCh
	slog.Info("diagnostics updater stopped")
}
