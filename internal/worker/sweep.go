// Package worker runs periodic background maintenance for the server.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper defines the session operations needed by the sweep worker.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionSweepWorker periodically expires idle visitor sessions.
type SessionSweepWorker struct {
	sessions Sweeper
	interval time.Duration
	now      func() time.Time
}

// NewSessionSweepWorker creates a worker that sweeps sessions every interval.
func NewSessionSweepWorker(sessions Sweeper, interval time.Duration) *SessionSweepWorker {
	return &SessionSweepWorker{
		sessions: sessions,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Does NOT sweep on start; a fresh process has no idle sessions.
func (w *SessionSweepWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "session-sweep",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "session-sweep",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionSweepWorker) sweep() {
	start := w.now()
	removed := w.sessions.Sweep(start)
	if removed == 0 {
		slog.Debug("sweep cycle completed",
			"component", "worker",
			"action", "sweep_noop",
		)
		return
	}

	slog.Info("sweep cycle completed",
		"component", "worker",
		"action", "sweep_complete",
		"expired", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
