// Package worker hosts the long-running background loops: the insights
// snapshot refresher and the recurring rule scheduler.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/metrics"
	"fintrack/internal/services"

	"golang.org/x/sync/errgroup"
)

// ChangeSource streams change notifications to a handler until ctx ends.
type ChangeSource interface {
	ConsumeChanges(ctx context.Context, handler amqp.Handler) error
}

// InsightsWorker regenerates the insights snapshot whenever a change
// notification arrives and on a fixed interval as a backstop for missed
// messages.
type InsightsWorker struct {
	analytics *services.AnalyticsService
	snapshots *services.SnapshotRepository
	source    ChangeSource
	interval  time.Duration
	metrics   *metrics.Metrics
}

func NewInsightsWorker(a *services.AnalyticsService, snapshots *services.SnapshotRepository, source ChangeSource, interval time.Duration, m *metrics.Metrics) *InsightsWorker {
	return &InsightsWorker{
		analytics: a,
		snapshots: snapshots,
		source:    source,
		interval:  interval,
		metrics:   m,
	}
}

// Refresh rebuilds and stores the snapshot from fresh ledger data. When a
// ledger side is down the stored snapshot is left untouched.
func (w *InsightsWorker) Refresh(ctx context.Context, trigger string) error {
	w.analytics.Invalidate()
	snap, err := w.analytics.BuildSnapshot(ctx, trigger)
	if errors.Is(err, services.ErrPartialLedger) {
		slog.WarnContext(ctx, "Ledger partially unavailable, keeping previous snapshot", "trigger", trigger)
	}
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	if err := w.snapshots.Save(ctx, snap); err != nil {
		return err
	}
	w.metrics.IncrSnapshotWritten()
	slog.InfoContext(ctx, "Insights snapshot written",
		"trigger", trigger,
		"insights", len(snap.Insights))
	return nil
}

// HandleChange is the amqp.Handler; an error requeues the message.
func (w *InsightsWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.metrics.IncrConsumed(string(msg.Kind))
	return w.Refresh(ctx, fmt.Sprintf("%s:%s", msg.Kind, msg.Action))
}

// Run refreshes once, then serves changes and ticks until ctx is done.
func (w *InsightsWorker) Run(ctx context.Context) error {
	if err := w.Refresh(ctx, "startup"); err != nil {
		slog.ErrorContext(ctx, "Initial snapshot failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if w.source != nil {
		g.Go(func() error {
			return w.source.ConsumeChanges(ctx, w.HandleChange)
		})
	}
	if w.interval > 0 {
		g.Go(func() error {
			return tick(ctx, w.interval, func(ctx context.Context, _ time.Time) {
				if err := w.Refresh(ctx, "interval"); err != nil {
					slog.ErrorContext(ctx, "Periodic snapshot failed", "error", err)
				}
			})
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// tick calls fn every interval until ctx is done and returns ctx.Err().
func tick(ctx context.Context, interval time.Duration, fn func(context.Context, time.Time)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			fn(ctx, now)
		}
	}
}
