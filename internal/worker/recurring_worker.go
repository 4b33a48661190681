package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DueProcessor creates the records due at a given time.
type DueProcessor interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// RecurringWorker runs the processor at startup and then every interval.
type RecurringWorker struct {
	processor DueProcessor
	interval  time.Duration
	now       func() time.Time
}

func NewRecurringWorker(p DueProcessor, interval time.Duration) *RecurringWorker {
	return &RecurringWorker{processor: p, interval: interval, now: time.Now}
}

func (w *RecurringWorker) Run(ctx context.Context) error {
	w.process(ctx, w.now())
	if w.interval <= 0 {
		return nil
	}
	err := tick(ctx, w.interval, func(ctx context.Context, _ time.Time) {
		w.process(ctx, w.now())
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *RecurringWorker) process(ctx context.Context, now time.Time) {
	count, err := w.processor.ProcessDue(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Recurring processing complete",
		"records_created", count,
		"next_check", now.Add(w.interval).Format("15:04:05"))
}
