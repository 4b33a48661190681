package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/goals"
	"fintrack/internal/ledger"
	"fintrack/internal/metrics"
)

// Publisher announces ledger changes to other processes.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
	Close() error
}

// RecordStore is the write side of a ledger.
type RecordStore interface {
	ledger.Writer
	ledger.Editor
}

// RecordService writes records to the ledger first and then publishes a
// change notification. A failed publish never fails the write.
type RecordService struct {
	writer    RecordStore
	goals     *goals.Repository
	publisher Publisher
	metrics   *metrics.Metrics
	onChange  []func()
	closers   []func() error
}

func NewRecordService(writer RecordStore, goalsRepo *goals.Repository, publisher Publisher, m *metrics.Metrics) *RecordService {
	return &RecordService{
		writer:    writer,
		goals:     goalsRepo,
		publisher: publisher,
		metrics:   m,
	}
}

// OnChange registers fn to run after every successful write in this
// process, e.g. to drop cached analytics.
func (s *RecordService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

// AddCloser registers a resource released by Close.
func (s *RecordService) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	ref, err := s.writer.AppendExpense(ctx, e)
	if err != nil {
		s.metrics.IncrBackendError("append_expense")
		return "", fmt.Errorf("save expense: %w", err)
	}
	s.changed(ctx, amqp.KindExpense, amqp.ActionCreated, ref)
	return ref, nil
}

func (s *RecordService) CreateIncome(ctx context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	ref, err := s.writer.AppendIncome(ctx, in)
	if err != nil {
		s.metrics.IncrBackendError("append_income")
		return "", fmt.Errorf("save income: %w", err)
	}
	s.changed(ctx, amqp.KindIncome, amqp.ActionCreated, ref)
	return ref, nil
}

func (s *RecordService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.edit(ctx, amqp.KindExpense, amqp.ActionUpdated, e.ID, func() error {
		return s.writer.UpdateExpense(ctx, e)
	})
}

func (s *RecordService) DeleteExpense(ctx context.Context, id int64) error {
	return s.edit(ctx, amqp.KindExpense, amqp.ActionDeleted, id, func() error {
		return s.writer.DeleteExpense(ctx, id)
	})
}

func (s *RecordService) UpdateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.edit(ctx, amqp.KindIncome, amqp.ActionUpdated, in.ID, func() error {
		return s.writer.UpdateIncome(ctx, in)
	})
}

func (s *RecordService) DeleteIncome(ctx context.Context, id int64) error {
	return s.edit(ctx, amqp.KindIncome, amqp.ActionDeleted, id, func() error {
		return s.writer.DeleteIncome(ctx, id)
	})
}

// edit runs fn and announces the change. Unknown IDs and backends without
// edit support are caller errors and are not counted as backend failures.
func (s *RecordService) edit(ctx context.Context, kind amqp.Kind, action amqp.Action, id int64, fn func() error) error {
	if err := fn(); err != nil {
		if !errors.Is(err, ledger.ErrNotFound) && !errors.Is(err, ledger.ErrUnsupported) {
			s.metrics.IncrBackendError(string(action) + "_" + string(kind))
		}
		return fmt.Errorf("%s %s %d: %w", action, kind, id, err)
	}
	s.changed(ctx, kind, action, strconv.FormatInt(id, 10))
	return nil
}

func (s *RecordService) LoadGoals(ctx context.Context) (goals.Goals, error) {
	if s.goals == nil {
		return goals.Goals{}, ledger.ErrUnsupported
	}
	return s.goals.Load(ctx)
}

func (s *RecordService) SaveGoals(ctx context.Context, g goals.Goals) error {
	if s.goals == nil {
		return ledger.ErrUnsupported
	}
	if err := s.goals.Save(ctx, g); err != nil {
		return err
	}
	s.changed(ctx, amqp.KindGoals, amqp.ActionUpdated, goals.StorageKey)
	return nil
}

func (s *RecordService) changed(ctx context.Context, kind amqp.Kind, action amqp.Action, ref string) {
	for _, fn := range s.onChange {
		fn()
	}
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping change message", "kind", kind)
		return
	}
	if err := s.publisher.PublishChange(ctx, amqp.NewChangeMessage(kind, action, ref)); err != nil {
		s.metrics.IncrPublished("error")
		slog.ErrorContext(ctx, "Failed to publish change message",
			"kind", kind, "ref", ref, "error", err)
		return
	}
	s.metrics.IncrPublished("ok")
}

// Close releases the publisher and every registered closer.
func (s *RecordService) Close() error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close record service: %w", err)
	}
	return nil
}
