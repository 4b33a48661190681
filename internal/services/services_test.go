package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/goals"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type countingReader struct {
	*memory.Store
	calls      atomic.Int32
	expenseErr error
	incomeErr  error
}

func (r *countingReader) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	r.calls.Add(1)
	if r.expenseErr != nil {
		return nil, r.expenseErr
	}
	return r.Store.ListExpenses(ctx)
}

func (r *countingReader) ListIncomes(ctx context.Context) ([]core.Income, error) {
	if r.incomeErr != nil {
		return nil, r.incomeErr
	}
	return r.Store.ListIncomes(ctx)
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	_, err := s.AppendExpense(ctx, core.Expense{Date: core.NewDate(2025, 3, 2), Amount: core.Money{Cents: 20000}, Category: "Food"})
	require.NoError(t, err)
	_, err = s.AppendExpense(ctx, core.Expense{Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 90000}, Category: "Rent"})
	require.NoError(t, err)
	_, err = s.AppendIncome(ctx, core.Income{Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 300000}, Source: "Salary"})
	require.NoError(t, err)
	return s
}

type fakePublisher struct {
	mu       sync.Mutex
	msgs     []*amqp.ChangeMessage
	err      error
	closeErr error
}

func (p *fakePublisher) PublishChange(_ context.Context, msg *amqp.ChangeMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePublisher) Close() error { return p.closeErr }

func TestTransactionServiceLoad(t *testing.T) {
	reader := &countingReader{Store: seededStore(t)}
	loaded, err := NewTransactionService(reader, nil).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.Partial())
	require.Len(t, loaded.Transactions, 3)
	assert.Equal(t, "Food", loaded.Transactions[0].Category)
	assert.Equal(t, core.TypeExpense, loaded.Transactions[0].Type)
}

func TestTransactionServiceFailedSideIsEmpty(t *testing.T) {
	reader := &countingReader{Store: seededStore(t), incomeErr: errors.New("sheet unavailable")}
	loaded, err := NewTransactionService(reader, nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Partial())
	assert.Equal(t, []string{"incomes"}, loaded.Failed)
	require.Len(t, loaded.Transactions, 2)
	for _, tx := range loaded.Transactions {
		assert.Equal(t, core.TypeExpense, tx.Type)
	}
}

func TestTransactionServiceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTransactionService(&countingReader{Store: memory.New()}, nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func newAnalytics(reader *countingReader) *AnalyticsService {
	return NewAnalyticsService(NewTransactionService(reader, nil), nil,
		WithCache(cache.NewLRUCache[[]core.Transaction](4, time.Minute)),
		WithClock(func() time.Time { return testNow }),
		WithForecastMonths(6))
}

func TestAnalyticsServiceCachesUntilInvalidated(t *testing.T) {
	reader := &countingReader{Store: seededStore(t)}
	svc := newAnalytics(reader)
	ctx := context.Background()

	cats, err := svc.Categories(ctx, core.TypeExpense)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Rent", cats[0].Name)

	_, err = svc.Insights(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), reader.calls.Load())

	svc.Invalidate()
	_, err = svc.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestAnalyticsServiceDoesNotCachePartialLedger(t *testing.T) {
	reader := &countingReader{Store: seededStore(t), expenseErr: errors.New("sheet unavailable")}
	svc := newAnalytics(reader)
	ctx := context.Background()

	cats, err := svc.Categories(ctx, core.TypeExpense)
	require.NoError(t, err)
	assert.Empty(t, cats)

	reader.expenseErr = nil
	cats, err = svc.Categories(ctx, core.TypeExpense)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Rent", cats[0].Name)

	// the complete read is cached
	_, err = svc.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestBuildSnapshotRefusesPartialLedger(t *testing.T) {
	reader := &countingReader{Store: seededStore(t), incomeErr: errors.New("sheet unavailable")}
	svc := newAnalytics(reader)

	_, err := svc.BuildSnapshot(context.Background(), "interval")
	require.ErrorIs(t, err, ErrPartialLedger)

	reader.incomeErr = nil
	snap, err := svc.BuildSnapshot(context.Background(), "interval")
	require.NoError(t, err)
	assert.Equal(t, "interval", snap.Trigger)
	assert.InDelta(t, 1100.0, snap.Budget.TotalSpent, 1e-9)
}

func TestAnalyticsServiceOperations(t *testing.T) {
	svc := newAnalytics(&countingReader{Store: seededStore(t)})
	ctx := context.Background()

	fc, err := svc.Forecast(ctx, analytics.ForecastParams{})
	require.NoError(t, err)
	assert.Len(t, fc.Months, 6)

	months, err := svc.Monthly(ctx, 3)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.InDelta(t, 1100.0, months[2].Expense, 1e-9)

	list, err := svc.Transactions(ctx, analytics.PeriodMonth, analytics.FilterParams{Category: "Rent"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	cmp, err := svc.Comparison(ctx, analytics.PeriodMonth)
	require.NoError(t, err)
	assert.InDelta(t, 3000.0, cmp.Current.Income, 1e-9)

	_, err = svc.Comparison(ctx, analytics.PeriodAll)
	assert.ErrorIs(t, err, analytics.ErrUnsupportedPeriod)

	budget, err := svc.BudgetAnalysis(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, budget.TotalSpent, 1e-9)

	progress, err := svc.GoalsProgress(ctx, goals.Goals{MonthlyIncome: 3000, SavingsGoal: 500,
		CategoryBudgets: []goals.CategoryBudget{{Category: "Food", Amount: 400}}})
	require.NoError(t, err)
	require.Len(t, progress.Categories, 1)
	assert.InDelta(t, 200.0, progress.Categories[0].Spent, 1e-9)
}

func TestAnalyticsServiceCancelled(t *testing.T) {
	svc := newAnalytics(&countingReader{Store: seededStore(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Insights(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordServicePublishesChanges(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewRecordService(store, goals.NewRepository(goals.NewMemoryStore()), pub, nil)
	changes := 0
	svc.OnChange(func() { changes++ })
	ctx := context.Background()

	ref, err := svc.CreateExpense(ctx, core.Expense{Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 500}, Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	_, err = svc.CreateIncome(ctx, core.Income{Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 500}, Source: "Gift"})
	require.NoError(t, err)

	require.NoError(t, svc.SaveGoals(ctx, goals.Goals{MonthlyIncome: 1000}))

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, amqp.KindExpense, pub.msgs[0].Kind)
	assert.Equal(t, amqp.ActionCreated, pub.msgs[0].Action)
	assert.Equal(t, "mem:1", pub.msgs[0].ID)
	assert.Equal(t, amqp.KindIncome, pub.msgs[1].Kind)
	assert.Equal(t, amqp.KindGoals, pub.msgs[2].Kind)
	assert.Equal(t, 3, changes)

	g, err := svc.LoadGoals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, g.MonthlyIncome)
}

func TestRecordServiceValidationAndPublishFailure(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewRecordService(store, nil, pub, nil)
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, core.Expense{Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 0}, Category: "Food"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = svc.CreateExpense(ctx, core.Expense{Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 100}, Category: "Food"})
	require.NoError(t, err, "a failed publish must not fail the write")

	expenses, _ := store.ListExpenses(ctx)
	assert.Len(t, expenses, 1)

	assert.ErrorIs(t, svc.SaveGoals(ctx, goals.Goals{}), ledger.ErrUnsupported)
}

func TestRecordServiceEditsPublishChanges(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewRecordService(store, nil, pub, nil)
	changes := 0
	svc.OnChange(func() { changes++ })
	ctx := context.Background()

	ref, err := svc.CreateExpense(ctx, core.Expense{Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 500}, Category: "Food"})
	require.NoError(t, err)
	id, ok := ledger.RecordID(ref)
	require.True(t, ok)

	require.NoError(t, svc.UpdateExpense(ctx, core.Expense{ID: id, Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 900}, Category: "Food"}))
	require.NoError(t, svc.DeleteExpense(ctx, id))

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, amqp.ActionUpdated, pub.msgs[1].Action)
	assert.Equal(t, amqp.ActionDeleted, pub.msgs[2].Action)
	assert.Equal(t, amqp.KindExpense, pub.msgs[2].Kind)
	assert.Equal(t, "1", pub.msgs[2].ID)
	assert.Equal(t, 3, changes)

	err = svc.DeleteIncome(ctx, id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	err = svc.UpdateIncome(ctx, core.Income{ID: id, Date: core.NewDate(2025, 3, 3), Amount: core.Money{Cents: 1}})
	assert.ErrorIs(t, err, core.ErrEmptySource)
	assert.Len(t, pub.msgs, 3, "failed edits publish nothing")
	assert.Equal(t, 3, changes)
}

func TestRecordServiceCloseJoinsErrors(t *testing.T) {
	svc := NewRecordService(memory.New(), nil, &fakePublisher{closeErr: errors.New("amqp")}, nil)
	svc.AddCloser(func() error { return errors.New("db") })
	err := svc.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp")
	assert.Contains(t, err.Error(), "db")

	assert.NoError(t, NewRecordService(memory.New(), nil, nil, nil).Close())
}

type fakeRecurringStore struct {
	rules   []core.RecurringRule
	updated map[int64]time.Time
}

func (f *fakeRecurringStore) ListActiveRecurringRules(context.Context, time.Time) ([]core.RecurringRule, error) {
	return f.rules, nil
}

func (f *fakeRecurringStore) UpdateRecurringLastExecution(_ context.Context, id int64, at time.Time) error {
	f.updated[id] = at
	return nil
}

func TestRecurringProcessor(t *testing.T) {
	store := &fakeRecurringStore{
		updated: map[int64]time.Time{},
		rules: []core.RecurringRule{
			{ID: 1, Kind: core.TypeExpense, StartDate: core.NewDate(2025, 1, 10), Every: core.Monthly, Amount: core.Money{Cents: 90000}, Category: "Rent", Description: "flat"},
			{ID: 2, Kind: core.TypeIncome, StartDate: core.NewDate(2025, 1, 1), Every: core.Monthly, Amount: core.Money{Cents: 300000}, Category: "Salary"},
			{ID: 3, Kind: core.TypeExpense, StartDate: core.NewDate(2025, 1, 20), Every: core.Monthly, Amount: core.Money{Cents: 100}, Category: "Gym",
				LastExecution: core.NewDate(2025, 2, 20)},
			{ID: 4, Kind: core.TypeExpense, StartDate: core.NewDate(2025, 1, 1), Every: core.Frequency("HOURLY"), Amount: core.Money{Cents: 100}, Category: "Bad"},
		},
	}
	book := memory.New()
	pub := &fakePublisher{}
	proc := NewRecurringProcessor(store, NewRecordService(book, nil, pub, nil), nil)

	n, err := proc.ProcessDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expenses, _ := book.ListExpenses(context.Background())
	incomes, _ := book.ListIncomes(context.Background())
	require.Len(t, expenses, 1)
	require.Len(t, incomes, 1)
	assert.Equal(t, "Rent", expenses[0].Category)
	assert.Equal(t, "flat", expenses[0].Note)
	assert.True(t, expenses[0].IsRecurring)
	assert.Equal(t, []string{"recurring:1"}, expenses[0].Tags)
	assert.Equal(t, "Salary", incomes[0].Source)

	assert.Contains(t, store.updated, int64(1))
	assert.Contains(t, store.updated, int64(2))
	assert.NotContains(t, store.updated, int64(3))
	assert.Len(t, pub.msgs, 2)
}

func TestRecurringProcessorRequiresDependencies(t *testing.T) {
	_, err := NewRecurringProcessor(nil, nil, nil).ProcessDue(context.Background(), testNow)
	assert.Error(t, err)
}
