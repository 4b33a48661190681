// Package services orchestrates ledgers, analytics and notifications for
// the HTTP server, the CLI and the workers.
package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// TransactionService loads both ledger sides and normalizes them.
type TransactionService struct {
	reader  ledger.Reader
	metrics *metrics.Metrics
}

func NewTransactionService(reader ledger.Reader, m *metrics.Metrics) *TransactionService {
	return &TransactionService{reader: reader, metrics: m}
}

// Loaded is the outcome of a ledger read. Failed names the sides that
// could not be read; their transactions are missing from Transactions.
type Loaded struct {
	Transactions []core.Transaction
	Failed       []string
}

// Partial reports whether a ledger side was unavailable.
func (l Loaded) Partial() bool {
	return len(l.Failed) > 0
}

// Load fetches expenses and incomes concurrently. A side that fails is
// logged, treated as empty and named in Loaded.Failed; only cancellation
// of ctx is returned as an error.
func (s *TransactionService) Load(ctx context.Context) (Loaded, error) {
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}

	var (
		expenses   []core.Expense
		incomes    []core.Income
		expenseErr error
		incomeErr  error
		g          errgroup.Group
	)
	g.Go(func() error {
		expenses, expenseErr = s.reader.ListExpenses(ctx)
		return s.sideFailed(ctx, "expenses", expenseErr)
	})
	g.Go(func() error {
		incomes, incomeErr = s.reader.ListIncomes(ctx)
		return s.sideFailed(ctx, "incomes", incomeErr)
	})
	if err := g.Wait(); err != nil {
		return Loaded{}, err
	}
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}

	var out Loaded
	if expenseErr != nil {
		expenses = nil
		out.Failed = append(out.Failed, "expenses")
	}
	if incomeErr != nil {
		incomes = nil
		out.Failed = append(out.Failed, "incomes")
	}
	out.Transactions = core.Normalize(expenses, incomes)
	return out, nil
}

// sideFailed returns ctx.Err() when the read was cut short by cancellation
// and otherwise only records the failure.
func (s *TransactionService) sideFailed(ctx context.Context, side string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	slog.ErrorContext(ctx, "Failed to load "+side, "error", err)
	s.metrics.IncrBackendError("list_" + side)
	return nil
}
