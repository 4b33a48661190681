// Package ledger declares the ports every transaction backend implements
// and the row layout shared by the tabular backends.
package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

var (
	// ErrUnsupported is returned by backends that cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by backend")

	ErrNotFound = errors.New("record not found")
)

// Ports for outbound adapters.
type (
	ExpenseWriter interface {
		AppendExpense(ctx context.Context, e core.Expense) (ref string, err error)
	}

	IncomeWriter interface {
		AppendIncome(ctx context.Context, in core.Income) (ref string, err error)
	}

	ExpenseReader interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	IncomeReader interface {
		ListIncomes(ctx context.Context) ([]core.Income, error)
	}

	// ExpenseEditor changes stored expenses by ID. Both methods return
	// ErrNotFound for an unknown ID.
	ExpenseEditor interface {
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id int64) error
	}

	IncomeEditor interface {
		UpdateIncome(ctx context.Context, in core.Income) error
		DeleteIncome(ctx context.Context, id int64) error
	}

	Reader interface {
		ExpenseReader
		IncomeReader
	}

	Writer interface {
		ExpenseWriter
		IncomeWriter
	}

	Editor interface {
		ExpenseEditor
		IncomeEditor
	}

	// Ledger is a complete transaction backend.
	Ledger interface {
		Reader
		Writer
		Editor
	}
)

// RecordID extracts the record ID from a ref returned by an append. Refs
// that are not IDs, such as spreadsheet ranges, report false.
func RecordID(ref string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(ref, "mem:"), 10, 64)
	return id, err == nil && id > 0
}
