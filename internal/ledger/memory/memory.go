// Package memory is a process-local ledger, optionally seeded from CSV
// files laid out like the spreadsheet tabs.
package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

var _ ledger.Ledger = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	expenses []core.Expense
	incomes  []core.Income
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds a store from base/expenses.csv and base/incomes.csv.
// Missing files are skipped; blank lines, '#' comments, header rows and
// malformed rows are ignored.
func NewFromFiles(base string) *Store {
	s := New()
	for _, row := range readRows(filepath.Join(base, "expenses.csv")) {
		e := row.Expense()
		if err := e.Validate(); err != nil {
			continue
		}
		s.expenses = append(s.expenses, s.withExpenseID(e))
	}
	for _, row := range readRows(filepath.Join(base, "incomes.csv")) {
		in := row.Income()
		if err := in.Validate(); err != nil {
			continue
		}
		s.incomes = append(s.incomes, s.withIncomeID(in))
	}
	return s
}

func (s *Store) withExpenseID(e core.Expense) core.Expense {
	s.nextID++
	e.ID = s.nextID
	return e
}

func (s *Store) withIncomeID(in core.Income) core.Income {
	s.nextID++
	in.ID = s.nextID
	return in
}

// AppendExpense stores the expense and returns a synthetic row reference.
func (s *Store) AppendExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Tags = append([]string(nil), e.Tags...)
	e = s.withExpenseID(e)
	s.expenses = append(s.expenses, e)
	return fmt.Sprintf("mem:%d", e.ID), nil
}

func (s *Store) AppendIncome(_ context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.Tags = append([]string(nil), in.Tags...)
	in = s.withIncomeID(in)
	s.incomes = append(s.incomes, in)
	return fmt.Sprintf("mem:%d", in.ID), nil
}

// UpdateExpense replaces the expense with e.ID.
func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			e.Tags = append([]string(nil), e.Tags...)
			s.expenses[i] = e
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) UpdateIncome(_ context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incomes {
		if s.incomes[i].ID == in.ID {
			in.Tags = append([]string(nil), in.Tags...)
			s.incomes[i] = in
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteIncome(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incomes {
		if s.incomes[i].ID == id {
			s.incomes = append(s.incomes[:i], s.incomes[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) ListIncomes(_ context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Income(nil), s.incomes...), nil
}

func readRows(path string) []ledger.Row {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []ledger.Row
	for {
		cols, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("Skipping unreadable seed line", "path", path, "error", err)
			continue
		}
		if ledger.IsHeader(cols) || strings.TrimSpace(strings.Join(cols, "")) == "" {
			continue
		}
		row, err := ledger.ParseRow(cols)
		if err != nil {
			slog.Warn("Skipping malformed seed row", "path", path, "error", err)
			continue
		}
		out = append(out, row)
	}
	return out
}
