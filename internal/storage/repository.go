package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/goals"
	"fintrack/internal/ledger"

	_ "modernc.org/sqlite"
)

var ErrRuleNotFound = errors.New("recurring rule not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AppendExpense implements ledger.ExpenseWriter
func (r *SQLiteRepository) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return "", err
	}
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Date:               e.Date.Format(time.DateOnly),
		AmountCents:        e.Amount.Cents,
		Category:           e.Category,
		Note:               e.Note,
		Tags:               tags,
		IsRecurring:        e.IsRecurring,
		RecurringFrequency: string(e.RecurringFrequency),
	})
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"category", row.Category,
		"amount_cents", row.AmountCents,
		"date", row.Date)

	return strconv.FormatInt(row.ID, 10), nil
}

// AppendIncome implements ledger.IncomeWriter
func (r *SQLiteRepository) AppendIncome(ctx context.Context, in core.Income) (string, error) {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return "", err
	}
	row, err := r.queries.CreateIncome(ctx, CreateIncomeParams{
		Date:               in.Date.Format(time.DateOnly),
		AmountCents:        in.Amount.Cents,
		Source:             in.Source,
		Description:        in.Description,
		Tags:               tags,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: string(in.RecurringFrequency),
	})
	if err != nil {
		return "", fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", row.ID,
		"source", row.Source,
		"amount_cents", row.AmountCents,
		"date", row.Date)

	return strconv.FormatInt(row.ID, 10), nil
}

// UpdateExpense implements ledger.ExpenseEditor
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	n, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		Date:               e.Date.Format(time.DateOnly),
		AmountCents:        e.Amount.Cents,
		Category:           e.Category,
		Note:               e.Note,
		Tags:               tags,
		IsRecurring:        e.IsRecurring,
		RecurringFrequency: string(e.RecurringFrequency),
		ID:                 e.ID,
	})
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// UpdateIncome implements ledger.IncomeEditor
func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return err
	}
	n, err := r.queries.UpdateIncome(ctx, UpdateIncomeParams{
		Date:               in.Date.Format(time.DateOnly),
		AmountCents:        in.Amount.Cents,
		Source:             in.Source,
		Description:        in.Description,
		Tags:               tags,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: string(in.RecurringFrequency),
		ID:                 in.ID,
	})
	if err != nil {
		return fmt.Errorf("update income %d: %w", in.ID, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// ListExpenses implements ledger.ExpenseReader
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := expenseFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ListIncomes implements ledger.IncomeReader
func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.queries.ListIncomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	out := make([]core.Income, 0, len(rows))
	for _, row := range rows {
		in, err := incomeFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateRecurringRule(ctx context.Context, rule core.RecurringRule) (core.RecurringRule, error) {
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	row, err := r.queries.CreateRecurringRule(ctx, CreateRecurringRuleParams{
		Kind:        string(rule.Kind),
		StartDate:   rule.StartDate.Format(time.DateOnly),
		EndDate:     nullDate(rule.EndDate),
		Frequency:   string(rule.Every),
		AmountCents: rule.Amount.Cents,
		Category:    rule.Category,
		Description: rule.Description,
	})
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("create recurring rule: %w", err)
	}
	slog.InfoContext(ctx, "Recurring rule created", "id", row.ID, "kind", row.Kind, "frequency", row.Frequency)
	return ruleFromRow(row)
}

func (r *SQLiteRepository) GetRecurringRule(ctx context.Context, id int64) (core.RecurringRule, error) {
	row, err := r.queries.GetRecurringRule(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, ErrRuleNotFound
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("get recurring rule %d: %w", id, err)
	}
	return ruleFromRow(row)
}

func (r *SQLiteRepository) ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.queries.ListRecurringRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	return rulesFromRows(rows)
}

// ListActiveRecurringRules returns rules whose start/end range covers day.
func (r *SQLiteRepository) ListActiveRecurringRules(ctx context.Context, day time.Time) ([]core.RecurringRule, error) {
	rows, err := r.queries.ListActiveRecurringRules(ctx, day.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("list active recurring rules: %w", err)
	}
	return rulesFromRows(rows)
}

func (r *SQLiteRepository) UpdateRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateRecurringRule(ctx, UpdateRecurringRuleParams{
		Kind:        string(rule.Kind),
		StartDate:   rule.StartDate.Format(time.DateOnly),
		EndDate:     nullDate(rule.EndDate),
		Frequency:   string(rule.Every),
		AmountCents: rule.Amount.Cents,
		Category:    rule.Category,
		Description: rule.Description,
		ID:          rule.ID,
	})
	if err != nil {
		return fmt.Errorf("update recurring rule %d: %w", rule.ID, err)
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteRecurringRule(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recurring rule %d: %w", id, err)
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateRecurringLastExecution(ctx context.Context, id int64, at time.Time) error {
	if err := r.queries.UpdateRecurringLastExecution(ctx, at.Format(time.DateOnly), id); err != nil {
		return fmt.Errorf("update last execution of rule %d: %w", id, err)
	}
	return nil
}

// Get implements goals.Store
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	row, err := r.queries.GetKV(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goals.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key %q: %w", key, err)
	}
	return row.Value, nil
}

// Put implements goals.Store
func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.queries.PutKV(ctx, key, value); err != nil {
		return fmt.Errorf("put key %q: %w", key, err)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(time.DateOnly), Valid: true}
}

func parseNullDate(s sql.NullString) (core.Date, error) {
	if !s.Valid || s.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s.String)
}

func expenseFromRow(row Expense) (core.Expense, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", row.ID, err)
	}
	tags, err := decodeTags(row.Tags)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", row.ID, err)
	}
	return core.Expense{
		ID:                 row.ID,
		Date:               date,
		Amount:             core.Money{Cents: row.AmountCents},
		Category:           row.Category,
		Note:               row.Note,
		Tags:               tags,
		IsRecurring:        row.IsRecurring,
		RecurringFrequency: core.Frequency(row.RecurringFrequency),
	}, nil
}

func incomeFromRow(row Income) (core.Income, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d: %w", row.ID, err)
	}
	tags, err := decodeTags(row.Tags)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d: %w", row.ID, err)
	}
	return core.Income{
		ID:                 row.ID,
		Date:               date,
		Amount:             core.Money{Cents: row.AmountCents},
		Source:             row.Source,
		Description:        row.Description,
		Tags:               tags,
		IsRecurring:        row.IsRecurring,
		RecurringFrequency: core.Frequency(row.RecurringFrequency),
	}, nil
}

func ruleFromRow(row RecurringRule) (core.RecurringRule, error) {
	start, err := core.ParseDate(row.StartDate)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("rule %d start: %w", row.ID, err)
	}
	end, err := parseNullDate(row.EndDate)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("rule %d end: %w", row.ID, err)
	}
	last, err := parseNullDate(row.LastExecutionDate)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("rule %d last execution: %w", row.ID, err)
	}
	return core.RecurringRule{
		ID:            row.ID,
		Kind:          core.TransactionType(row.Kind),
		StartDate:     start,
		EndDate:       end,
		Every:         core.Frequency(row.Frequency),
		Amount:        core.Money{Cents: row.AmountCents},
		Category:      row.Category,
		Description:   row.Description,
		LastExecution: last,
	}, nil
}

func rulesFromRows(rows []RecurringRule) ([]core.RecurringRule, error) {
	out := make([]core.RecurringRule, 0, len(rows))
	for _, row := range rows {
		rule, err := ruleFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}
