package storage

import (
	"context"
	"database/sql"
)

const expenseColumns = `id, date, amount_cents, category, note, tags, is_recurring, recurring_frequency, created_at`

func scanExpense(row interface{ Scan(...interface{}) error }) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.AmountCents,
		&i.Category,
		&i.Note,
		&i.Tags,
		&i.IsRecurring,
		&i.RecurringFrequency,
		&i.CreatedAt,
	)
	return i, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (date, amount_cents, category, note, tags, is_recurring, recurring_frequency)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	Date               string
	AmountCents        int64
	Category           string
	Note               string
	Tags               string
	IsRecurring        bool
	RecurringFrequency string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.Date,
		arg.AmountCents,
		arg.Category,
		arg.Note,
		arg.Tags,
		arg.IsRecurring,
		arg.RecurringFrequency,
	)
	return scanExpense(row)
}

const listExpenses = `-- name: ListExpenses :many
SELECT ` + expenseColumns + ` FROM expenses
ORDER BY date DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		i, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getExpense = `-- name: GetExpense :one
SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	return scanExpense(row)
}

const updateExpense = `-- name: UpdateExpense :execrows
UPDATE expenses
SET date = ?, amount_cents = ?, category = ?, note = ?, tags = ?, is_recurring = ?, recurring_frequency = ?
WHERE id = ?`

type UpdateExpenseParams struct {
	Date               string
	AmountCents        int64
	Category           string
	Note               string
	Tags               string
	IsRecurring        bool
	RecurringFrequency string
	ID                 int64
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpense,
		arg.Date,
		arg.AmountCents,
		arg.Category,
		arg.Note,
		arg.Tags,
		arg.IsRecurring,
		arg.RecurringFrequency,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const incomeColumns = `id, date, amount_cents, source, description, tags, is_recurring, recurring_frequency, created_at`

func scanIncome(row interface{ Scan(...interface{}) error }) (Income, error) {
	var i Income
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.AmountCents,
		&i.Source,
		&i.Description,
		&i.Tags,
		&i.IsRecurring,
		&i.RecurringFrequency,
		&i.CreatedAt,
	)
	return i, err
}

const createIncome = `-- name: CreateIncome :one
INSERT INTO incomes (date, amount_cents, source, description, tags, is_recurring, recurring_frequency)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + incomeColumns

type CreateIncomeParams struct {
	Date               string
	AmountCents        int64
	Source             string
	Description        string
	Tags               string
	IsRecurring        bool
	RecurringFrequency string
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) (Income, error) {
	row := q.db.QueryRowContext(ctx, createIncome,
		arg.Date,
		arg.AmountCents,
		arg.Source,
		arg.Description,
		arg.Tags,
		arg.IsRecurring,
		arg.RecurringFrequency,
	)
	return scanIncome(row)
}

const listIncomes = `-- name: ListIncomes :many
SELECT ` + incomeColumns + ` FROM incomes
ORDER BY date DESC, id DESC`

func (q *Queries) ListIncomes(ctx context.Context) ([]Income, error) {
	rows, err := q.db.QueryContext(ctx, listIncomes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Income
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateIncome = `-- name: UpdateIncome :execrows
UPDATE incomes
SET date = ?, amount_cents = ?, source = ?, description = ?, tags = ?, is_recurring = ?, recurring_frequency = ?
WHERE id = ?`

type UpdateIncomeParams struct {
	Date               string
	AmountCents        int64
	Source             string
	Description        string
	Tags               string
	IsRecurring        bool
	RecurringFrequency string
	ID                 int64
}

func (q *Queries) UpdateIncome(ctx context.Context, arg UpdateIncomeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateIncome,
		arg.Date,
		arg.AmountCents,
		arg.Source,
		arg.Description,
		arg.Tags,
		arg.IsRecurring,
		arg.RecurringFrequency,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteIncome = `-- name: DeleteIncome :execrows
DELETE FROM incomes WHERE id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteIncome, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const recurringColumns = `id, kind, start_date, end_date, frequency, amount_cents, category, description, last_execution_date, created_at, updated_at`

func scanRecurringRule(row interface{ Scan(...interface{}) error }) (RecurringRule, error) {
	var i RecurringRule
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.StartDate,
		&i.EndDate,
		&i.Frequency,
		&i.AmountCents,
		&i.Category,
		&i.Description,
		&i.LastExecutionDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createRecurringRule = `-- name: CreateRecurringRule :one
INSERT INTO recurring_rules (kind, start_date, end_date, frequency, amount_cents, category, description)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + recurringColumns

type CreateRecurringRuleParams struct {
	Kind        string
	StartDate   string
	EndDate     sql.NullString
	Frequency   string
	AmountCents int64
	Category    string
	Description string
}

func (q *Queries) CreateRecurringRule(ctx context.Context, arg CreateRecurringRuleParams) (RecurringRule, error) {
	row := q.db.QueryRowContext(ctx, createRecurringRule,
		arg.Kind,
		arg.StartDate,
		arg.EndDate,
		arg.Frequency,
		arg.AmountCents,
		arg.Category,
		arg.Description,
	)
	return scanRecurringRule(row)
}

const getRecurringRule = `-- name: GetRecurringRule :one
SELECT ` + recurringColumns + ` FROM recurring_rules WHERE id = ?`

func (q *Queries) GetRecurringRule(ctx context.Context, id int64) (RecurringRule, error) {
	row := q.db.QueryRowContext(ctx, getRecurringRule, id)
	return scanRecurringRule(row)
}

const listRecurringRules = `-- name: ListRecurringRules :many
SELECT ` + recurringColumns + ` FROM recurring_rules
ORDER BY start_date DESC, id DESC`

func (q *Queries) ListRecurringRules(ctx context.Context) ([]RecurringRule, error) {
	return q.queryRecurringRules(ctx, listRecurringRules)
}

const listActiveRecurringRules = `-- name: ListActiveRecurringRules :many
SELECT ` + recurringColumns + ` FROM recurring_rules
WHERE start_date <= ?1 AND (end_date IS NULL OR end_date >= ?1)
ORDER BY id`

func (q *Queries) ListActiveRecurringRules(ctx context.Context, day string) ([]RecurringRule, error) {
	return q.queryRecurringRules(ctx, listActiveRecurringRules, day)
}

func (q *Queries) queryRecurringRules(ctx context.Context, query string, args ...interface{}) ([]RecurringRule, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringRule
	for rows.Next() {
		i, err := scanRecurringRule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateRecurringRule = `-- name: UpdateRecurringRule :exec
UPDATE recurring_rules
SET kind = ?, start_date = ?, end_date = ?, frequency = ?, amount_cents = ?, category = ?, description = ?,
    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE id = ?`

type UpdateRecurringRuleParams struct {
	Kind        string
	StartDate   string
	EndDate     sql.NullString
	Frequency   string
	AmountCents int64
	Category    string
	Description string
	ID          int64
}

func (q *Queries) UpdateRecurringRule(ctx context.Context, arg UpdateRecurringRuleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRecurringRule,
		arg.Kind,
		arg.StartDate,
		arg.EndDate,
		arg.Frequency,
		arg.AmountCents,
		arg.Category,
		arg.Description,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateRecurringLastExecution = `-- name: UpdateRecurringLastExecution :exec
UPDATE recurring_rules
SET last_execution_date = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE id = ?`

func (q *Queries) UpdateRecurringLastExecution(ctx context.Context, day string, id int64) error {
	_, err := q.db.ExecContext(ctx, updateRecurringLastExecution, day, id)
	return err
}

const deleteRecurringRule = `-- name: DeleteRecurringRule :execrows
DELETE FROM recurring_rules WHERE id = ?`

func (q *Queries) DeleteRecurringRule(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecurringRule, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getKV = `-- name: GetKV :one
SELECT key, value, updated_at FROM kv WHERE key = ?`

func (q *Queries) GetKV(ctx context.Context, key string) (Kv, error) {
	row := q.db.QueryRowContext(ctx, getKV, key)
	var i Kv
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const putKV = `-- name: PutKV :exec
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

func (q *Queries) PutKV(ctx context.Context, key string, value []byte) error {
	_, err := q.db.ExecContext(ctx, putKV, key, value)
	return err
}
