package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/metrics"
)

// RecurringStore is the persistence the processor needs.
type RecurringStore interface {
	ListActiveRecurringRules(ctx context.Context, day time.Time) ([]core.RecurringRule, error)
	UpdateRecurringLastExecution(ctx context.Context, id int64, at time.Time) error
}

// RecurringProcessor materialises due recurring rules into expenses or
// incomes through the RecordService, so each created record is announced
// like a manual one.
type RecurringProcessor struct {
	store   RecurringStore
	records *RecordService
	metrics *metrics.Metrics
}

func NewRecurringProcessor(store RecurringStore, records *RecordService, m *metrics.Metrics) *RecurringProcessor {
	return &RecurringProcessor{store: store, records: records, metrics: m}
}

// ProcessDue creates one record for every active rule due at now and
// returns how many were created. Per-rule failures are logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.records == nil {
		return 0, errors.New("processor not properly initialized")
	}

	rules, err := p.store.ListActiveRecurringRules(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list active recurring rules: %w", err)
	}
	slog.InfoContext(ctx, "Processing recurring rules",
		"total_active", len(rules),
		"processing_date", now.Format(time.DateOnly))

	processed := 0
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		checker, err := GetDuenessChecker(rule.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping rule with unknown frequency", "rule_id", rule.ID, "error", err)
			continue
		}
		if !checker.IsDue(rule.LastExecution.Time, now, rule.StartDate) {
			continue
		}

		if _, err := p.create(ctx, rule, now); err != nil {
			slog.ErrorContext(ctx, "Failed to create record from recurring rule",
				"rule_id", rule.ID,
				"kind", rule.Kind,
				"error", err)
			continue
		}

		if err := p.store.UpdateRecurringLastExecution(ctx, rule.ID, now); err != nil {
			// the record exists; the rule fires again on the next run
			slog.ErrorContext(ctx, "Failed to update last execution date",
				"rule_id", rule.ID,
				"error", err)
		}

		processed++
		p.metrics.IncrRecurringCreated(string(rule.Kind))
		slog.InfoContext(ctx, "Created record from recurring rule",
			"rule_id", rule.ID,
			"kind", rule.Kind,
			"amount_cents", rule.Amount.Cents,
			"frequency", rule.Every)
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(rules))
	return processed, nil
}

func (p *RecurringProcessor) create(ctx context.Context, rule core.RecurringRule, now time.Time) (string, error) {
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	tags := []string{"recurring:" + strconv.FormatInt(rule.ID, 10)}

	switch rule.Kind {
	case core.TypeExpense:
		return p.records.CreateExpense(ctx, core.Expense{
			Date:               date,
			Amount:             rule.Amount,
			Category:           rule.Category,
			Note:               rule.Description,
			Tags:               tags,
			IsRecurring:        true,
			RecurringFrequency: rule.Every,
		})
	case core.TypeIncome:
		return p.records.CreateIncome(ctx, core.Income{
			Date:               date,
			Amount:             rule.Amount,
			Source:             rule.Category,
			Description:        rule.Description,
			Tags:               tags,
			IsRecurring:        true,
			RecurringFrequency: rule.Every,
		})
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidType, rule.Kind)
}
