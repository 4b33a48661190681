// Package analytics derives aggregates, insights, forecasts and comparisons
// from normalized transactions. Every function is pure: the reference time
// is passed in and nothing is persisted.
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

var ErrUnsupportedPeriod = errors.New("unsupported period")

// ParsePeriod is case-insensitive; the empty string yields PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	case "":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, s)
}

// wall reinterprets the clock reading of t in loc. Transaction dates are
// calendar dates stored at UTC midnight; comparing their wall clock against
// the caller's local month boundaries keeps a 2025-03-01 record in March
// regardless of the caller's zone.
func wall(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return startOfDay(t).AddDate(0, 0, -offset)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// window is the half-open interval [from, to).
type window struct {
	from, to time.Time
}

func (w window) contains(t time.Time) bool {
	t = wall(t, w.from.Location())
	return !t.Before(w.from) && t.Before(w.to)
}

// monthToDate covers the 1st of now's month through now inclusive.
func monthToDate(now time.Time) window {
	return window{from: startOfMonth(now), to: now.Add(time.Nanosecond)}
}

func calendarMonth(t time.Time) window {
	from := startOfMonth(t)
	return window{from: from, to: from.AddDate(0, 1, 0)}
}

func previousMonth(now time.Time) window {
	to := startOfMonth(now)
	return window{from: to.AddDate(0, -1, 0), to: to}
}

func matchesType(tx core.Transaction, typ core.TransactionType) bool {
	return typ == "" || typ == core.TypeAll || tx.Type == typ
}

type totals struct {
	income, expense, recurringExpense float64
}

func (t totals) net() float64 {
	return t.income - t.expense
}

func sumWindow(txs []core.Transaction, w window) totals {
	var out totals
	for _, tx := range txs {
		if !w.contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case core.TypeIncome:
			out.income += tx.Amount
		case core.TypeExpense:
			out.expense += tx.Amount
			if tx.IsRecurring {
				out.recurringExpense += tx.Amount
			}
		}
	}
	return out
}

func inWindow(txs []core.Transaction, w window) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if w.contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// percentChange returns the change from prev to cur in percent, or 0 when
// prev is not positive.
func percentChange(cur, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
