package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fintrack/internal/core"
)

type PeriodTotals struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"` // exclusive
	Income  float64   `json:"income"`
	Expense float64   `json:"expense"`
	Savings float64   `json:"savings"`
}

type CategoryChange struct {
	Category      string  `json:"category"`
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"changePercent"`
}

type Comparison struct {
	Period        Period           `json:"period"`
	Current       PeriodTotals     `json:"current"`
	Previous      PeriodTotals     `json:"previous"`
	IncomeChange  float64          `json:"incomeChange"`
	ExpenseChange float64          `json:"expenseChange"`
	SavingsChange float64          `json:"savingsChange"`
	Categories    []CategoryChange `json:"categories"`
}

// Compare sets the period to date against the previous one:
//
//	week:  Monday..today vs the whole previous Monday..Sunday
//	month: 1st..today vs the whole previous month
//	year:  Jan 1..today vs Jan 1..the same day last year
func Compare(txs []core.Transaction, period Period, now time.Time) (Comparison, error) {
	cur, prev, err := comparisonWindows(period, now)
	if err != nil {
		return Comparison{}, err
	}

	curTxs := inWindow(txs, cur)
	prevTxs := inWindow(txs, prev)
	c := Comparison{
		Period:   period,
		Current:  periodTotals(curTxs, cur),
		Previous: periodTotals(prevTxs, prev),
	}
	c.IncomeChange = percentChange(c.Current.Income, c.Previous.Income)
	c.ExpenseChange = percentChange(c.Current.Expense, c.Previous.Expense)
	c.SavingsChange = savingsChange(c.Current.Savings, c.Previous.Savings)
	c.Categories = compareCategories(
		ByCategory(curTxs, core.TypeExpense),
		ByCategory(prevTxs, core.TypeExpense),
	)
	return c, nil
}

func comparisonWindows(period Period, now time.Time) (cur, prev window, err error) {
	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	switch period {
	case PeriodWeek:
		monday := startOfWeek(now)
		cur = window{from: monday, to: tomorrow}
		prev = window{from: monday.AddDate(0, 0, -7), to: monday}
	case PeriodMonth:
		cur = window{from: startOfMonth(now), to: tomorrow}
		prev = previousMonth(now)
	case PeriodYear:
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		cur = window{from: jan1, to: tomorrow}
		prev = window{from: jan1.AddDate(-1, 0, 0), to: tomorrow.AddDate(-1, 0, 0)}
	default:
		err = fmt.Errorf("%w for comparison: %q", ErrUnsupportedPeriod, period)
	}
	return cur, prev, err
}

func periodTotals(txs []core.Transaction, w window) PeriodTotals {
	t := sumWindow(txs, w)
	return PeriodTotals{
		Start:   w.from,
		End:     w.to,
		Income:  t.income,
		Expense: t.expense,
		Savings: t.net(),
	}
}

// savingsChange measures against |prev| so a shrinking deficit reads as an
// improvement. With no previous savings the change is +/-100.
func savingsChange(cur, prev float64) float64 {
	switch {
	case prev != 0:
		return (cur - prev) / math.Abs(prev) * 100
	case cur > 0:
		return 100
	case cur < 0:
		return -100
	}
	return 0
}

func compareCategories(cur, prev []core.CategoryTotal) []CategoryChange {
	byName := make(map[string]*CategoryChange)
	out := make([]*CategoryChange, 0, len(cur)+len(prev))
	get := func(name string) *CategoryChange {
		c, ok := byName[name]
		if !ok {
			c = &CategoryChange{Category: name}
			byName[name] = c
			out = append(out, c)
		}
		return c
	}
	for _, c := range cur {
		get(c.Name).Current = c.Value
	}
	for _, p := range prev {
		get(p.Name).Previous = p.Value
	}

	changes := make([]CategoryChange, len(out))
	for i, c := range out {
		c.ChangePercent = percentChange(c.Current, c.Previous)
		changes[i] = *c
	}
	sort.Slice(changes, func(i, j int) bool {
		ai, aj := math.Abs(changes[i].ChangePercent), math.Abs(changes[j].ChangePercent)
		if ai != aj {
			return ai > aj
		}
		return changes[i].Category < changes[j].Category
	})
	return changes
}
