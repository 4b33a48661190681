package analytics

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// ByCategory sums amounts per category for the given type (all or empty
// means both). The result is sorted by value descending; equal values keep
// the order in which their category was first seen.
func ByCategory(txs []core.Transaction, typ core.TransactionType) []core.CategoryTotal {
	index := make(map[string]int)
	out := make([]core.CategoryTotal, 0)
	for _, tx := range txs {
		if !matchesType(tx, typ) {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, core.CategoryTotal{Name: tx.Category})
		}
		out[i].Value += tx.Amount
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// ByMonth returns exactly monthsCount buckets ending with now's month,
// oldest first. Months without transactions stay at zero and transactions
// outside the window are ignored.
func ByMonth(txs []core.Transaction, monthsCount int, now time.Time) []core.MonthBucket {
	if monthsCount <= 0 {
		return []core.MonthBucket{}
	}
	current := startOfMonth(now)
	buckets := make([]core.MonthBucket, monthsCount)
	index := make(map[int]int, monthsCount)
	for i := range buckets {
		m := current.AddDate(0, i-(monthsCount-1), 0)
		buckets[i] = core.MonthBucket{
			Label: m.Format("Jan 2006"),
			Year:  m.Year(),
			Month: int(m.Month()),
		}
		index[monthKey(m.Year(), m.Month())] = i
	}

	for _, tx := range txs {
		i, ok := index[monthKey(tx.Date.Year(), tx.Date.Month())]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.TypeIncome:
			buckets[i].Income += tx.Amount
		case core.TypeExpense:
			buckets[i].Expense += tx.Amount
		}
	}
	return buckets
}

func monthKey(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// ByDay returns one bucket per day of now's calendar month, zero-filled.
func ByDay(txs []core.Transaction, now time.Time) []core.DayBucket {
	loc := now.Location()
	n := daysIn(now.Year(), now.Month(), loc)
	buckets := make([]core.DayBucket, n)
	for d := 1; d <= n; d++ {
		buckets[d-1] = core.DayBucket{
			Date: time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, loc).Format(time.DateOnly),
			Day:  d,
		}
	}

	for _, tx := range txs {
		if tx.Date.Year() != now.Year() || tx.Date.Month() != now.Month() {
			continue
		}
		b := &buckets[tx.Date.Day()-1]
		switch tx.Type {
		case core.TypeIncome:
			b.Income += tx.Amount
		case core.TypeExpense:
			b.Expense += tx.Amount
		}
	}
	return buckets
}
