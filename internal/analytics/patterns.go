package analytics

import (
	"errors"
	"strings"
	"time"

	"fintrack/internal/core"
)

// patternMonths is how far back SpendingPatterns reaches when no start is
// given: the 1st of the month six months before now.
const patternMonths = 6

var ErrInvalidRange = errors.New("end date is before start date")

// SpendingPatterns breaks expenses in an inclusive date range down by
// category, by month and category, and by weekday.
type SpendingPatterns struct {
	StartDate      string               `json:"startDate"`
	EndDate        string               `json:"endDate"`
	CategoryTotals []core.CategoryTotal `json:"categoryTotals"`
	MonthlyTrends  []MonthTrend         `json:"monthlyTrends"`
	DailyPatterns  []WeekdayTotal       `json:"dailyPatterns"`
}

// MonthTrend holds one calendar month of the range; Month is "2006-01".
type MonthTrend struct {
	Month      string               `json:"month"`
	Categories []core.CategoryTotal `json:"categories"`
}

type WeekdayTotal struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// Patterns computes SpendingPatterns for [start, end]. A zero start or end
// falls back to the default window ending today. Every month touched by the
// range gets a trend entry and all seven weekdays are reported, Monday
// first, even when empty.
func Patterns(txs []core.Transaction, start, end core.Date, now time.Time) (SpendingPatterns, error) {
	loc := now.Location()
	from := startOfMonth(now).AddDate(0, -patternMonths, 0)
	if !start.IsZero() {
		from = time.Date(start.Year(), time.Month(start.Month()), start.Day(), 0, 0, 0, 0, loc)
	}
	to := startOfDay(now)
	if !end.IsZero() {
		to = time.Date(end.Year(), time.Month(end.Month()), end.Day(), 0, 0, 0, 0, loc)
	}
	if to.Before(from) {
		return SpendingPatterns{}, ErrInvalidRange
	}

	expenses := make([]core.Transaction, 0)
	for _, tx := range inWindow(txs, window{from: from, to: to.AddDate(0, 0, 1)}) {
		if tx.Type == core.TypeExpense {
			expenses = append(expenses, tx)
		}
	}

	p := SpendingPatterns{
		StartDate:      from.Format(time.DateOnly),
		EndDate:        to.Format(time.DateOnly),
		CategoryTotals: ByCategory(expenses, core.TypeExpense),
		MonthlyTrends:  monthlyTrends(expenses, from, to),
		DailyPatterns:  weekdayTotals(expenses),
	}
	return p, nil
}

func monthlyTrends(expenses []core.Transaction, from, to time.Time) []MonthTrend {
	byMonth := make(map[int][]core.Transaction)
	for _, tx := range expenses {
		k := monthKey(tx.Date.Year(), tx.Date.Month())
		byMonth[k] = append(byMonth[k], tx)
	}

	out := make([]MonthTrend, 0)
	last := startOfMonth(to)
	for m := startOfMonth(from); !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthTrend{
			Month:      m.Format("2006-01"),
			Categories: ByCategory(byMonth[monthKey(m.Year(), m.Month())], core.TypeExpense),
		})
	}
	return out
}

func weekdayTotals(expenses []core.Transaction) []WeekdayTotal {
	out := make([]WeekdayTotal, 7)
	for i := range out {
		out[i].Day = strings.ToUpper(time.Weekday((i + 1) % 7).String())
	}
	for _, tx := range expenses {
		i := (int(tx.Date.Weekday()) + 6) % 7 // Monday = 0
		out[i].Value += tx.Amount
	}
	return out
}
