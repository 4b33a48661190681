package analytics

import (
	"math"
	"time"

	"fintrack/internal/core"
)

const (
	DefaultForecastMonths = 3
	MaxForecastMonths     = 120
	historyMonths         = 6
)

type ForecastParams struct {
	Months           int
	IncludeRecurring bool
	SavingsGoal      *float64
}

// Forecast projects Months future months from the averages of the six
// calendar months before now's month. Missing months count as zero, so the
// denominator is always six. Projected income stays constant; projected
// expense is either the average or, with IncludeRecurring, the recurring
// expenses recorded in the current month. Cumulative savings start from the
// current month's net.
func Forecast(txs []core.Transaction, p ForecastParams, now time.Time) core.Forecast {
	months := p.Months
	if months <= 0 {
		months = DefaultForecastMonths
	}
	if months > MaxForecastMonths {
		months = MaxForecastMonths
	}

	current := startOfMonth(now)
	history := sumWindow(txs, window{from: current.AddDate(0, -historyMonths, 0), to: current})
	thisMonth := sumWindow(txs, calendarMonth(now))

	avgIncome := history.income / historyMonths
	avgExpense := history.expense / historyMonths

	projectedExpense := avgExpense
	if p.IncludeRecurring {
		projectedExpense = thisMonth.recurringExpense
	}
	savings := avgIncome - projectedExpense
	currentNet := thisMonth.net()

	out := core.Forecast{
		Months:            make([]core.ForecastMonth, 0, months),
		AvgMonthlyIncome:  avgIncome,
		AvgMonthlyExpense: avgExpense,
		RecurringExpenses: thisMonth.recurringExpense,
		MonthlySavings:    savings,
		CurrentNet:        currentNet,
	}

	cumulative := currentNet
	for i := 1; i <= months; i++ {
		cumulative += savings
		out.Months = append(out.Months, core.ForecastMonth{
			Month:             current.AddDate(0, i, 0).Format("Jan 2006"),
			ProjectedIncome:   avgIncome,
			ProjectedExpense:  projectedExpense,
			MonthlySavings:    savings,
			CumulativeSavings: cumulative,
		})
	}

	if p.SavingsGoal != nil && savings > 0 && *p.SavingsGoal > currentNet {
		n := int(math.Ceil((*p.SavingsGoal - currentNet) / savings))
		out.MonthsToGoal = &n
	}
	return out
}
