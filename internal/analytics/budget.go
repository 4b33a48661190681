package analytics

import (
	"time"

	"fintrack/internal/core"
)

// BudgetAnalysis describes month-to-date spending and the month-end total
// it projects at the current daily rate.
type BudgetAnalysis struct {
	DaysInMonth           int                  `json:"daysInMonth"`
	DaysElapsed           int                  `json:"daysElapsed"`
	DaysRemaining         int                  `json:"daysRemaining"`
	CategorySpending      []core.CategoryTotal `json:"categorySpending"`
	TotalSpent            float64              `json:"totalSpent"`
	DailySpendingRate     float64              `json:"dailySpendingRate"`
	ProjectedMonthTotal   float64              `json:"projectedMonthTotal"`
	PercentOfMonthElapsed float64              `json:"percentOfMonthElapsed"`
}

func AnalyzeBudget(txs []core.Transaction, now time.Time) BudgetAnalysis {
	days := daysIn(now.Year(), now.Month(), now.Location())
	elapsed := now.Day()

	mtd := inWindow(txs, monthToDate(now))
	categories := ByCategory(mtd, core.TypeExpense)
	var spent float64
	for _, c := range categories {
		spent += c.Value
	}

	a := BudgetAnalysis{
		DaysInMonth:           days,
		DaysElapsed:           elapsed,
		DaysRemaining:         days - elapsed,
		CategorySpending:      categories,
		TotalSpent:            spent,
		PercentOfMonthElapsed: float64(elapsed) / float64(days) * 100,
	}
	if elapsed > 0 {
		a.DailySpendingRate = spent / float64(elapsed)
	}
	a.ProjectedMonthTotal = a.DailySpendingRate * float64(days)
	return a
}
