package analytics

import (
	"fmt"
	"math"
	"time"

	"fintrack/internal/core"
)

const (
	targetSavingsRate      = 20.0
	incomeChangeThreshold  = 10.0
	expenseIncreaseAlert   = 20.0
	expenseDecreaseReward  = -10.0
	concentrationThreshold = 40.0
	recurringThreshold     = 70.0
)

// Generate applies the insight rules, in order, to the current month to
// date and the whole previous month:
//
//  1. savings rate
//  2. income change versus last month
//  3. expense change versus last month
//  4. top expense category concentration
//  5. share of recurring expenses
func Generate(txs []core.Transaction, now time.Time) []core.Insight {
	cur := sumWindow(txs, monthToDate(now))
	prev := sumWindow(txs, previousMonth(now))

	insights := make([]core.Insight, 0, 5)

	if in, ok := savingsInsight(cur); ok {
		insights = append(insights, in)
	}

	if prev.income > 0 {
		change := percentChange(cur.income, prev.income)
		switch {
		case change >= incomeChangeThreshold:
			insights = append(insights, core.Insight{
				Title:       "Income Increase",
				Description: fmt.Sprintf("Your income increased by %.1f%% compared to last month.", change),
				Type:        core.InsightSuccess,
				Icon:        "trending_up",
			})
		case change <= -incomeChangeThreshold:
			insights = append(insights, core.Insight{
				Title:       "Income Decrease",
				Description: fmt.Sprintf("Your income decreased by %.1f%% from last month.", math.Abs(change)),
				Type:        core.InsightWarning,
				Icon:        "trending_down",
			})
		}
	}

	if prev.expense > 0 {
		change := percentChange(cur.expense, prev.expense)
		switch {
		case change >= expenseIncreaseAlert:
			insights = append(insights, core.Insight{
				Title:       "Spending Increase",
				Description: fmt.Sprintf("Your spending increased by %.1f%% compared to last month.", change),
				Type:        core.InsightWarning,
				Icon:        "trending_up",
			})
		case change <= expenseDecreaseReward:
			insights = append(insights, core.Insight{
				Title:       "Spending Decrease",
				Description: fmt.Sprintf("You reduced spending by %.1f%% from last month.", math.Abs(change)),
				Type:        core.InsightSuccess,
				Icon:        "trending_down",
			})
		}
	}

	if cur.expense > 0 {
		categories := ByCategory(inWindow(txs, monthToDate(now)), core.TypeExpense)
		if len(categories) > 0 {
			top := categories[0]
			share := top.Value / cur.expense * 100
			if share > concentrationThreshold {
				insights = append(insights, core.Insight{
					Title:       "High Category Concentration",
					Description: fmt.Sprintf("%s makes up %.1f%% of your expenses.", top.Name, share),
					Type:        core.InsightInfo,
					Icon:        "pie_chart",
				})
			}
		}

		ratio := cur.recurringExpense / cur.expense * 100
		if ratio > recurringThreshold {
			insights = append(insights, core.Insight{
				Title:       "High Fixed Expenses",
				Description: fmt.Sprintf("%.1f%% of your spending is on recurring expenses.", ratio),
				Type:        core.InsightInfo,
				Icon:        "repeat",
			})
		}
	}

	return insights
}

func savingsInsight(cur totals) (core.Insight, bool) {
	if cur.income <= 0 {
		return core.Insight{}, false
	}
	rate := cur.net() / cur.income * 100
	switch {
	case rate >= targetSavingsRate:
		return core.Insight{
			Title:       "Great Saving Habit!",
			Description: fmt.Sprintf("You're saving %.1f%% of your income this month.", rate),
			Type:        core.InsightSuccess,
			Icon:        "savings",
		}, true
	case rate > 0:
		return core.Insight{
			Title:       "Savings Below Target",
			Description: fmt.Sprintf("You're currently saving %.1f%% of income. Try to reach %.0f%%.", rate, targetSavingsRate),
			Type:        core.InsightInfo,
			Icon:        "account_balance",
		}, true
	case rate < 0:
		return core.Insight{
			Title:       "Spending Alert",
			Description: fmt.Sprintf("You're spending more than you earn this month (savings rate %.1f%%).", rate),
			Type:        core.InsightWarning,
			Icon:        "warning",
		}, true
	}
	return core.Insight{}, false
}
