// Package goals holds the monthly income, savings goal and category budgets
// a user plans against, and tracks month-to-date progress toward them.
package goals

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

var (
	ErrNegativeAmount    = errors.New("amounts cannot be negative")
	ErrDuplicateCategory = errors.New("duplicate budget category")
)

// defaultRecommendation applies to categories missing from recommendations.
const defaultRecommendation = 5.0

// recommendations is the suggested share of monthly income per category.
var recommendations = map[string]float64{
	"Housing":        30,
	"Food":           15,
	"Transportation": 10,
	"Utilities":      10,
	"Entertainment":  5,
	"Healthcare":     10,
	"Debt Payments":  10,
	"Personal Care":  5,
	"Education":      5,
	"Miscellaneous":  5,
}

type CategoryBudget struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Spent    float64 `json:"spent"`
}

type Goals struct {
	MonthlyIncome   float64          `json:"monthlyIncome"`
	SavingsGoal     float64          `json:"savingsGoal"`
	CategoryBudgets []CategoryBudget `json:"categoryBudgets"`
}

func (g Goals) Validate() error {
	if g.MonthlyIncome < 0 || g.SavingsGoal < 0 {
		return ErrNegativeAmount
	}
	seen := make(map[string]struct{}, len(g.CategoryBudgets))
	for _, b := range g.CategoryBudgets {
		if strings.TrimSpace(b.Category) == "" {
			return core.ErrEmptyCategory
		}
		if b.Amount < 0 {
			return fmt.Errorf("%s: %w", b.Category, ErrNegativeAmount)
		}
		if _, dup := seen[b.Category]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, b.Category)
		}
		seen[b.Category] = struct{}{}
	}
	return nil
}

func (g Goals) TotalBudgeted() float64 {
	var sum float64
	for _, b := range g.CategoryBudgets {
		sum += b.Amount
	}
	return sum
}

// AvailableAmount is the income left once the savings goal and every
// category budget are set aside. Negative means the plan is over-allocated.
func (g Goals) AvailableAmount() float64 {
	return g.MonthlyIncome - g.SavingsGoal - g.TotalBudgeted()
}

// RecommendedPercentage returns the suggested share of income for a
// category, 5 for unknown categories and 0 for an empty name.
func RecommendedPercentage(category string) float64 {
	if category == "" {
		return 0
	}
	if pct, ok := recommendations[category]; ok {
		return pct
	}
	return defaultRecommendation
}

func (g Goals) RecommendedAmount(category string) float64 {
	return RecommendedPercentage(category) / 100 * g.MonthlyIncome
}

// ApplyRecommendations sets every budget to its recommended amount,
// rounded to whole units.
func (g *Goals) ApplyRecommendations() {
	for i := range g.CategoryBudgets {
		g.CategoryBudgets[i].Amount = math.Round(g.RecommendedAmount(g.CategoryBudgets[i].Category))
	}
}

type CategoryProgress struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Spent      float64 `json:"spent"`
	Percentage int     `json:"percentage"`
	Overage    float64 `json:"overage"`
	OverBudget bool    `json:"overBudget"`
}

type Progress struct {
	Goals             Goals              `json:"goals"`
	TotalSpent        float64            `json:"totalSpent"`
	CurrentSavings    float64            `json:"currentSavings"`
	SavingsPercentage int                `json:"savingsPercentage"`
	DaysRemaining     int                `json:"daysRemaining"`
	DailyBudget       float64            `json:"dailyBudget"`
	Categories        []CategoryProgress `json:"categories"`
	Advice            []string           `json:"advice"`
}

// TrackProgress fills the spent amount of every budget from this month's
// expenses and derives savings, percentages and advice.
func TrackProgress(g Goals, txs []core.Transaction, now time.Time) Progress {
	month := analytics.History(txs, analytics.PeriodMonth, now)
	spentBy := make(map[string]float64)
	var total float64
	for _, c := range analytics.ByCategory(month, core.TypeExpense) {
		spentBy[c.Name] = c.Value
		total += c.Value
	}

	tracked := g
	tracked.CategoryBudgets = make([]CategoryBudget, len(g.CategoryBudgets))
	categories := make([]CategoryProgress, len(g.CategoryBudgets))
	for i, b := range g.CategoryBudgets {
		b.Spent = spentBy[b.Category]
		tracked.CategoryBudgets[i] = b
		categories[i] = CategoryProgress{
			Category:   b.Category,
			Amount:     b.Amount,
			Spent:      b.Spent,
			Percentage: CategoryPercentage(b),
			Overage:    CategoryOverage(b),
			OverBudget: b.Spent > b.Amount,
		}
	}

	days := DaysRemaining(now)
	p := Progress{
		Goals:          tracked,
		TotalSpent:     total,
		CurrentSavings: math.Max(0, g.MonthlyIncome-total),
		DaysRemaining:  days,
		DailyBudget:    DailyBudget(tracked, days),
		Categories:     categories,
	}
	p.SavingsPercentage = SavingsPercentage(p.CurrentSavings, g.SavingsGoal)
	p.Advice = Advice(p)
	return p
}

// SavingsPercentage is capped at 100 and 0 without a goal.
func SavingsPercentage(current, goal float64) int {
	if goal <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(current/goal*100)))
}

func CategoryPercentage(b CategoryBudget) int {
	if b.Amount == 0 {
		return 0
	}
	return int(math.Round(b.Spent / b.Amount * 100))
}

func CategoryOverage(b CategoryBudget) float64 {
	if b.Spent <= b.Amount {
		return 0
	}
	return b.Spent - b.Amount
}

// DailyBudget spreads the total budget over the remaining days.
func DailyBudget(g Goals, daysRemaining int) float64 {
	if daysRemaining <= 0 {
		return 0
	}
	return g.TotalBudgeted() / float64(daysRemaining)
}

// DaysRemaining counts today as remaining.
func DaysRemaining(now time.Time) int {
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return last - now.Day() + 1
}

func Advice(p Progress) []string {
	advice := make([]string, 0)
	goal := p.Goals.SavingsGoal

	if goal > 0 {
		switch {
		case p.CurrentSavings < goal*0.75:
			advice = append(advice, "You're falling behind on your savings goal. Consider reducing spending in non-essential categories.")
		case p.CurrentSavings >= goal:
			advice = append(advice, "Great job! You've met or exceeded your savings goal for this month.")
		}
	}

	var over, under []CategoryProgress
	for _, c := range p.Categories {
		if c.OverBudget {
			over = append(over, c)
		}
		if c.Amount > 0 && c.Percentage < 30 {
			under = append(under, c)
		}
	}
	if len(over) > 0 {
		advice = append(advice, fmt.Sprintf("You've exceeded your budget in %d %s.", len(over), pluralCategory(len(over))))
		for _, c := range over {
			advice = append(advice, fmt.Sprintf("%s: %d%% over budget. Consider adjusting your spending habits.", c.Category, c.Percentage-100))
		}
	}

	if p.DaysRemaining < 10 {
		advice = append(advice, fmt.Sprintf("Only %d days left in the month. Your daily budget is %.2f.", p.DaysRemaining, p.DailyBudget))
	}

	if len(under) > 0 && p.DaysRemaining < 15 {
		advice = append(advice, fmt.Sprintf("You're underspending in %d %s. You might be able to reallocate some funds.", len(under), pluralCategory(len(under))))
	}
	return advice
}

func pluralCategory(n int) string {
	if n == 1 {
		return "category"
	}
	return "categories"
}
