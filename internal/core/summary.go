package core

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthBucket holds income and expense totals for one calendar month.
type MonthBucket struct {
	Label   string  `json:"month"` // "Jan 2006"
	Year    int     `json:"year"`
	Month   int     `json:"monthNumber"` // 1-12
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// DayBucket holds income and expense totals for one day of a month.
type DayBucket struct {
	Date    string  `json:"date"` // 2006-01-02
	Day     int     `json:"day"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type InsightType string

const (
	InsightInfo    InsightType = "info"
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
)

type Insight struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        InsightType `json:"type"`
	Icon        string      `json:"icon"`
}

type ForecastMonth struct {
	Month             string  `json:"month"`
	ProjectedIncome   float64 `json:"projectedIncome"`
	ProjectedExpense  float64 `json:"projectedExpense"`
	MonthlySavings    float64 `json:"monthlySavings"`
	CumulativeSavings float64 `json:"cumulativeSavings"`
}

// Forecast is the projection produced from historical averages. MonthsToGoal
// is nil when no goal was given, the goal is already met or savings are not
// positive.
type Forecast struct {
	Months            []ForecastMonth `json:"forecast"`
	AvgMonthlyIncome  float64         `json:"avgMonthlyIncome"`
	AvgMonthlyExpense float64         `json:"avgMonthlyExpense"`
	RecurringExpenses float64         `json:"recurringExpenses"`
	MonthlySavings    float64         `json:"monthlySavings"`
	CurrentNet        float64         `json:"currentNet"`
	MonthsToGoal      *int            `json:"monthsToGoal"`
}
