package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func expense(amount float64, category string, y int, m time.Month, d int) core.Transaction {
	return core.Transaction{Type: core.TypeExpense, Amount: amount, Category: category, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Tags: []string{}}
}

func income(amount float64, source string, y int, m time.Month, d int) core.Transaction {
	return core.Transaction{Type: core.TypeIncome, Amount: amount, Category: source, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Tags: []string{}}
}

func recurring(tx core.Transaction) core.Transaction {
	tx.IsRecurring = true
	tx.RecurringFrequency = core.Monthly
	return tx
}

func TestByCategoryTotalsMatchDirectSum(t *testing.T) {
	txs := []core.Transaction{
		expense(12.5, "Food", 2025, 3, 1),
		expense(900, "Rent", 2025, 3, 2),
		expense(7.25, "Food", 2025, 2, 10),
		income(5000, "Salary", 2025, 3, 1),
		expense(40, "Transport", 2024, 12, 31),
	}

	for _, typ := range []core.TransactionType{core.TypeExpense, core.TypeIncome, core.TypeAll, ""} {
		var direct, grouped float64
		for _, tx := range txs {
			if matchesType(tx, typ) {
				direct += tx.Amount
			}
		}
		for _, c := range ByCategory(txs, typ) {
			grouped += c.Value
		}
		assert.InDelta(t, direct, grouped, 1e-9, "type %q", typ)
	}
}

func TestByCategorySortedWithStableTies(t *testing.T) {
	txs := []core.Transaction{
		expense(100, "B", 2025, 3, 1),
		expense(300, "C", 2025, 3, 1),
		expense(100, "A", 2025, 3, 1),
		income(999, "Salary", 2025, 3, 1),
	}
	got := ByCategory(txs, core.TypeExpense)
	assert.Equal(t, []core.CategoryTotal{{Name: "C", Value: 300}, {Name: "B", Value: 100}, {Name: "A", Value: 100}}, got)
	assert.Empty(t, ByCategory(nil, core.TypeExpense))
	assert.NotNil(t, ByCategory(nil, core.TypeExpense))
}

func TestByMonthReturnsExactBucketCount(t *testing.T) {
	txs := []core.Transaction{
		income(5000, "Salary", 2025, 3, 1),
		expense(100, "Food", 2025, 1, 20),
		expense(50, "Food", 2024, 6, 1), // outside a 6 month window
	}
	for _, n := range []int{1, 3, 6, 12, 24} {
		buckets := ByMonth(txs, n, now)
		require.Len(t, buckets, n)
		for _, b := range buckets {
			assert.GreaterOrEqual(t, b.Income, 0.0)
			assert.GreaterOrEqual(t, b.Expense, 0.0)
		}
		assert.Equal(t, "Mar 2025", buckets[n-1].Label)
	}

	six := ByMonth(txs, 6, now)
	assert.Equal(t, "Oct 2024", six[0].Label)
	assert.Equal(t, 100.0, six[3].Expense) // Jan 2025
	assert.Equal(t, 5000.0, six[5].Income)
	var total float64
	for _, b := range six {
		total += b.Expense
	}
	assert.Equal(t, 100.0, total)

	assert.Empty(t, ByMonth(txs, 0, now))
}

func TestByMonthEmptyInputIsZeroFilled(t *testing.T) {
	buckets := ByMonth(nil, 4, now)
	require.Len(t, buckets, 4)
	for _, b := range buckets {
		assert.Zero(t, b.Income)
		assert.Zero(t, b.Expense)
	}
}

func TestByDayCoversWholeMonth(t *testing.T) {
	txs := []core.Transaction{
		expense(10, "Food", 2025, 3, 1),
		expense(5, "Food", 2025, 3, 1),
		income(100, "Gift", 2025, 3, 31),
		expense(99, "Food", 2025, 2, 28),
	}
	days := ByDay(txs, now)
	require.Len(t, days, 31)
	assert.Equal(t, "2025-03-01", days[0].Date)
	assert.Equal(t, 15.0, days[0].Expense)
	assert.Equal(t, 100.0, days[30].Income)

	feb := ByDay(nil, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
	assert.Len(t, feb, 29)
}

func insightTitles(in []core.Insight) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.Title
	}
	return out
}

func TestSavingsRateInsight(t *testing.T) {
	t.Run("healthy savings", func(t *testing.T) {
		txs := []core.Transaction{income(1000, "Salary", 2025, 3, 1), expense(700, "Food", 2025, 3, 2)}
		got := Generate(txs, now)
		var savings []core.Insight
		for _, in := range got {
			if in.Icon == "savings" || in.Icon == "account_balance" || in.Icon == "warning" {
				savings = append(savings, in)
			}
		}
		require.Len(t, savings, 1)
		assert.Equal(t, core.InsightSuccess, savings[0].Type)
		assert.Equal(t, "You're saving 30.0% of your income this month.", savings[0].Description)
	})

	t.Run("overspending", func(t *testing.T) {
		txs := []core.Transaction{income(1000, "Salary", 2025, 3, 1), expense(1200, "Food", 2025, 3, 2)}
		got := Generate(txs, now)
		require.NotEmpty(t, got)
		assert.Equal(t, core.InsightWarning, got[0].Type)
		assert.Contains(t, got[0].Description, "-20.0%")
	})

	t.Run("below target", func(t *testing.T) {
		txs := []core.Transaction{income(1000, "Salary", 2025, 3, 1), expense(900, "Food", 2025, 3, 2)}
		got := Generate(txs, now)
		require.NotEmpty(t, got)
		assert.Equal(t, "Savings Below Target", got[0].Title)
		assert.Equal(t, core.InsightInfo, got[0].Type)
	})

	t.Run("break even emits nothing", func(t *testing.T) {
		txs := []core.Transaction{income(1000, "Salary", 2025, 3, 1), expense(1000, "Food", 2025, 3, 2)}
		got := Generate(txs, now)
		assert.NotContains(t, insightTitles(got), "Great Saving Habit!")
		assert.NotContains(t, insightTitles(got), "Savings Below Target")
		assert.NotContains(t, insightTitles(got), "Spending Alert")
	})

	t.Run("future transactions in the month are ignored", func(t *testing.T) {
		txs := []core.Transaction{income(1000, "Salary", 2025, 3, 1), expense(5000, "Rent", 2025, 3, 28)}
		got := Generate(txs, now)
		require.NotEmpty(t, got)
		assert.Equal(t, "Great Saving Habit!", got[0].Title)
	})
}

func TestMonthOverMonthInsights(t *testing.T) {
	cases := []struct {
		name string
		txs  []core.Transaction
		want []string
		not  []string
	}{
		{
			name: "income up",
			txs:  []core.Transaction{income(1000, "Salary", 2025, 2, 1), income(1200, "Salary", 2025, 3, 1)},
			want: []string{"Income Increase"},
		},
		{
			name: "income inside dead zone",
			txs:  []core.Transaction{income(1000, "Salary", 2025, 2, 1), income(1050, "Salary", 2025, 3, 1)},
			not:  []string{"Income Increase", "Income Decrease"},
		},
		{
			name: "income down",
			txs:  []core.Transaction{income(1000, "Salary", 2025, 2, 28), income(800, "Salary", 2025, 3, 1)},
			want: []string{"Income Decrease"},
		},
		{
			name: "no previous income",
			txs:  []core.Transaction{income(1000, "Salary", 2025, 3, 1)},
			not:  []string{"Income Increase", "Income Decrease"},
		},
		{
			name: "spending up",
			txs:  []core.Transaction{expense(100, "Food", 2025, 2, 3), expense(125, "Food", 2025, 3, 3)},
			want: []string{"Spending Increase"},
		},
		{
			name: "spending up below threshold",
			txs:  []core.Transaction{expense(100, "Food", 2025, 2, 3), expense(115, "Food", 2025, 3, 3)},
			not:  []string{"Spending Increase", "Spending Decrease"},
		},
		{
			name: "spending down",
			txs:  []core.Transaction{expense(100, "Food", 2025, 2, 3), expense(85, "Food", 2025, 3, 3)},
			want: []string{"Spending Decrease"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			titles := insightTitles(Generate(tc.txs, now))
			for _, w := range tc.want {
				assert.Contains(t, titles, w)
			}
			for _, n := range tc.not {
				assert.NotContains(t, titles, n)
			}
		})
	}
}

func TestConcentrationInsight(t *testing.T) {
	cases := []struct {
		name    string
		amounts map[string]float64
		top     string
		emitted bool
	}{
		{"rent dominates", map[string]float64{"Food": 200, "Rent": 900}, "Rent", true},
		{"rent slight majority", map[string]float64{"Food": 500, "Rent": 600}, "Rent", true},
		{"food slight majority", map[string]float64{"Food": 600, "Rent": 500}, "Food", true},
		{"evenly spread", map[string]float64{"A": 300, "B": 300, "C": 300, "D": 100}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var txs []core.Transaction
			for cat, amount := range tc.amounts {
				txs = append(txs, expense(amount, cat, 2025, 3, 5))
			}
			var found *core.Insight
			for _, in := range Generate(txs, now) {
				if in.Title == "High Category Concentration" {
					in := in
					found = &in
				}
			}
			if !tc.emitted {
				assert.Nil(t, found)
				return
			}
			require.NotNil(t, found)
			assert.Equal(t, core.InsightInfo, found.Type)
			assert.Contains(t, found.Description, tc.top)
		})
	}
}

func TestRecurringRatioInsight(t *testing.T) {
	high := []core.Transaction{recurring(expense(800, "Rent", 2025, 3, 1)), expense(200, "Food", 2025, 3, 2)}
	got := Generate(high, now)
	require.Contains(t, insightTitles(got), "High Fixed Expenses")
	assert.Equal(t, "High Fixed Expenses", got[len(got)-1].Title)

	low := []core.Transaction{recurring(expense(600, "Rent", 2025, 3, 1)), expense(400, "Food", 2025, 3, 2)}
	assert.NotContains(t, insightTitles(Generate(low, now)), "High Fixed Expenses")
}

func TestGenerateEmptyInput(t *testing.T) {
	got := Generate(nil, now)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func steadyHistory(incomeAmount, expenseAmount float64) []core.Transaction {
	var txs []core.Transaction
	for i := 1; i <= 6; i++ {
		m := time.Date(2025, time.March-time.Month(i), 10, 0, 0, 0, 0, time.UTC)
		txs = append(txs,
			income(incomeAmount, "Salary", m.Year(), m.Month(), 1),
			expense(expenseAmount, "Living", m.Year(), m.Month(), 10),
		)
	}
	return txs
}

func TestForecastFromSteadyHistory(t *testing.T) {
	f := Forecast(steadyHistory(5000, 3000), ForecastParams{Months: 3}, now)

	assert.Equal(t, 5000.0, f.AvgMonthlyIncome)
	assert.Equal(t, 3000.0, f.AvgMonthlyExpense)
	require.Len(t, f.Months, 3)
	start := f.CurrentNet
	for i, m := range f.Months {
		assert.Equal(t, 2000.0, m.MonthlySavings)
		assert.Equal(t, start+2000*float64(i+1), m.CumulativeSavings)
	}
	assert.Equal(t, []string{"Apr 2025", "May 2025", "Jun 2025"},
		[]string{f.Months[0].Month, f.Months[1].Month, f.Months[2].Month})
	assert.Nil(t, f.MonthsToGoal)
}

func TestForecastMissingMonthsCountAsZero(t *testing.T) {
	txs := []core.Transaction{income(6000, "Salary", 2025, 2, 1)}
	f := Forecast(txs, ForecastParams{Months: 1}, now)
	assert.Equal(t, 1000.0, f.AvgMonthlyIncome)
}

func TestForecastRecurringBaselineAndGoal(t *testing.T) {
	txs := append(steadyHistory(5000, 3000),
		recurring(expense(1500, "Rent", 2025, 3, 1)),
		income(5000, "Salary", 2025, 3, 1),
	)
	goal := 10000.0
	f := Forecast(txs, ForecastParams{Months: 2, IncludeRecurring: true, SavingsGoal: &goal}, now)

	assert.Equal(t, 1500.0, f.RecurringExpenses)
	assert.Equal(t, 3500.0, f.MonthlySavings)
	assert.Equal(t, 3500.0, f.CurrentNet)
	assert.Equal(t, 7000.0, f.Months[0].CumulativeSavings)
	require.NotNil(t, f.MonthsToGoal)
	assert.Equal(t, 2, *f.MonthsToGoal) // ceil(6500 / 3500)
}

func TestForecastGoalWithoutEstimate(t *testing.T) {
	met := 100.0
	f := Forecast(append(steadyHistory(5000, 3000), income(500, "Bonus", 2025, 3, 2)), ForecastParams{SavingsGoal: &met}, now)
	assert.Nil(t, f.MonthsToGoal, "goal already met")
	assert.Len(t, f.Months, DefaultForecastMonths)

	goal := 1000.0
	f = Forecast(steadyHistory(3000, 3000), ForecastParams{SavingsGoal: &goal}, now)
	assert.Nil(t, f.MonthsToGoal, "no positive savings")
}

func TestFilter(t *testing.T) {
	food := expense(12, "Food", 2025, 3, 10)
	food.Tags = []string{"groceries"}
	food.Description = "Weekly MARKET run"
	rent := expense(900, "Rent", 2025, 3, 1)
	salary := income(5000, "Salary", 2025, 2, 28)
	txs := []core.Transaction{food, rent, salary}

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	lo, hi := 10.0, 100.0

	cases := []struct {
		name string
		p    FilterParams
		want int
	}{
		{"no criteria", FilterParams{}, 3},
		{"type all", FilterParams{Type: core.TypeAll}, 3},
		{"incomes", FilterParams{Type: core.TypeIncome}, 1},
		{"date range with inclusive end", FilterParams{Start: &start, End: &end}, 2},
		{"category", FilterParams{Category: "Rent"}, 1},
		{"amount bounds", FilterParams{MinAmount: &lo, MaxAmount: &hi}, 1},
		{"any tag", FilterParams{Tags: []string{"x", "groceries"}}, 1},
		{"search description", FilterParams{Search: "market"}, 1},
		{"search tag", FilterParams{Search: "GROC"}, 1},
		{"search category", FilterParams{Search: "sal"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, Filter(txs, tc.p), tc.want)
		})
	}
}

func TestHistory(t *testing.T) {
	txs := []core.Transaction{
		expense(1, "A", 2025, 3, 14),
		expense(1, "B", 2025, 3, 2),
		expense(1, "C", 2025, 1, 5),
		expense(1, "D", 2024, 12, 31),
	}
	assert.Len(t, History(txs, PeriodWeek, now), 1)
	assert.Len(t, History(txs, PeriodMonth, now), 2)
	assert.Len(t, History(txs, PeriodYear, now), 3)
	assert.Len(t, History(txs, PeriodAll, now), 4)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Month")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, p)

	_, err = ParsePeriod("decade")
	assert.ErrorIs(t, err, ErrUnsupportedPeriod)
}

func TestAnalyzeBudget(t *testing.T) {
	txs := []core.Transaction{
		expense(300, "Food", 2025, 3, 1),
		expense(150, "Transport", 2025, 3, 14),
		expense(999, "Food", 2025, 3, 20), // after now
		expense(50, "Food", 2025, 2, 27),
		income(5000, "Salary", 2025, 3, 1),
	}
	a := AnalyzeBudget(txs, now)
	assert.Equal(t, 31, a.DaysInMonth)
	assert.Equal(t, 15, a.DaysElapsed)
	assert.Equal(t, 16, a.DaysRemaining)
	assert.Equal(t, 450.0, a.TotalSpent)
	assert.Equal(t, 30.0, a.DailySpendingRate)
	assert.Equal(t, 930.0, a.ProjectedMonthTotal)
	assert.InDelta(t, 48.387, a.PercentOfMonthElapsed, 0.001)
	assert.Equal(t, []core.CategoryTotal{{Name: "Food", Value: 300}, {Name: "Transport", Value: 150}}, a.CategorySpending)
}

func TestCompareMonth(t *testing.T) {
	txs := []core.Transaction{
		income(4000, "Salary", 2025, 3, 1),
		expense(600, "Food", 2025, 3, 5),
		expense(100, "Fun", 2025, 3, 6),
		income(5000, "Salary", 2025, 2, 1),
		expense(400, "Food", 2025, 2, 28),
		expense(800, "Travel", 2025, 2, 10),
	}
	c, err := Compare(txs, PeriodMonth, now)
	require.NoError(t, err)

	assert.Equal(t, 4000.0, c.Current.Income)
	assert.Equal(t, 700.0, c.Current.Expense)
	assert.Equal(t, 1200.0, c.Previous.Expense)
	assert.InDelta(t, -20.0, c.IncomeChange, 1e-9)
	assert.InDelta(t, -41.667, c.ExpenseChange, 0.001)
	assert.InDelta(t, (3300.0-3800.0)/3800.0*100, c.SavingsChange, 1e-9)

	require.Len(t, c.Categories, 3)
	assert.Equal(t, "Travel", c.Categories[0].Category) // -100%
	assert.Equal(t, "Food", c.Categories[1].Category)   // +50%
	assert.Equal(t, "Fun", c.Categories[2].Category)    // no previous spend
	assert.Zero(t, c.Categories[2].ChangePercent)
}

func TestCompareWeekAndYearWindows(t *testing.T) {
	// 2025-03-15 is a Saturday; the week starts Monday 2025-03-10.
	txs := []core.Transaction{
		expense(10, "Food", 2025, 3, 10),
		expense(20, "Food", 2025, 3, 9),
		expense(30, "Food", 2025, 3, 3),
		expense(40, "Food", 2025, 3, 2), // two weeks back
		expense(100, "Food", 2024, 3, 15),
		expense(100, "Food", 2024, 3, 16), // after the same day last year
	}
	w, err := Compare(txs, PeriodWeek, now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, w.Current.Expense)
	assert.Equal(t, 50.0, w.Previous.Expense)

	y, err := Compare(txs, PeriodYear, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, y.Current.Expense) // every 2025 entry
	assert.Equal(t, 100.0, y.Previous.Expense)

	_, err = Compare(txs, PeriodAll, now)
	assert.ErrorIs(t, err, ErrUnsupportedPeriod)
}

func TestSavingsChange(t *testing.T) {
	assert.Equal(t, 50.0, savingsChange(150, 100))
	assert.Equal(t, 50.0, savingsChange(-50, -100))
	assert.Equal(t, 100.0, savingsChange(10, 0))
	assert.Equal(t, -100.0, savingsChange(-10, 0))
	assert.Zero(t, savingsChange(0, 0))
}

func TestPatternsOverExplicitRange(t *testing.T) {
	txs := []core.Transaction{
		expense(50, "Food", 2025, 2, 10),
		expense(900, "Rent", 2025, 3, 1),
		expense(20, "Food", 2025, 3, 3),
		expense(30, "Food", 2025, 3, 10),
		expense(99, "Food", 2025, 3, 11),
		expense(77, "Food", 2025, 1, 31),
		income(1000, "Salary", 2025, 3, 1),
	}

	p, err := Patterns(txs, core.NewDate(2025, 2, 1), core.NewDate(2025, 3, 10), now)
	require.NoError(t, err)

	assert.Equal(t, "2025-02-01", p.StartDate)
	assert.Equal(t, "2025-03-10", p.EndDate)
	assert.Equal(t, []core.CategoryTotal{{Name: "Rent", Value: 900}, {Name: "Food", Value: 100}}, p.CategoryTotals)

	require.Len(t, p.MonthlyTrends, 2)
	assert.Equal(t, MonthTrend{Month: "2025-02", Categories: []core.CategoryTotal{{Name: "Food", Value: 50}}}, p.MonthlyTrends[0])
	assert.Equal(t, MonthTrend{Month: "2025-03", Categories: []core.CategoryTotal{{Name: "Rent", Value: 900}, {Name: "Food", Value: 50}}}, p.MonthlyTrends[1])

	require.Len(t, p.DailyPatterns, 7)
	assert.Equal(t, WeekdayTotal{Day: "MONDAY", Value: 100}, p.DailyPatterns[0])
	assert.Equal(t, WeekdayTotal{Day: "SATURDAY", Value: 900}, p.DailyPatterns[5])
	assert.Equal(t, WeekdayTotal{Day: "SUNDAY"}, p.DailyPatterns[6])
}

func TestPatternsDefaultWindow(t *testing.T) {
	txs := []core.Transaction{
		expense(10, "Food", 2024, 8, 31),
		expense(20, "Food", 2024, 9, 1),
		expense(30, "Food", 2025, 3, 15),
	}

	p, err := Patterns(txs, core.Date{}, core.Date{}, now)
	require.NoError(t, err)

	assert.Equal(t, "2024-09-01", p.StartDate)
	assert.Equal(t, "2025-03-15", p.EndDate)
	assert.Equal(t, []core.CategoryTotal{{Name: "Food", Value: 50}}, p.CategoryTotals)
	require.Len(t, p.MonthlyTrends, 7)
	assert.Equal(t, "2024-09", p.MonthlyTrends[0].Month)
	assert.Equal(t, "2025-03", p.MonthlyTrends[6].Month)
	assert.Empty(t, p.MonthlyTrends[3].Categories)
}

func TestPatternsRejectsInvertedRange(t *testing.T) {
	_, err := Patterns(nil, core.NewDate(2025, 3, 10), core.NewDate(2025, 3, 1), now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
