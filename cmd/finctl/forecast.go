package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/analytics"
	"fintrack/internal/report"
)

var (
	flagForecastMonths int
	flagNoRecurring    bool
	flagSavingsGoal    float64
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project income, expenses and savings for the coming months",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().IntVarP(&flagForecastMonths, "months", "n", 0, "Months to project (default from FORECAST_DEFAULT_MONTHS)")
	forecastCmd.Flags().BoolVar(&flagNoRecurring, "no-recurring", false, "Ignore recurring expenses")
	forecastCmd.Flags().Float64Var(&flagSavingsGoal, "savings-goal", 0, "Target cumulative savings; reports months needed")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	if flagForecastMonths < 0 || flagForecastMonths > analytics.MaxForecastMonths {
		return fmt.Errorf("--months must be between 0 and %d", analytics.MaxForecastMonths)
	}
	if flagSavingsGoal < 0 {
		return fmt.Errorf("--savings-goal cannot be negative")
	}

	params := analytics.ForecastParams{
		Months:           flagForecastMonths,
		IncludeRecurring: !flagNoRecurring,
	}
	if cmd.Flags().Changed("savings-goal") {
		goal := flagSavingsGoal
		params.SavingsGoal = &goal
	}

	s, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.analytics.Forecast(cmd.Context(), params)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(f)
	}

	fmt.Println()
	fmt.Println(report.RenderTitle("FORECAST"))
	fmt.Println()
	fmt.Print(report.RenderTable(report.Table{
		Headers: []string{"Baseline", "Monthly"},
		Rows: [][]string{
			{"Average income", report.FormatAmount(f.AvgMonthlyIncome)},
			{"Average expense", report.FormatAmount(f.AvgMonthlyExpense)},
			{"Recurring expenses", report.FormatAmount(f.RecurringExpenses)},
			{report.Separator},
			{"Savings", report.FormatAmount(f.MonthlySavings)},
			{"Net to date", report.FormatAmount(f.CurrentNet)},
		},
	}))
	fmt.Println()

	rows := make([][]string, 0, len(f.Months))
	for _, m := range f.Months {
		rows = append(rows, []string{
			m.Month,
			report.FormatAmount(m.ProjectedIncome),
			report.FormatAmount(m.ProjectedExpense),
			report.FormatAmount(m.MonthlySavings),
			report.FormatAmount(m.CumulativeSavings),
		})
	}
	fmt.Print(report.RenderTable(report.Table{
		Title:   "Projection",
		Headers: []string{"Month", "Income", "Expense", "Savings", "Cumulative"},
		Rows:    rows,
	}))

	if params.SavingsGoal != nil {
		fmt.Println()
		switch {
		case f.MonthsToGoal == nil:
			fmt.Printf("  Goal %s is not reachable at the current savings rate %s.\n",
				report.FormatAmount(*params.SavingsGoal), report.Signed(f.MonthlySavings))
		default:
			fmt.Printf("  Goal %s reached in %d months.\n",
				report.FormatAmount(*params.SavingsGoal), *f.MonthsToGoal)
		}
	}
	return nil
}
