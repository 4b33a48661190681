package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

var flagMonths int

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly totals and spending by category",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().IntVarP(&flagMonths, "months", "n", 6, "Number of months to show")
	rootCmd.Flags().AddFlagSet(summaryCmd.Flags())
	rootCmd.AddCommand(summaryCmd)
}

type summaryOutput struct {
	Monthly    []core.MonthBucket   `json:"monthly"`
	Categories []core.CategoryTotal `json:"categories"`
}

func runSummary(cmd *cobra.Command, _ []string) error {
	if flagMonths < 1 {
		return fmt.Errorf("--months must be at least 1, got %d", flagMonths)
	}
	s, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	monthly, err := s.analytics.Monthly(cmd.Context(), flagMonths)
	if err != nil {
		return err
	}
	categories, err := s.analytics.Categories(cmd.Context(), core.TypeExpense)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(summaryOutput{Monthly: monthly, Categories: categories})
	}

	fmt.Println()
	fmt.Println(report.RenderTitle("FINTRACK  Last " + strconv.Itoa(flagMonths) + " months"))
	fmt.Println()

	var income, expense float64
	rows := make([][]string, 0, len(monthly)+2)
	for _, b := range monthly {
		income += b.Income
		expense += b.Expense
		rows = append(rows, []string{
			b.Label,
			report.FormatAmount(b.Income),
			report.FormatAmount(b.Expense),
			report.FormatAmount(b.Income - b.Expense),
		})
	}
	rows = append(rows,
		[]string{report.Separator},
		[]string{"Total", report.FormatAmount(income), report.FormatAmount(expense), report.FormatAmount(income - expense)},
	)
	fmt.Print(report.RenderTable(report.Table{
		Title:   "Monthly",
		Headers: []string{"Month", "Income", "Expense", "Net"},
		Rows:    rows,
	}))
	fmt.Println()

	if len(categories) == 0 {
		fmt.Println("  " + report.Muted("No expenses recorded."))
		return nil
	}
	var total float64
	for _, c := range categories {
		total += c.Value
	}
	catRows := make([][]string, 0, len(categories))
	for _, c := range categories {
		share := 0
		if total > 0 {
			share = int(c.Value / total * 100)
		}
		catRows = append(catRows, []string{c.Name, report.FormatAmount(c.Value), report.FormatPercent(share)})
	}
	fmt.Print(report.RenderTable(report.Table{
		Title:   "Expenses by category",
		Headers: []string{"Category", "Total", "Share"},
		Rows:    catRows,
	}))
	return nil
}
