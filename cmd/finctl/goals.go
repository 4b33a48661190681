package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/report"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Month-to-date progress against budgets and the savings goal",
	RunE:  runGoals,
}

func init() {
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, _ []string) error {
	s, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.goals.Load(cmd.Context())
	if err != nil {
		return err
	}
	p, err := s.analytics.GoalsProgress(cmd.Context(), g)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(p)
	}

	fmt.Println()
	fmt.Println(report.RenderTitle("GOALS  " + s.analytics.Now().Format("January 2006")))
	fmt.Println()
	fmt.Print(report.RenderTable(report.Table{
		Rows: [][]string{
			{"Monthly income", report.FormatAmount(p.Goals.MonthlyIncome)},
			{"Spent so far", report.FormatAmount(p.TotalSpent)},
			{"Saved so far", report.FormatAmount(p.CurrentSavings)},
			{"Savings goal", fmt.Sprintf("%s (%s)", report.FormatAmount(p.Goals.SavingsGoal), report.FormatPercent(p.SavingsPercentage))},
			{report.Separator},
			{"Days remaining", fmt.Sprintf("%d", p.DaysRemaining)},
			{"Daily budget", report.FormatAmount(p.DailyBudget)},
		},
	}))

	if len(p.Categories) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			over := ""
			if c.OverBudget {
				over = report.FormatAmount(c.Overage)
			}
			rows = append(rows, []string{
				c.Category,
				report.FormatAmount(c.Spent),
				report.FormatAmount(c.Amount),
				report.FormatPercent(c.Percentage),
				over,
			})
		}
		fmt.Print(report.RenderTable(report.Table{
			Title:   "Budgets",
			Headers: []string{"Category", "Spent", "Budget", "Used", "Over"},
			Rows:    rows,
		}))
	}

	if len(p.Advice) > 0 {
		fmt.Println()
		for _, a := range p.Advice {
			fmt.Println("  - " + a)
		}
	}
	return nil
}
