package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Observations about this month's spending",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	s, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	insights, err := s.analytics.Insights(cmd.Context())
	if err != nil {
		return err
	}
	if flagJSON {
		if insights == nil {
			insights = []core.Insight{}
		}
		return printJSON(insights)
	}

	fmt.Println()
	fmt.Println(report.RenderTitle("INSIGHTS  " + s.analytics.Now().Format("January 2006")))
	fmt.Println()
	if len(insights) == 0 {
		fmt.Println("  " + report.Muted("Nothing notable yet. Record a few transactions first."))
		return nil
	}
	for _, in := range insights {
		fmt.Printf("  %s %s\n", report.Badge(string(in.Type)), in.Title)
		fmt.Printf("       %s\n\n", report.Muted(in.Description))
	}
	return nil
}
