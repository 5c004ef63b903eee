package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var (
	trendFrom string
	trendTo   string
	trendDays int
	trendJSON bool
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Summarize ledgers, sleep and weight over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			from, to := trendFrom, trendTo
			if cmd.Flags().Changed("days") && (from != "" || to != "") {
				return fmt.Errorf("%w: --days cannot be combined with --from or --to", service.ErrInvalidInput)
			}
			if from == "" && to == "" {
				from, to = service.LastNDaysRange(trendDays)
			}
			if from == "" || to == "" {
				return fmt.Errorf("%w: --from and --to must be given together", service.ErrInvalidInput)
			}
			report, err := service.TrendRange(sqldb, p.ID, from, to)
			if err != nil {
				return err
			}
			if trendJSON {
				return printJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Range: %s to %s (%d active days)\n", report.FromDate, report.ToDate, report.ActiveDays)
			if report.ActiveDays == 0 {
				fmt.Fprintln(out, "No ledger entries in range.")
				return nil
			}
			fmt.Fprintf(out, "Intake: %s kcal total, %s kcal/day avg\n", report.TotalCaloriesIn, report.AverageCaloriesInDay)
			fmt.Fprintf(out, "Burned: %s kcal over %d min exercise (%d min/day avg)\n", report.TotalCaloriesOut, report.TotalExerciseMinutes, report.AverageExerciseMinutes)
			fmt.Fprintf(out, "Net: %s kcal cumulative, %s kcal/day avg\n", report.CumulativeNet, report.AverageNetDay)
			if report.HighestNetDay != nil {
				fmt.Fprintf(out, "Highest net day: %s (%s kcal)\n", report.HighestNetDay.Date, report.HighestNetDay.NetCalories)
			}
			if report.LowestNetDay != nil {
				fmt.Fprintf(out, "Lowest net day: %s (%s kcal)\n", report.LowestNetDay.Date, report.LowestNetDay.NetCalories)
			}
			if report.Sleep.TrackedDays > 0 {
				fmt.Fprintf(out, "Sleep: %d tracked days, %d min avg (%d good, %d fair, %d poor)\n",
					report.Sleep.TrackedDays, report.Sleep.AverageMin,
					report.Sleep.GoodDays, report.Sleep.FairDays, report.Sleep.PoorDays)
			}
			if len(report.Weights) > 0 {
				last := report.Weights[len(report.Weights)-1]
				fmt.Fprintf(out, "Weight: %.1f kg on %s", last.WeightKg, last.Date)
				if report.WeightChangeKg != nil {
					fmt.Fprintf(out, " (%+.1f kg over range)", *report.WeightChangeKg)
				}
				fmt.Fprintln(out)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendCmd.Flags().StringVar(&trendFrom, "from", "", "Start date YYYY-MM-DD")
	trendCmd.Flags().StringVar(&trendTo, "to", "", "End date YYYY-MM-DD")
	trendCmd.Flags().IntVar(&trendDays, "days", 7, "Trailing window ending today")
	trendCmd.Flags().BoolVar(&trendJSON, "json", false, "Print as JSON")
}
