package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's ledger and remaining calorie budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			status, err := service.DaySummary(sqldb, p.ID, todayDate)
			if err != nil {
				return err
			}
			if todayJSON {
				return printJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", status.Date)
			fmt.Fprintf(out, "BMR: %s kcal | TDEE: %s kcal\n", status.BMR.Round(0), status.TDEE.Round(0))
			fmt.Fprintf(out, "Intake: %s kcal\n", status.CaloriesIn)
			fmt.Fprintf(out, "Exercise: %s kcal burned over %d min (%d sessions)\n", status.CaloriesOut, status.ExerciseMinutes, status.ExerciseCount)
			fmt.Fprintf(out, "Net: %s kcal\n", status.NetCalories)
			fmt.Fprintf(out, "Remaining: %s kcal\n", status.RemainingCalories)
			fmt.Fprintf(out, "Macros: C %sg | P %sg | F %sg\n", status.CarbsG, status.ProteinG, status.FatG)
			if status.HasEntries {
				fmt.Fprintf(out, "Macro split: C %s%% | P %s%% | F %s%%\n", status.CarbPct, status.ProteinPct, status.FatPct)
			}
			if status.SleepDurationMin != nil {
				fmt.Fprintf(out, "Sleep: %d min (%s)\n", *status.SleepDurationMin, *status.SleepStatus)
			} else {
				fmt.Fprintln(out, "Sleep: not logged")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Print as JSON")
}
