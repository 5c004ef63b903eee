package bodii

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var ledgerShowJSON bool

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and repair the daily ledger rows",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the raw ledger row for a day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			date := time.Now().Format("2006-01-02")
			if len(args) == 1 {
				date = args[0]
			}
			led, err := service.LedgerByDate(sqldb, p.ID, date)
			if err != nil {
				return err
			}
			if ledgerShowJSON {
				return printJSON(cmd, led)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s (revision %d)\n", led.Date, led.Revision)
			fmt.Fprintf(out, "BMR: %s | TDEE: %s\n", led.BMR.Round(0), led.TDEE.Round(0))
			fmt.Fprintf(out, "In: %s kcal | Out: %s kcal | Net: %s kcal\n", led.TotalCaloriesIn, led.TotalCaloriesOut, led.NetCalories)
			fmt.Fprintf(out, "Macros: C %sg | P %sg | F %sg\n", led.TotalCarbsG, led.TotalProteinG, led.TotalFatG)
			fmt.Fprintf(out, "Exercise: %d min across %d sessions\n", led.ExerciseMinutes, led.ExerciseCount)
			if led.SleepDurationMin != nil {
				fmt.Fprintf(out, "Sleep: %d min (%s)\n", *led.SleepDurationMin, *led.SleepStatus)
			}
			fmt.Fprintf(out, "Updated: %s\n", led.UpdatedAt.Format(time.RFC3339))
			return nil
		})
	},
}

var ledgerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every ledger row for the profile",
	Long:  "Delete every ledger row for the profile. The underlying meal, exercise and sleep logs are untouched; run 'bodii ledger rebuild' to recompute.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.ResetLedgers(service.NewLedgerStore(sqldb), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledgers cleared for profile %q.\n", p.Name)
			return nil
		})
	},
}

var ledgerRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every ledger row from the logged events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.RebuildLedgers(sqldb, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledgers rebuilt for profile %q.\n", p.Name)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerResetCmd)
	ledgerCmd.AddCommand(ledgerRebuildCmd)
	ledgerShowCmd.Flags().BoolVar(&ledgerShowJSON, "json", false, "Print as JSON")
}
