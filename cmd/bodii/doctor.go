package bodii

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var (
	doctorFix  bool
	doctorJSON bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the ledgers against the logged events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			report, err := service.RunDoctor(sqldb, p.ID, doctorFix)
			if err != nil {
				return err
			}
			if doctorJSON {
				if err := printJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ledgers checked: %d\n", report.LedgersChecked)
				fmt.Fprintf(out, "Drifted days: %d\n", len(report.DriftedDays))
				if len(report.DriftedDays) > 0 {
					fmt.Fprintf(out, "  %s\n", strings.Join(report.DriftedDays, ", "))
				}
				fmt.Fprintf(out, "Missing ledger days: %d\n", len(report.MissingLedgerDays))
				if len(report.MissingLedgerDays) > 0 {
					fmt.Fprintf(out, "  %s\n", strings.Join(report.MissingLedgerDays, ", "))
				}
				fmt.Fprintf(out, "Negative aggregates: %d\n", report.NegativeAggregates)
				fmt.Fprintf(out, "Net mismatches: %d\n", report.NetMismatches)
				fmt.Fprintf(out, "Orphan meal entries: %d\n", report.OrphanMealEntries)
				fmt.Fprintf(out, "Orphan events: %d\n", report.OrphanEvents)
				fmt.Fprintf(out, "Duplicate exercises: %d\n", report.DuplicateExercises)
				if report.Rebuilt {
					fmt.Fprintln(out, "Ledgers rebuilt from events.")
				}
			}
			if doctorFix && report.Rebuilt {
				// Re-check after the rebuild so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, p.ID, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Rebuild drifted ledgers from the event tables")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Print as JSON")
}
