package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Manage sleep logs",
}

var (
	sleepDuration int
	sleepDate     string
	sleepTime     string
	sleepNotes    string
	sleepListFrom string
	sleepListTo   string
	sleepLimit    int
	sleepJSON     bool
)

var sleepLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a night of sleep",
	Long:  "Log a night of sleep at its wake-up time. Nights ending before the configured boundary hour count for the previous day; logging twice for the same day replaces the record.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sleptAt, err := parseDateTimeOrNow(sleepDate, sleepTime)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			id, err := service.LogSleep(sqldb, service.SleepInput{
				ProfileID:   p.ID,
				SleptAt:     sleptAt,
				DurationMin: sleepDuration,
				Notes:       sleepNotes,
			})
			if err != nil {
				return err
			}
			item, err := service.SleepLogByID(sqldb, p.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d min of sleep for %s (%s)\n", item.DurationMin, item.DayKey, item.Status)
			return nil
		})
	},
}

var sleepListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sleep logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			items, err := service.ListSleepLogs(sqldb, service.ListSleepFilter{
				ProfileID: p.ID,
				FromDate:  sleepListFrom,
				ToDate:    sleepListTo,
				Limit:     sleepLimit,
			})
			if err != nil {
				return err
			}
			if sleepJSON {
				return printJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDAY\tWOKE\tMIN\tSTATUS\tNOTES")
			for _, s := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%s\t%s\n",
					s.ID, s.DayKey, s.SleptAt.Local().Format("15:04"), s.DurationMin, s.Status, s.Notes)
			}
			return nil
		})
	},
}

var sleepUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a sleep log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("sleep log id", args[0])
		if err != nil {
			return err
		}
		sleptAt, err := parseDateTime(sleepDate, sleepTime)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.UpdateSleepLog(sqldb, service.UpdateSleepInput{
				ID: id,
				SleepInput: service.SleepInput{
					ProfileID:   p.ID,
					SleptAt:     sleptAt,
					DurationMin: sleepDuration,
					Notes:       sleepNotes,
				},
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated sleep log %d\n", id)
			return nil
		})
	},
}

var sleepDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sleep log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("sleep log id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.DeleteSleepLog(sqldb, p.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted sleep log %d\n", id)
			return nil
		})
	},
}

func addSleepFields(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sleepDuration, "duration", 0, "Sleep duration in minutes")
	cmd.Flags().StringVar(&sleepDate, "date", "", "Wake-up date in YYYY-MM-DD")
	cmd.Flags().StringVar(&sleepTime, "time", "", "Wake-up time in HH:MM")
	cmd.Flags().StringVar(&sleepNotes, "notes", "", "Optional notes")
}

func init() {
	rootCmd.AddCommand(sleepCmd)
	sleepCmd.AddCommand(sleepLogCmd, sleepListCmd, sleepUpdateCmd, sleepDeleteCmd)

	addSleepFields(sleepLogCmd)
	_ = sleepLogCmd.MarkFlagRequired("duration")
	addSleepFields(sleepUpdateCmd)
	_ = sleepUpdateCmd.MarkFlagRequired("duration")
	_ = sleepUpdateCmd.MarkFlagRequired("date")
	_ = sleepUpdateCmd.MarkFlagRequired("time")

	sleepListCmd.Flags().StringVar(&sleepListFrom, "from", "", "Filter from date YYYY-MM-DD")
	sleepListCmd.Flags().StringVar(&sleepListTo, "to", "", "Filter to date YYYY-MM-DD")
	sleepListCmd.Flags().IntVar(&sleepLimit, "limit", 50, "Result limit")
	sleepListCmd.Flags().BoolVar(&sleepJSON, "json", false, "Print as JSON")
}
