package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage exercise logs",
}

var (
	exerciseType      string
	exerciseIntensity string
	exerciseCalories  int
	exerciseDuration  int
	exerciseDate      string
	exerciseTime      string
	exerciseNotes     string
	exerciseListDate  string
	exerciseListFrom  string
	exerciseListTo    string
	exerciseListType  string
	exerciseLimit     int
	exerciseJSON      bool
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a workout",
	RunE: func(cmd *cobra.Command, args []string) error {
		performedAt, err := parseDateTimeOrNow(exerciseDate, exerciseTime)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			id, err := service.CreateExerciseLog(sqldb, service.ExerciseLogInput{
				ProfileID:      p.ID,
				ExerciseType:   exerciseType,
				Intensity:      exerciseIntensity,
				CaloriesBurned: exerciseCalories,
				DurationMin:    exerciseDuration,
				PerformedAt:    performedAt,
				Notes:          exerciseNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise log %d\n", id)
			return nil
		})
	},
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercise logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			items, err := service.ListExerciseLogs(sqldb, service.ListExerciseFilter{
				ProfileID:    p.ID,
				Date:         exerciseListDate,
				FromDate:     exerciseListFrom,
				ToDate:       exerciseListTo,
				ExerciseType: exerciseListType,
				Limit:        exerciseLimit,
			})
			if err != nil {
				return err
			}
			if exerciseJSON {
				return printJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tTYPE\tINTENSITY\tKCAL\tMIN\tNOTES")
			for _, e := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
					e.ID, e.PerformedAt.Local().Format("2006-01-02 15:04"), e.ExerciseType, e.Intensity, e.CaloriesBurned, e.DurationMin, e.Notes)
			}
			return nil
		})
	},
}

var exerciseUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an exercise log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("exercise log id", args[0])
		if err != nil {
			return err
		}
		performedAt, err := parseDateTime(exerciseDate, exerciseTime)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.UpdateExerciseLog(sqldb, service.UpdateExerciseInput{
				ID: id,
				ExerciseLogInput: service.ExerciseLogInput{
					ProfileID:      p.ID,
					ExerciseType:   exerciseType,
					Intensity:      exerciseIntensity,
					CaloriesBurned: exerciseCalories,
					DurationMin:    exerciseDuration,
					PerformedAt:    performedAt,
					Notes:          exerciseNotes,
				},
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated exercise log %d\n", id)
			return nil
		})
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an exercise log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("exercise log id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.DeleteExerciseLog(sqldb, p.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise log %d\n", id)
			return nil
		})
	},
}

func addExerciseFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&exerciseType, "type", "", "Exercise type, e.g. running")
	cmd.Flags().StringVar(&exerciseIntensity, "intensity", "", "Intensity: low, moderate, or high")
	cmd.Flags().IntVar(&exerciseCalories, "calories", 0, "Calories burned")
	cmd.Flags().IntVar(&exerciseDuration, "duration", 0, "Duration in minutes")
	cmd.Flags().StringVar(&exerciseDate, "date", "", "Date in YYYY-MM-DD")
	cmd.Flags().StringVar(&exerciseTime, "time", "", "Time in HH:MM")
	cmd.Flags().StringVar(&exerciseNotes, "notes", "", "Optional notes")
}

func init() {
	rootCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseListCmd, exerciseUpdateCmd, exerciseDeleteCmd)

	addExerciseFields(exerciseAddCmd)
	_ = exerciseAddCmd.MarkFlagRequired("type")
	_ = exerciseAddCmd.MarkFlagRequired("calories")
	addExerciseFields(exerciseUpdateCmd)
	_ = exerciseUpdateCmd.MarkFlagRequired("type")
	_ = exerciseUpdateCmd.MarkFlagRequired("calories")
	_ = exerciseUpdateCmd.MarkFlagRequired("date")
	_ = exerciseUpdateCmd.MarkFlagRequired("time")

	exerciseListCmd.Flags().StringVar(&exerciseListDate, "date", "", "Filter by date YYYY-MM-DD")
	exerciseListCmd.Flags().StringVar(&exerciseListFrom, "from", "", "Filter from date YYYY-MM-DD")
	exerciseListCmd.Flags().StringVar(&exerciseListTo, "to", "", "Filter to date YYYY-MM-DD")
	exerciseListCmd.Flags().StringVar(&exerciseListType, "type", "", "Filter by exercise type")
	exerciseListCmd.Flags().IntVar(&exerciseLimit, "limit", 50, "Result limit")
	exerciseListCmd.Flags().BoolVar(&exerciseJSON, "json", false, "Print as JSON")
}
