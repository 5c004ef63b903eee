package bodii

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var bodyCmd = &cobra.Command{
	Use:   "body",
	Short: "Manage body measurements",
}

var (
	bodyWeight   float64
	bodyUnit     string
	bodyFat      float64
	bodyMuscle   float64
	bodyDate     string
	bodyTime     string
	bodyNotes    string
	bodyListFrom string
	bodyListTo   string
	bodyListDate string
	bodyLimit    int
	bodyJSON     bool
)

func bodyInputFromFlags(cmd *cobra.Command, sqldb *sql.DB, profileID int64) (service.BodyMeasurementInput, error) {
	measuredAt, err := parseDateTimeOrNow(bodyDate, bodyTime)
	if err != nil {
		return service.BodyMeasurementInput{}, err
	}
	unit := bodyUnit
	if !cmd.Flags().Changed("unit") {
		unit = service.WeightUnit(sqldb)
	}
	in := service.BodyMeasurementInput{
		ProfileID:  profileID,
		Weight:     bodyWeight,
		Unit:       unit,
		MeasuredAt: measuredAt,
		Notes:      bodyNotes,
	}
	if cmd.Flags().Changed("body-fat") {
		in.BodyFatPct = &bodyFat
	}
	if cmd.Flags().Changed("muscle-mass") {
		in.MuscleMassKg = &bodyMuscle
	}
	return in, nil
}

var bodyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a body measurement",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			in, err := bodyInputFromFlags(cmd, sqldb, p.ID)
			if err != nil {
				return err
			}
			id, err := service.AddBodyMeasurement(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added measurement %d\n", id)
			return nil
		})
	},
}

var bodyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List body measurements",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			items, err := service.ListBodyMeasurements(sqldb, service.BodyMeasurementFilter{
				ProfileID: p.ID,
				Date:      bodyListDate,
				FromDate:  bodyListFrom,
				ToDate:    bodyListTo,
				Limit:     bodyLimit,
			})
			if err != nil {
				return err
			}
			if bodyJSON {
				return printJSON(cmd, items)
			}
			unit := service.WeightUnit(sqldb)
			fmt.Fprintf(cmd.OutOrStdout(), "ID\tDATE\tWEIGHT_%s\tBODY_FAT%%\tMUSCLE_KG\tNOTES\n", strings.ToUpper(unit))
			for _, m := range items {
				w, err := service.WeightFromKg(m.WeightKg, unit)
				if err != nil {
					return err
				}
				bf := "-"
				if m.BodyFatPct != nil {
					bf = fmt.Sprintf("%.1f", *m.BodyFatPct)
				}
				muscle := "-"
				if m.MuscleMassKg != nil {
					muscle = fmt.Sprintf("%.1f", *m.MuscleMassKg)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%.1f\t%s\t%s\t%s\n",
					m.ID, m.MeasuredAt.Local().Format("2006-01-02 15:04"), w, bf, muscle, m.Notes)
			}
			return nil
		})
	},
}

var bodyUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a body measurement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("measurement id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			in, err := bodyInputFromFlags(cmd, sqldb, p.ID)
			if err != nil {
				return err
			}
			if err := service.UpdateBodyMeasurement(sqldb, service.UpdateBodyMeasurementInput{
				ID:                   id,
				BodyMeasurementInput: in,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated measurement %d\n", id)
			return nil
		})
	},
}

var bodyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a body measurement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("measurement id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.DeleteBodyMeasurement(sqldb, p.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted measurement %d\n", id)
			return nil
		})
	},
}

func addBodyFields(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&bodyWeight, "weight", 0, "Weight value")
	cmd.Flags().StringVar(&bodyUnit, "unit", "kg", "Weight unit: kg or lb (default from config)")
	cmd.Flags().Float64Var(&bodyFat, "body-fat", 0, "Body fat percent")
	cmd.Flags().Float64Var(&bodyMuscle, "muscle-mass", 0, "Muscle mass in kg")
	cmd.Flags().StringVar(&bodyDate, "date", "", "Date in YYYY-MM-DD")
	cmd.Flags().StringVar(&bodyTime, "time", "", "Time in HH:MM")
	cmd.Flags().StringVar(&bodyNotes, "notes", "", "Optional notes")
}

func init() {
	rootCmd.AddCommand(bodyCmd)
	bodyCmd.AddCommand(bodyAddCmd, bodyListCmd, bodyUpdateCmd, bodyDeleteCmd)

	addBodyFields(bodyAddCmd)
	_ = bodyAddCmd.MarkFlagRequired("weight")
	addBodyFields(bodyUpdateCmd)
	_ = bodyUpdateCmd.MarkFlagRequired("weight")

	bodyListCmd.Flags().StringVar(&bodyListDate, "date", "", "Filter by date YYYY-MM-DD")
	bodyListCmd.Flags().StringVar(&bodyListFrom, "from", "", "Filter from date YYYY-MM-DD")
	bodyListCmd.Flags().StringVar(&bodyListTo, "to", "", "Filter to date YYYY-MM-DD")
	bodyListCmd.Flags().IntVar(&bodyLimit, "limit", 50, "Result limit")
	bodyListCmd.Flags().BoolVar(&bodyJSON, "json", false, "Print as JSON")
}
