package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage meal entries",
}

var (
	mealName     string
	mealFood     string
	mealQuantity float64
	mealUnit     string
	mealCalories int
	mealCarbs    float64
	mealProtein  float64
	mealFat      float64
	mealCategory string
	mealDate     string
	mealTime     string
	mealNotes    string
	mealListDate string
	mealListFrom string
	mealListTo   string
	mealListCat  string
	mealLimit    int
	mealJSON     bool
)

func mealInputFromFlags(profileID int64) (service.MealEntryInput, error) {
	consumedAt, err := parseDateTimeOrNow(mealDate, mealTime)
	if err != nil {
		return service.MealEntryInput{}, err
	}
	return service.MealEntryInput{
		ProfileID:    profileID,
		Name:         mealName,
		Category:     mealCategory,
		Food:         mealFood,
		Quantity:     mealQuantity,
		QuantityUnit: mealUnit,
		Calories:     mealCalories,
		CarbsG:       mealCarbs,
		ProteinG:     mealProtein,
		FatG:         mealFat,
		ConsumedAt:   consumedAt,
		Notes:        mealNotes,
	}, nil
}

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal from a saved food or free-text macros",
	Long:  "Log a meal either against a saved food (--food with --quantity, nutrition is calculated) or as free text (--name with --calories and macro flags).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			in, err := mealInputFromFlags(p.ID)
			if err != nil {
				return err
			}
			id, err := service.CreateMealEntry(sqldb, in)
			if err != nil {
				return err
			}
			entry, err := service.MealEntryByID(sqldb, p.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added meal %d: %s (%d kcal)\n", id, entry.Name, entry.Calories)
			return nil
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			items, err := service.ListMealEntries(sqldb, service.ListMealsFilter{
				ProfileID: p.ID,
				Date:      mealListDate,
				FromDate:  mealListFrom,
				ToDate:    mealListTo,
				Category:  mealListCat,
				Limit:     mealLimit,
			})
			if err != nil {
				return err
			}
			if mealJSON {
				return printJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tCATEGORY\tNAME\tQTY\tKCAL\tC\tP\tF")
			for _, m := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%.4g %s\t%d\t%.1f\t%.1f\t%.1f\n",
					m.ID, m.ConsumedAt.Local().Format("2006-01-02 15:04"), m.Category, m.Name,
					m.Quantity, m.QuantityUnit, m.Calories, m.CarbsG, m.ProteinG, m.FatG)
			}
			return nil
		})
	},
}

var mealUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a meal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			in, err := mealInputFromFlags(p.ID)
			if err != nil {
				return err
			}
			if err := service.UpdateMealEntry(sqldb, service.UpdateMealInput{
				ID:             id,
				MealEntryInput: in,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated meal %d\n", id)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.DeleteMealEntry(sqldb, p.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %d\n", id)
			return nil
		})
	},
}

func addMealFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mealName, "name", "", "Meal name (defaults to the food's name)")
	cmd.Flags().StringVar(&mealFood, "food", "", "Saved food id or name")
	cmd.Flags().Float64Var(&mealQuantity, "quantity", 1, "Quantity eaten")
	cmd.Flags().StringVar(&mealUnit, "unit", "serving", "Quantity unit: serving or g")
	cmd.Flags().IntVar(&mealCalories, "calories", 0, "Calories (free-text mode)")
	cmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Carbs grams (free-text mode)")
	cmd.Flags().Float64Var(&mealProtein, "protein", 0, "Protein grams (free-text mode)")
	cmd.Flags().Float64Var(&mealFat, "fat", 0, "Fat grams (free-text mode)")
	cmd.Flags().StringVar(&mealCategory, "category", "snacks", "Meal category")
	cmd.Flags().StringVar(&mealDate, "date", "", "Date in YYYY-MM-DD")
	cmd.Flags().StringVar(&mealTime, "time", "", "Time in HH:MM")
	cmd.Flags().StringVar(&mealNotes, "notes", "", "Optional notes")
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealUpdateCmd, mealDeleteCmd)

	addMealFields(mealAddCmd)
	addMealFields(mealUpdateCmd)
	_ = mealUpdateCmd.MarkFlagRequired("date")
	_ = mealUpdateCmd.MarkFlagRequired("time")

	mealListCmd.Flags().StringVar(&mealListDate, "date", "", "Filter by date YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListFrom, "from", "", "Filter from date YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListTo, "to", "", "Filter to date YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListCat, "category", "", "Filter by category")
	mealListCmd.Flags().IntVar(&mealLimit, "limit", 50, "Result limit")
	mealListCmd.Flags().BoolVar(&mealJSON, "json", false, "Print as JSON")
}
