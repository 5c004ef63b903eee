package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage the saved food catalog",
}

var (
	foodName        string
	foodBrand       string
	foodCalories    int
	foodCarbs       float64
	foodProtein     float64
	foodFat         float64
	foodFiber       float64
	foodSugar       float64
	foodSodium      float64
	foodServingSize float64
	foodServingUnit string
	foodQuery       string
	foodAll         bool
	foodLimit       int
	foodJSON        bool
)

func foodInputFromFlags(cmd *cobra.Command) service.FoodInput {
	in := service.FoodInput{
		Name:         foodName,
		Brand:        foodBrand,
		Calories:     foodCalories,
		CarbsG:       foodCarbs,
		ProteinG:     foodProtein,
		FatG:         foodFat,
		ServingSizeG: foodServingSize,
		ServingUnit:  foodServingUnit,
	}
	if cmd.Flags().Changed("fiber") {
		in.FiberG = &foodFiber
	}
	if cmd.Flags().Changed("sugar") {
		in.SugarG = &foodSugar
	}
	if cmd.Flags().Changed("sodium") {
		in.SodiumMg = &foodSodium
	}
	return in
}

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a food with its per-serving nutrition",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateFood(sqldb, foodInputFromFlags(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food %d\n", id)
			return nil
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved foods, most used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListFoods(sqldb, service.ListFoodsFilter{
				Query:           foodQuery,
				IncludeArchived: foodAll,
				Limit:           foodLimit,
			})
			if err != nil {
				return err
			}
			if foodJSON {
				return printJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBRAND\tKCAL\tC\tP\tF\tSERVING\tUSED")
			for _, f := range items {
				serving := f.ServingUnit
				if f.ServingSizeG > 0 {
					serving = fmt.Sprintf("%s (%.0fg)", f.ServingUnit, f.ServingSizeG)
				}
				name := f.Name
				if f.ArchivedAt != nil {
					name += " (archived)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%s\t%d\n",
					f.ID, name, f.Brand, f.Calories, f.CarbsG, f.ProteinG, f.FatG, serving, f.UsageCount)
			}
			return nil
		})
	},
}

var foodUpdateCmd = &cobra.Command{
	Use:   "update <id-or-name>",
	Short: "Update a saved food",
	Long:  "Update a saved food's nutrition. Meals already logged keep the values calculated at logging time; only future logs see the change.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			f, err := service.ResolveFood(sqldb, args[0])
			if err != nil {
				return err
			}
			if err := service.UpdateFood(sqldb, f.ID, foodInputFromFlags(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food %d\n", f.ID)
			return nil
		})
	},
}

var foodArchiveCmd = &cobra.Command{
	Use:   "archive <id-or-name>",
	Short: "Archive a food so new meals cannot use it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.ArchiveFood(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived food %s\n", args[0])
			return nil
		})
	},
}

var foodRestoreCmd = &cobra.Command{
	Use:   "restore <id-or-name>",
	Short: "Restore an archived food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.RestoreFood(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored food %s\n", args[0])
			return nil
		})
	},
}

func addFoodFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&foodName, "name", "", "Food name")
	cmd.Flags().StringVar(&foodBrand, "brand", "", "Brand name")
	cmd.Flags().IntVar(&foodCalories, "calories", 0, "Calories per serving")
	cmd.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carbs grams per serving")
	cmd.Flags().Float64Var(&foodProtein, "protein", 0, "Protein grams per serving")
	cmd.Flags().Float64Var(&foodFat, "fat", 0, "Fat grams per serving")
	cmd.Flags().Float64Var(&foodFiber, "fiber", 0, "Fiber grams per serving")
	cmd.Flags().Float64Var(&foodSugar, "sugar", 0, "Sugar grams per serving")
	cmd.Flags().Float64Var(&foodSodium, "sodium", 0, "Sodium mg per serving")
	cmd.Flags().Float64Var(&foodServingSize, "serving-size", 0, "Gram weight of one serving")
	cmd.Flags().StringVar(&foodServingUnit, "serving-unit", "serving", "Serving unit label")
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodUpdateCmd, foodArchiveCmd, foodRestoreCmd)

	addFoodFields(foodAddCmd)
	_ = foodAddCmd.MarkFlagRequired("name")
	_ = foodAddCmd.MarkFlagRequired("calories")
	addFoodFields(foodUpdateCmd)
	_ = foodUpdateCmd.MarkFlagRequired("name")
	_ = foodUpdateCmd.MarkFlagRequired("calories")

	foodListCmd.Flags().StringVar(&foodQuery, "query", "", "Filter by name substring")
	foodListCmd.Flags().BoolVar(&foodAll, "all", false, "Include archived foods")
	foodListCmd.Flags().IntVar(&foodLimit, "limit", 50, "Result limit")
	foodListCmd.Flags().BoolVar(&foodJSON, "json", false, "Print as JSON")
}
