package bodii

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the tracked profile",
}

var (
	profileSex      string
	profileBirth    string
	profileHeight   float64
	profileActivity string
	profileShowJSON bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set profile attributes used for BMR/TDEE",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			in := service.SetProfileInput{ID: p.ID}
			if cmd.Flags().Changed("sex") {
				in.Sex = &profileSex
			}
			if cmd.Flags().Changed("birth-date") {
				in.BirthDate = &profileBirth
			}
			if cmd.Flags().Changed("height") {
				in.HeightCm = &profileHeight
			}
			if cmd.Flags().Changed("activity") {
				in.ActivityLevel = &profileActivity
			}
			if err := service.SetProfile(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile %q\n", p.Name)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile and its current metabolic numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			bmr, tdee, err := service.CurrentMetabolics(sqldb, p.ID)
			if err != nil {
				return err
			}
			if profileShowJSON {
				out := map[string]any{
					"name": p.Name,
					"bmr":  bmr,
					"tdee": tdee,
				}
				if p.Sex != nil {
					out["sex"] = *p.Sex
				}
				if p.BirthDate != nil {
					out["birth_date"] = p.BirthDate.Format("2006-01-02")
				}
				if p.HeightCm != nil {
					out["height_cm"] = *p.HeightCm
				}
				if p.ActivityLevel != nil {
					out["activity_level"] = *p.ActivityLevel
				}
				return printJSON(cmd, out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\n", p.Name)
			if p.Sex != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Sex: %s\n", *p.Sex)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Sex: not set")
			}
			if p.BirthDate != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Birth date: %s\n", p.BirthDate.Format("2006-01-02"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Birth date: not set")
			}
			if p.HeightCm != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Height: %.1f cm\n", *p.HeightCm)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Height: not set")
			}
			if p.ActivityLevel != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Activity: %s\n", *p.ActivityLevel)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Activity: not set")
			}
			if bmr.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "BMR/TDEE: incomplete profile, log a weight and fill the fields above")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "BMR: %s kcal/day\n", bmr.Round(0))
				fmt.Fprintf(cmd.OutOrStdout(), "TDEE: %s kcal/day\n", tdee.Round(0))
			}
			return nil
		})
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			profiles, err := service.ListProfiles(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME")
			for _, p := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", p.ID, p.Name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileListCmd)

	profileSetCmd.Flags().StringVar(&profileSex, "sex", "", "Sex: male or female")
	profileSetCmd.Flags().StringVar(&profileBirth, "birth-date", "", "Birth date YYYY-MM-DD")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "", "Activity level: sedentary, light, moderate, active, or very_active")
	profileShowCmd.Flags().BoolVar(&profileShowJSON, "json", false, "Print as JSON")
}
