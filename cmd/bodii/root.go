package bodii

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath      string
	profileName string
)

var rootCmd = &cobra.Command{
	Use:   "bodii",
	Short: "bodii tracks body composition, meals, exercise, and sleep from your terminal",
	Long:  "bodii is a local-first body tracker: it derives BMR/TDEE from your profile and keeps a per-day metabolic ledger fed by meal, exercise, and sleep logs.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "default", "Profile to operate on")
}
