package bodii

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var healthImportFile string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Import workouts and sleep from device exports",
}

var healthImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a device export file",
	Long:  "Import a JSON export of workouts and sleep sessions. Batches are deduplicated by their uuid, and items that collide with existing logs are skipped so manual entries are never overwritten.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(healthImportFile) == "" {
			return fmt.Errorf("--file is required")
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := resolveProfile(sqldb)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(healthImportFile)
			if err != nil {
				return fmt.Errorf("read device export: %w", err)
			}
			var payload service.DevicePayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("parse device export: %w", err)
			}
			report, err := service.ImportDeviceData(sqldb, p.ID, &payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Batch %s from %s: workouts=%d sleep=%d skipped=%d\n",
				report.BatchID, report.Source, report.ImportedWorkouts, report.ImportedSleep, report.Skipped)
			for _, w := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			return nil
		})
	},
}

var healthBatchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List imported device batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			batches, err := service.ListImportBatches(sqldb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tSOURCE\tKIND\tITEMS\tIMPORTED")
			for _, b := range batches {
				fmt.Fprintf(out, "%s\t%s\t%s\t%d\t%s\n", b.ID, b.Source, b.Kind, b.ItemCount, b.ImportedAt.Format(time.RFC3339))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.AddCommand(healthImportCmd, healthBatchesCmd)
	healthImportCmd.Flags().StringVar(&healthImportFile, "file", "", "Device export JSON file")
}
