package bodii

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fittcha/bodii/internal/service"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local data (json or csv)",
	Long:  "Export local data. The json format is a full snapshot of every profile's history; csv covers only the active profile's meal entries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		return withDB(func(sqldb *sql.DB) error {
			switch strings.ToLower(strings.TrimSpace(exportFormat)) {
			case "json":
				data, err := service.ExportDataSnapshot(sqldb)
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(data, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export json: %w", err)
				}
				if err := os.WriteFile(exportOut, b, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
			case "csv":
				p, err := resolveProfile(sqldb)
				if err != nil {
					return err
				}
				meals, err := service.ListMealEntries(sqldb, service.ListMealsFilter{ProfileID: p.ID, Limit: 1000000})
				if err != nil {
					return err
				}
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create export csv: %w", err)
				}
				defer f.Close()
				w := csv.NewWriter(f)
				defer w.Flush()
				if err := w.Write([]string{"name", "category", "quantity", "quantity_unit", "calories", "carbs_g", "protein_g", "fat_g", "consumed_at", "notes"}); err != nil {
					return fmt.Errorf("write export csv header: %w", err)
				}
				for _, m := range meals {
					record := []string{
						m.Name,
						m.Category,
						strconv.FormatFloat(m.Quantity, 'f', -1, 64),
						string(m.QuantityUnit),
						strconv.Itoa(m.Calories),
						strconv.FormatFloat(m.CarbsG, 'f', -1, 64),
						strconv.FormatFloat(m.ProteinG, 'f', -1, 64),
						strconv.FormatFloat(m.FatG, 'f', -1, 64),
						m.ConsumedAt.Format(time.RFC3339),
						m.Notes,
					}
					if err := w.Write(record); err != nil {
						return fmt.Errorf("write export csv row: %w", err)
					}
				}
			default:
				return fmt.Errorf("unsupported --format %q (use json or csv)", exportFormat)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported data to %s\n", exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import local data (json or csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		return withDB(func(sqldb *sql.DB) error {
			switch strings.ToLower(strings.TrimSpace(importFormat)) {
			case "json":
				raw, err := os.ReadFile(importIn)
				if err != nil {
					return fmt.Errorf("read import file: %w", err)
				}
				var payload service.ExportData
				if err := json.Unmarshal(raw, &payload); err != nil {
					return fmt.Errorf("parse import json: %w", err)
				}
				report, err := service.ImportDataSnapshotWithOptions(sqldb, &payload, service.ImportOptions{
					Mode:   service.ImportMode(strings.ToLower(strings.TrimSpace(importMode))),
					DryRun: importDryRun,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Import report: inserted=%d updated=%d skipped=%d conflicts=%d rebuilt_profiles=%d\n",
					report.Inserted, report.Updated, report.Skipped, report.Conflicts, report.RebuiltProfiles)
				for _, w := range report.Warnings {
					fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
				}
			case "csv":
				p, err := resolveProfile(sqldb)
				if err != nil {
					return err
				}
				if err := importMealCSV(sqldb, p.ID, importIn, importDryRun); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported --format %q (use json or csv)", importFormat)
			}
			if importDryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry-run import validated %s\n", importIn)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported data from %s\n", importIn)
			return nil
		})
	},
}

func importMealCSV(sqldb *sql.DB, profileID int64, path string, dryRun bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read import csv: %w", err)
	}
	if len(records) <= 1 {
		return fmt.Errorf("import csv contains no data rows")
	}
	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) != 10 {
			return fmt.Errorf("csv row %d has %d columns, expected 10", i+1, len(row))
		}
		quantity, _ := strconv.ParseFloat(row[2], 64)
		kcal, _ := strconv.Atoi(row[4])
		carbs, _ := strconv.ParseFloat(row[5], 64)
		protein, _ := strconv.ParseFloat(row[6], 64)
		fat, _ := strconv.ParseFloat(row[7], 64)
		consumed, err := parseCSVTime(row[8])
		if err != nil {
			return fmt.Errorf("csv row %d consumed_at: %w", i+1, err)
		}
		if dryRun {
			continue
		}
		if _, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
			ProfileID:    profileID,
			Name:         row[0],
			Category:     row[1],
			Quantity:     quantity,
			QuantityUnit: row[3],
			Calories:     kcal,
			CarbsG:       carbs,
			ProteinG:     protein,
			FatG:         fat,
			ConsumedAt:   consumed,
			Notes:        row[9],
		}); err != nil {
			return fmt.Errorf("import csv row %d: %w", i+1, err)
		}
	}
	return nil
}

func parseCSVTime(value string) (t time.Time, err error) {
	layouts := []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"}
	for _, l := range layouts {
		t, err = time.Parse(l, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path")
	importCmd.Flags().StringVar(&importFormat, "format", "json", "Import format: json or csv")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input file path")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "Import mode for JSON: fail|skip|merge|replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without writing data")
}
