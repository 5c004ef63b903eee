package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// DoctorReport is the result of checking the ledgers against the event
// tables they are derived from.
type DoctorReport struct {
	LedgersChecked     int      `json:"ledgers_checked"`
	DriftedDays        []string `json:"drifted_days,omitempty"`
	MissingLedgerDays  []string `json:"missing_ledger_days,omitempty"`
	NegativeAggregates int      `json:"negative_aggregates"`
	NetMismatches      int      `json:"net_mismatches"`
	OrphanMealEntries  int      `json:"orphan_meal_entries"`
	OrphanEvents       int      `json:"orphan_events"`
	DuplicateExercises int      `json:"duplicate_exercises"`
	Rebuilt            bool     `json:"rebuilt,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return len(r.DriftedDays) == 0 && len(r.MissingLedgerDays) == 0 &&
		r.NegativeAggregates == 0 && r.NetMismatches == 0 &&
		r.OrphanMealEntries == 0 && r.OrphanEvents == 0
}

// dayAggregate is one day's expected ledger contribution, summed from the
// raw event tables.
type dayAggregate struct {
	caloriesIn       decimal.Decimal
	carbsG           decimal.Decimal
	proteinG         decimal.Decimal
	fatG             decimal.Decimal
	caloriesOut      decimal.Decimal
	exerciseMinutes  int
	exerciseCount    int
	sleepDurationMin *int
	sleepStatus      *model.SleepStatus
}

// RunDoctor recomputes every expected ledger from the event streams and
// compares it to what is stored. With fix set, any profile whose ledgers
// drifted is rebuilt from scratch.
func RunDoctor(db *sql.DB, profileID int64, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := validateProfileID(profileID); err != nil {
		return report, err
	}

	if err := db.QueryRow(`
SELECT COUNT(1) FROM meal_entries m LEFT JOIN meal_categories c ON c.id = m.category_id
WHERE m.profile_id = ? AND c.id IS NULL
`, profileID).Scan(&report.OrphanMealEntries); err != nil {
		return report, fmt.Errorf("doctor orphan meal check: %w", err)
	}
	if err := db.QueryRow(`
SELECT
  (SELECT COUNT(1) FROM meal_entries m LEFT JOIN profiles p ON p.id = m.profile_id WHERE p.id IS NULL) +
  (SELECT COUNT(1) FROM exercise_logs e LEFT JOIN profiles p ON p.id = e.profile_id WHERE p.id IS NULL) +
  (SELECT COUNT(1) FROM sleep_logs s LEFT JOIN profiles p ON p.id = s.profile_id WHERE p.id IS NULL)
`).Scan(&report.OrphanEvents); err != nil {
		return report, fmt.Errorf("doctor orphan event check: %w", err)
	}
	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt
  FROM exercise_logs
  WHERE profile_id = ?
  GROUP BY exercise_type, performed_at, calories_burned
  HAVING cnt > 1
)
`, profileID).Scan(&report.DuplicateExercises); err != nil {
		return report, fmt.Errorf("doctor duplicate exercise check: %w", err)
	}

	expected, err := collectDayAggregates(db, profileID)
	if err != nil {
		return report, err
	}
	ledgers, err := allLedgers(db, profileID)
	if err != nil {
		return report, err
	}
	report.LedgersChecked = len(ledgers)

	stored := make(map[string]*model.DailyLedger, len(ledgers))
	for i := range ledgers {
		led := &ledgers[i]
		stored[led.Date] = led

		if led.TotalCaloriesIn.IsNegative() || led.TotalCaloriesOut.IsNegative() ||
			led.TotalCarbsG.IsNegative() || led.TotalProteinG.IsNegative() || led.TotalFatG.IsNegative() ||
			led.ExerciseMinutes < 0 || led.ExerciseCount < 0 {
			report.NegativeAggregates++
		}
		if !led.NetCalories.Equal(led.TotalCaloriesIn.Sub(led.TDEE)) {
			report.NetMismatches++
		}
		agg := expected[led.Date]
		if agg == nil {
			agg = &dayAggregate{}
		}
		if ledgerDrifted(led, agg) {
			report.DriftedDays = append(report.DriftedDays, led.Date)
		}
	}
	for day := range expected {
		if _, ok := stored[day]; !ok {
			report.MissingLedgerDays = append(report.MissingLedgerDays, day)
		}
	}
	sort.Strings(report.DriftedDays)
	sort.Strings(report.MissingLedgerDays)

	if fix && (len(report.DriftedDays) > 0 || len(report.MissingLedgerDays) > 0 ||
		report.NegativeAggregates > 0 || report.NetMismatches > 0) {
		if err := RebuildLedgers(db, profileID); err != nil {
			return report, err
		}
		report.Rebuilt = true
	}
	return report, nil
}

// RebuildLedgers drops every ledger row for the profile and replays all
// events in day order, measurement days included. Metabolic snapshots are
// resolved per day, so a rebuild after correcting an old measurement yields
// the corrected history.
func RebuildLedgers(db *sql.DB, profileID int64) error {
	if err := validateProfileID(profileID); err != nil {
		return err
	}
	expected, err := collectDayAggregates(db, profileID)
	if err != nil {
		return err
	}
	measured, err := measurementDayKeys(db, profileID)
	if err != nil {
		return err
	}
	store := NewLedgerStore(db)
	if err := ResetLedgers(store, profileID); err != nil {
		return err
	}

	days := make([]string, 0, len(expected)+len(measured))
	for day := range expected {
		days = append(days, day)
	}
	for _, day := range measured {
		if _, ok := expected[day]; !ok {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	for _, day := range days {
		snap, err := MetabolicsAsOf(db, profileID, day)
		if err != nil {
			return err
		}
		agg := expected[day]
		if agg == nil {
			// Measurement-only day: the ledger exists iff the metabolics it
			// carries were computable.
			if snap.TDEE.Sign() > 0 {
				if _, err := GetOrCreateLedger(store, profileID, day, snap.BMR, snap.TDEE); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := GetOrCreateLedger(store, profileID, day, snap.BMR, snap.TDEE); err != nil {
			return err
		}
		if agg.exerciseCount > 0 || !agg.caloriesOut.IsZero() {
			if _, err := ApplyExerciseDelta(store, profileID, day, agg.caloriesOut, agg.exerciseMinutes, agg.exerciseCount); err != nil {
				return err
			}
		}
		if !agg.caloriesIn.IsZero() || !agg.carbsG.IsZero() || !agg.proteinG.IsZero() || !agg.fatG.IsZero() {
			if _, err := ApplyNutritionContribution(store, profileID, day, agg.caloriesIn, agg.carbsG, agg.proteinG, agg.fatG); err != nil {
				return err
			}
		}
		if agg.sleepDurationMin != nil {
			if _, err := UpsertLedgerSleep(store, profileID, day, agg.sleepDurationMin, agg.sleepStatus); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectDayAggregates(db *sql.DB, profileID int64) (map[string]*dayAggregate, error) {
	out := make(map[string]*dayAggregate)
	at := func(day string) *dayAggregate {
		agg, ok := out[day]
		if !ok {
			agg = &dayAggregate{}
			out[day] = agg
		}
		return agg
	}

	rows, err := db.Query(`SELECT consumed_at, calories, carbs_g, protein_g, fat_g FROM meal_entries WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("collect meal entries: %w", err)
	}
	for rows.Next() {
		var consumedRaw string
		var calories int
		var carbs, protein, fat float64
		if err := rows.Scan(&consumedRaw, &calories, &carbs, &protein, &fat); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan meal entry: %w", err)
		}
		consumed, err := time.Parse(time.RFC3339, consumedRaw)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse consumed_at %q: %w", consumedRaw, err)
		}
		agg := at(dayKeyOf(consumed))
		agg.caloriesIn = agg.caloriesIn.Add(decimal.NewFromInt(int64(calories)))
		agg.carbsG = agg.carbsG.Add(decimal.NewFromFloat(carbs))
		agg.proteinG = agg.proteinG.Add(decimal.NewFromFloat(protein))
		agg.fatG = agg.fatG.Add(decimal.NewFromFloat(fat))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate meal entries: %w", err)
	}
	rows.Close()

	rows, err = db.Query(`SELECT performed_at, calories_burned, duration_min FROM exercise_logs WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("collect exercise logs: %w", err)
	}
	for rows.Next() {
		var performedRaw string
		var calories, minutes int
		if err := rows.Scan(&performedRaw, &calories, &minutes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan exercise log: %w", err)
		}
		performed, err := time.Parse(time.RFC3339, performedRaw)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse performed_at %q: %w", performedRaw, err)
		}
		agg := at(dayKeyOf(performed))
		agg.caloriesOut = agg.caloriesOut.Add(decimal.NewFromInt(int64(calories)))
		agg.exerciseMinutes += minutes
		agg.exerciseCount++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate exercise logs: %w", err)
	}
	rows.Close()

	rows, err = db.Query(`SELECT day_key, duration_min, status FROM sleep_logs WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("collect sleep logs: %w", err)
	}
	for rows.Next() {
		var day, status string
		var minutes int
		if err := rows.Scan(&day, &minutes, &status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sleep log: %w", err)
		}
		agg := at(day)
		m := minutes
		agg.sleepDurationMin = &m
		s := model.SleepStatus(status)
		agg.sleepStatus = &s
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sleep logs: %w", err)
	}
	rows.Close()

	return out, nil
}

func measurementDayKeys(db *sql.DB, profileID int64) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT substr(measured_at, 1, 10) FROM body_measurements WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("collect measurement days: %w", err)
	}
	defer rows.Close()

	days := make([]string, 0)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan measurement day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurement days: %w", err)
	}
	return days, nil
}

func allLedgers(db *sql.DB, profileID int64) ([]model.DailyLedger, error) {
	rows, err := db.Query(`SELECT `+ledgerColumns+` FROM daily_ledgers WHERE profile_id = ? ORDER BY date`, profileID)
	if err != nil {
		return nil, fmt.Errorf("load ledgers: %w", err)
	}
	defer rows.Close()

	ledgers := make([]model.DailyLedger, 0)
	for rows.Next() {
		led, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		ledgers = append(ledgers, *led)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return ledgers, nil
}

func ledgerDrifted(led *model.DailyLedger, agg *dayAggregate) bool {
	if !led.TotalCaloriesIn.Equal(agg.caloriesIn) ||
		!led.TotalCaloriesOut.Equal(agg.caloriesOut) ||
		!led.TotalCarbsG.Equal(agg.carbsG) ||
		!led.TotalProteinG.Equal(agg.proteinG) ||
		!led.TotalFatG.Equal(agg.fatG) ||
		led.ExerciseMinutes != agg.exerciseMinutes ||
		led.ExerciseCount != agg.exerciseCount {
		return true
	}
	if (led.SleepDurationMin == nil) != (agg.sleepDurationMin == nil) {
		return true
	}
	if led.SleepDurationMin != nil && *led.SleepDurationMin != *agg.sleepDurationMin {
		return true
	}
	return false
}

func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("%w: db path is required", ErrInvalidInput)
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("%w: backup output path is required", ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("%w: backup path and db path are required", ErrInvalidInput)
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	checksumFile := backupPath + ".sha256"
	if expected, err := os.ReadFile(checksumFile); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
