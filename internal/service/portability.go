package service

import (
	"database/sql"
	"fmt"
	"strings"
)

// Export rows are keyed by profile name and food name; row ids do not
// survive a round trip. Ledgers are not exported: they are derived state and
// get rebuilt after import.

type ExportProfile struct {
	Name          string   `json:"name"`
	Sex           string   `json:"sex,omitempty"`
	BirthDate     string   `json:"birth_date,omitempty"`
	HeightCm      *float64 `json:"height_cm,omitempty"`
	ActivityLevel string   `json:"activity_level,omitempty"`
}

type ExportMeasurement struct {
	Profile      string   `json:"profile"`
	MeasuredAt   string   `json:"measured_at"`
	WeightKg     float64  `json:"weight_kg"`
	BodyFatPct   *float64 `json:"body_fat_pct,omitempty"`
	MuscleMassKg *float64 `json:"muscle_mass_kg,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type ExportFood struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand,omitempty"`
	Calories     int      `json:"calories"`
	CarbsG       float64  `json:"carbs_g"`
	ProteinG     float64  `json:"protein_g"`
	FatG         float64  `json:"fat_g"`
	FiberG       *float64 `json:"fiber_g,omitempty"`
	SugarG       *float64 `json:"sugar_g,omitempty"`
	SodiumMg     *float64 `json:"sodium_mg,omitempty"`
	ServingSizeG float64  `json:"serving_size_g"`
	ServingUnit  string   `json:"serving_unit"`
	UsageCount   int      `json:"usage_count"`
	LastUsedAt   string   `json:"last_used_at,omitempty"`
	ArchivedAt   string   `json:"archived_at,omitempty"`
}

type ExportMealEntry struct {
	Profile      string  `json:"profile"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Food         string  `json:"food,omitempty"`
	Quantity     float64 `json:"quantity"`
	QuantityUnit string  `json:"quantity_unit"`
	Calories     int     `json:"calories"`
	CarbsG       float64 `json:"carbs_g"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
	ConsumedAt   string  `json:"consumed_at"`
	Notes        string  `json:"notes,omitempty"`
}

type ExportExerciseLog struct {
	Profile        string `json:"profile"`
	ExerciseType   string `json:"exercise_type"`
	Intensity      string `json:"intensity,omitempty"`
	CaloriesBurned int    `json:"calories_burned"`
	DurationMin    int    `json:"duration_min"`
	PerformedAt    string `json:"performed_at"`
	Notes          string `json:"notes,omitempty"`
}

type ExportSleepLog struct {
	Profile     string `json:"profile"`
	SleptAt     string `json:"slept_at"`
	DayKey      string `json:"day_key"`
	DurationMin int    `json:"duration_min"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}

type ExportData struct {
	Profiles     []ExportProfile     `json:"profiles"`
	Categories   []string            `json:"categories"`
	Foods        []ExportFood        `json:"foods"`
	Measurements []ExportMeasurement `json:"body_measurements"`
	MealEntries  []ExportMealEntry   `json:"meal_entries"`
	ExerciseLogs []ExportExerciseLog `json:"exercise_logs"`
	SleepLogs    []ExportSleepLog    `json:"sleep_logs"`
	Config       map[string]string   `json:"config,omitempty"`
}

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted        int      `json:"inserted"`
	Updated         int      `json:"updated"`
	Skipped         int      `json:"skipped"`
	Conflicts       int      `json:"conflicts"`
	RebuiltProfiles int      `json:"rebuilt_profiles,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

func ExportDataSnapshot(db *sql.DB) (*ExportData, error) {
	out := &ExportData{}

	profileRows, err := db.Query(`
SELECT name, IFNULL(sex,''), IFNULL(birth_date,''), height_cm, IFNULL(activity_level,'')
FROM profiles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("export profiles: %w", err)
	}
	for profileRows.Next() {
		var p ExportProfile
		var height sql.NullFloat64
		if err := profileRows.Scan(&p.Name, &p.Sex, &p.BirthDate, &height, &p.ActivityLevel); err != nil {
			_ = profileRows.Close()
			return nil, fmt.Errorf("scan export profile: %w", err)
		}
		if height.Valid {
			v := height.Float64
			p.HeightCm = &v
		}
		out.Profiles = append(out.Profiles, p)
	}
	_ = profileRows.Close()

	catRows, err := db.Query(`SELECT name FROM meal_categories WHERE archived_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	for catRows.Next() {
		var name string
		if err := catRows.Scan(&name); err != nil {
			_ = catRows.Close()
			return nil, fmt.Errorf("scan export category: %w", err)
		}
		out.Categories = append(out.Categories, name)
	}
	_ = catRows.Close()

	foodRows, err := db.Query(`
SELECT name, brand, calories, carbs_g, protein_g, fat_g, fiber_g, sugar_g, sodium_mg,
       serving_size_g, serving_unit, usage_count, IFNULL(last_used_at,''), IFNULL(archived_at,'')
FROM foods ORDER BY name_norm ASC`)
	if err != nil {
		return nil, fmt.Errorf("export foods: %w", err)
	}
	for foodRows.Next() {
		var f ExportFood
		var fiber, sugar, sodium sql.NullFloat64
		if err := foodRows.Scan(&f.Name, &f.Brand, &f.Calories, &f.CarbsG, &f.ProteinG, &f.FatG,
			&fiber, &sugar, &sodium, &f.ServingSizeG, &f.ServingUnit, &f.UsageCount, &f.LastUsedAt, &f.ArchivedAt); err != nil {
			_ = foodRows.Close()
			return nil, fmt.Errorf("scan export food: %w", err)
		}
		if fiber.Valid {
			v := fiber.Float64
			f.FiberG = &v
		}
		if sugar.Valid {
			v := sugar.Float64
			f.SugarG = &v
		}
		if sodium.Valid {
			v := sodium.Float64
			f.SodiumMg = &v
		}
		out.Foods = append(out.Foods, f)
	}
	_ = foodRows.Close()

	bodyRows, err := db.Query(`
SELECT p.name, m.measured_at, m.weight_kg, m.body_fat_pct, m.muscle_mass_kg, IFNULL(m.notes,'')
FROM body_measurements m JOIN profiles p ON p.id = m.profile_id
ORDER BY m.measured_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("export body measurements: %w", err)
	}
	for bodyRows.Next() {
		var m ExportMeasurement
		var bf, muscle sql.NullFloat64
		if err := bodyRows.Scan(&m.Profile, &m.MeasuredAt, &m.WeightKg, &bf, &muscle, &m.Notes); err != nil {
			_ = bodyRows.Close()
			return nil, fmt.Errorf("scan export body measurement: %w", err)
		}
		if bf.Valid {
			v := bf.Float64
			m.BodyFatPct = &v
		}
		if muscle.Valid {
			v := muscle.Float64
			m.MuscleMassKg = &v
		}
		out.Measurements = append(out.Measurements, m)
	}
	_ = bodyRows.Close()

	mealRows, err := db.Query(`
SELECT p.name, m.name, c.name, IFNULL(f.name,''), m.quantity, m.quantity_unit,
       m.calories, m.carbs_g, m.protein_g, m.fat_g, m.consumed_at, IFNULL(m.notes,'')
FROM meal_entries m
JOIN profiles p ON p.id = m.profile_id
JOIN meal_categories c ON c.id = m.category_id
LEFT JOIN foods f ON f.id = m.food_id
ORDER BY m.consumed_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("export meal entries: %w", err)
	}
	for mealRows.Next() {
		var e ExportMealEntry
		if err := mealRows.Scan(&e.Profile, &e.Name, &e.Category, &e.Food, &e.Quantity, &e.QuantityUnit,
			&e.Calories, &e.CarbsG, &e.ProteinG, &e.FatG, &e.ConsumedAt, &e.Notes); err != nil {
			_ = mealRows.Close()
			return nil, fmt.Errorf("scan export meal entry: %w", err)
		}
		out.MealEntries = append(out.MealEntries, e)
	}
	_ = mealRows.Close()

	exerciseRows, err := db.Query(`
SELECT p.name, e.exercise_type, e.intensity, e.calories_burned, e.duration_min, e.performed_at, IFNULL(e.notes,'')
FROM exercise_logs e JOIN profiles p ON p.id = e.profile_id
ORDER BY e.performed_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("export exercise logs: %w", err)
	}
	for exerciseRows.Next() {
		var e ExportExerciseLog
		if err := exerciseRows.Scan(&e.Profile, &e.ExerciseType, &e.Intensity, &e.CaloriesBurned, &e.DurationMin, &e.PerformedAt, &e.Notes); err != nil {
			_ = exerciseRows.Close()
			return nil, fmt.Errorf("scan export exercise log: %w", err)
		}
		out.ExerciseLogs = append(out.ExerciseLogs, e)
	}
	_ = exerciseRows.Close()

	sleepRows, err := db.Query(`
SELECT p.name, s.slept_at, s.day_key, s.duration_min, s.status, IFNULL(s.notes,'')
FROM sleep_logs s JOIN profiles p ON p.id = s.profile_id
ORDER BY s.day_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("export sleep logs: %w", err)
	}
	for sleepRows.Next() {
		var s ExportSleepLog
		if err := sleepRows.Scan(&s.Profile, &s.SleptAt, &s.DayKey, &s.DurationMin, &s.Status, &s.Notes); err != nil {
			_ = sleepRows.Close()
			return nil, fmt.Errorf("scan export sleep log: %w", err)
		}
		out.SleepLogs = append(out.SleepLogs, s)
	}
	_ = sleepRows.Close()

	config, err := ListConfig(db)
	if err != nil {
		return nil, err
	}
	out.Config = config

	return out, nil
}

func ImportDataSnapshot(db *sql.DB, data *ExportData) (ImportReport, error) {
	return ImportDataSnapshotWithOptions(db, data, ImportOptions{Mode: ImportModeMerge})
}

// ImportDataSnapshotWithOptions loads a snapshot inside one transaction.
// After a committed import every profile named in the file has its ledgers
// rebuilt, since imported events bypass the incremental aggregator.
func ImportDataSnapshotWithOptions(db *sql.DB, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	mode := normalizeImportMode(opts.Mode)

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace && !opts.DryRun {
		if err := clearUserData(tx); err != nil {
			return report, err
		}
	}

	for _, c := range data.Categories {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if opts.DryRun {
			report.Inserted++
			continue
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO meal_categories(name, is_default) VALUES(?, 0)`, normalizeName(c)); err != nil {
			return report, fmt.Errorf("import category %q: %w", c, err)
		}
	}

	for _, p := range data.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		name := normalizeName(p.Name)
		var existingID int64
		err := tx.QueryRow(`SELECT id FROM profiles WHERE name = ?`, name).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("find profile %q: %w", p.Name, err)
		}
		exists := err == nil && existingID > 0
		if opts.DryRun {
			if exists {
				report.Updated++
			} else {
				report.Inserted++
			}
			continue
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for profile %q", p.Name)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE profiles SET sex = ?, birth_date = ?, height_cm = ?, activity_level = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, nullableString(p.Sex), nullableString(p.BirthDate), p.HeightCm, nullableString(p.ActivityLevel), existingID); err != nil {
				return report, fmt.Errorf("update profile %q: %w", p.Name, err)
			}
			report.Updated++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO profiles(name, sex, birth_date, height_cm, activity_level)
VALUES(?, ?, ?, ?, ?)`, name, nullableString(p.Sex), nullableString(p.BirthDate), p.HeightCm, nullableString(p.ActivityLevel)); err != nil {
			return report, fmt.Errorf("insert profile %q: %w", p.Name, err)
		}
		report.Inserted++
	}

	for _, f := range data.Foods {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		nameNorm := normalizeName(f.Name)
		var existingID int64
		err := tx.QueryRow(`SELECT id FROM foods WHERE name_norm = ?`, nameNorm).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("find food %q: %w", f.Name, err)
		}
		exists := err == nil && existingID > 0
		if opts.DryRun {
			if exists {
				report.Updated++
			} else {
				report.Inserted++
			}
			continue
		}
		lastUsed := nullableTimeString(f.LastUsedAt)
		archived := nullableTimeString(f.ArchivedAt)
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for food %q", f.Name)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE foods
SET name = ?, brand = ?, calories = ?, carbs_g = ?, protein_g = ?, fat_g = ?, fiber_g = ?, sugar_g = ?, sodium_mg = ?,
    serving_size_g = ?, serving_unit = ?, usage_count = ?, last_used_at = ?, archived_at = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, f.Name, f.Brand, f.Calories, f.CarbsG, f.ProteinG, f.FatG, f.FiberG, f.SugarG, f.SodiumMg,
				f.ServingSizeG, f.ServingUnit, f.UsageCount, lastUsed, archived, existingID); err != nil {
				return report, fmt.Errorf("update food %q: %w", f.Name, err)
			}
			report.Updated++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO foods(name, name_norm, brand, calories, carbs_g, protein_g, fat_g, fiber_g, sugar_g, sodium_mg, serving_size_g, serving_unit, usage_count, last_used_at, archived_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.Name, nameNorm, f.Brand, f.Calories, f.CarbsG, f.ProteinG, f.FatG, f.FiberG, f.SugarG, f.SodiumMg,
			f.ServingSizeG, f.ServingUnit, f.UsageCount, lastUsed, archived); err != nil {
			return report, fmt.Errorf("insert food %q: %w", f.Name, err)
		}
		report.Inserted++
	}

	for idx, m := range data.Measurements {
		profileID, err := ensureProfileIDTx(tx, m.Profile)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("body_measurements[%d]: %v", idx, err))
			report.Conflicts++
			continue
		}
		var existingID int64
		err = tx.QueryRow(`SELECT id FROM body_measurements WHERE profile_id = ? AND measured_at = ?`, profileID, m.MeasuredAt).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("find measurement at %s: %w", m.MeasuredAt, err)
		}
		exists := err == nil && existingID > 0
		if opts.DryRun {
			if exists {
				report.Updated++
			} else {
				report.Inserted++
			}
			continue
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for measurement at %s", m.MeasuredAt)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE body_measurements SET weight_kg = ?, body_fat_pct = ?, muscle_mass_kg = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, m.WeightKg, m.BodyFatPct, m.MuscleMassKg, nullableString(m.Notes), existingID); err != nil {
				return report, fmt.Errorf("update measurement at %s: %w", m.MeasuredAt, err)
			}
			report.Updated++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO body_measurements(profile_id, measured_at, weight_kg, body_fat_pct, muscle_mass_kg, notes)
VALUES(?, ?, ?, ?, ?, ?)`, profileID, m.MeasuredAt, m.WeightKg, m.BodyFatPct, m.MuscleMassKg, nullableString(m.Notes)); err != nil {
			return report, fmt.Errorf("insert measurement at %s: %w", m.MeasuredAt, err)
		}
		report.Inserted++
	}

	for idx, e := range data.MealEntries {
		if strings.TrimSpace(e.Category) == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("meal_entries[%d] missing category", idx))
			report.Conflicts++
			continue
		}
		profileID, err := ensureProfileIDTx(tx, e.Profile)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("meal_entries[%d]: %v", idx, err))
			report.Conflicts++
			continue
		}
		var existingID int64
		err = tx.QueryRow(`
SELECT m.id FROM meal_entries m JOIN meal_categories c ON c.id = m.category_id
WHERE m.profile_id = ? AND m.name = ? AND c.name = ? AND m.consumed_at = ?
LIMIT 1`, profileID, e.Name, normalizeName(e.Category), e.ConsumedAt).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("check existing meal entry %q: %w", e.Name, err)
		}
		exists := err == nil && existingID > 0
		if opts.DryRun {
			switch {
			case exists && mode == ImportModeSkip:
				report.Skipped++
			case exists:
				report.Updated++
			default:
				report.Inserted++
			}
			continue
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO meal_categories(name, is_default) VALUES(?, 0)`, normalizeName(e.Category)); err != nil {
			return report, fmt.Errorf("import entry category %q: %w", e.Category, err)
		}
		var categoryID int64
		if err := tx.QueryRow(`SELECT id FROM meal_categories WHERE name = ?`, normalizeName(e.Category)).Scan(&categoryID); err != nil {
			return report, fmt.Errorf("resolve entry category %q: %w", e.Category, err)
		}
		var foodID any
		if strings.TrimSpace(e.Food) != "" {
			var fid int64
			if err := tx.QueryRow(`SELECT id FROM foods WHERE name_norm = ?`, normalizeName(e.Food)).Scan(&fid); err == nil {
				foodID = fid
			}
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for meal entry %q at %s", e.Name, e.ConsumedAt)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE meal_entries
SET food_id = ?, quantity = ?, quantity_unit = ?, calories = ?, carbs_g = ?, protein_g = ?, fat_g = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, foodID, e.Quantity, e.QuantityUnit, e.Calories, e.CarbsG, e.ProteinG, e.FatG, nullableString(e.Notes), existingID); err != nil {
				return report, fmt.Errorf("merge meal entry %q: %w", e.Name, err)
			}
			report.Updated++
			continue
		}
		quantity := e.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		unit := normalizeName(e.QuantityUnit)
		if unit == "" {
			unit = "serving"
		}
		if _, err := tx.Exec(`
INSERT INTO meal_entries(profile_id, name, category_id, food_id, quantity, quantity_unit, calories, carbs_g, protein_g, fat_g, consumed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			profileID, e.Name, categoryID, foodID, quantity, unit, e.Calories, e.CarbsG, e.ProteinG, e.FatG, e.ConsumedAt, nullableString(e.Notes)); err != nil {
			return report, fmt.Errorf("insert meal entry %q: %w", e.Name, err)
		}
		report.Inserted++
	}

	for idx, e := range data.ExerciseLogs {
		profileID, err := ensureProfileIDTx(tx, e.Profile)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("exercise_logs[%d]: %v", idx, err))
			report.Conflicts++
			continue
		}
		var existingID int64
		err = tx.QueryRow(`
SELECT id FROM exercise_logs WHERE profile_id = ? AND exercise_type = ? AND performed_at = ? LIMIT 1`,
			profileID, normalizeName(e.ExerciseType), e.PerformedAt).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("check existing exercise log %q: %w", e.ExerciseType, err)
		}
		exists := err == nil && existingID > 0
		if opts.DryRun {
			switch {
			case exists && mode == ImportModeSkip:
				report.Skipped++
			case exists:
				report.Updated++
			default:
				report.Inserted++
			}
			continue
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for exercise %q at %s", e.ExerciseType, e.PerformedAt)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE exercise_logs SET intensity = ?, calories_burned = ?, duration_min = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, normalizeName(e.Intensity), e.CaloriesBurned, e.DurationMin, nullableString(e.Notes), existingID); err != nil {
				return report, fmt.Errorf("merge exercise %q: %w", e.ExerciseType, err)
			}
			report.Updated++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO exercise_logs(profile_id, exercise_type, intensity, calories_burned, duration_min, performed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
			profileID, normalizeName(e.ExerciseType), normalizeName(e.Intensity), e.CaloriesBurned, e.DurationMin, e.PerformedAt, nullableString(e.Notes)); err != nil {
			return report, fmt.Errorf("insert exercise %q: %w", e.ExerciseType, err)
		}
		report.Inserted++
	}

	for idx, s := range data.SleepLogs {
		profileID, err := ensureProfileIDTx(tx, s.Profile)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("sleep_logs[%d]: %v", idx, err))
			report.Conflicts++
			continue
		}
		var existingID int64
		err = tx.QueryRow(`SELECT id FROM sleep_logs WHERE profile_id = ? AND day_key = ?`, profileID, s.DayKey).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return report, fmt.Errorf("check existing sleep log %s: %w", s.DayKey, err)
		}
		exists := err == nil && existingID > 0
		if opts.DryRun {
			switch {
			case exists && mode == ImportModeSkip:
				report.Skipped++
			case exists:
				report.Updated++
			default:
				report.Inserted++
			}
			continue
		}
		if exists {
			switch mode {
			case ImportModeFail:
				report.Conflicts++
				return report, fmt.Errorf("import conflict for sleep log on %s", s.DayKey)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
			if _, err := tx.Exec(`
UPDATE sleep_logs SET slept_at = ?, duration_min = ?, status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, s.SleptAt, s.DurationMin, s.Status, nullableString(s.Notes), existingID); err != nil {
				return report, fmt.Errorf("merge sleep log on %s: %w", s.DayKey, err)
			}
			report.Updated++
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO sleep_logs(profile_id, slept_at, day_key, duration_min, status, notes)
VALUES(?, ?, ?, ?, ?, ?)`, profileID, s.SleptAt, s.DayKey, s.DurationMin, s.Status, nullableString(s.Notes)); err != nil {
			return report, fmt.Errorf("insert sleep log on %s: %w", s.DayKey, err)
		}
		report.Inserted++
	}

	for key, value := range data.Config {
		if _, ok := allowedConfigKeys[key]; !ok {
			continue
		}
		if opts.DryRun {
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO app_config(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value); err != nil {
			return report, fmt.Errorf("import config %q: %w", key, err)
		}
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import tx: %w", err)
	}

	for _, p := range data.Profiles {
		prof, err := ProfileByName(db, p.Name)
		if err != nil {
			continue
		}
		if err := RebuildLedgers(db, prof.ID); err != nil {
			return report, fmt.Errorf("rebuild ledgers for %q: %w", p.Name, err)
		}
		report.RebuiltProfiles++
	}
	return report, nil
}

func normalizeImportMode(mode ImportMode) ImportMode {
	switch mode {
	case ImportModeFail, ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return mode
	default:
		return ImportModeMerge
	}
}

func clearUserData(tx *sql.Tx) error {
	stmts := []string{
		`DELETE FROM daily_ledgers`,
		`DELETE FROM meal_entries`,
		`DELETE FROM exercise_logs`,
		`DELETE FROM sleep_logs`,
		`DELETE FROM body_measurements`,
		`DELETE FROM import_batches`,
		`DELETE FROM foods`,
		`DELETE FROM meal_categories WHERE is_default = 0`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("clear data for replace mode: %w", err)
		}
	}
	return nil
}

func ensureProfileIDTx(tx *sql.Tx, name string) (int64, error) {
	name = normalizeName(name)
	if name == "" {
		return 0, fmt.Errorf("profile name is required")
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO profiles(name) VALUES(?)`, name); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(`SELECT id FROM profiles WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func nullableTimeString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
