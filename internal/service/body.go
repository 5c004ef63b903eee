package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fittcha/bodii/internal/model"
)

type BodyMeasurementInput struct {
	ProfileID    int64
	Weight       float64
	Unit         string
	BodyFatPct   *float64
	MuscleMassKg *float64
	MeasuredAt   time.Time
	Notes        string
}

type BodyMeasurementFilter struct {
	ProfileID int64
	Date      string
	FromDate  string
	ToDate    string
	Limit     int
}

type UpdateBodyMeasurementInput struct {
	ID int64
	BodyMeasurementInput
}

func AddBodyMeasurement(db *sql.DB, in BodyMeasurementInput) (int64, error) {
	if err := validateProfileID(in.ProfileID); err != nil {
		return 0, err
	}
	weightKg, err := ConvertWeightToKg(in.Weight, in.Unit)
	if err != nil {
		return 0, err
	}
	if err := validateBodyComposition(in.BodyFatPct, in.MuscleMassKg); err != nil {
		return 0, err
	}
	if in.MeasuredAt.IsZero() {
		in.MeasuredAt = time.Now()
	}
	res, err := db.Exec(`
INSERT INTO body_measurements(profile_id, measured_at, weight_kg, body_fat_pct, muscle_mass_kg, notes)
VALUES(?, ?, ?, ?, ?, ?)
`, in.ProfileID, in.MeasuredAt.Format(time.RFC3339), weightKg, in.BodyFatPct, in.MuscleMassKg, strings.TrimSpace(in.Notes))
	if err != nil {
		return 0, fmt.Errorf("add body measurement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve body measurement id: %w", err)
	}
	if err := backfillLedgerMetabolics(db, in.ProfileID, dayKeyOf(in.MeasuredAt)); err != nil {
		return 0, err
	}
	return id, nil
}

func ListBodyMeasurements(db *sql.DB, f BodyMeasurementFilter) ([]model.BodyMeasurement, error) {
	if err := validateProfileID(f.ProfileID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("%w: --date cannot be combined with --from or --to", ErrInvalidInput)
	}
	query := `SELECT id, profile_id, measured_at, weight_kg, body_fat_pct, muscle_mass_kg, IFNULL(notes, '') FROM body_measurements WHERE profile_id = ?`
	args := []any{f.ProfileID}

	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND measured_at >= ? AND measured_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND measured_at >= ?`
		args = append(args, from)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDateEndExclusive(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND measured_at < ?`
		args = append(args, to)
	}

	query += ` ORDER BY measured_at DESC`
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list body measurements: %w", err)
	}
	defer rows.Close()

	items := make([]model.BodyMeasurement, 0)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan body measurement: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate body measurements: %w", err)
	}
	return items, nil
}

// LatestMeasurement returns the most recent measurement for a profile.
func LatestMeasurement(db *sql.DB, profileID int64) (*model.BodyMeasurement, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	row := db.QueryRow(`
SELECT id, profile_id, measured_at, weight_kg, body_fat_pct, muscle_mass_kg, IFNULL(notes, '')
FROM body_measurements WHERE profile_id = ? ORDER BY measured_at DESC, id DESC LIMIT 1
`, profileID)
	m, err := scanMeasurement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no body measurements", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load latest measurement: %w", err)
	}
	return m, nil
}

// MeasurementAsOf returns the most recent measurement taken on or before the
// given day, so historical rebuilds see the body state of that day.
func MeasurementAsOf(db *sql.DB, profileID int64, date string) (*model.BodyMeasurement, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	end, err := parseDateEndExclusive(date)
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`
SELECT id, profile_id, measured_at, weight_kg, body_fat_pct, muscle_mass_kg, IFNULL(notes, '')
FROM body_measurements WHERE profile_id = ? AND measured_at < ? ORDER BY measured_at DESC, id DESC LIMIT 1
`, profileID, end)
	m, err := scanMeasurement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no body measurements on or before %s", ErrNotFound, date)
	}
	if err != nil {
		return nil, fmt.Errorf("load measurement as of %s: %w", date, err)
	}
	return m, nil
}

func UpdateBodyMeasurement(db *sql.DB, in UpdateBodyMeasurementInput) error {
	if in.ID <= 0 {
		return fmt.Errorf("%w: measurement id must be greater than 0", ErrInvalidInput)
	}
	if err := validateProfileID(in.ProfileID); err != nil {
		return err
	}
	weightKg, err := ConvertWeightToKg(in.Weight, in.Unit)
	if err != nil {
		return err
	}
	if err := validateBodyComposition(in.BodyFatPct, in.MuscleMassKg); err != nil {
		return err
	}
	if in.MeasuredAt.IsZero() {
		return fmt.Errorf("%w: measurement date/time is required", ErrInvalidInput)
	}
	res, err := db.Exec(`
UPDATE body_measurements
SET measured_at = ?, weight_kg = ?, body_fat_pct = ?, muscle_mass_kg = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND profile_id = ?
`, in.MeasuredAt.Format(time.RFC3339), weightKg, in.BodyFatPct, in.MuscleMassKg, strings.TrimSpace(in.Notes), in.ID, in.ProfileID)
	if err != nil {
		return fmt.Errorf("update body measurement %d: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: body measurement %d", ErrNotFound, in.ID)
	}
	return backfillLedgerMetabolics(db, in.ProfileID, dayKeyOf(in.MeasuredAt))
}

func DeleteBodyMeasurement(db *sql.DB, profileID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: measurement id must be greater than 0", ErrInvalidInput)
	}
	if err := validateProfileID(profileID); err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM body_measurements WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete body measurement %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: body measurement %d", ErrNotFound, id)
	}
	return nil
}

// backfillLedgerMetabolics stamps the measurement day's ledger with BMR/TDEE
// once the profile can produce them, creating the row when the measurement is
// the day's first event. Ledgers that already carry a TDEE are left alone; a
// full recompute is an explicit rebuild.
func backfillLedgerMetabolics(db *sql.DB, profileID int64, day string) error {
	bmr, tdee, err := CurrentMetabolics(db, profileID)
	if err != nil {
		return err
	}
	if tdee.Sign() <= 0 {
		return nil
	}
	_, err = GetOrCreateLedger(NewLedgerStore(db), profileID, day, bmr, tdee)
	return err
}

func scanMeasurement(row rowScanner) (*model.BodyMeasurement, error) {
	var m model.BodyMeasurement
	var measuredRaw string
	var bodyFat, muscle sql.NullFloat64
	if err := row.Scan(&m.ID, &m.ProfileID, &measuredRaw, &m.WeightKg, &bodyFat, &muscle, &m.Notes); err != nil {
		return nil, err
	}
	measured, err := time.Parse(time.RFC3339, measuredRaw)
	if err != nil {
		return nil, fmt.Errorf("parse measured_at: %w", err)
	}
	m.MeasuredAt = measured
	if bodyFat.Valid {
		v := bodyFat.Float64
		m.BodyFatPct = &v
	}
	if muscle.Valid {
		v := muscle.Float64
		m.MuscleMassKg = &v
	}
	return &m, nil
}

func validateBodyComposition(bodyFatPct, muscleMassKg *float64) error {
	if bodyFatPct != nil {
		if *bodyFatPct < 0 || *bodyFatPct > 100 {
			return fmt.Errorf("%w: body-fat must be between 0 and 100", ErrInvalidInput)
		}
	}
	if muscleMassKg != nil {
		if *muscleMassKg <= 0 {
			return fmt.Errorf("%w: muscle mass must be greater than 0", ErrInvalidInput)
		}
	}
	return nil
}

