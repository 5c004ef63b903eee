package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
)

type ExerciseLogInput struct {
	ProfileID      int64
	ExerciseType   string
	Intensity      string
	CaloriesBurned int
	DurationMin    int
	PerformedAt    time.Time
	Notes          string
}

type ListExerciseFilter struct {
	ProfileID    int64
	Date         string
	FromDate     string
	ToDate       string
	ExerciseType string
	Limit        int
}

type UpdateExerciseInput struct {
	ID int64
	ExerciseLogInput
}

// CreateExerciseLog records the workout and folds its contribution into the
// day's ledger.
func CreateExerciseLog(db *sql.DB, in ExerciseLogInput) (int64, error) {
	normalized, err := normalizeExerciseInput(in, false)
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`
INSERT INTO exercise_logs(profile_id, exercise_type, intensity, calories_burned, duration_min, performed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, normalized.ProfileID, normalized.ExerciseType, normalized.Intensity, normalized.CaloriesBurned, normalized.DurationMin, normalized.PerformedAt.Format(time.RFC3339), normalized.Notes)
	if err != nil {
		return 0, fmt.Errorf("add exercise log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve exercise log id: %w", err)
	}

	day := dayKeyOf(normalized.PerformedAt)
	bmr, tdee, err := CurrentMetabolics(db, normalized.ProfileID)
	if err != nil {
		return 0, err
	}
	store := NewLedgerStore(db)
	if _, err := GetOrCreateLedger(store, normalized.ProfileID, day, bmr, tdee); err != nil {
		return 0, err
	}
	if _, err := ApplyExerciseDelta(store, normalized.ProfileID, day,
		decimal.NewFromInt(int64(normalized.CaloriesBurned)), normalized.DurationMin, 1); err != nil {
		return 0, err
	}
	return id, nil
}

func ExerciseLogByID(db *sql.DB, profileID, id int64) (*model.ExerciseLog, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: exercise log id must be greater than 0", ErrInvalidInput)
	}
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	row := db.QueryRow(`
SELECT id, profile_id, exercise_type, intensity, calories_burned, duration_min, performed_at, IFNULL(notes, ''), created_at, updated_at
FROM exercise_logs WHERE id = ? AND profile_id = ?
`, id, profileID)
	item, err := scanExerciseLog(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: exercise log %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load exercise log %d: %w", id, err)
	}
	return item, nil
}

func ListExerciseLogs(db *sql.DB, f ListExerciseFilter) ([]model.ExerciseLog, error) {
	if err := validateProfileID(f.ProfileID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("%w: --date cannot be combined with --from or --to", ErrInvalidInput)
	}

	query := `SELECT id, profile_id, exercise_type, intensity, calories_burned, duration_min, performed_at, IFNULL(notes, ''), created_at, updated_at FROM exercise_logs WHERE profile_id = ?`
	args := []any{f.ProfileID}
	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at >= ? AND performed_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at >= ?`
		args = append(args, from)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDateEndExclusive(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at < ?`
		args = append(args, to)
	}
	if strings.TrimSpace(f.ExerciseType) != "" {
		query += ` AND exercise_type = ?`
		args = append(args, normalizeName(f.ExerciseType))
	}

	query += ` ORDER BY performed_at DESC`
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercise logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.ExerciseLog, 0)
	for rows.Next() {
		item, err := scanExerciseLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exercise log: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise logs: %w", err)
	}
	return items, nil
}

// UpdateExerciseLog rewrites the event and applies the difference between the
// old and new effect to the ledger: one signed delta when the day is
// unchanged, a removal plus an addition when the event moved across days.
func UpdateExerciseLog(db *sql.DB, in UpdateExerciseInput) error {
	if in.ID <= 0 {
		return fmt.Errorf("%w: exercise log id must be greater than 0", ErrInvalidInput)
	}
	normalized, err := normalizeExerciseInput(in.ExerciseLogInput, true)
	if err != nil {
		return err
	}
	old, err := ExerciseLogByID(db, in.ProfileID, in.ID)
	if err != nil {
		return err
	}

	res, err := db.Exec(`
UPDATE exercise_logs
SET exercise_type = ?, intensity = ?, calories_burned = ?, duration_min = ?, performed_at = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND profile_id = ?
`, normalized.ExerciseType, normalized.Intensity, normalized.CaloriesBurned, normalized.DurationMin, normalized.PerformedAt.Format(time.RFC3339), normalized.Notes, in.ID, in.ProfileID)
	if err != nil {
		return fmt.Errorf("update exercise log %d: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: exercise log %d", ErrNotFound, in.ID)
	}

	oldDay := dayKeyOf(old.PerformedAt)
	newDay := dayKeyOf(normalized.PerformedAt)
	store := NewLedgerStore(db)
	if oldDay == newDay {
		_, err = ApplyExerciseDelta(store, in.ProfileID, oldDay,
			decimal.NewFromInt(int64(normalized.CaloriesBurned-old.CaloriesBurned)),
			normalized.DurationMin-old.DurationMin, 0)
		return err
	}
	if _, err := ApplyExerciseDelta(store, in.ProfileID, oldDay,
		decimal.NewFromInt(int64(-old.CaloriesBurned)), -old.DurationMin, -1); err != nil {
		return err
	}
	bmr, tdee, err := CurrentMetabolics(db, in.ProfileID)
	if err != nil {
		return err
	}
	if _, err := GetOrCreateLedger(store, in.ProfileID, newDay, bmr, tdee); err != nil {
		return err
	}
	_, err = ApplyExerciseDelta(store, in.ProfileID, newDay,
		decimal.NewFromInt(int64(normalized.CaloriesBurned)), normalized.DurationMin, 1)
	return err
}

func DeleteExerciseLog(db *sql.DB, profileID, id int64) error {
	old, err := ExerciseLogByID(db, profileID, id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM exercise_logs WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete exercise log %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: exercise log %d", ErrNotFound, id)
	}

	_, err = ApplyExerciseDelta(NewLedgerStore(db), profileID, dayKeyOf(old.PerformedAt),
		decimal.NewFromInt(int64(-old.CaloriesBurned)), -old.DurationMin, -1)
	return err
}

func normalizeExerciseInput(in ExerciseLogInput, requireTime bool) (ExerciseLogInput, error) {
	if err := validateProfileID(in.ProfileID); err != nil {
		return in, err
	}
	in.ExerciseType = normalizeName(in.ExerciseType)
	if in.ExerciseType == "" {
		return in, fmt.Errorf("%w: exercise type is required", ErrInvalidInput)
	}
	if err := validatePositiveInt("calories burned", in.CaloriesBurned); err != nil {
		return in, err
	}
	if err := validateNonNegativeInt("duration", in.DurationMin); err != nil {
		return in, err
	}
	in.Intensity = normalizeName(in.Intensity)
	switch model.Intensity(in.Intensity) {
	case "", model.IntensityLow, model.IntensityModerate, model.IntensityHigh:
	default:
		return in, fmt.Errorf("%w: intensity must be low, moderate or high", ErrInvalidInput)
	}
	if in.PerformedAt.IsZero() {
		if requireTime {
			return in, fmt.Errorf("%w: performed date/time is required", ErrInvalidInput)
		}
		in.PerformedAt = time.Now()
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return in, nil
}

func scanExerciseLog(row rowScanner) (*model.ExerciseLog, error) {
	var item model.ExerciseLog
	var intensity string
	var performedRaw, createdRaw, updatedRaw string
	if err := row.Scan(&item.ID, &item.ProfileID, &item.ExerciseType, &intensity, &item.CaloriesBurned, &item.DurationMin, &performedRaw, &item.Notes, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	item.Intensity = model.Intensity(intensity)
	performed, err := time.Parse(time.RFC3339, performedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse performed_at: %w", err)
	}
	item.PerformedAt = performed
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdRaw)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &item, nil
}
