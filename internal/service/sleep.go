package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fittcha/bodii/internal/model"
)

// Sleep quality thresholds in minutes.
const (
	sleepGoodMin = 420
	sleepFairMin = 360
)

type SleepInput struct {
	ProfileID   int64
	SleptAt     time.Time
	DurationMin int
	Notes       string
}

type UpdateSleepInput struct {
	ID int64
	SleepInput
}

type ListSleepFilter struct {
	ProfileID int64
	FromDate  string
	ToDate    string
	Limit     int
}

// SleepStatusFor grades a night: 7h or more is good, 6h to 7h fair,
// anything less poor.
func SleepStatusFor(durationMin int) model.SleepStatus {
	switch {
	case durationMin >= sleepGoodMin:
		return model.SleepStatusGood
	case durationMin >= sleepFairMin:
		return model.SleepStatusFair
	default:
		return model.SleepStatusPoor
	}
}

func validateSleepStatus(s model.SleepStatus) error {
	switch s {
	case model.SleepStatusGood, model.SleepStatusFair, model.SleepStatusPoor:
		return nil
	}
	return fmt.Errorf("%w: unknown sleep status %q", ErrInvalidInput, s)
}

// LogSleep records a night of sleep, attributed to the logical day of its
// wall-clock time: a session logged at 01:30 still counts for the evening
// before. One record per (profile, logical day); logging again replaces it.
func LogSleep(db *sql.DB, in SleepInput) (int64, error) {
	if err := validateProfileID(in.ProfileID); err != nil {
		return 0, err
	}
	if err := validatePositiveInt("sleep duration", in.DurationMin); err != nil {
		return 0, err
	}
	if in.SleptAt.IsZero() {
		in.SleptAt = time.Now()
	}

	day := LogicalDay(in.SleptAt, SleepBoundaryHour(db))
	status := SleepStatusFor(in.DurationMin)
	if _, err := db.Exec(`
INSERT INTO sleep_logs(profile_id, slept_at, day_key, duration_min, status, notes)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(profile_id, day_key) DO UPDATE SET
  slept_at = excluded.slept_at,
  duration_min = excluded.duration_min,
  status = excluded.status,
  notes = excluded.notes,
  updated_at = CURRENT_TIMESTAMP
`, in.ProfileID, in.SleptAt.Format(time.RFC3339), day, in.DurationMin, string(status), strings.TrimSpace(in.Notes)); err != nil {
		return 0, fmt.Errorf("log sleep: %w", err)
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM sleep_logs WHERE profile_id = ? AND day_key = ?`, in.ProfileID, day).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve sleep log id: %w", err)
	}

	store := NewLedgerStore(db)
	bmr, tdee, err := CurrentMetabolics(db, in.ProfileID)
	if err != nil {
		return 0, err
	}
	if _, err := GetOrCreateLedger(store, in.ProfileID, day, bmr, tdee); err != nil {
		return 0, err
	}
	if _, err := UpsertLedgerSleep(store, in.ProfileID, day, &in.DurationMin, &status); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateSleepLog edits a sleep record. A changed wall-clock time can move the
// record to another logical day, in which case the ledger fields move with
// it.
func UpdateSleepLog(db *sql.DB, in UpdateSleepInput) error {
	if in.ID <= 0 {
		return fmt.Errorf("%w: sleep log id must be greater than 0", ErrInvalidInput)
	}
	if err := validateProfileID(in.ProfileID); err != nil {
		return err
	}
	if err := validatePositiveInt("sleep duration", in.DurationMin); err != nil {
		return err
	}
	if in.SleptAt.IsZero() {
		return fmt.Errorf("%w: sleep date/time is required", ErrInvalidInput)
	}

	old, err := SleepLogByID(db, in.ProfileID, in.ID)
	if err != nil {
		return err
	}
	newDay := LogicalDay(in.SleptAt, SleepBoundaryHour(db))
	if newDay != old.DayKey {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM sleep_logs WHERE profile_id = ? AND day_key = ? AND id != ?`, in.ProfileID, newDay, in.ID).Scan(&exists)
		if err == nil {
			return fmt.Errorf("%w: sleep already recorded for %s", ErrInvalidInput, newDay)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check sleep day %s: %w", newDay, err)
		}
	}

	status := SleepStatusFor(in.DurationMin)
	res, err := db.Exec(`
UPDATE sleep_logs
SET slept_at = ?, day_key = ?, duration_min = ?, status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND profile_id = ?
`, in.SleptAt.Format(time.RFC3339), newDay, in.DurationMin, string(status), strings.TrimSpace(in.Notes), in.ID, in.ProfileID)
	if err != nil {
		return fmt.Errorf("update sleep log %d: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: sleep log %d", ErrNotFound, in.ID)
	}

	return MoveLedgerSleep(NewLedgerStore(db), in.ProfileID, old.DayKey, newDay, in.DurationMin, status)
}

func DeleteSleepLog(db *sql.DB, profileID, id int64) error {
	old, err := SleepLogByID(db, profileID, id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM sleep_logs WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete sleep log %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: sleep log %d", ErrNotFound, id)
	}

	_, err = UpsertLedgerSleep(NewLedgerStore(db), profileID, old.DayKey, nil, nil)
	return err
}

func SleepLogByID(db *sql.DB, profileID, id int64) (*model.SleepLog, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: sleep log id must be greater than 0", ErrInvalidInput)
	}
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	row := db.QueryRow(`
SELECT id, profile_id, slept_at, day_key, duration_min, status, IFNULL(notes, ''), created_at, updated_at
FROM sleep_logs WHERE id = ? AND profile_id = ?
`, id, profileID)
	item, err := scanSleepLog(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: sleep log %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load sleep log %d: %w", id, err)
	}
	return item, nil
}

func ListSleepLogs(db *sql.DB, f ListSleepFilter) ([]model.SleepLog, error) {
	if err := validateProfileID(f.ProfileID); err != nil {
		return nil, err
	}
	query := `SELECT id, profile_id, slept_at, day_key, duration_min, status, IFNULL(notes, ''), created_at, updated_at FROM sleep_logs WHERE profile_id = ?`
	args := []any{f.ProfileID}
	if strings.TrimSpace(f.FromDate) != "" {
		if err := validateDayKey(f.FromDate); err != nil {
			return nil, err
		}
		query += ` AND day_key >= ?`
		args = append(args, strings.TrimSpace(f.FromDate))
	}
	if strings.TrimSpace(f.ToDate) != "" {
		if err := validateDayKey(f.ToDate); err != nil {
			return nil, err
		}
		query += ` AND day_key <= ?`
		args = append(args, strings.TrimSpace(f.ToDate))
	}

	query += ` ORDER BY day_key DESC`
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sleep logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.SleepLog, 0)
	for rows.Next() {
		item, err := scanSleepLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sleep log: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sleep logs: %w", err)
	}
	return items, nil
}

func scanSleepLog(row rowScanner) (*model.SleepLog, error) {
	var item model.SleepLog
	var status string
	var sleptRaw, createdRaw, updatedRaw string
	if err := row.Scan(&item.ID, &item.ProfileID, &sleptRaw, &item.DayKey, &item.DurationMin, &status, &item.Notes, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	item.Status = model.SleepStatus(status)
	slept, err := time.Parse(time.RFC3339, sleptRaw)
	if err != nil {
		return nil, fmt.Errorf("parse slept_at: %w", err)
	}
	item.SleptAt = slept
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdRaw)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &item, nil
}
