package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/quantity"
)

// LedgerStore is the storage surface the ledger aggregator works against.
type LedgerStore interface {
	// LoadLedger returns the ledger for (profile, day), or (nil, nil) when no
	// row exists yet.
	LoadLedger(profileID int64, day string) (*model.DailyLedger, error)
	// SaveLedger inserts the ledger when its ID is 0 and updates it
	// otherwise. An update whose stored revision no longer matches the
	// loaded one fails with ErrLedgerConflict.
	SaveLedger(led *model.DailyLedger) error
	DeleteAllLedgers(profileID int64) error
}

type SQLiteLedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *SQLiteLedgerStore {
	return &SQLiteLedgerStore{db: db}
}

const ledgerColumns = `id, profile_id, date, bmr, tdee, net_calories, total_calories_in, total_calories_out, total_carbs_g, total_protein_g, total_fat_g, exercise_minutes, exercise_count, sleep_duration_min, IFNULL(sleep_status, ''), revision, created_at, updated_at`

func (s *SQLiteLedgerStore) LoadLedger(profileID int64, day string) (*model.DailyLedger, error) {
	row := s.db.QueryRow(`SELECT `+ledgerColumns+` FROM daily_ledgers WHERE profile_id = ? AND date = ?`, profileID, day)
	led, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", day, err)
	}
	return led, nil
}

func (s *SQLiteLedgerStore) SaveLedger(led *model.DailyLedger) error {
	if led.ID == 0 {
		res, err := s.db.Exec(`
INSERT INTO daily_ledgers(profile_id, date, bmr, tdee, net_calories, total_calories_in, total_calories_out, total_carbs_g, total_protein_g, total_fat_g, exercise_minutes, exercise_count, sleep_duration_min, sleep_status, revision, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
`, led.ProfileID, led.Date, led.BMR.String(), led.TDEE.String(), led.NetCalories.String(),
			led.TotalCaloriesIn.String(), led.TotalCaloriesOut.String(),
			led.TotalCarbsG.String(), led.TotalProteinG.String(), led.TotalFatG.String(),
			led.ExerciseMinutes, led.ExerciseCount,
			nullableIntPtr(led.SleepDurationMin), nullableSleepStatus(led.SleepStatus),
			led.CreatedAt.Format(time.RFC3339), led.UpdatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert ledger %s: %w", led.Date, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("resolve ledger id: %w", err)
		}
		led.ID = id
		led.Revision = 1
		return nil
	}

	res, err := s.db.Exec(`
UPDATE daily_ledgers
SET bmr = ?, tdee = ?, net_calories = ?, total_calories_in = ?, total_calories_out = ?, total_carbs_g = ?, total_protein_g = ?, total_fat_g = ?, exercise_minutes = ?, exercise_count = ?, sleep_duration_min = ?, sleep_status = ?, revision = revision + 1, updated_at = ?
WHERE id = ? AND revision = ?
`, led.BMR.String(), led.TDEE.String(), led.NetCalories.String(),
		led.TotalCaloriesIn.String(), led.TotalCaloriesOut.String(),
		led.TotalCarbsG.String(), led.TotalProteinG.String(), led.TotalFatG.String(),
		led.ExerciseMinutes, led.ExerciseCount,
		nullableIntPtr(led.SleepDurationMin), nullableSleepStatus(led.SleepStatus),
		led.UpdatedAt.Format(time.RFC3339), led.ID, led.Revision)
	if err != nil {
		return fmt.Errorf("update ledger %s: %w", led.Date, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: ledger %s was modified concurrently", ErrLedgerConflict, led.Date)
	}
	led.Revision++
	return nil
}

func (s *SQLiteLedgerStore) DeleteAllLedgers(profileID int64) error {
	if _, err := s.db.Exec(`DELETE FROM daily_ledgers WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("delete ledgers: %w", err)
	}
	return nil
}

// LedgerByDate is the read-side lookup used by show commands; absent days are
// reported as ErrNotFound rather than materialized.
func LedgerByDate(db *sql.DB, profileID int64, date string) (*model.DailyLedger, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(date); err != nil {
		return nil, err
	}
	led, err := NewLedgerStore(db).LoadLedger(profileID, date)
	if err != nil {
		return nil, err
	}
	if led == nil {
		return nil, fmt.Errorf("%w: no ledger for %s", ErrNotFound, date)
	}
	return led, nil
}

// ListLedgers returns the ledgers between from and to, both inclusive,
// ordered by date.
func ListLedgers(db *sql.DB, profileID int64, from, to string) ([]model.DailyLedger, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(from); err != nil {
		return nil, err
	}
	if err := validateDayKey(to); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT `+ledgerColumns+` FROM daily_ledgers WHERE profile_id = ? AND date >= ? AND date <= ? ORDER BY date`, profileID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	items := make([]model.DailyLedger, 0)
	for rows.Next() {
		led, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		items = append(items, *led)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedger(row rowScanner) (*model.DailyLedger, error) {
	var led model.DailyLedger
	var bmrRaw, tdeeRaw, netRaw, inRaw, outRaw, carbsRaw, proteinRaw, fatRaw string
	var sleepDur sql.NullInt64
	var sleepStatus string
	var createdRaw, updatedRaw string
	if err := row.Scan(&led.ID, &led.ProfileID, &led.Date,
		&bmrRaw, &tdeeRaw, &netRaw, &inRaw, &outRaw, &carbsRaw, &proteinRaw, &fatRaw,
		&led.ExerciseMinutes, &led.ExerciseCount,
		&sleepDur, &sleepStatus, &led.Revision, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	var err error
	if led.BMR, err = quantity.Parse(bmrRaw); err != nil {
		return nil, err
	}
	if led.TDEE, err = quantity.Parse(tdeeRaw); err != nil {
		return nil, err
	}
	if led.NetCalories, err = quantity.Parse(netRaw); err != nil {
		return nil, err
	}
	if led.TotalCaloriesIn, err = quantity.Parse(inRaw); err != nil {
		return nil, err
	}
	if led.TotalCaloriesOut, err = quantity.Parse(outRaw); err != nil {
		return nil, err
	}
	if led.TotalCarbsG, err = quantity.Parse(carbsRaw); err != nil {
		return nil, err
	}
	if led.TotalProteinG, err = quantity.Parse(proteinRaw); err != nil {
		return nil, err
	}
	if led.TotalFatG, err = quantity.Parse(fatRaw); err != nil {
		return nil, err
	}

	if sleepDur.Valid {
		v := int(sleepDur.Int64)
		led.SleepDurationMin = &v
	}
	if sleepStatus != "" {
		st := model.SleepStatus(sleepStatus)
		led.SleepStatus = &st
	}
	led.CreatedAt, _ = time.Parse(time.RFC3339, createdRaw)
	led.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &led, nil
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableSleepStatus(v *model.SleepStatus) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
