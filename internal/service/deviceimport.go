package service

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fittcha/bodii/internal/model"
)

// DevicePayload is the normalized shape produced by export converters for
// phone and watch health data. Each batch carries a stable UUID so the same
// export file can be fed in twice without doubling the logs.
type DevicePayload struct {
	Source   string               `json:"source"`
	BatchID  string               `json:"batch_id,omitempty"`
	Workouts []DeviceWorkout      `json:"workouts,omitempty"`
	Sleep    []DeviceSleepSession `json:"sleep,omitempty"`
}

type DeviceWorkout struct {
	UUID        string  `json:"uuid,omitempty"`
	Activity    string  `json:"activity"`
	StartedAt   string  `json:"started_at"`
	DurationMin int     `json:"duration_min"`
	EnergyKcal  float64 `json:"energy_kcal"`
}

type DeviceSleepSession struct {
	UUID      string `json:"uuid,omitempty"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
}

type DeviceImportReport struct {
	BatchID          string   `json:"batch_id"`
	Source           string   `json:"source"`
	ImportedWorkouts int      `json:"imported_workouts"`
	ImportedSleep    int      `json:"imported_sleep"`
	Skipped          int      `json:"skipped"`
	Warnings         []string `json:"warnings,omitempty"`
}

// ImportDeviceData replays a device batch through the regular logging path so
// every accepted item updates the day's ledger. A batch whose UUID was seen
// before is skipped whole; within a new batch, workouts that match an existing
// log by type and start time and sleep days that already have a record are
// skipped so device syncs never clobber manual entries.
func ImportDeviceData(db *sql.DB, profileID int64, payload *DevicePayload) (DeviceImportReport, error) {
	report := DeviceImportReport{}
	if err := validateProfileID(profileID); err != nil {
		return report, err
	}
	if payload == nil {
		return report, fmt.Errorf("%w: device payload is required", ErrInvalidInput)
	}

	source := normalizeName(payload.Source)
	if source == "" {
		source = "device"
	}
	report.Source = source

	batchID := strings.TrimSpace(payload.BatchID)
	if batchID == "" {
		batchID = uuid.New().String()
	} else {
		parsed, err := uuid.Parse(batchID)
		if err != nil {
			return report, fmt.Errorf("%w: batch id must be a UUID", ErrInvalidInput)
		}
		batchID = parsed.String()
	}
	report.BatchID = batchID

	var seen int
	err := db.QueryRow(`SELECT COUNT(1) FROM import_batches WHERE id = ?`, batchID).Scan(&seen)
	if err != nil {
		return report, fmt.Errorf("check import batch: %w", err)
	}
	if seen > 0 {
		report.Skipped = len(payload.Workouts) + len(payload.Sleep)
		report.Warnings = append(report.Warnings, fmt.Sprintf("batch %s already imported", batchID))
		return report, nil
	}

	boundary := SleepBoundaryHour(db)

	for idx, w := range payload.Workouts {
		startedAt, err := time.Parse(time.RFC3339, w.StartedAt)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("workouts[%d]: bad started_at %q", idx, w.StartedAt))
			report.Skipped++
			continue
		}
		calories := int(math.Round(w.EnergyKcal))
		if calories <= 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("workouts[%d]: no energy recorded", idx))
			report.Skipped++
			continue
		}
		exerciseType := normalizeName(w.Activity)
		if exerciseType == "" {
			exerciseType = "workout"
		}
		var existing int64
		err = db.QueryRow(`
SELECT id FROM exercise_logs WHERE profile_id = ? AND exercise_type = ? AND performed_at = ? LIMIT 1`,
			profileID, exerciseType, startedAt.Format(time.RFC3339)).Scan(&existing)
		if err == nil {
			report.Skipped++
			continue
		}
		if err != sql.ErrNoRows {
			return report, fmt.Errorf("check existing workout: %w", err)
		}
		if _, err := CreateExerciseLog(db, ExerciseLogInput{
			ProfileID:      profileID,
			ExerciseType:   exerciseType,
			CaloriesBurned: calories,
			DurationMin:    w.DurationMin,
			PerformedAt:    startedAt,
		}); err != nil {
			return report, fmt.Errorf("import workout %q: %w", exerciseType, err)
		}
		report.ImportedWorkouts++
	}

	for idx, s := range payload.Sleep {
		startedAt, err := time.Parse(time.RFC3339, s.StartedAt)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("sleep[%d]: bad started_at %q", idx, s.StartedAt))
			report.Skipped++
			continue
		}
		endedAt, err := time.Parse(time.RFC3339, s.EndedAt)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("sleep[%d]: bad ended_at %q", idx, s.EndedAt))
			report.Skipped++
			continue
		}
		duration := int(endedAt.Sub(startedAt).Minutes())
		if duration <= 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("sleep[%d]: session ends before it starts", idx))
			report.Skipped++
			continue
		}
		day := LogicalDay(endedAt, boundary)
		var existing int64
		err = db.QueryRow(`SELECT id FROM sleep_logs WHERE profile_id = ? AND day_key = ?`, profileID, day).Scan(&existing)
		if err == nil {
			report.Skipped++
			continue
		}
		if err != sql.ErrNoRows {
			return report, fmt.Errorf("check existing sleep log: %w", err)
		}
		if _, err := LogSleep(db, SleepInput{
			ProfileID:   profileID,
			SleptAt:     endedAt,
			DurationMin: duration,
		}); err != nil {
			return report, fmt.Errorf("import sleep for %s: %w", day, err)
		}
		report.ImportedSleep++
	}

	kind := "mixed"
	switch {
	case len(payload.Sleep) == 0:
		kind = "workouts"
	case len(payload.Workouts) == 0:
		kind = "sleep"
	}
	if _, err := db.Exec(`
INSERT INTO import_batches(id, source, kind, item_count) VALUES(?, ?, ?, ?)`,
		batchID, source, kind, report.ImportedWorkouts+report.ImportedSleep); err != nil {
		return report, fmt.Errorf("record import batch: %w", err)
	}
	return report, nil
}

// ListImportBatches returns past device imports, newest first.
func ListImportBatches(db *sql.DB) ([]model.ImportBatch, error) {
	rows, err := db.Query(`SELECT id, source, kind, item_count, imported_at FROM import_batches ORDER BY imported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	defer rows.Close()

	items := make([]model.ImportBatch, 0)
	for rows.Next() {
		var b model.ImportBatch
		var importedRaw string
		if err := rows.Scan(&b.ID, &b.Source, &b.Kind, &b.ItemCount, &importedRaw); err != nil {
			return nil, fmt.Errorf("scan import batch: %w", err)
		}
		if ts, err := parseStoredTime(importedRaw); err == nil {
			b.ImportedAt = ts
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import batches: %w", err)
	}
	return items, nil
}
