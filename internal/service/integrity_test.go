package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fittcha/bodii/internal/service"
)

func TestRebuildLedgersMatchesIncrementalState(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)
	completeProfile(t, sqldb, pid)

	day1 := time.Date(2026, 5, 4, 12, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)
	if _, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID: pid, Name: "Lunch", Category: "lunch", Calories: 650, CarbsG: 70, ProteinG: 35, FatG: 20, ConsumedAt: day1,
	}); err != nil {
		t.Fatalf("create meal: %v", err)
	}
	if _, err := service.CreateExerciseLog(sqldb, service.ExerciseLogInput{
		ProfileID: pid, ExerciseType: "cycling", CaloriesBurned: 400, DurationMin: 45, PerformedAt: day1.Add(5 * time.Hour),
	}); err != nil {
		t.Fatalf("create exercise: %v", err)
	}
	if _, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID: pid, SleptAt: day2.Add(-3 * time.Hour), DurationMin: 380,
	}); err != nil {
		t.Fatalf("log sleep: %v", err)
	}

	before, err := service.RunDoctor(sqldb, pid, false)
	if err != nil {
		t.Fatalf("doctor before rebuild: %v", err)
	}
	if !before.Healthy() {
		t.Fatalf("expected healthy ledgers before rebuild, got %+v", before)
	}

	if err := service.RebuildLedgers(sqldb, pid); err != nil {
		t.Fatalf("rebuild ledgers: %v", err)
	}

	after, err := service.RunDoctor(sqldb, pid, false)
	if err != nil {
		t.Fatalf("doctor after rebuild: %v", err)
	}
	if !after.Healthy() {
		t.Fatalf("expected rebuild to reproduce event state, got %+v", after)
	}

	led, err := service.LedgerByDate(sqldb, pid, day1.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("ledger by date: %v", err)
	}
	if led.ExerciseCount != 1 || led.ExerciseMinutes != 45 {
		t.Errorf("exercise after rebuild = %d sessions / %d min, want 1 / 45", led.ExerciseCount, led.ExerciseMinutes)
	}
	if led.TotalCaloriesIn.String() != "650" {
		t.Errorf("calories in after rebuild = %s, want 650", led.TotalCaloriesIn)
	}
}

func TestDoctorDetectsAndFixesCorruptedLedger(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	day := time.Date(2026, 5, 10, 9, 0, 0, 0, time.Local)
	if _, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID: pid, Name: "Breakfast", Category: "breakfast", Calories: 400, ConsumedAt: day,
	}); err != nil {
		t.Fatalf("create meal: %v", err)
	}

	if _, err := sqldb.Exec(`UPDATE daily_ledgers SET total_calories_in = '999' WHERE profile_id = ? AND date = ?`, pid, "2026-05-10"); err != nil {
		t.Fatalf("corrupt ledger: %v", err)
	}

	report, err := service.RunDoctor(sqldb, pid, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.Healthy() {
		t.Fatal("expected doctor to flag corrupted ledger")
	}
	if len(report.DriftedDays) != 1 || report.DriftedDays[0] != "2026-05-10" {
		t.Fatalf("drifted days = %v, want [2026-05-10]", report.DriftedDays)
	}
	if report.Rebuilt {
		t.Fatal("doctor without fix must not rebuild")
	}

	fixed, err := service.RunDoctor(sqldb, pid, true)
	if err != nil {
		t.Fatalf("doctor --fix: %v", err)
	}
	if !fixed.Rebuilt {
		t.Fatal("expected fix to rebuild")
	}

	clean, err := service.RunDoctor(sqldb, pid, false)
	if err != nil {
		t.Fatalf("doctor after fix: %v", err)
	}
	if !clean.Healthy() {
		t.Fatalf("expected healthy ledgers after fix, got %+v", clean)
	}
	led, err := service.LedgerByDate(sqldb, pid, "2026-05-10")
	if err != nil {
		t.Fatalf("ledger by date: %v", err)
	}
	if led.TotalCaloriesIn.String() != "400" {
		t.Errorf("calories in after fix = %s, want 400", led.TotalCaloriesIn)
	}
}

func TestDoctorFlagsLedgerlessEvents(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	// Simulate an event that slipped in without its ledger write.
	performed := time.Date(2026, 5, 12, 7, 0, 0, 0, time.Local).Format(time.RFC3339)
	if _, err := sqldb.Exec(`
INSERT INTO exercise_logs(profile_id, exercise_type, intensity, calories_burned, duration_min, performed_at)
VALUES(?, 'rowing', 'moderate', 250, 20, ?)`, pid, performed); err != nil {
		t.Fatalf("insert raw exercise: %v", err)
	}

	report, err := service.RunDoctor(sqldb, pid, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(report.MissingLedgerDays) != 1 || report.MissingLedgerDays[0] != "2026-05-12" {
		t.Fatalf("missing ledger days = %v, want [2026-05-12]", report.MissingLedgerDays)
	}

	if _, err := service.RunDoctor(sqldb, pid, true); err != nil {
		t.Fatalf("doctor --fix: %v", err)
	}
	led, err := service.LedgerByDate(sqldb, pid, "2026-05-12")
	if err != nil {
		t.Fatalf("ledger by date after fix: %v", err)
	}
	if led.ExerciseCount != 1 {
		t.Errorf("exercise count = %d, want 1", led.ExerciseCount)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bodii.db")
	if err := os.WriteFile(dbPath, []byte("not a real database"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	backupPath := filepath.Join(dir, "backups", "bodii-20260512.db")
	info, err := service.CreateBackup(dbPath, backupPath)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("expected checksum and size, got %+v", info)
	}

	backups, err := service.ListBackups(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(backups) != 1 || backups[0].Checksum != info.Checksum {
		t.Fatalf("expected backup in listing, got %+v", backups)
	}

	restorePath := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(backupPath, restorePath, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}
	restored, err := os.ReadFile(restorePath)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if string(restored) != "not a real database" {
		t.Fatal("restored contents differ from source")
	}

	if err := service.RestoreBackup(backupPath, restorePath, false); err == nil {
		t.Fatal("expected restore onto existing db to fail without force")
	}
	if err := service.RestoreBackup(backupPath, restorePath, true); err != nil {
		t.Fatalf("forced restore: %v", err)
	}
}
