package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/service"
)

func TestLogSleepAttributesEarlyMorningToPreviousDay(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	// Woke at 01:30, before the 02:00 boundary: the night belongs to the 7th.
	id, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 8, 1, 30, 0, 0, time.Local),
		DurationMin: 430,
	})
	if err != nil {
		t.Fatalf("log sleep: %v", err)
	}
	item, err := service.SleepLogByID(sqldb, profileID, id)
	if err != nil {
		t.Fatalf("load sleep log: %v", err)
	}
	if item.DayKey != "2026-03-07" {
		t.Fatalf("DayKey = %s, want 2026-03-07", item.DayKey)
	}

	led, err := service.LedgerByDate(sqldb, profileID, "2026-03-07")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if led.SleepDurationMin == nil || *led.SleepDurationMin != 430 {
		t.Errorf("SleepDurationMin = %v, want 430", led.SleepDurationMin)
	}
	if led.SleepStatus == nil || *led.SleepStatus != model.SleepStatusGood {
		t.Errorf("SleepStatus = %v, want good", led.SleepStatus)
	}
}

func TestLogSleepReplacesSameDay(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	first, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 9, 7, 0, 0, 0, time.Local),
		DurationMin: 400,
	})
	if err != nil {
		t.Fatalf("first log: %v", err)
	}
	second, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 9, 8, 30, 0, 0, time.Local),
		DurationMin: 430,
	})
	if err != nil {
		t.Fatalf("second log: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same row to be replaced, got ids %d and %d", first, second)
	}

	logs, err := service.ListSleepLogs(sqldb, service.ListSleepFilter{ProfileID: profileID})
	if err != nil {
		t.Fatalf("list sleep logs: %v", err)
	}
	if len(logs) != 1 || logs[0].DurationMin != 430 {
		t.Fatalf("expected one 430min record, got %+v", logs)
	}

	led, err := service.LedgerByDate(sqldb, profileID, "2026-03-09")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if led.SleepDurationMin == nil || *led.SleepDurationMin != 430 {
		t.Errorf("SleepDurationMin = %v, want the replacement 430", led.SleepDurationMin)
	}
	if led.SleepStatus == nil || *led.SleepStatus != model.SleepStatusGood {
		t.Errorf("SleepStatus = %v, want good after replacement", led.SleepStatus)
	}
}

func TestUpdateSleepLogMovesDays(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	id, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 10, 7, 0, 0, 0, time.Local),
		DurationMin: 380,
	})
	if err != nil {
		t.Fatalf("log sleep: %v", err)
	}
	if err := service.UpdateSleepLog(sqldb, service.UpdateSleepInput{
		ID: id,
		SleepInput: service.SleepInput{
			ProfileID:   profileID,
			SleptAt:     time.Date(2026, 3, 11, 7, 0, 0, 0, time.Local),
			DurationMin: 380,
		},
	}); err != nil {
		t.Fatalf("move sleep log: %v", err)
	}

	oldDay, err := service.LedgerByDate(sqldb, profileID, "2026-03-10")
	if err != nil {
		t.Fatalf("load old day: %v", err)
	}
	if oldDay.SleepDurationMin != nil || oldDay.SleepStatus != nil {
		t.Errorf("old day still tracks sleep: %v / %v", oldDay.SleepDurationMin, oldDay.SleepStatus)
	}
	newDay, err := service.LedgerByDate(sqldb, profileID, "2026-03-11")
	if err != nil {
		t.Fatalf("load new day: %v", err)
	}
	if newDay.SleepDurationMin == nil || *newDay.SleepDurationMin != 380 {
		t.Errorf("SleepDurationMin on new day = %v, want 380", newDay.SleepDurationMin)
	}

	// The target day already has its own record now.
	other, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 12, 7, 0, 0, 0, time.Local),
		DurationMin: 300,
	})
	if err != nil {
		t.Fatalf("log other day: %v", err)
	}
	if err := service.UpdateSleepLog(sqldb, service.UpdateSleepInput{
		ID: other,
		SleepInput: service.SleepInput{
			ProfileID:   profileID,
			SleptAt:     time.Date(2026, 3, 11, 6, 0, 0, 0, time.Local),
			DurationMin: 300,
		},
	}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("move onto taken day: err = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteSleepLogClearsLedger(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	id, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 13, 7, 15, 0, 0, time.Local),
		DurationMin: 350,
	})
	if err != nil {
		t.Fatalf("log sleep: %v", err)
	}
	if err := service.DeleteSleepLog(sqldb, profileID, id); err != nil {
		t.Fatalf("delete sleep log: %v", err)
	}

	led, err := service.LedgerByDate(sqldb, profileID, "2026-03-13")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if led.SleepDurationMin != nil || led.SleepStatus != nil {
		t.Errorf("sleep fields survived delete: %v / %v", led.SleepDurationMin, led.SleepStatus)
	}
	if err := service.DeleteSleepLog(sqldb, profileID, id); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestSleepStatusThresholds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		minutes int
		want    model.SleepStatus
	}{
		{480, model.SleepStatusGood},
		{420, model.SleepStatusGood},
		{419, model.SleepStatusFair},
		{360, model.SleepStatusFair},
		{359, model.SleepStatusPoor},
		{1, model.SleepStatusPoor},
	}
	for _, tc := range cases {
		if got := service.SleepStatusFor(tc.minutes); got != tc.want {
			t.Errorf("SleepStatusFor(%d) = %s, want %s", tc.minutes, got, tc.want)
		}
	}
}

func TestLogSleepRejectsZeroDuration(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	if _, err := service.LogSleep(sqldb, service.SleepInput{ProfileID: 1}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("zero duration: err = %v, want ErrInvalidInput", err)
	}
}
