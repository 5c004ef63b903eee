package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fittcha/bodii/internal/service"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if err := service.SetConfig(sqldb, "weight_unit", "lb"); err != nil {
		t.Fatalf("set config: %v", err)
	}
	value, ok, err := service.GetConfig(sqldb, "weight_unit")
	if err != nil || !ok || value != "lb" {
		t.Fatalf("get config = %q/%v/%v, want lb", value, ok, err)
	}
	if got := service.WeightUnit(sqldb); got != "lb" {
		t.Fatalf("WeightUnit = %q, want lb", got)
	}

	all, err := service.ListConfig(sqldb)
	if err != nil {
		t.Fatalf("list config: %v", err)
	}
	if all["sleep_boundary_hour"] != "2" {
		t.Fatalf("seeded sleep_boundary_hour = %q, want 2", all["sleep_boundary_hour"])
	}
}

func TestSetConfigValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if err := service.SetConfig(sqldb, "theme", "dark"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("unknown key: err = %v, want ErrInvalidInput", err)
	}
	if err := service.SetConfig(sqldb, "sleep_boundary_hour", "24"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("hour 24: err = %v, want ErrInvalidInput", err)
	}
	if err := service.SetConfig(sqldb, "weight_unit", "stone"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("bad unit: err = %v, want ErrInvalidInput", err)
	}
	if err := service.SetConfig(sqldb, "sleep_boundary_hour", "0"); err != nil {
		t.Fatalf("hour 0 should be allowed: %v", err)
	}
}

func TestSleepBoundaryHourDrivesDayAttribution(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	if err := service.SetConfig(sqldb, "sleep_boundary_hour", "4"); err != nil {
		t.Fatalf("set boundary: %v", err)
	}
	if got := service.SleepBoundaryHour(sqldb); got != 4 {
		t.Fatalf("SleepBoundaryHour = %d, want 4", got)
	}

	// 03:00 is now before the boundary, so the night counts for the 14th.
	id, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   profileID,
		SleptAt:     time.Date(2026, 3, 15, 3, 0, 0, 0, time.Local),
		DurationMin: 410,
	})
	if err != nil {
		t.Fatalf("log sleep: %v", err)
	}
	item, err := service.SleepLogByID(sqldb, profileID, id)
	if err != nil {
		t.Fatalf("load sleep log: %v", err)
	}
	if item.DayKey != "2026-03-14" {
		t.Fatalf("DayKey = %s, want 2026-03-14 with a 04:00 boundary", item.DayKey)
	}
}
