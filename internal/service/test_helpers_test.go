package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/fittcha/bodii/internal/db"
	"github.com/fittcha/bodii/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bodii.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

// defaultProfileID resolves the profile seeded by the migrations.
func defaultProfileID(t *testing.T, sqldb *sql.DB) int64 {
	t.Helper()
	p, err := service.ProfileByName(sqldb, "default")
	if err != nil {
		t.Fatalf("resolve default profile: %v", err)
	}
	return p.ID
}

// completeProfile fills in the default profile and logs a starting weight so
// metabolic snapshots resolve with real numbers instead of zeroes.
func completeProfile(t *testing.T, sqldb *sql.DB, pid int64) {
	t.Helper()
	sex := "male"
	birth := "1990-01-15"
	height := 175.0
	level := "moderate"
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: pid, Sex: &sex, BirthDate: &birth, HeightCm: &height, ActivityLevel: &level}); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if _, err := service.AddBodyMeasurement(sqldb, service.BodyMeasurementInput{
		ProfileID:  pid,
		Weight:     80,
		Unit:       "kg",
		MeasuredAt: time.Now().Add(-24 * time.Hour),
	}); err != nil {
		t.Fatalf("add measurement: %v", err)
	}
}
