package bodii

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/service"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return buf.String()
}

func TestRootHelp(t *testing.T) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodii.db")
	for i := 0; i < 2; i++ {
		buf := &bytes.Buffer{}
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetArgs([]string{"--db", path, "init"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
}

func seedDay(t *testing.T, path string) {
	t.Helper()
	runCmd(t, "--db", path, "init")
	runCmd(t, "--db", path, "profile", "set",
		"--sex", "male", "--birth-date", "1990-01-15", "--height", "175", "--activity", "moderate")
	runCmd(t, "--db", path, "body", "add",
		"--weight", "80", "--unit", "kg", "--date", "2026-03-01", "--time", "08:00")
	runCmd(t, "--db", path, "meal", "add",
		"--name", "oats", "--calories", "300", "--carbs", "27", "--protein", "5", "--fat", "3",
		"--category", "breakfast", "--date", "2026-03-10", "--time", "09:00")
	runCmd(t, "--db", path, "exercise", "add",
		"--type", "running", "--calories", "250", "--duration", "30",
		"--date", "2026-03-10", "--time", "18:00")
	runCmd(t, "--db", path, "sleep", "log",
		"--duration", "450", "--date", "2026-03-10", "--time", "06:30")
}

func TestCommandsDriveDailyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodii.db")
	seedDay(t, path)

	out := runCmd(t, "--db", path, "today", "--date", "2026-03-10", "--json")
	var status service.DayStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("parse today json: %v\n%s", err, out)
	}
	if !status.CaloriesIn.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected 300 kcal in, got %s", status.CaloriesIn)
	}
	if !status.CaloriesOut.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected 250 kcal out, got %s", status.CaloriesOut)
	}
	if status.SleepDurationMin == nil || *status.SleepDurationMin != 450 {
		t.Fatalf("expected 450 min sleep, got %v", status.SleepDurationMin)
	}
	wantRemaining := status.TDEE.Add(decimal.NewFromInt(250)).Sub(decimal.NewFromInt(300))
	if !status.RemainingCalories.Equal(wantRemaining) {
		t.Fatalf("remaining %s, want %s", status.RemainingCalories, wantRemaining)
	}

	out = runCmd(t, "--db", path, "ledger", "show", "2026-03-10", "--json")
	var led model.DailyLedger
	if err := json.Unmarshal([]byte(out), &led); err != nil {
		t.Fatalf("parse ledger json: %v\n%s", err, out)
	}
	if led.ExerciseMinutes != 30 || led.ExerciseCount != 1 {
		t.Fatalf("expected 30 min across 1 session, got %d/%d", led.ExerciseMinutes, led.ExerciseCount)
	}
	if led.Revision < 3 {
		t.Fatalf("expected at least 3 revisions after 3 events, got %d", led.Revision)
	}
}

func TestExportImportCommandsReproduceLedgers(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	snapshot := filepath.Join(dir, "snapshot.json")

	seedDay(t, src)
	// Rebuild so the stored rows use day-accurate metabolics before export.
	runCmd(t, "--db", src, "ledger", "rebuild")
	runCmd(t, "--db", src, "export", "--format", "json", "--out", snapshot)

	runCmd(t, "--db", dst, "init")
	out := runCmd(t, "--db", dst, "import", "--in", snapshot, "--format", "json", "--mode", "merge")
	if out == "" {
		t.Fatalf("expected import report output")
	}

	var want, got model.DailyLedger
	if err := json.Unmarshal([]byte(runCmd(t, "--db", src, "ledger", "show", "2026-03-10", "--json")), &want); err != nil {
		t.Fatalf("parse source ledger: %v", err)
	}
	if err := json.Unmarshal([]byte(runCmd(t, "--db", dst, "ledger", "show", "2026-03-10", "--json")), &got); err != nil {
		t.Fatalf("parse imported ledger: %v", err)
	}
	if !got.TotalCaloriesIn.Equal(want.TotalCaloriesIn) || !got.TotalCaloriesOut.Equal(want.TotalCaloriesOut) {
		t.Fatalf("imported totals %s/%s, want %s/%s",
			got.TotalCaloriesIn, got.TotalCaloriesOut, want.TotalCaloriesIn, want.TotalCaloriesOut)
	}
	if !got.NetCalories.Equal(want.NetCalories) {
		t.Fatalf("imported net %s, want %s", got.NetCalories, want.NetCalories)
	}

	// Doctor should see a consistent store after the import rebuild.
	runCmd(t, "--db", dst, "doctor")
}
