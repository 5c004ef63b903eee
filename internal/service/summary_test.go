package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/service"
)

func TestDaySummaryEmptyDayShowsBaseline(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)
	completeProfile(t, sqldb, pid)

	_, tdee, err := service.CurrentMetabolics(sqldb, pid)
	if err != nil {
		t.Fatalf("current metabolics: %v", err)
	}

	status, err := service.DaySummary(sqldb, pid, "")
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if status.HasEntries {
		t.Error("expected no entries on empty day")
	}
	if !status.TDEE.Equal(tdee) {
		t.Errorf("tdee = %s, want %s", status.TDEE, tdee)
	}
	if !status.RemainingCalories.Equal(tdee) {
		t.Errorf("remaining = %s, want full tdee", status.RemainingCalories)
	}
	if !status.NetCalories.Equal(tdee.Neg()) {
		t.Errorf("net = %s, want %s", status.NetCalories, tdee.Neg())
	}
}

func TestDaySummaryReflectsLoggedDay(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	day := time.Date(2026, 4, 2, 12, 0, 0, 0, time.Local)
	if _, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Name:       "Lunch",
		Category:   "lunch",
		Calories:   600,
		CarbsG:     50,
		ProteinG:   40,
		FatG:       20,
		ConsumedAt: day,
	}); err != nil {
		t.Fatalf("create meal entry: %v", err)
	}
	if _, err := service.CreateExerciseLog(sqldb, service.ExerciseLogInput{
		ProfileID:      pid,
		ExerciseType:   "running",
		CaloriesBurned: 300,
		DurationMin:    30,
		PerformedAt:    day.Add(6 * time.Hour),
	}); err != nil {
		t.Fatalf("create exercise log: %v", err)
	}

	status, err := service.DaySummary(sqldb, pid, "2026-04-02")
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if !status.HasEntries {
		t.Fatal("expected entries")
	}
	if !status.CaloriesIn.Equal(decimal.NewFromInt(600)) {
		t.Errorf("calories in = %s, want 600", status.CaloriesIn)
	}
	if !status.CaloriesOut.Equal(decimal.NewFromInt(300)) {
		t.Errorf("calories out = %s, want 300", status.CaloriesOut)
	}
	if status.ExerciseMinutes != 30 || status.ExerciseCount != 1 {
		t.Errorf("exercise = %d min / %d sessions, want 30 / 1", status.ExerciseMinutes, status.ExerciseCount)
	}
	// tdee is zero for the bare default profile, so the remaining budget is
	// just the exercise credit minus intake.
	if !status.RemainingCalories.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("remaining = %s, want -300", status.RemainingCalories)
	}
	if status.ProteinPct.IsZero() {
		t.Error("expected macro shares on logged day")
	}
}

func TestTrendRangeAggregates(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	for i, kcal := range []int{500, 700, 300} {
		day := time.Date(2026, 4, 10+i, 12, 0, 0, 0, time.Local)
		if _, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
			ProfileID:  pid,
			Name:       "Meal",
			Category:   "lunch",
			Calories:   kcal,
			ConsumedAt: day,
		}); err != nil {
			t.Fatalf("create meal entry %d: %v", i, err)
		}
	}
	if _, err := service.LogSleep(sqldb, service.SleepInput{
		ProfileID:   pid,
		SleptAt:     time.Date(2026, 4, 10, 23, 0, 0, 0, time.Local),
		DurationMin: 450,
	}); err != nil {
		t.Fatalf("log sleep: %v", err)
	}

	report, err := service.TrendRange(sqldb, pid, "2026-04-10", "2026-04-12")
	if err != nil {
		t.Fatalf("trend range: %v", err)
	}
	if report.ActiveDays != 3 {
		t.Fatalf("active days = %d, want 3", report.ActiveDays)
	}
	if !report.TotalCaloriesIn.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("total in = %s, want 1500", report.TotalCaloriesIn)
	}
	if !report.AverageCaloriesInDay.Equal(decimal.NewFromInt(500)) {
		t.Errorf("avg in = %s, want 500", report.AverageCaloriesInDay)
	}
	if report.HighestNetDay == nil || report.HighestNetDay.Date != "2026-04-11" {
		t.Errorf("highest net day = %+v, want 2026-04-11", report.HighestNetDay)
	}
	if report.LowestNetDay == nil || report.LowestNetDay.Date != "2026-04-12" {
		t.Errorf("lowest net day = %+v, want 2026-04-12", report.LowestNetDay)
	}
	if report.Sleep.TrackedDays != 1 || report.Sleep.GoodDays != 1 {
		t.Errorf("sleep breakdown = %+v, want 1 tracked good day", report.Sleep)
	}
	if report.Sleep.AverageMin != 450 {
		t.Errorf("sleep avg = %d, want 450", report.Sleep.AverageMin)
	}
}

func TestTrendRangeWeightSeries(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	for i, w := range []float64{82, 81.2} {
		if _, err := service.AddBodyMeasurement(sqldb, service.BodyMeasurementInput{
			ProfileID:  pid,
			Weight:     w,
			Unit:       "kg",
			MeasuredAt: time.Date(2026, 4, 20+i*7, 8, 0, 0, 0, time.Local),
		}); err != nil {
			t.Fatalf("add measurement %d: %v", i, err)
		}
	}

	report, err := service.TrendRange(sqldb, pid, "2026-04-20", "2026-04-27")
	if err != nil {
		t.Fatalf("trend range: %v", err)
	}
	if len(report.Weights) != 2 {
		t.Fatalf("expected 2 weight points, got %d", len(report.Weights))
	}
	if report.WeightChangeKg == nil {
		t.Fatal("expected weight change")
	}
	if diff := *report.WeightChangeKg + 0.8; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("weight change = %.2f, want -0.8", *report.WeightChangeKg)
	}
}

func TestTrendRangeRejectsReversedRange(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	if _, err := service.TrendRange(sqldb, pid, "2026-04-10", "2026-04-01"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
