package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/service"
)

func TestCreateMealEntryFromFoodUpdatesLedger(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)
	completeProfile(t, sqldb, pid)

	if _, err := service.CreateFood(sqldb, service.FoodInput{
		Name:     "Greek Yogurt",
		Calories: 150,
		CarbsG:   10,
		ProteinG: 15,
		FatG:     5,
	}); err != nil {
		t.Fatalf("create food: %v", err)
	}

	consumed := time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local)
	id, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Category:   "breakfast",
		Food:       "greek yogurt",
		Quantity:   2,
		ConsumedAt: consumed,
	})
	if err != nil {
		t.Fatalf("create meal entry: %v", err)
	}

	entry, err := service.MealEntryByID(sqldb, pid, id)
	if err != nil {
		t.Fatalf("meal entry by id: %v", err)
	}
	if entry.Name != "Greek Yogurt" {
		t.Errorf("expected name from food, got %q", entry.Name)
	}
	if entry.Calories != 300 {
		t.Errorf("calories = %d, want 300", entry.Calories)
	}
	if entry.FoodID == nil {
		t.Error("expected food id on entry")
	}

	food, err := service.ResolveFood(sqldb, "greek yogurt")
	if err != nil {
		t.Fatalf("resolve food: %v", err)
	}
	if food.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", food.UsageCount)
	}

	_, tdee, err := service.CurrentMetabolics(sqldb, pid)
	if err != nil {
		t.Fatalf("current metabolics: %v", err)
	}
	led, err := service.LedgerByDate(sqldb, pid, "2026-03-10")
	if err != nil {
		t.Fatalf("ledger by date: %v", err)
	}
	if !led.TotalCaloriesIn.Equal(decimal.NewFromInt(300)) {
		t.Errorf("calories in = %s, want 300", led.TotalCaloriesIn)
	}
	if !led.TotalCarbsG.Equal(decimal.NewFromInt(20)) {
		t.Errorf("carbs = %s, want 20", led.TotalCarbsG)
	}
	if !led.TotalProteinG.Equal(decimal.NewFromInt(30)) {
		t.Errorf("protein = %s, want 30", led.TotalProteinG)
	}
	if !led.TotalFatG.Equal(decimal.NewFromInt(10)) {
		t.Errorf("fat = %s, want 10", led.TotalFatG)
	}
	wantNet := decimal.NewFromInt(300).Sub(tdee)
	if !led.NetCalories.Equal(wantNet) {
		t.Errorf("net = %s, want %s", led.NetCalories, wantNet)
	}
}

func TestCreateMealEntryFreeText(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	id, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Name:       "Chicken Bowl",
		Category:   "lunch",
		Calories:   550,
		CarbsG:     40,
		ProteinG:   45,
		FatG:       18,
		ConsumedAt: time.Date(2026, 3, 11, 12, 30, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("create meal entry: %v", err)
	}
	entry, err := service.MealEntryByID(sqldb, pid, id)
	if err != nil {
		t.Fatalf("meal entry by id: %v", err)
	}
	if entry.FoodID != nil {
		t.Error("expected no food id on free-text entry")
	}
	if entry.Quantity != 1 || entry.QuantityUnit != "serving" {
		t.Errorf("expected default quantity of 1 serving, got %.1f %s", entry.Quantity, entry.QuantityUnit)
	}

	led, err := service.LedgerByDate(sqldb, pid, "2026-03-11")
	if err != nil {
		t.Fatalf("ledger by date: %v", err)
	}
	if !led.TotalCaloriesIn.Equal(decimal.NewFromInt(550)) {
		t.Errorf("calories in = %s, want 550", led.TotalCaloriesIn)
	}
	if !led.NetCalories.Equal(decimal.NewFromInt(550)) {
		t.Errorf("net = %s, want 550 with zero tdee", led.NetCalories)
	}
}

func TestUpdateMealEntrySameDayAppliesDifference(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	consumed := time.Date(2026, 3, 12, 19, 0, 0, 0, time.Local)
	id, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Name:       "Pasta",
		Category:   "dinner",
		Calories:   700,
		CarbsG:     90,
		ConsumedAt: consumed,
	})
	if err != nil {
		t.Fatalf("create meal entry: %v", err)
	}

	if err := service.UpdateMealEntry(sqldb, service.UpdateMealInput{
		ID: id,
		MealEntryInput: service.MealEntryInput{
			ProfileID:  pid,
			Name:       "Pasta (small)",
			Category:   "dinner",
			Calories:   450,
			CarbsG:     60,
			ConsumedAt: consumed,
		},
	}); err != nil {
		t.Fatalf("update meal entry: %v", err)
	}

	led, err := service.LedgerByDate(sqldb, pid, "2026-03-12")
	if err != nil {
		t.Fatalf("ledger by date: %v", err)
	}
	if !led.TotalCaloriesIn.Equal(decimal.NewFromInt(450)) {
		t.Errorf("calories in = %s, want 450", led.TotalCaloriesIn)
	}
	if !led.TotalCarbsG.Equal(decimal.NewFromInt(60)) {
		t.Errorf("carbs = %s, want 60", led.TotalCarbsG)
	}
}

func TestUpdateMealEntryAcrossDaysMovesContribution(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	id, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Name:       "Burrito",
		Category:   "dinner",
		Calories:   800,
		ConsumedAt: time.Date(2026, 3, 13, 20, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("create meal entry: %v", err)
	}

	if err := service.UpdateMealEntry(sqldb, service.UpdateMealInput{
		ID: id,
		MealEntryInput: service.MealEntryInput{
			ProfileID:  pid,
			Name:       "Burrito",
			Category:   "dinner",
			Calories:   800,
			ConsumedAt: time.Date(2026, 3, 14, 13, 0, 0, 0, time.Local),
		},
	}); err != nil {
		t.Fatalf("update meal entry: %v", err)
	}

	oldDay, err := service.LedgerByDate(sqldb, pid, "2026-03-13")
	if err != nil {
		t.Fatalf("old day ledger: %v", err)
	}
	if !oldDay.TotalCaloriesIn.IsZero() {
		t.Errorf("old day calories in = %s, want 0", oldDay.TotalCaloriesIn)
	}
	newDay, err := service.LedgerByDate(sqldb, pid, "2026-03-14")
	if err != nil {
		t.Fatalf("new day ledger: %v", err)
	}
	if !newDay.TotalCaloriesIn.Equal(decimal.NewFromInt(800)) {
		t.Errorf("new day calories in = %s, want 800", newDay.TotalCaloriesIn)
	}
}

func TestDeleteMealEntryRemovesContribution(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	id, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Name:       "Smoothie",
		Category:   "snacks",
		Calories:   320,
		CarbsG:     55,
		ConsumedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("create meal entry: %v", err)
	}
	if err := service.DeleteMealEntry(sqldb, pid, id); err != nil {
		t.Fatalf("delete meal entry: %v", err)
	}

	led, err := service.LedgerByDate(sqldb, pid, "2026-03-15")
	if err != nil {
		t.Fatalf("ledger by date: %v", err)
	}
	if !led.TotalCaloriesIn.IsZero() || !led.TotalCarbsG.IsZero() {
		t.Errorf("expected contribution removed, got in=%s carbs=%s", led.TotalCaloriesIn, led.TotalCarbsG)
	}

	if err := service.DeleteMealEntry(sqldb, pid, id); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateMealEntryUnknownCategory(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	_, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID: pid,
		Name:      "Toast",
		Category:  "brunch",
		Calories:  150,
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestListMealEntriesFilters(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	days := []time.Time{
		time.Date(2026, 3, 16, 8, 0, 0, 0, time.Local),
		time.Date(2026, 3, 16, 13, 0, 0, 0, time.Local),
		time.Date(2026, 3, 17, 8, 0, 0, 0, time.Local),
	}
	categories := []string{"breakfast", "lunch", "breakfast"}
	for i, d := range days {
		if _, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
			ProfileID:  pid,
			Name:       "Meal",
			Category:   categories[i],
			Calories:   100,
			ConsumedAt: d,
		}); err != nil {
			t.Fatalf("create meal entry %d: %v", i, err)
		}
	}

	entries, err := service.ListMealEntries(sqldb, service.ListMealsFilter{ProfileID: pid, Date: "2026-03-16"})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries on 2026-03-16, got %d", len(entries))
	}

	entries, err = service.ListMealEntries(sqldb, service.ListMealsFilter{ProfileID: pid, Category: "breakfast"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 breakfast entries, got %d", len(entries))
	}

	if _, err := service.ListMealEntries(sqldb, service.ListMealsFilter{ProfileID: pid, Date: "2026-03-16", FromDate: "2026-03-01"}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for combined filters, got %v", err)
	}
}
